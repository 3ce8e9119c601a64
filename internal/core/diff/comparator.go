package diff

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrIncompleteInput is returned when either side handed to a Comparator is absent
var ErrIncompleteInput = errors.New("diff: comparison side is missing")

// DecodeError reports a side whose payload could not be decoded
type DecodeError struct {
	Side string
	Err  error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("diff: decode %s side: %v", e.Side, e.Err) }

// Unwrap returns the underlying decoder error
func (e *DecodeError) Unwrap() error { return e.Err }

// Comparator decodes two base64 payloads and classifies them
// implementations are pure and safe for concurrent use
type Comparator interface {
	Compare(left, right *string) (Result, error)
	Name() string
}

// Kind selects a Comparator implementation
type Kind string

const (
	// KindBytes compares decoded bytes
	KindBytes Kind = "bytes"

	// KindText compares decoded characters under a charset
	KindText Kind = "text"
)

// New returns the comparator for kind, charset only applies to KindText
func New(kind Kind, charset string) (Comparator, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(string(kind)))) {
	case "", KindBytes:
		return Bytes(), nil
	case KindText:
		if strings.TrimSpace(charset) == "" {
			charset = "utf-8"
		}
		return Text(charset)
	default:
		return nil, fmt.Errorf("diff: unknown comparator kind %q (want bytes or text)", kind)
	}
}

type comparator[E comparable] struct {
	name   string
	decode func(string) ([]E, error)
}

func (c comparator[E]) Name() string { return c.name }

func (c comparator[E]) Compare(left, right *string) (Result, error) {
	if left == nil || right == nil {
		return Result{}, ErrIncompleteInput
	}
	l, err := c.decode(*left)
	if err != nil {
		return Result{}, &DecodeError{Side: "left", Err: err}
	}
	r, err := c.decode(*right)
	if err != nil {
		return Result{}, &DecodeError{Side: "right", Err: err}
	}
	return Classify(l, r), nil
}

// Bytes compares payloads byte for byte
func Bytes() Comparator {
	return comparator[byte]{name: string(KindBytes), decode: DecodeBase64}
}

// DecodeBase64 decodes standard padded base64
func DecodeBase64(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}
