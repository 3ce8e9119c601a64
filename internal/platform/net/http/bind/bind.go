// Package bind decodes and validates request payloads, turning failures into perr errors
// whose message and field are safe to show clients
package bind

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	perr "wta/internal/platform/errors"
	"wta/internal/platform/logger"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// FieldLevel is what custom validators receive
type FieldLevel = validator.FieldLevel

type validatorSvc struct {
	v     *validator.Validate
	trans ut.Translator
}

// shorter than the stock english translations, {0} is the json field name
var shortMessages = map[string]string{
	"required": "{0} is required",
	"min":      "{0} must be at least {1}",
	"max":      "{0} must be at most {1}",
	"base64":   "{0} must be standard base64",
}

var get = sync.OnceValue(func() *validatorSvc {
	loc := en.New()
	trans, _ := ut.New(loc, loc).GetTranslator("en")

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = en_translations.RegisterDefaultTranslations(v, trans)

	s := &validatorSvc{v: v, trans: trans}
	for tag, text := range shortMessages {
		s.translate(tag, text)
	}
	return s
})

func (s *validatorSvc) translate(tag, text string) {
	_ = s.v.RegisterTranslation(tag, s.trans,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T(tag, fe.Field(), fe.Param())
			return msg
		},
	)
}

// RegisterValidation adds a custom validate tag
func RegisterValidation(tag string, fn validator.Func) error {
	return get().v.RegisterValidation(tag, fn)
}

// RegisterTranslation sets the message for tag, {0} is the field and {1} the tag param
func RegisterTranslation(tag, text string) { get().translate(tag, text) }

// Validate runs the validate tags of v. The first failing field is attached to the error
func Validate(v any) error {
	err := get().v.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		logger.Named("bind").Error().Err(err).Msg("validator misuse")
		return perr.Wrap(err, perr.ErrorCodeUnknown, "validation error")
	}
	fe := verrs[0]
	return perr.WithField(perr.New(perr.ErrorCodeValidation, fe.Translate(get().trans)), fe.Field())
}

// JSONOptions controls ParseJSON
type JSONOptions struct {
	MaxBytes        int64 // 0 reads the whole body
	DisallowUnknown bool
}

// ParseJSON decodes one JSON value from the body into T and validates it.
// Empty bodies and trailing data are JSON errors
func ParseJSON[T any](r *http.Request, opt JSONOptions) (T, error) {
	var zero T
	defer r.Body.Close()

	var body io.Reader = r.Body
	if opt.MaxBytes > 0 {
		body = io.LimitReader(r.Body, opt.MaxBytes)
	}
	dec := json.NewDecoder(body)
	if opt.DisallowUnknown {
		dec.DisallowUnknownFields()
	}

	var dst T
	if err := dec.Decode(&dst); err != nil {
		if errors.Is(err, io.EOF) {
			return zero, perr.JSONErrf("empty body")
		}
		return zero, perr.JSONErrf("invalid JSON: %v", err)
	}
	if dec.More() {
		return zero, perr.JSONErrf("unexpected trailing data")
	}
	if err := Validate(dst); err != nil {
		return zero, err
	}
	return dst, nil
}
