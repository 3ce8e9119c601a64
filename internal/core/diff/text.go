package diff

import (
	"fmt"
	"unicode/utf16"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// Text compares payloads character by character after decoding them under charset.
// A character is a UTF-16 code unit, so a code point outside the BMP counts as two
// and offsets line up with UTF-16 string indices.
// charset names follow the WHATWG encoding labels (utf-8, windows-1252, utf-16le, ...)
// malformed byte sequences decode to U+FFFD rather than failing
func Text(charset string) (Comparator, error) {
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("diff: unknown charset %q: %w", charset, err)
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		name = charset
	}
	return comparator[uint16]{
		name:   string(KindText) + "/" + name,
		decode: func(s string) ([]uint16, error) { return decodeText(enc, s) },
	}, nil
}

func decodeText(enc encoding.Encoding, s string) ([]uint16, error) {
	raw, err := DecodeBase64(s)
	if err != nil {
		return nil, err
	}
	// decoders carry state, one per call
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, err
	}
	return utf16.Encode([]rune(string(out))), nil
}
