// Package diff classifies two decoded sequences and locates the runs where they differ
package diff

import "slices"

// Status is the relationship between the two sides of a comparison
type Status string

const (
	// StatusEqual means both sides decode to the same sequence
	StatusEqual Status = "EQUAL"

	// StatusEqualLength means same length with at least one mismatching element
	StatusEqualLength Status = "EQUAL_LENGTH"

	// StatusDifferentLength means the sides decode to sequences of different length
	StatusDifferentLength Status = "DIFFERENT_LENGTH"
)

// Span is a maximal run of mismatching elements
type Span struct {
	Offset int `json:"offset" example:"0"`
	Length int `json:"length" example:"1"`
}

// Result is the outcome of a comparison
// Differences is empty unless Status is StatusEqualLength
type Result struct {
	Status      Status `json:"status" example:"EQUAL_LENGTH"`
	Differences []Span `json:"differences"`
}

// Equal reports structural equality, treating nil and empty differences alike
func (r Result) Equal(o Result) bool {
	if r.Status != o.Status || len(r.Differences) != len(o.Differences) {
		return false
	}
	return slices.Equal(r.Differences, o.Differences)
}

// Clone returns a copy that shares no memory with r
func (r Result) Clone() Result {
	out := Result{Status: r.Status, Differences: make([]Span, len(r.Differences))}
	copy(out.Differences, r.Differences)
	return out
}

func equal() Result           { return Result{Status: StatusEqual, Differences: []Span{}} }
func differentLength() Result { return Result{Status: StatusDifferentLength, Differences: []Span{}} }

// Classify compares two element sequences
func Classify[E comparable](l, r []E) Result {
	if slices.Equal(l, r) {
		return equal()
	}
	if len(l) != len(r) {
		return differentLength()
	}
	return Result{Status: StatusEqualLength, Differences: Spans(l, r)}
}

// Spans scans two equal length sequences left to right and returns the mismatching runs
// in ascending offset order. It panics if the lengths differ
func Spans[E comparable](l, r []E) []Span {
	if len(l) != len(r) {
		panic("diff: Spans on sequences of different length")
	}
	spans := []Span{}
	start, in := 0, false
	for i := range l {
		same := l[i] == r[i]
		switch {
		case !in && !same:
			in, start = true, i
		case in && same:
			in = false
			spans = append(spans, Span{Offset: start, Length: i - start})
		}
	}
	if in {
		spans = append(spans, Span{Offset: start, Length: len(l) - start})
	}
	return spans
}
