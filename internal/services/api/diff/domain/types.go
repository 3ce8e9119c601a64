// Package domain holds comparison types independent of transport or storage
package domain

import (
	"time"

	"wta/internal/core/diff"
)

// Side names one of the two payloads of a comparison
type Side string

const (
	// SideLeft is the left hand side
	SideLeft Side = "left"

	// SideRight is the right hand side
	SideRight Side = "right"
)

// Valid reports whether s is a known side
func (s Side) Valid() bool { return s == SideLeft || s == SideRight }

// Comparison is the stored state for one (owner, id) pair
// Result, when present, was computed from the sides current at Version.
// Gen is minted when the record is created, so a deleted and recreated record
// never matches an older snapshot even when the versions coincide
type Comparison struct {
	OwnerID string
	ID      string
	Gen     string
	Left    *string
	Right   *string
	Version int64
	Result  *diff.Result
}

// Complete reports whether both sides are present
func (c Comparison) Complete() bool { return c.Left != nil && c.Right != nil }

// Payload returns the stored payload for side
func (c Comparison) Payload(s Side) *string {
	if s == SideLeft {
		return c.Left
	}
	return c.Right
}

// Clone returns a deep copy so callers never share pointers with a store
func (c Comparison) Clone() Comparison {
	out := c
	if c.Left != nil {
		l := *c.Left
		out.Left = &l
	}
	if c.Right != nil {
		r := *c.Right
		out.Right = &r
	}
	if c.Result != nil {
		res := c.Result.Clone()
		out.Result = &res
	}
	return out
}

// CompareEvent is the analytics record emitted for every answered compare
type CompareEvent struct {
	OwnerID   string
	ID        string
	Version   int64
	Status    diff.Status
	Spans     int
	LeftSize  int
	RightSize int
	Elapsed   time.Duration
	Cached    bool
	Persisted bool
	At        time.Time
}
