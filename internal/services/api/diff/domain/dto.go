package domain

import "wta/internal/core/diff"

// SideInput is the JSON form of a side upload
// raw text bodies are bound into the same struct
type SideInput struct {
	Data string `json:"data" validate:"omitempty,base64" example:"AQIDBA=="`
}

// Key identifies a comparison within the caller's namespace
type Key struct {
	ID string `json:"cmpId" validate:"required,max=128,cmpid" example:"42"`
}

// UpsertResponse acknowledges a side upload
type UpsertResponse struct {
	UserID string `json:"userId" example:"alice"`
	CmpID  string `json:"cmpId" example:"42"`
	Side   Side   `json:"side" example:"left"`
}

// StatusView describes a comparison without its payloads
type StatusView struct {
	UserID   string       `json:"userId" example:"alice"`
	CmpID    string       `json:"cmpId" example:"42"`
	Version  int64        `json:"version" example:"2"`
	LHSReady bool         `json:"lhsReady" example:"true"`
	RHSReady bool         `json:"rhsReady" example:"true"`
	Result   *diff.Result `json:"result,omitempty"`
}

// NewStatusView projects c into a StatusView
func NewStatusView(c Comparison) StatusView {
	v := StatusView{
		UserID:   c.OwnerID,
		CmpID:    c.ID,
		Version:  c.Version,
		LHSReady: c.Left != nil,
		RHSReady: c.Right != nil,
	}
	if c.Result != nil {
		r := c.Result.Clone()
		v.Result = &r
	}
	return v
}
