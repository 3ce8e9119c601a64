// Package http is the transport layer: a chi backed router facade, the server
// lifecycle and the JSON envelope every endpoint answers with
package http

import (
	"encoding/json"
	stdhttp "net/http"

	perr "wta/internal/platform/errors"
	"wta/internal/platform/logger"
	pnet "wta/internal/platform/net"
)

const contentTypeJSON = "application/json; charset=utf-8"

// Envelope wraps every JSON body the API writes. Code, Error and Field are set
// on failures only, Data on success only
type Envelope struct {
	StatusCode int            `json:"status_code"`
	Status     string         `json:"status"`
	Code       perr.ErrorCode `json:"code,omitempty"`
	Error      string         `json:"error,omitempty"`
	Field      string         `json:"field,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Data       any            `json:"data,omitempty"`
}

func envelopeFor(r *stdhttp.Request, status int) Envelope {
	return Envelope{
		StatusCode: status,
		Status:     stdhttp.StatusText(status),
		RequestID:  pnet.RequestID(r.Context()),
	}
}

// JSON writes v with the given status
func JSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes err as an error envelope, status and code come from perr.
// The message is also attached to the request logger so the access line carries it
func WriteError(w stdhttp.ResponseWriter, r *stdhttp.Request, err error) {
	wire := perr.WireFrom(err)
	logger.Annotate(r.Context(), "error", err.Error())

	status := perr.HTTPStatus(err)
	env := envelopeFor(r, status)
	env.Code, env.Error, env.Field = wire.Code, wire.Message, wire.Field
	JSON(w, status, env)
}

// Response is what return style handlers produce. A Body that is an error
// is rendered with WriteError and Status is ignored
type Response struct {
	Status int
	Body   any
	Header stdhttp.Header
}

// OK is a 200 with data
func OK(data any) Response { return Response{Status: stdhttp.StatusOK, Body: data} }

// Created is a 201 with data
func Created(data any) Response { return Response{Status: stdhttp.StatusCreated, Body: data} }

// NoContent is a bodyless 204
func NoContent() Response { return Response{Status: stdhttp.StatusNoContent} }

// Error renders err through WriteError
func Error(err error) Response { return Response{Body: err} }

// Handle turns a return style handler into a net/http handler
func Handle(h func(r *stdhttp.Request) Response) stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) { h(r).render(w, r) }
}

func (resp Response) render(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	dst := w.Header()
	for k, vv := range resp.Header {
		dst[k] = append(dst[k], vv...)
	}

	if err, ok := resp.Body.(error); ok {
		WriteError(w, r, err)
		return
	}

	status := resp.Status
	switch status {
	case 0:
		status = stdhttp.StatusOK
	case stdhttp.StatusNoContent:
		w.WriteHeader(status)
		return
	}
	env := envelopeFor(r, status)
	env.Data = resp.Body
	JSON(w, status, env)
}
