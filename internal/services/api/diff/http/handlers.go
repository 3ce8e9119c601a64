// Package http provides http transport for comparisons
package http

import (
	"bytes"
	"errors"
	"io"
	"mime"
	stdhttp "net/http"
	"strings"
	"sync"

	"wta/internal/modkit/httpkit"
	perr "wta/internal/platform/errors"
	"wta/internal/platform/net/http/bind"
	"wta/internal/services/api/diff/domain"
	svc "wta/internal/services/api/diff/service"

	"github.com/dustin/go-humanize"
)

// DefaultMaxBytes caps a side upload
const DefaultMaxBytes int64 = 5 << 20

// Options tunes the transport
type Options struct {
	MaxBytes int64 // side body limit, default DefaultMaxBytes
}

var registerOnce sync.Once

// Register mounts the comparison routes, callers wrap r with bearer auth
func Register(r httpkit.Router, s svc.Service, opt Options) {
	registerOnce.Do(registerValidators)

	if opt.MaxBytes <= 0 {
		opt.MaxBytes = DefaultMaxBytes
	}
	h := &handlers{svc: s, max: opt.MaxBytes}

	r.Put("/{id}/left", httpkit.Handle(h.upsertLeft))
	r.Put("/{id}/right", httpkit.Handle(h.upsertRight))
	httpkit.Get(r, "/{id}", h.compare)
	httpkit.Get(r, "/{id}/status", h.status)
	r.Delete("/{id}", httpkit.Call(h.delete))
}

type handlers struct {
	svc svc.Service
	max int64
}

// swagger:route PUT /diff/{id}/left Diff upsertLeft
// @Summary Upload the left side
// @Description Body is raw base64 text, or {"data":"..."} with a JSON content type
// @Tags diff
// @Accept plain
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Comparison id"
// @Param payload body domain.SideInput true "Side payload"
// @Success 200 {object} domain.UpsertResponse "updated"
// @Success 201 {object} domain.UpsertResponse "created"
// @Failure 400 {object} httpkit.Envelope "invalid payload or id"
// @Failure 401 {object} httpkit.Envelope "unauthorized"
// @Router /diff/{id}/left [put]
func (h *handlers) upsertLeft(r *stdhttp.Request) httpkit.Response { return h.upsert(r, domain.SideLeft) }

// swagger:route PUT /diff/{id}/right Diff upsertRight
// @Summary Upload the right side
// @Description Body is raw base64 text, or {"data":"..."} with a JSON content type
// @Tags diff
// @Accept plain
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Comparison id"
// @Param payload body domain.SideInput true "Side payload"
// @Success 200 {object} domain.UpsertResponse "updated"
// @Success 201 {object} domain.UpsertResponse "created"
// @Failure 400 {object} httpkit.Envelope "invalid payload or id"
// @Failure 401 {object} httpkit.Envelope "unauthorized"
// @Router /diff/{id}/right [put]
func (h *handlers) upsertRight(r *stdhttp.Request) httpkit.Response { return h.upsert(r, domain.SideRight) }

func (h *handlers) upsert(r *stdhttp.Request, side domain.Side) httpkit.Response {
	owner, key, err := h.target(r)
	if err != nil {
		return httpkit.Error(err)
	}
	in, err := h.readSide(r)
	if err != nil {
		return httpkit.Error(err)
	}

	var created bool
	if side == domain.SideLeft {
		created, err = h.svc.UpsertLeft(r.Context(), owner, key.ID, in.Data)
	} else {
		created, err = h.svc.UpsertRight(r.Context(), owner, key.ID, in.Data)
	}
	if err != nil {
		return httpkit.Error(err)
	}

	body := domain.UpsertResponse{UserID: owner, CmpID: key.ID, Side: side}
	if !created {
		return httpkit.OK(body)
	}
	resp := httpkit.Created(body)
	resp.Header = stdhttp.Header{}
	resp.Header.Set("Location", r.URL.Path)
	return resp
}

// swagger:route GET /diff/{id} Diff compare
// @Summary Compare both sides
// @Description Computes the result on first request after an upload, later requests are served from the stored result
// @Tags diff
// @Produce json
// @Security BearerAuth
// @Param id path string true "Comparison id"
// @Success 200 {object} diff.Result "ok"
// @Failure 400 {object} httpkit.Envelope "incomplete comparison"
// @Failure 404 {object} httpkit.Envelope "not found"
// @Failure 500 {object} httpkit.Envelope "payload could not be decoded"
// @Router /diff/{id} [get]
func (h *handlers) compare(r *stdhttp.Request) (any, error) {
	owner, key, err := h.target(r)
	if err != nil {
		return nil, err
	}
	return h.svc.Compare(r.Context(), owner, key.ID)
}

// swagger:route GET /diff/{id}/status Diff status
// @Summary Comparison status
// @Tags diff
// @Produce json
// @Security BearerAuth
// @Param id path string true "Comparison id"
// @Success 200 {object} domain.StatusView "ok"
// @Failure 404 {object} httpkit.Envelope "not found"
// @Router /diff/{id}/status [get]
func (h *handlers) status(r *stdhttp.Request) (any, error) {
	owner, key, err := h.target(r)
	if err != nil {
		return nil, err
	}
	return h.svc.Status(r.Context(), owner, key.ID)
}

// swagger:route DELETE /diff/{id} Diff delete
// @Summary Delete a comparison
// @Tags diff
// @Security BearerAuth
// @Param id path string true "Comparison id"
// @Success 204 "deleted"
// @Failure 404 {object} httpkit.Envelope "not found"
// @Router /diff/{id} [delete]
func (h *handlers) delete(r *stdhttp.Request) (any, error) {
	owner, key, err := h.target(r)
	if err != nil {
		return nil, err
	}
	ok, err := h.svc.Delete(r.Context(), owner, key.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, perr.NotFoundf("comparison not found")
	}
	return httpkit.NoContent(), nil
}

// target resolves the caller and the validated comparison id
func (h *handlers) target(r *stdhttp.Request) (string, domain.Key, error) {
	owner, err := httpkit.Owner(r)
	if err != nil {
		return "", domain.Key{}, err
	}
	key := domain.Key{ID: httpkit.Param(r, "id")}
	if err := bind.Validate(key); err != nil {
		return "", domain.Key{}, err
	}
	return owner, key, nil
}

// readSide accepts a raw base64 body or a JSON SideInput
func (h *handlers) readSide(r *stdhttp.Request) (domain.SideInput, error) {
	raw, err := io.ReadAll(stdhttp.MaxBytesReader(nil, r.Body, h.max))
	_ = r.Body.Close()
	if err != nil {
		var mbe *stdhttp.MaxBytesError
		if errors.As(err, &mbe) {
			return domain.SideInput{}, perr.WithField(
				perr.Newf(perr.ErrorCodeValidation, "data must be at most %s", humanize.IBytes(uint64(h.max))), "data")
		}
		return domain.SideInput{}, perr.Wrap(err, perr.ErrorCodeValidation, "could not read body")
	}

	data := string(raw)
	if isJSON(r.Header.Get("Content-Type")) {
		r.Body = io.NopCloser(bytes.NewReader(raw))
		// shape only, the payload is validated once trimmed
		body, err := bind.ParseJSON[struct {
			Data string `json:"data"`
		}](r, bind.JSONOptions{DisallowUnknown: true})
		if err != nil {
			return domain.SideInput{}, err
		}
		data = body.Data
	}

	in := domain.SideInput{Data: strings.TrimSpace(data)}
	if err := bind.Validate(in); err != nil {
		return domain.SideInput{}, err
	}
	return in, nil
}

func isJSON(ct string) bool {
	mt, _, err := mime.ParseMediaType(ct)
	return err == nil && (mt == "application/json" || strings.HasSuffix(mt, "+json"))
}
