// Package service implements the comparison engine
package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"wta/internal/core/diff"
	perr "wta/internal/platform/errors"
	"wta/internal/platform/logger"
	"wta/internal/services/api/diff/domain"

	"golang.org/x/sync/singleflight"
)

// ErrIncomplete is returned by Compare while either side is missing
var ErrIncomplete = perr.Incompletef("Incomplete comparison")

// Service defines the service contract for comparisons
type Service interface{ domain.ServicePort }

// Options configures the engine, zero values are valid
type Options struct {
	Workers int              // comparator pool size, default runtime.NumCPU()
	Events  domain.EventSink // optional compare analytics
	Metrics *Metrics         // optional
}

// Svc implements Service on top of a domain.Store and a diff.Comparator
type Svc struct {
	store   domain.Store
	cmp     diff.Comparator
	pool    *Pool
	flight  singleflight.Group
	events  domain.EventSink
	metrics *Metrics
	now     func() time.Time
}

var _ Service = (*Svc)(nil)

// New creates the comparison engine
func New(store domain.Store, cmp diff.Comparator, opt Options) *Svc {
	if store == nil {
		panic("diff.Service requires a non nil Store")
	}
	if cmp == nil {
		panic("diff.Service requires a non nil Comparator")
	}
	return &Svc{
		store:   store,
		cmp:     cmp,
		pool:    NewPool(opt.Workers),
		events:  opt.Events,
		metrics: opt.Metrics,
		now:     time.Now,
	}
}

// Pool exposes the comparator pool
func (s *Svc) Pool() *Pool { return s.pool }

// UpsertLeft stores the left payload, created is true when the comparison did not exist
func (s *Svc) UpsertLeft(ctx context.Context, ownerID, id, data string) (bool, error) {
	return s.store.UpsertSide(ctx, ownerID, id, domain.SideLeft, data)
}

// UpsertRight stores the right payload, created is true when the comparison did not exist
func (s *Svc) UpsertRight(ctx context.Context, ownerID, id, data string) (bool, error) {
	return s.store.UpsertSide(ctx, ownerID, id, domain.SideRight, data)
}

// Get returns the current snapshot
func (s *Svc) Get(ctx context.Context, ownerID, id string) (domain.Comparison, bool, error) {
	return s.store.Get(ctx, ownerID, id)
}

// Status describes a comparison without returning its payloads
func (s *Svc) Status(ctx context.Context, ownerID, id string) (domain.StatusView, error) {
	c, ok, err := s.store.Get(ctx, ownerID, id)
	if err != nil {
		return domain.StatusView{}, err
	}
	if !ok {
		return domain.StatusView{}, perr.NotFoundf("comparison not found")
	}
	return domain.NewStatusView(c), nil
}

// Delete removes a comparison
func (s *Svc) Delete(ctx context.Context, ownerID, id string) (bool, error) {
	return s.store.Delete(ctx, ownerID, id)
}

// Compare returns the result for the current version of the comparison, computing
// and storing it when absent. The computed result is returned even when the
// write is discarded because the comparison changed in the meantime
func (s *Svc) Compare(ctx context.Context, ownerID, id string) (diff.Result, error) {
	c, ok, err := s.store.Get(ctx, ownerID, id)
	if err != nil {
		s.metrics.outcome(outcomeError)
		return diff.Result{}, err
	}
	if !ok {
		s.metrics.outcome(outcomeNotFound)
		return diff.Result{}, perr.NotFoundf("comparison not found")
	}
	if c.Result != nil {
		s.metrics.outcome(outcomeCached)
		s.emit(c, *c.Result, 0, true, true)
		return c.Result.Clone(), nil
	}
	if !c.Complete() {
		s.metrics.outcome(outcomeIncomplete)
		return diff.Result{}, ErrIncomplete
	}

	// the flight outlives the caller, a started computation always finishes
	bg := context.WithoutCancel(ctx)
	ch := s.flight.DoChan(flightKey(c), func() (any, error) {
		return s.compute(bg, c)
	})

	select {
	case <-ctx.Done():
		s.metrics.outcome(outcomeCanceled)
		return diff.Result{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			s.metrics.outcome(outcomeError)
			return diff.Result{}, res.Err
		}
		s.metrics.outcome(outcomeComputed)
		return res.Val.(diff.Result).Clone(), nil
	}
}

func (s *Svc) compute(ctx context.Context, c domain.Comparison) (diff.Result, error) {
	log := logger.C(ctx).With().
		Str("owner_id", c.OwnerID).
		Str("cmp_id", c.ID).
		Int64("version", c.Version).
		Logger()

	var (
		r       diff.Result
		elapsed time.Duration
	)
	err := s.pool.Do(ctx, func() error {
		s.metrics.running(1)
		defer s.metrics.running(-1)

		start := time.Now()
		var cerr error
		r, cerr = s.cmp.Compare(c.Left, c.Right)
		elapsed = time.Since(start)
		return cerr
	})
	if err != nil {
		var de *diff.DecodeError
		switch {
		case errors.As(err, &de):
			log.Error().Err(err).Str("side", de.Side).Msg("comparison payload failed to decode")
			return diff.Result{}, perr.Wrap(err, perr.ErrorCodeUnknown, "comparison payload could not be decoded")
		case errors.Is(err, diff.ErrIncompleteInput):
			log.Error().Err(err).Msg("comparator called on incomplete snapshot")
			return diff.Result{}, perr.Wrap(err, perr.ErrorCodeUnknown, "comparison could not be computed")
		case perr.IsCode(err, perr.ErrorCodePanic):
			log.Error().Err(err).Str("comparator", s.cmp.Name()).Msg("comparator panicked")
			return diff.Result{}, err
		default:
			log.Error().Err(err).Msg("comparison failed")
			return diff.Result{}, perr.Wrap(err, perr.ErrorCodeUnknown, "comparison could not be computed")
		}
	}
	s.metrics.observe(string(r.Status), elapsed.Seconds())

	applied, err := s.store.UpdateResult(ctx, c, r)
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("storing comparison result failed")
	case !applied:
		s.metrics.lostRace()
		log.Debug().Msg("comparison changed while computing, result not stored")
	}

	s.emit(c, r, elapsed, false, err == nil && applied)
	return r, nil
}

func (s *Svc) emit(c domain.Comparison, r diff.Result, elapsed time.Duration, cached, persisted bool) {
	if s.events == nil {
		return
	}
	ev := domain.CompareEvent{
		OwnerID:   c.OwnerID,
		ID:        c.ID,
		Version:   c.Version,
		Status:    r.Status,
		Spans:     len(r.Differences),
		Elapsed:   elapsed,
		Cached:    cached,
		Persisted: persisted,
		At:        s.now(),
	}
	if c.Left != nil {
		ev.LeftSize = len(*c.Left)
	}
	if c.Right != nil {
		ev.RightSize = len(*c.Right)
	}
	s.events.Emit(ev)
}

// flightKey names one snapshot. Gen separates a recreated record from the one it replaced
// ids, generations and versions never contain NUL, so the key splits unambiguously
func flightKey(c domain.Comparison) string {
	return c.OwnerID + "\x00" + c.ID + "\x00" + c.Gen + "\x00" + strconv.FormatInt(c.Version, 10)
}
