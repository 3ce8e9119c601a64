// Package repo provides comparison store implementations and the compare analytics sink
package repo

import (
	"context"
	"encoding/json"
	"errors"

	"wta/internal/core/diff"
	"wta/internal/modkit/repokit"
	perr "wta/internal/platform/errors"
	"wta/internal/platform/store"
	"wta/internal/services/api/diff/domain"

	"github.com/google/uuid"
)

// newGen mints the creation token of a comparison record
var newGen = uuid.NewString

// Schema creates the comparisons table
const Schema = `
CREATE TABLE IF NOT EXISTS diff_comparisons (
	owner_id   text        NOT NULL,
	cmp_id     text        NOT NULL,
	gen        text        NOT NULL DEFAULT '',
	left_side  text,
	right_side text,
	version    bigint      NOT NULL DEFAULT 1,
	result     jsonb,
	updated_at timestamptz NOT NULL DEFAULT now(),
	PRIMARY KEY (owner_id, cmp_id)
);
ALTER TABLE diff_comparisons ADD COLUMN IF NOT EXISTS gen text NOT NULL DEFAULT '';
`

// Migrate applies Schema through q
func Migrate(ctx context.Context, q repokit.Queryer) error {
	if _, err := q.Exec(ctx, Schema); err != nil {
		return perr.FromPostgres(err, "migrate diff_comparisons")
	}
	return nil
}

type (
	// PG is a Postgres implementation of domain.Store
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder for the Postgres implementation
func NewPG() repokit.Binder[domain.Store] { return PG{} }

// Bind attaches a Queryer to the Postgres implementation
func (PG) Bind(q repokit.Queryer) domain.Store { return &queries{q: repokit.RequireQueryer(q)} }

// one statement per side so the column name is never interpolated
const (
	upsertLeftSQL = `
		INSERT INTO diff_comparisons (owner_id, cmp_id, left_side, gen, version, result, updated_at)
		VALUES ($1, $2, $3, $4, 1, NULL, now())
		ON CONFLICT (owner_id, cmp_id) DO UPDATE
		SET left_side  = EXCLUDED.left_side,
		    result     = NULL,
		    version    = diff_comparisons.version + 1,
		    updated_at = now()
		RETURNING (xmax = 0)
	`
	upsertRightSQL = `
		INSERT INTO diff_comparisons (owner_id, cmp_id, right_side, gen, version, result, updated_at)
		VALUES ($1, $2, $3, $4, 1, NULL, now())
		ON CONFLICT (owner_id, cmp_id) DO UPDATE
		SET right_side = EXCLUDED.right_side,
		    result     = NULL,
		    version    = diff_comparisons.version + 1,
		    updated_at = now()
		RETURNING (xmax = 0)
	`
)

// UpsertSide writes one side in a single statement, xmax is zero only for freshly inserted rows.
// gen is only taken on insert, an update keeps the record's generation
func (r *queries) UpsertSide(ctx context.Context, ownerID, id string, side domain.Side, payload string) (bool, error) {
	var sql string
	switch side {
	case domain.SideLeft:
		sql = upsertLeftSQL
	case domain.SideRight:
		sql = upsertRightSQL
	default:
		return false, perr.InvalidArgf("unknown side %q", side)
	}
	created, err := store.Scalar[bool](ctx, r.q, sql, ownerID, id, payload, newGen())
	if err != nil {
		return false, perr.FromPostgres(err, "upsert comparison side")
	}
	return created, nil
}

// Get reads the current snapshot
func (r *queries) Get(ctx context.Context, ownerID, id string) (domain.Comparison, bool, error) {
	const sql = `
		SELECT left_side, right_side, version, result, gen
		FROM diff_comparisons
		WHERE owner_id = $1 AND cmp_id = $2
	`
	c, err := store.One(ctx, r.q, func(row store.Row) (domain.Comparison, error) {
		out := domain.Comparison{OwnerID: ownerID, ID: id}
		var raw []byte
		if err := row.Scan(&out.Left, &out.Right, &out.Version, &raw, &out.Gen); err != nil {
			return out, err
		}
		res, err := decodeResult(raw)
		if err != nil {
			return out, err
		}
		out.Result = res
		return out, nil
	}, sql, ownerID, id)
	if errors.Is(err, perr.ErrNotFound) {
		return domain.Comparison{}, false, nil
	}
	if err != nil {
		return domain.Comparison{}, false, perr.FromPostgres(err, "get comparison")
	}
	return c, true, nil
}

// UpdateResult is a compare and set on generation and version
func (r *queries) UpdateResult(ctx context.Context, c domain.Comparison, res diff.Result) (bool, error) {
	const sql = `
		UPDATE diff_comparisons
		SET result = $4::jsonb, updated_at = now()
		WHERE owner_id = $1 AND cmp_id = $2 AND version = $3 AND gen = $5
	`
	raw, err := json.Marshal(res)
	if err != nil {
		return false, perr.Wrap(err, perr.ErrorCodeUnknown, "encode comparison result")
	}
	tag, err := r.q.Exec(ctx, sql, c.OwnerID, c.ID, c.Version, string(raw), c.Gen)
	if err != nil {
		return false, perr.FromPostgres(err, "update comparison result")
	}
	return tag.RowsAffected() == 1, nil
}

// Delete removes the row
func (r *queries) Delete(ctx context.Context, ownerID, id string) (bool, error) {
	const sql = `DELETE FROM diff_comparisons WHERE owner_id = $1 AND cmp_id = $2`
	tag, err := r.q.Exec(ctx, sql, ownerID, id)
	if err != nil {
		return false, perr.FromPostgres(err, "delete comparison")
	}
	return tag.RowsAffected() == 1, nil
}

func decodeResult(raw []byte) (*diff.Result, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var res diff.Result
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDB, "decode stored comparison result")
	}
	if res.Differences == nil {
		res.Differences = []diff.Span{}
	}
	return &res, nil
}
