package repo

import (
	"context"
	"errors"
	"strings"
	"testing"

	"wta/internal/core/diff"
	perr "wta/internal/platform/errors"
	"wta/internal/platform/store"
	"wta/internal/services/api/diff/domain"
)

type fakeTag struct{ n int64 }

func (t fakeTag) String() string      { return "" }
func (t fakeTag) RowsAffected() int64 { return t.n }

type fakeRow struct {
	val bool
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*bool)) = r.val
	return nil
}

// fakeRows yields at most one comparison row
type fakeRows struct {
	left, right *string
	gen         string
	version     int64
	result      []byte
	has         bool
	served      bool
}

func (r *fakeRows) Next() bool {
	if !r.has || r.served {
		return false
	}
	r.served = true
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	*(dest[0].(**string)) = r.left
	*(dest[1].(**string)) = r.right
	*(dest[2].(*int64)) = r.version
	*(dest[3].(*[]byte)) = r.result
	*(dest[4].(*string)) = r.gen
	return nil
}

func (r *fakeRows) Err() error        { return nil }
func (r *fakeRows) Close()            {}
func (r *fakeRows) Columns() []string { return nil }

type fakeQ struct {
	sql  string
	args []any

	tag     int64
	execErr error
	row     fakeRow
	rows    *fakeRows
}

func (f *fakeQ) Exec(_ context.Context, sql string, args ...any) (store.CommandTag, error) {
	f.sql, f.args = sql, args
	return fakeTag{n: f.tag}, f.execErr
}

func (f *fakeQ) Query(_ context.Context, sql string, args ...any) (store.Rows, error) {
	f.sql, f.args = sql, args
	return f.rows, nil
}

func (f *fakeQ) QueryRow(_ context.Context, sql string, args ...any) store.Row {
	f.sql, f.args = sql, args
	return f.row
}

func TestPG_UpsertSide_PicksColumnPerSide(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	q := &fakeQ{row: fakeRow{val: true}}
	s := NewPG().Bind(q)

	created, err := s.UpsertSide(ctx, "u", "1", domain.SideLeft, "AQ==")
	if err != nil || !created {
		t.Fatalf("created=%v err=%v", created, err)
	}
	if !strings.Contains(q.sql, "SET left_side") || len(q.args) != 4 {
		t.Fatalf("left upsert ran %q with %v", q.sql, q.args)
	}
	if gen, _ := q.args[3].(string); gen == "" || strings.Contains(q.sql, "gen =") {
		t.Fatalf("gen must be minted for inserts and never rewritten on update: %q %v", q.sql, q.args)
	}

	q.row = fakeRow{val: false}
	created, err = s.UpsertSide(ctx, "u", "1", domain.SideRight, "AQ==")
	if err != nil || created {
		t.Fatalf("created=%v err=%v", created, err)
	}
	if !strings.Contains(q.sql, "SET right_side") {
		t.Fatalf("right upsert ran %q", q.sql)
	}

	if _, err := s.UpsertSide(ctx, "u", "1", domain.Side("up"), ""); perr.CodeOf(err) != perr.ErrorCodeInvalidArgument {
		t.Fatalf("unknown side err = %v", err)
	}
}

func TestPG_UpsertSide_MapsDriverErrors(t *testing.T) {
	t.Parallel()

	q := &fakeQ{row: fakeRow{err: errors.New("conn reset")}}
	_, err := NewPG().Bind(q).UpsertSide(context.Background(), "u", "1", domain.SideLeft, "")
	if perr.CodeOf(err) != perr.ErrorCodeDB {
		t.Fatalf("expected DB code, got %v (%v)", perr.CodeOf(err), err)
	}
}

func TestPG_Get(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	left := "AQ=="
	q := &fakeQ{rows: &fakeRows{
		has:     true,
		gen:     "g-1",
		left:    &left,
		version: 4,
		result:  []byte(`{"status":"EQUAL","differences":null}`),
	}}
	c, ok, err := NewPG().Bind(q).Get(ctx, "u", "1")
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if c.OwnerID != "u" || c.ID != "1" || c.Gen != "g-1" || c.Version != 4 || c.Right != nil || *c.Left != left {
		t.Fatalf("unexpected %+v", c)
	}
	if c.Result == nil || c.Result.Status != diff.StatusEqual || c.Result.Differences == nil {
		t.Fatalf("result not decoded: %+v", c.Result)
	}

	q.rows = &fakeRows{}
	if _, ok, err := NewPG().Bind(q).Get(ctx, "u", "2"); ok || err != nil {
		t.Fatalf("absent row ok=%v err=%v", ok, err)
	}

	q.rows = &fakeRows{has: true, version: 1, result: []byte(`{`)}
	if _, _, err := NewPG().Bind(q).Get(ctx, "u", "3"); err == nil {
		t.Fatalf("expected decode error for corrupt result")
	}
}

func TestPG_UpdateResult_IsCAS(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	q := &fakeQ{tag: 1}
	s := NewPG().Bind(q)
	res := diff.Result{Status: diff.StatusEqualLength, Differences: []diff.Span{{Offset: 0, Length: 1}}}

	applied, err := s.UpdateResult(ctx, domain.Comparison{OwnerID: "u", ID: "1", Gen: "g-1", Version: 3}, res)
	if err != nil || !applied {
		t.Fatalf("applied=%v err=%v", applied, err)
	}
	if !strings.Contains(q.sql, "version = $3") || q.args[2] != int64(3) {
		t.Fatalf("CAS not keyed on version: %q %v", q.sql, q.args)
	}
	if !strings.Contains(q.sql, "gen = $5") || q.args[4] != "g-1" {
		t.Fatalf("CAS not keyed on generation: %q %v", q.sql, q.args)
	}
	if got := q.args[3].(string); got != `{"status":"EQUAL_LENGTH","differences":[{"offset":0,"length":1}]}` {
		t.Fatalf("encoded result = %s", got)
	}

	q.tag = 0
	if applied, _ := s.UpdateResult(ctx, domain.Comparison{OwnerID: "u", ID: "1", Version: 2}, res); applied {
		t.Fatalf("zero rows affected must report not applied")
	}
}

func TestPG_Delete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	q := &fakeQ{tag: 1}
	s := NewPG().Bind(q)
	if deleted, err := s.Delete(ctx, "u", "1"); err != nil || !deleted {
		t.Fatalf("deleted=%v err=%v", deleted, err)
	}
	q.tag = 0
	if deleted, _ := s.Delete(ctx, "u", "1"); deleted {
		t.Fatalf("expected not deleted")
	}
	q.execErr = errors.New("down")
	if _, err := s.Delete(ctx, "u", "1"); perr.CodeOf(err) != perr.ErrorCodeDB {
		t.Fatalf("expected DB error, got %v", err)
	}
}

func TestMigrate_ExecsSchema(t *testing.T) {
	t.Parallel()

	q := &fakeQ{}
	if err := Migrate(context.Background(), q); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if q.sql != Schema {
		t.Fatalf("Migrate ran %q", q.sql)
	}
}

func TestPG_BindPanicsOnNilQueryer(t *testing.T) {
	t.Parallel()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	NewPG().Bind(nil)
}
