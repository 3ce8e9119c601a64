package repo

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"time"

	"wta/internal/core/diff"
	perr "wta/internal/platform/errors"
	"wta/internal/services/api/diff/domain"

	"github.com/dgraph-io/badger/v4"
)

// keyPrefix namespaces comparison records inside a shared badger db
const keyPrefix = "cmp/"

// maxTxnRetries bounds retries on optimistic transaction conflicts
const maxTxnRetries = 64

// record is the stored form of a comparison
type record struct {
	Gen     string       `json:"g"`
	Left    *string      `json:"l,omitempty"`
	Right   *string      `json:"r,omitempty"`
	Version int64        `json:"v"`
	Result  *diff.Result `json:"res,omitempty"`
}

// Badger is a domain.Store over an embedded badger database
// badger transactions detect write conflicts, which makes every operation atomic per key
type Badger struct {
	db *badger.DB
}

var _ domain.Store = (*Badger)(nil)

// NewBadger returns a store on db
func NewBadger(db *badger.DB) *Badger {
	if db == nil {
		panic("repo.NewBadger requires a non nil db")
	}
	return &Badger{db: db}
}

func badgerKey(ownerID, id string) []byte {
	// ids are printable ascii, so NUL splits owner from id unambiguously
	return []byte(keyPrefix + ownerID + "\x00" + id)
}

// update runs fn in a read write transaction, retrying on conflicts
func (b *Badger) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	backoff := time.Millisecond
	for attempt := 0; ; attempt++ {
		err := b.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		if attempt >= maxTxnRetries {
			return perr.Wrap(err, perr.ErrorCodeConflict, "comparison is too contended")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff/2 + rand.N(backoff)):
		}
		if backoff < 20*time.Millisecond {
			backoff *= 2
		}
	}
}

func readRecord(txn *badger.Txn, key []byte) (record, bool, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return record{}, false, nil
	}
	if err != nil {
		return record{}, false, err
	}
	var rec record
	err = item.Value(func(v []byte) error { return json.Unmarshal(v, &rec) })
	if err != nil {
		return record{}, false, err
	}
	return rec, true, nil
}

func writeRecord(txn *badger.Txn, key []byte, rec record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return txn.Set(key, raw)
}

// UpsertSide sets side in one transaction
func (b *Badger) UpsertSide(ctx context.Context, ownerID, id string, side domain.Side, payload string) (bool, error) {
	if !side.Valid() {
		return false, perr.InvalidArgf("unknown side %q", side)
	}
	key := badgerKey(ownerID, id)
	var created bool
	err := b.update(ctx, func(txn *badger.Txn) error {
		rec, ok, err := readRecord(txn, key)
		if err != nil {
			return err
		}
		created = !ok
		if created {
			rec.Gen = newGen()
		}
		p := payload
		if side == domain.SideLeft {
			rec.Left = &p
		} else {
			rec.Right = &p
		}
		rec.Version++
		rec.Result = nil
		return writeRecord(txn, key, rec)
	})
	if err != nil {
		return false, wrapBadger(err, "upsert comparison side")
	}
	return created, nil
}

// Get reads the snapshot in a read only transaction
func (b *Badger) Get(_ context.Context, ownerID, id string) (domain.Comparison, bool, error) {
	var (
		rec record
		ok  bool
	)
	err := b.db.View(func(txn *badger.Txn) error {
		var err error
		rec, ok, err = readRecord(txn, badgerKey(ownerID, id))
		return err
	})
	if err != nil {
		return domain.Comparison{}, false, wrapBadger(err, "get comparison")
	}
	if !ok {
		return domain.Comparison{}, false, nil
	}
	c := domain.Comparison{
		OwnerID: ownerID,
		ID:      id,
		Gen:     rec.Gen,
		Left:    rec.Left,
		Right:   rec.Right,
		Version: rec.Version,
		Result:  rec.Result,
	}
	if c.Result != nil && c.Result.Differences == nil {
		c.Result.Differences = []diff.Span{}
	}
	return c, true, nil
}

// UpdateResult writes r only when the stored record is still c.Gen at c.Version
func (b *Badger) UpdateResult(ctx context.Context, c domain.Comparison, r diff.Result) (bool, error) {
	key := badgerKey(c.OwnerID, c.ID)
	var applied bool
	err := b.update(ctx, func(txn *badger.Txn) error {
		applied = false
		rec, ok, err := readRecord(txn, key)
		if err != nil || !ok || rec.Gen != c.Gen || rec.Version != c.Version {
			return err
		}
		res := r.Clone()
		rec.Result = &res
		if err := writeRecord(txn, key, rec); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, wrapBadger(err, "update comparison result")
	}
	return applied, nil
}

// Delete removes the key if present
func (b *Badger) Delete(ctx context.Context, ownerID, id string) (bool, error) {
	key := badgerKey(ownerID, id)
	var deleted bool
	err := b.update(ctx, func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			deleted = false
			return nil
		}
		if err != nil {
			return err
		}
		deleted = true
		return txn.Delete(key)
	})
	if err != nil {
		return false, wrapBadger(err, "delete comparison")
	}
	return deleted, nil
}

func wrapBadger(err error, msg string) error {
	if _, ok := perr.As(err); ok {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return perr.Wrap(err, perr.ErrorCodeDB, msg)
}
