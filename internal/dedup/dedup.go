// Package dedup partitions submissions into first occurrences and duplicates
// of an earlier submission with the same identity key.
//
// Order is positional only: the first record in the given slice wins and kept
// records stay in input order. Callers wanting chronological first-seen must
// sort before calling.
package dedup

import (
	"bizverify/internal/submission/models"
	id "bizverify/pkg/domain"
)

// Mode selects how the identity key is built.
type Mode string

const (
	// ModeRaw keys on ID and phone exactly as entered, which reproduces a
	// spreadsheet "remove duplicates" pass.
	ModeRaw Mode = "raw"
	// ModeStrict keys on the normalized ID and phone.
	ModeStrict Mode = "strict"
)

// Key is the identity of a registrant under one mode.
type Key struct {
	NationalID string
	Phone      string
}

// Empty reports whether both key components are blank.
func (k Key) Empty() bool {
	return k.NationalID == "" && k.Phone == ""
}

// KeyFor builds the key of sub under mode. Unknown modes use ModeStrict.
func KeyFor(sub models.Submission, mode Mode) Key {
	if mode == ModeRaw {
		return Key{NationalID: sub.Record.NationalID, Phone: sub.Record.Phone}
	}
	return Key{NationalID: sub.NormalizedID, Phone: sub.NormalizedPhone}
}

type options struct {
	requireIdentity bool
}

// Option configures deduplication.
type Option func(*options)

// RequireIdentity exempts records whose key is entirely blank: they are
// always kept and never flagged. Without it, all blank records collapse into
// the first one.
func RequireIdentity() Option {
	return func(o *options) {
		o.requireIdentity = true
	}
}

// Result is the outcome of one deduplication pass.
type Result struct {
	// Kept holds the first occurrence of every key, in input order.
	Kept []models.Submission
	// Duplicate has an entry for every input record; true marks a later
	// occurrence of an earlier key.
	Duplicate map[id.RecordID]bool
}

// Removed is the number of records flagged as duplicates.
func (r Result) Removed() int {
	n := 0
	for _, dup := range r.Duplicate {
		if dup {
			n++
		}
	}
	return n
}

// Deduplicate keeps the first submission for each key under mode.
func Deduplicate(subs []models.Submission, mode Mode, opts ...Option) Result {
	cfg := buildOptions(opts)
	keyOf := func(s models.Submission) Key { return KeyFor(s, mode) }
	kept, dup := KeepFirst(subs, keyOf, cfg.eligible(keyOf))

	flags := make(map[id.RecordID]bool, len(subs))
	for i, s := range subs {
		flags[s.Record.ID] = dup[i]
	}
	return Result{Kept: kept, Duplicate: flags}
}

// Annotate returns a copy of subs with DuplicateRaw and DuplicateStrict set.
// The input slice is not modified.
func Annotate(subs []models.Submission, opts ...Option) []models.Submission {
	cfg := buildOptions(opts)
	rawKey := func(s models.Submission) Key { return KeyFor(s, ModeRaw) }
	strictKey := func(s models.Submission) Key { return KeyFor(s, ModeStrict) }
	_, rawDup := KeepFirst(subs, rawKey, cfg.eligible(rawKey))
	_, strictDup := KeepFirst(subs, strictKey, cfg.eligible(strictKey))

	out := make([]models.Submission, len(subs))
	for i, s := range subs {
		s.DuplicateRaw = rawDup[i]
		s.DuplicateStrict = strictDup[i]
		out[i] = s
	}
	return out
}

// KeepFirst returns the items whose key has not been seen earlier in the
// slice, plus a parallel slice flagging the rest. Items for which eligible
// returns false are always kept and never recorded; a nil eligible accepts
// everything.
func KeepFirst[T any, K comparable](items []T, key func(T) K, eligible func(T) bool) ([]T, []bool) {
	kept := make([]T, 0, len(items))
	dup := make([]bool, len(items))
	seen := make(map[K]struct{}, len(items))

	for i, item := range items {
		if eligible != nil && !eligible(item) {
			kept = append(kept, item)
			continue
		}
		k := key(item)
		if _, ok := seen[k]; ok {
			dup[i] = true
			continue
		}
		seen[k] = struct{}{}
		kept = append(kept, item)
	}
	return kept, dup
}

func buildOptions(opts []Option) options {
	var cfg options
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func (o options) eligible(keyOf func(models.Submission) Key) func(models.Submission) bool {
	if !o.requireIdentity {
		return nil
	}
	return func(s models.Submission) bool {
		return !keyOf(s).Empty()
	}
}
