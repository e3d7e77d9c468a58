package dedup

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizverify/internal/normalize"
	"bizverify/internal/submission/models"
	id "bizverify/pkg/domain"
)

func submissions(raw ...[2]string) []models.Submission {
	n := normalize.New()
	recs := make([]models.Record, len(raw))
	for i, r := range raw {
		recs[i] = models.Record{ID: id.RecordID(i), NationalID: r[0], Phone: r[1]}
	}
	return n.NormalizeAll(recs)
}

func ids(subs []models.Submission) []id.RecordID {
	out := make([]id.RecordID, len(subs))
	for i, s := range subs {
		out[i] = s.Record.ID
	}
	return out
}

func TestDeduplicate_PhoneFormatsCollapseUnderStrict(t *testing.T) {
	subs := submissions(
		[2]string{"12345678", "0712345678"},
		[2]string{"12345678", "712345678"},
		[2]string{"12345678", "254712345678"},
	)

	result := Deduplicate(subs, ModeStrict)

	require.Len(t, result.Kept, 1)
	assert.Equal(t, id.RecordID(0), result.Kept[0].Record.ID)
	assert.Equal(t, map[id.RecordID]bool{0: false, 1: true, 2: true}, result.Duplicate)
	assert.Equal(t, 2, result.Removed())
}

func TestDeduplicate_RawVersusStrictGap(t *testing.T) {
	subs := submissions(
		[2]string{"12345678", "0712345678"},
		[2]string{" 12345678.0", "+254 712 345 678"},
	)

	raw := Deduplicate(subs, ModeRaw)
	strict := Deduplicate(subs, ModeStrict)

	assert.Len(t, raw.Kept, 2, "raw mode compares values as entered")
	assert.Len(t, strict.Kept, 1, "strict mode compares normalized values")
	assert.False(t, raw.Duplicate[1])
	assert.True(t, strict.Duplicate[1])
}

func TestDeduplicate_RawModeIsExact(t *testing.T) {
	subs := submissions(
		[2]string{"ab1", "0712345678"},
		[2]string{"AB1", "0712345678"},
		[2]string{"ab1", "0712345678"},
	)

	result := Deduplicate(subs, ModeRaw)

	assert.Equal(t, []id.RecordID{0, 1}, ids(result.Kept))
}

func TestDeduplicate_MissingIdentity(t *testing.T) {
	subs := submissions(
		[2]string{"", ""},
		[2]string{"111", "0711111111"},
		[2]string{"", ""},
		[2]string{" ", ""},
	)

	t.Run("blank keys collapse by default", func(t *testing.T) {
		result := Deduplicate(subs, ModeStrict)
		assert.Equal(t, []id.RecordID{0, 1}, ids(result.Kept))
		assert.True(t, result.Duplicate[2])
		assert.True(t, result.Duplicate[3], "whitespace-only ID normalizes to blank")
	})

	t.Run("raw mode keeps the whitespace variant distinct", func(t *testing.T) {
		result := Deduplicate(subs, ModeRaw)
		assert.Equal(t, []id.RecordID{0, 1, 3}, ids(result.Kept))
	})

	t.Run("guard keeps every blank record", func(t *testing.T) {
		result := Deduplicate(subs, ModeStrict, RequireIdentity())
		assert.Equal(t, []id.RecordID{0, 1, 2, 3}, ids(result.Kept))
		assert.Zero(t, result.Removed())
	})

	t.Run("guard still dedups when one field is present", func(t *testing.T) {
		partial := submissions([2]string{"", "0711111111"}, [2]string{"", "711111111"})
		result := Deduplicate(partial, ModeStrict, RequireIdentity())
		assert.Len(t, result.Kept, 1)
	})
}

func TestDeduplicate_Empty(t *testing.T) {
	result := Deduplicate(nil, ModeStrict)
	assert.Empty(t, result.Kept)
	assert.Empty(t, result.Duplicate)
}

func TestDeduplicate_Properties(t *testing.T) {
	idPool := []string{"1", "1.0", " 1 ", "a1", "A1", ""}
	phonePool := []string{"0711111111", "711111111", "254711111111", "0722222222", "", "x"}
	rng := rand.New(rand.NewPCG(7, 11))

	for trial := 0; trial < 50; trial++ {
		size := rng.IntN(30)
		raw := make([][2]string, size)
		for i := range raw {
			raw[i] = [2]string{idPool[rng.IntN(len(idPool))], phonePool[rng.IntN(len(phonePool))]}
		}
		subs := submissions(raw...)

		for _, mode := range []Mode{ModeRaw, ModeStrict} {
			first := Deduplicate(subs, mode)
			assert.LessOrEqual(t, len(first.Kept), len(subs))
			assert.Len(t, first.Duplicate, len(subs))
			assert.Equal(t, len(subs)-len(first.Kept), first.Removed())

			again := Deduplicate(first.Kept, mode)
			assert.Equal(t, ids(first.Kept), ids(again.Kept), "dedup is idempotent")

			keptIDs := ids(first.Kept)
			for i := 1; i < len(keptIDs); i++ {
				assert.Less(t, int(keptIDs[i-1]), int(keptIDs[i]), "kept records stay in input order")
			}
		}
	}
}

func TestAnnotate(t *testing.T) {
	subs := submissions(
		[2]string{"12345678", "0712345678"},
		[2]string{"12345678", "712345678"},
		[2]string{"12345678", "0712345678"},
	)

	annotated := Annotate(subs)

	require.Len(t, annotated, 3)
	assert.False(t, annotated[0].DuplicateRaw)
	assert.False(t, annotated[0].DuplicateStrict)
	assert.False(t, annotated[1].DuplicateRaw)
	assert.True(t, annotated[1].DuplicateStrict)
	assert.True(t, annotated[2].DuplicateRaw)
	assert.True(t, annotated[2].DuplicateStrict)

	for _, s := range subs {
		assert.False(t, s.DuplicateRaw || s.DuplicateStrict, "input is not modified")
	}
}

func TestKeepFirst(t *testing.T) {
	words := []string{"b", "a", "b", "c", "a"}
	kept, dup := KeepFirst(words, func(s string) string { return s }, nil)

	assert.Equal(t, []string{"b", "a", "c"}, kept)
	assert.Equal(t, []bool{false, false, true, false, true}, dup)
}
