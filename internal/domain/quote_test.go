package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteBinding(t *testing.T) {
	var zero QuoteBinding
	assert.True(t, zero.IsPool())
	assert.Equal(t, PoolBinding(), zero)

	b := AttachedTo("seg-1")
	assert.False(t, b.IsPool())
	id, ok := b.SegmentID()
	assert.True(t, ok)
	assert.Equal(t, "seg-1", id)
	assert.Equal(t, "attached(seg-1)", b.String())

	_, ok = PoolBinding().SegmentID()
	assert.False(t, ok)
}

func TestQuoteValidate(t *testing.T) {
	valid := Quote{Category: CategoryTransport, Price: 18000, DurationMin: 300, ComfortScore: 6}
	require.NoError(t, valid.Validate())

	cases := []struct {
		name    string
		mutate  func(q *Quote)
		wantErr string
	}{
		{"misc category", func(q *Quote) { q.Category = CategoryMisc }, "category"},
		{"negative price", func(q *Quote) { q.Price = -1 }, "price"},
		{"negative duration", func(q *Quote) { q.DurationMin = -5 }, "duration"},
		{"comfort above ten", func(q *Quote) { q.ComfortScore = 10.5 }, "comfort"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := valid
			tc.mutate(&q)
			err := q.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestSegmentApplyQuote(t *testing.T) {
	seg := Segment{ID: "seg-1", Category: CategoryStay, Locked: false}
	seg.ApplyQuote(Quote{
		Source:       "Taj",
		Price:        12000,
		Currency:     "INR",
		DurationMin:  5760,
		ComfortScore: 9,
		Attributes:   map[string]any{"breakfast": true},
	})

	assert.Equal(t, "Taj", seg.Title, "title falls back to source")
	assert.Equal(t, "Taj", seg.Provider)
	assert.Equal(t, 12000.0, seg.Price)
	assert.Equal(t, 5760, seg.DurationMin)
	assert.Equal(t, map[string]any{"breakfast": true}, seg.Attributes)
	assert.Equal(t, "seg-1", seg.ID)
}

func TestSegmentSameContent(t *testing.T) {
	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	a := Segment{ID: "a", Category: CategoryTransport, Title: "Flight", StartTS: start, EndTS: start.Add(time.Hour), Price: 100}
	b := a
	b.ID = "b"
	b.Status = SegmentReplanned
	b.UpdatedAt = testNow
	assert.True(t, a.SameContent(b))

	b.Price = 101
	assert.False(t, a.SameContent(b))

	c := a
	c.Attributes = map[string]any{}
	assert.True(t, a.SameContent(c), "nil and empty attributes are equal")
}

func TestSegmentValidate(t *testing.T) {
	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	seg := Segment{Category: CategoryActivity, StartTS: start, EndTS: start.Add(time.Hour), ComfortScore: 5}
	require.NoError(t, seg.Validate())

	seg.EndTS = start.Add(-time.Minute)
	require.Error(t, seg.Validate())
}
