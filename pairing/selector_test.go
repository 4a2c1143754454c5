// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package pairing

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/trend-off/models"
	"github.com/danielhkuo/trend-off/testutil"
)

func ids(subs []models.Submission) []string {
	out := make([]string, len(subs))
	for i, s := range subs {
		out[i] = s.ID
	}
	return out
}

func TestSelectNext_OldestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	t1 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	// Insert out of order to make sure ordering comes from updated_at
	id3 := testutil.InsertSubmission(t, db, nil, t1.Add(2*time.Hour))
	id1 := testutil.InsertSubmission(t, db, nil, t1)
	id2 := testutil.InsertSubmission(t, db, nil, t1.Add(time.Hour))

	sel := NewSelector(db, 0)

	got, err := sel.SelectNext(context.Background(), nil, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{id1, id2}, ids(got))

	// Excluding the two oldest leaves only the newest: exhaustion, not error
	got, err = sel.SelectNext(context.Background(), []string{id1, id2}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{id3}, ids(got))

	got, err = sel.SelectNext(context.Background(), []string{id1, id2, id3}, 2)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSelectNext_TieBreakByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ts := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	for _, id := range []string{"c", "a", "d", "b"} {
		testutil.InsertSubmissionWithID(t, db, id, nil, ts)
	}

	sel := NewSelector(db, 0)
	for i := 0; i < 3; i++ {
		got, err := sel.SelectNext(context.Background(), []string{"a"}, 3)
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "c", "d"}, ids(got))
	}
}

func TestSelectNext_ExclusionAndOrderingProperty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	var all []string
	for i := 0; i < 12; i++ {
		// Every third one shares a timestamp with its neighbour
		all = append(all, testutil.InsertSubmission(t, db, nil, base.Add(time.Duration(i/3*3+i%2)*time.Minute)))
	}

	sel := NewSelector(db, 0)
	for n := 1; n <= 5; n++ {
		for k := 0; k <= len(all); k += 3 {
			exclude := all[:k]
			got, err := sel.SelectNext(context.Background(), exclude, n)
			require.NoError(t, err)

			remaining := len(all) - k
			assert.Len(t, got, min(n, remaining))

			for i, sub := range got {
				assert.False(t, slices.Contains(exclude, sub.ID), "excluded id %s returned", sub.ID)
				if i > 0 {
					prev := got[i-1]
					assert.False(t, sub.UpdatedAt.Before(prev.UpdatedAt), "results not ascending by updatedAt")
					if sub.UpdatedAt.Equal(prev.UpdatedAt) {
						assert.Less(t, prev.ID, sub.ID)
					}
				}
			}
		}
	}
}

func TestSelectNext_UnknownExcludeIDsIgnored(t *testing.T) {
	db := testutil.SetupTestDB(t)
	now := time.Now()
	a := testutil.InsertSubmission(t, db, nil, now)
	b := testutil.InsertSubmission(t, db, nil, now.Add(time.Second))

	got, err := NewSelector(db, 0).SelectNext(context.Background(), []string{"nope", "also-nope"}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, ids(got))
}

func TestSelectNext_InvalidBatchSize(t *testing.T) {
	db := testutil.SetupTestDB(t)
	sel := NewSelector(db, 0)

	for _, n := range []int{0, -1, MaxBatchSize + 1} {
		_, err := sel.SelectNext(context.Background(), nil, n)
		assert.ErrorIs(t, err, models.ErrInvalidRequest, "batch size %d", n)
	}
}

func TestSelectNext_DoesNotMutate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ts := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	id := testutil.InsertSubmission(t, db, testutil.IntPtr(1000), ts)

	_, err := NewSelector(db, 0).SelectNext(context.Background(), nil, 2)
	require.NoError(t, err)

	var updated time.Time
	require.NoError(t, db.QueryRow(`SELECT updated_at FROM submission WHERE id = $1`, id).Scan(&updated))
	assert.True(t, updated.Equal(ts))
	assert.Equal(t, 1000, testutil.Rating(t, db, id))
}

func TestDayWindow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	sel := NewSelector(db, -8)

	// 03:00 UTC on June 2 is still June 1 at UTC-8
	start, end := sel.DayWindow(time.Date(2025, 6, 2, 3, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC), end)
	assert.Equal(t, "2025-06-01", sel.DayKey(time.Date(2025, 6, 2, 3, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-06-02", sel.DayKey(time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)))
}

func TestSelectRandomPair(t *testing.T) {
	db := testutil.SetupTestDB(t)
	day := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	yesterday := testutil.InsertSubmission(t, db, nil, day.Add(-24*time.Hour))
	today := []string{
		testutil.InsertSubmission(t, db, nil, day.Add(-11*time.Hour)),
		testutil.InsertSubmission(t, db, nil, day),
		testutil.InsertSubmission(t, db, nil, day.Add(11*time.Hour)),
	}
	tomorrow := testutil.InsertSubmission(t, db, nil, day.Add(13*time.Hour))

	sel := NewSelector(db, 0)
	for i := 0; i < 10; i++ {
		got, err := sel.SelectRandomPair(context.Background(), day)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.NotEqual(t, got[0].ID, got[1].ID)
		for _, sub := range got {
			assert.Contains(t, today, sub.ID)
			assert.NotEqual(t, yesterday, sub.ID)
			assert.NotEqual(t, tomorrow, sub.ID)
		}
	}
}

func TestSelectRandomPair_FewerThanTwo(t *testing.T) {
	db := testutil.SetupTestDB(t)
	day := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	only := testutil.InsertSubmission(t, db, nil, day)

	got, err := NewSelector(db, 0).SelectRandomPair(context.Background(), day)
	require.NoError(t, err)
	assert.Equal(t, []string{only}, ids(got))

	got, err = NewSelector(db, 0).SelectRandomPair(context.Background(), day.AddDate(0, 0, 5))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseExcludeIDs(t *testing.T) {
	tests := []struct {
		raw      string
		expected []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a,b", []string{"a", "b"}},
		{" a , ,b,a,", []string{"a", "b"}},
		{",,,", nil},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseExcludeIDs(tt.raw))
		})
	}
}
