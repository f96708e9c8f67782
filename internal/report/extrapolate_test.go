package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoverWindow_SingleIntervalFillsWindow(t *testing.T) {
	now := time.Date(2023, 1, 25, 12, 0, 0, 0, time.UTC)
	win := Window{Start: now.Add(-time.Hour), End: now}

	// A lone mid-window observation extends both backward and forward.
	obs := now.Add(-30 * time.Minute)
	covered := CoverWindow([]Interval{{Start: obs, End: obs, Status: StatusActive}}, win)

	require.Len(t, covered, 1)
	assert.Equal(t, win.Start, covered[0].Start)
	assert.Equal(t, win.End, covered[0].End)
	assert.Equal(t, StatusActive, covered[0].Status)
}

func TestCoverWindow_InteriorTransitionsPreserved(t *testing.T) {
	now := time.Date(2023, 1, 25, 12, 0, 0, 0, time.UTC)
	win := Window{Start: now.Add(-time.Hour), End: now}

	mid := now.Add(-25 * time.Minute)
	intervals := []Interval{
		{Start: now.Add(-30 * time.Minute), End: mid, Status: StatusActive},
		{Start: mid, End: now.Add(-20 * time.Minute), Status: StatusInactive},
	}

	covered := CoverWindow(intervals, win)

	require.Len(t, covered, 2)
	assert.Equal(t, win.Start, covered[0].Start)
	assert.Equal(t, mid, covered[0].End)
	assert.Equal(t, StatusActive, covered[0].Status)
	assert.Equal(t, mid, covered[1].Start)
	assert.Equal(t, win.End, covered[1].End)
	assert.Equal(t, StatusInactive, covered[1].Status)

	var total time.Duration
	for _, iv := range covered {
		total += iv.Duration()
	}
	assert.Equal(t, time.Hour, total, "coverage must be gap-free")
}

func TestCoverWindow_WindowAfterAllIntervals(t *testing.T) {
	now := time.Date(2023, 1, 25, 12, 0, 0, 0, time.UTC)
	win := Window{Start: now.Add(-time.Hour), End: now}

	// Both intervals predate the window; the most recent status carries
	// forward across the whole window.
	intervals := []Interval{
		{Start: now.Add(-5 * time.Hour), End: now.Add(-4 * time.Hour), Status: StatusActive},
		{Start: now.Add(-4 * time.Hour), End: now.Add(-3 * time.Hour), Status: StatusInactive},
	}

	covered := CoverWindow(intervals, win)

	require.Len(t, covered, 1)
	assert.Equal(t, win.Start, covered[0].Start)
	assert.Equal(t, win.End, covered[0].End)
	assert.Equal(t, StatusInactive, covered[0].Status)
}

func TestCoverWindow_WindowBeforeAllIntervals(t *testing.T) {
	now := time.Date(2023, 1, 25, 12, 0, 0, 0, time.UTC)
	win := Window{Start: now.Add(-time.Hour), End: now}

	intervals := []Interval{
		{Start: now.Add(2 * time.Hour), End: now.Add(3 * time.Hour), Status: StatusInactive},
		{Start: now.Add(3 * time.Hour), End: now.Add(4 * time.Hour), Status: StatusActive},
	}

	covered := CoverWindow(intervals, win)

	require.Len(t, covered, 1)
	assert.Equal(t, StatusInactive, covered[0].Status)
}

func TestCoverWindow_EmptyInput(t *testing.T) {
	now := time.Date(2023, 1, 25, 12, 0, 0, 0, time.UTC)
	assert.Nil(t, CoverWindow(nil, Window{Start: now.Add(-time.Hour), End: now}))
}
