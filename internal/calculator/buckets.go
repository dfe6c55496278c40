package calculator

import (
	"fmt"
	"sort"
	"time"

	"github.com/botdesk/botusage/internal/types"
)

// Window selects the charted time range.
type Window string

const (
	Window1D  Window = "1d"
	Window7D  Window = "7d"
	Window30D Window = "30d"
	WindowAll Window = "all"
)

// allWindowPaddingDays pads the observed range on both sides when the
// window is derived from the data itself.
const allWindowPaddingDays = 3

// ParseWindow validates a window flag value.
func ParseWindow(s string) (Window, error) {
	switch Window(s) {
	case Window1D, Window7D, Window30D, WindowAll:
		return Window(s), nil
	}
	return "", fmt.Errorf("invalid window %q (expected 1d, 7d, 30d or all)", s)
}

// Duration returns the fixed span of the window; zero for WindowAll.
func (w Window) Duration() time.Duration {
	switch w {
	case Window1D:
		return 24 * time.Hour
	case Window7D:
		return 7 * 24 * time.Hour
	case Window30D:
		return 30 * 24 * time.Hour
	}
	return 0
}

// Series is a dense, gap-filled daily sequence ready for charting.
// Effective records the window actually plotted: sparse data falls
// back to the full observed range, and callers must label the chart
// from Effective, not Window, so the label never lies about the data.
type Series struct {
	Buckets   []types.DailyBucket `json:"buckets"`
	Window    Window              `json:"window"`
	Effective Window              `json:"effective_window"`
	Fallback  bool                `json:"fallback"`
}

// PeriodAnalysis classifies the real span of a record set.
type PeriodAnalysis struct {
	Type  string    `json:"type"` // empty, single, same-day, multi-day
	Start time.Time `json:"start,omitempty"`
	End   time.Time `json:"end,omitempty"`
	Days  int       `json:"days,omitempty"`
	Count int       `json:"count"`
}

// BucketDaily groups records into contiguous calendar-day buckets for
// the requested window. Every day from the window start through its
// end appears exactly once; days with no activity are zero-filled.
//
// Fixed windows span now-N through now. WindowAll spans the observed
// min/max timestamps padded by three days on each side. If a fixed
// window filters out every record, or two or fewer records exist, the
// series falls back to the full observed range rather than an empty
// chart.
func (c *Calculator) BucketDaily(records []types.UsageRecord, window Window, now time.Time) Series {
	filtered, effective, fallback := filterWindow(records, window, now)

	series := Series{Window: window, Effective: effective, Fallback: fallback}
	if len(filtered) == 0 {
		return series
	}

	byDay := make(map[int]*types.DailyBucket)
	for _, rec := range filtered {
		day := types.DayOf(rec.Timestamp)
		bucket, ok := byDay[day]
		if !ok {
			bucket = &types.DailyBucket{Day: day}
			byDay[day] = bucket
		}
		bucket.InputTokens += rec.InputTokens
		bucket.OutputTokens += rec.OutputTokens
		bucket.Requests++
	}

	var startDay, endDay int
	if effective == WindowAll {
		startDay, endDay = observedDayRange(filtered)
		startDay -= allWindowPaddingDays
		endDay += allWindowPaddingDays
	} else {
		startDay = types.DayOf(now.Add(-effective.Duration()))
		endDay = types.DayOf(now)
	}

	series.Buckets = make([]types.DailyBucket, 0, endDay-startDay+1)
	for day := startDay; day <= endDay; day++ {
		if bucket, ok := byDay[day]; ok {
			series.Buckets = append(series.Buckets, *bucket)
		} else {
			series.Buckets = append(series.Buckets, types.DailyBucket{Day: day})
		}
	}

	return series
}

// AnalyzePeriod describes the span actually covered by a record set,
// for labeling charts and detail views.
func AnalyzePeriod(records []types.UsageRecord) PeriodAnalysis {
	if len(records) == 0 {
		return PeriodAnalysis{Type: "empty"}
	}

	oldest, newest := records[0].Timestamp, records[0].Timestamp
	for _, rec := range records[1:] {
		if rec.Timestamp.Before(oldest) {
			oldest = rec.Timestamp
		}
		if rec.Timestamp.After(newest) {
			newest = rec.Timestamp
		}
	}

	analysis := PeriodAnalysis{Start: oldest, End: newest, Count: len(records)}
	switch {
	case len(records) == 1:
		analysis.Type = "single"
		analysis.Days = 1
	case types.DayOf(oldest) == types.DayOf(newest):
		analysis.Type = "same-day"
		analysis.Days = 1
	default:
		analysis.Type = "multi-day"
		analysis.Days = types.DayOf(newest) - types.DayOf(oldest) + 1
	}
	return analysis
}

// filterWindow applies the period filter with the adaptive fallback:
// sparse data (two records or fewer) and filters that match nothing
// return the full set, chronologically sorted, as WindowAll.
func filterWindow(records []types.UsageRecord, window Window, now time.Time) ([]types.UsageRecord, Window, bool) {
	sorted := make([]types.UsageRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	if window == WindowAll || len(sorted) <= 2 {
		return sorted, WindowAll, window != WindowAll && len(sorted) > 0
	}

	cutoff := now.Add(-window.Duration())
	var filtered []types.UsageRecord
	for _, rec := range sorted {
		if !rec.Timestamp.Before(cutoff) {
			filtered = append(filtered, rec)
		}
	}

	if len(filtered) == 0 {
		return sorted, WindowAll, true
	}
	return filtered, window, false
}

func observedDayRange(records []types.UsageRecord) (minDay, maxDay int) {
	minDay = types.DayOf(records[0].Timestamp)
	maxDay = minDay
	for _, rec := range records[1:] {
		day := types.DayOf(rec.Timestamp)
		if day < minDay {
			minDay = day
		}
		if day > maxDay {
			maxDay = day
		}
	}
	return minDay, maxDay
}
