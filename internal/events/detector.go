// Package events scans ordered daily series for threshold-crossing runs and
// emits them as discrete extreme-weather events.
//
// Every detector shares one algorithm: a single left-to-right scan with at
// most one open run. A day satisfying the predicate opens a run or extends the
// open one; a day that does not (or a missing calendar day) closes it. A closed
// run is emitted only if it passes the hazard's closing test, otherwise it is
// discarded. A run still open when the series ends is flushed through the same
// closing test and marked Ongoing, unless Options.DropOpenAtEnd is set.
package events

import (
	"math"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// Options controls behavior shared by every detector.
type Options struct {
	// DropOpenAtEnd discards a run still open at the end of the series
	// instead of flushing it.
	DropOpenAtEnd bool
}

// run is the single open accumulator of a scan.
type run struct {
	start   string
	end     string
	days    int
	sum     float64
	max     float64
	min     float64
	maxDate string
	minDate string
	deficit float64
}

func (r *run) add(p domain.Point) {
	if r.days == 0 {
		r.start = p.Date
		r.max, r.maxDate = p.Value, p.Date
		r.min, r.minDate = p.Value, p.Date
	}
	r.end = p.Date
	r.days++
	r.sum += p.Value
	if p.Value > r.max {
		r.max, r.maxDate = p.Value, p.Date
	}
	if p.Value < r.min {
		r.min, r.minDate = p.Value, p.Date
	}
}

func (r *run) mean() float64 {
	if r.days == 0 {
		return 0
	}
	return r.sum / float64(r.days)
}

// detector describes one hazard family to the shared scan.
type detector struct {
	eventType domain.EventType
	holds     func(v float64) bool
	fold      func(r *run, p domain.Point)
	closes    func(r *run) bool
	finish    func(r *run, e *domain.DetectedEvent)
}

func (d detector) scan(points []domain.Point, opts Options) []domain.DetectedEvent {
	var (
		out  []domain.DetectedEvent
		open *run
	)

	closeRun := func(ongoing bool) {
		if open != nil && d.closes(open) {
			out = append(out, d.emit(open, ongoing))
		}
		open = nil
	}

	for _, p := range points {
		if open != nil && p.Date != domain.NextDay(open.end) {
			closeRun(false)
		}
		if !d.holds(p.Value) {
			closeRun(false)
			continue
		}
		if open == nil {
			open = &run{}
		}
		open.add(p)
		if d.fold != nil {
			d.fold(open, p)
		}
	}

	if open != nil && !opts.DropOpenAtEnd {
		closeRun(true)
	}
	return out
}

func (d detector) emit(r *run, ongoing bool) domain.DetectedEvent {
	e := domain.DetectedEvent{
		ID:        domain.EventID(d.eventType, r.start, r.end),
		Type:      d.eventType,
		StartDate: r.start,
		EndDate:   r.end,
		Duration:  r.days,
		Ongoing:   ongoing,
		MaxValue:  r.max,
		MinValue:  r.min,
		MeanValue: r.mean(),
		PeakDate:  r.maxDate,
	}
	d.finish(r, &e)
	e.Intensity = clamp01(e.Intensity)
	e.Severity = domain.SeverityFromIntensity(e.Intensity)
	return e
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

// ratio returns v/limit capped at 1, or 0 for a non-positive limit.
func ratio(v, limit float64) float64 {
	if limit <= 0 {
		return 0
	}
	return math.Min(v/limit, 1)
}
