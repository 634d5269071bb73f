// Package services provides the budget ledger's business logic.
//
// This file implements the Strategy Pattern for period boundary
// computation. Each period type has its own strategy that encapsulates how
// the recurring [start, end) interval is derived from today and the anchor.
package services

import (
	"time"

	"bilancio/internal/core"
)

// BoundsStrategy computes the period interval containing today for one
// period type. Implementations are pure: no clock access, no I/O.
type BoundsStrategy interface {
	// Bounds returns the [start, end) interval that contains today.
	Bounds(today, anchor core.Date) (start, end core.Date)
}

// FixedDateBounds recurs on the anchor's day-of-month. If today has reached
// this month's anchor day the period runs to next month's anchor day,
// otherwise it started last month.
type FixedDateBounds struct{}

func (FixedDateBounds) Bounds(today, anchor core.Date) (core.Date, core.Date) {
	day := anchor.Day()
	start := anchoredDate(today.Year(), today.Month(), day)
	if today.Before(start) {
		start = anchoredDate(today.Year(), today.Month()-1, day)
	}
	end := anchoredDate(start.Year(), start.Month()+1, day)
	return start, end
}

// IncomeAnchoredBounds recurs monthly from the anchor date itself. The
// boundary sequence is the anchor shifted by whole months; the day-of-month
// is always re-derived from the anchor so intervals never drift.
type IncomeAnchoredBounds struct{}

func (IncomeAnchoredBounds) Bounds(today, anchor core.Date) (core.Date, core.Date) {
	if today.Before(anchor) {
		start := shiftAnchor(anchor, -1)
		return start, anchor
	}
	// Walk forward until the window contains today. Generalized beyond one
	// month so the calculator stays correct long after the anchor.
	k := 0
	for {
		start := shiftAnchor(anchor, k)
		end := shiftAnchor(anchor, k+1)
		if today.OnOrAfter(start) && today.Before(end) {
			return start, end
		}
		k++
	}
}

// ComputeBounds returns the active [start, end) interval for today. Pure and
// deterministic; the caller supplies the clock.
func ComputeBounds(today core.Date, periodType core.PeriodType, anchor core.Date) (core.Date, core.Date, error) {
	if anchor.IsZero() || today.IsZero() {
		return core.Date{}, core.Date{}, core.ErrInvalidDate
	}
	strategy, ok := boundsStrategies[periodType]
	if !ok {
		return core.Date{}, core.Date{}, core.ErrUnknownPeriodType
	}
	start, end := strategy.Bounds(today, anchor)
	return start, end, nil
}

// NextBoundary returns the first recurrence boundary strictly after the
// given date. Used to extend the period chain contiguously: a successor
// period runs from its predecessor's end to the next boundary.
func NextBoundary(after core.Date, periodType core.PeriodType, anchor core.Date) (core.Date, error) {
	if anchor.IsZero() || after.IsZero() {
		return core.Date{}, core.ErrInvalidDate
	}
	if !periodType.IsValid() {
		return core.Date{}, core.ErrUnknownPeriodType
	}
	// Both period types share the same boundary sequence: the anchor's
	// day-of-month, clamped per target month.
	k := (after.Year()-anchor.Year())*12 + (after.Month() - anchor.Month()) - 1
	for {
		boundary := shiftAnchor(anchor, k)
		if after.Before(boundary) {
			return boundary, nil
		}
		k++
	}
}

// boundsStrategies maps period types to their boundary strategies.
var boundsStrategies = map[core.PeriodType]BoundsStrategy{
	core.FixedDate:      FixedDateBounds{},
	core.IncomeAnchored: IncomeAnchoredBounds{},
}

// anchoredDate builds a date from a possibly out-of-range month (normalized
// the way time.Date does) and a day-of-month that is clamped to the target
// month's length. Clamping is the documented overflow rule: a day-31 anchor
// lands on Feb 28/29, never rolls into March.
func anchoredDate(year, month, day int) core.Date {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	lastDay := first.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return core.NewDate(first.Year(), int(first.Month()), day)
}

// shiftAnchor moves the anchor by whole months, re-deriving the clamped day.
func shiftAnchor(anchor core.Date, months int) core.Date {
	return anchoredDate(anchor.Year(), anchor.Month()+months, anchor.Day())
}
