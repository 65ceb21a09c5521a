// Package scheduler holds the time arithmetic for shifts and ranks carers
// for open places without double-booking them.
package scheduler

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/arnavshah/carehome-shifts-api/pkg/models"
)

const clockLayout = "2006-01-02 15:04"

// Window is the span of one shift
type Window struct {
	ShiftID string
	Start   time.Time
	End     time.Time
}

// ShiftWindow resolves a shift's date and shift-type times into a Window.
// An end time at or before the start time belongs to the following day.
func ShiftWindow(shift *models.Shift) (Window, error) {
	start, err := time.ParseInLocation(clockLayout, shift.Date+" "+shift.ShiftType.StartTime, time.Local)
	if err != nil {
		return Window{}, fmt.Errorf("parse shift start: %w", err)
	}
	end, err := time.ParseInLocation(clockLayout, shift.Date+" "+shift.ShiftType.EndTime, time.Local)
	if err != nil {
		return Window{}, fmt.Errorf("parse shift end: %w", err)
	}
	if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}
	return Window{ShiftID: shift.ID, Start: start, End: end}, nil
}

// DurationHours calculates the length of a window in hours
func DurationHours(w Window) float64 {
	return w.End.Sub(w.Start).Hours()
}

// Overlap checks if two windows overlap
func Overlap(a, b Window) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// Candidate is a carer together with the shifts they are already booked on
type Candidate struct {
	ID     string
	Booked []Window
}

// AssignedHours totals the candidate's booked hours
func (c Candidate) AssignedHours() float64 {
	var hours float64
	for _, w := range c.Booked {
		hours += DurationHours(w)
	}
	return hours
}

// WouldOverlap checks if any booked shift overlaps the target
func (c Candidate) WouldOverlap(target Window) bool {
	for _, w := range c.Booked {
		if w.ShiftID == target.ShiftID {
			continue
		}
		if Overlap(w, target) {
			return true
		}
	}
	return false
}

// Suggestion is one carer proposed for a shift
type Suggestion struct {
	CarerID       string  `json:"carerId"`
	AssignedHours float64 `json:"assignedHours"`
}

// Result lists suggested carers, least-booked first
type Result struct {
	ShiftID       string       `json:"shiftId"`
	OpenPlaces    int          `json:"openPlaces"`
	Suggestions   []Suggestion `json:"suggestions"`
	Reasons       []string     `json:"reasons,omitempty"`
	FairnessScore float64      `json:"fairnessScore"`
}

// Suggest picks up to openPlaces candidates who are free for the target,
// preferring those with the fewest booked hours. When nobody fits, Reasons
// explains why.
func Suggest(target Window, candidates []Candidate, openPlaces int) Result {
	result := Result{ShiftID: target.ShiftID, OpenPlaces: openPlaces, Suggestions: []Suggestion{}}

	hours := make([]float64, 0, len(candidates))
	overlapCount := 0
	var free []Suggestion
	for _, c := range candidates {
		h := c.AssignedHours()
		hours = append(hours, h)
		if c.WouldOverlap(target) {
			overlapCount++
			continue
		}
		free = append(free, Suggestion{CarerID: c.ID, AssignedHours: h})
	}
	result.FairnessScore = FairnessScore(hours)

	if openPlaces <= 0 {
		result.Reasons = append(result.Reasons, "shift has no open places")
		return result
	}

	sort.SliceStable(free, func(i, j int) bool {
		if free[i].AssignedHours != free[j].AssignedHours {
			return free[i].AssignedHours < free[j].AssignedHours
		}
		return free[i].CarerID < free[j].CarerID
	})
	if len(free) > openPlaces {
		free = free[:openPlaces]
	}
	result.Suggestions = append(result.Suggestions, free...)

	if len(free) == 0 {
		if overlapCount > 0 {
			result.Reasons = append(result.Reasons, fmt.Sprintf("%d carers had overlapping shifts", overlapCount))
		}
		if len(result.Reasons) == 0 {
			result.Reasons = append(result.Reasons, "no linked carers available")
		}
	}
	return result
}

// FairnessScore returns a percentage (0-100) representing how evenly
// hours are distributed. 100% is perfectly fair (Standard Deviation = 0).
func FairnessScore(hours []float64) float64 {
	if len(hours) == 0 {
		return 100.0
	}

	var sum float64
	for _, h := range hours {
		sum += h
	}

	if sum == 0 {
		return 100.0 // Everyone having 0 hours is perfectly fair
	}

	mean := sum / float64(len(hours))

	var varianceSum float64
	for _, h := range hours {
		diff := h - mean
		varianceSum += diff * diff
	}
	stdDev := math.Sqrt(varianceSum / float64(len(hours)))

	// 100% means SD is 0. 0% means SD is >= mean.
	score := (1.0 - (stdDev / mean)) * 100.0
	if score < 0 {
		return 0.0
	}
	return score
}
