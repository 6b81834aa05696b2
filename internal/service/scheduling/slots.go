package scheduling

import (
	"fmt"

	"github.com/carelink/carelink-api/internal/model"
)

// minuteOfDay converts "HH:MM" to minutes since midnight. Callers must
// validate the format first.
func minuteOfDay(timeOfDay string) int {
	var hours, minutes int
	fmt.Sscanf(timeOfDay, "%d:%d", &hours, &minutes)
	return hours*60 + minutes
}

func formatMinute(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// GenerateSlots returns the full ordered sequence of candidate slot start
// times from the operating-hours open to close, stepped by the granularity
// in minutes. An inverted or empty window yields no slots.
func GenerateSlots(openTime, closeTime string, granularityMinutes int) []string {
	if granularityMinutes <= 0 {
		return nil
	}

	start := minuteOfDay(openTime)
	end := minuteOfDay(closeTime)
	if start >= end {
		return nil
	}

	var slots []string
	for m := start; m < end; m += granularityMinutes {
		slots = append(slots, formatMinute(m))
	}
	return slots
}

// FilterBooked removes every candidate whose time exactly matches a booked
// time. Each booking occupies exactly one granularity unit; there is no
// duration/overlap reasoning.
func FilterBooked(candidates, booked []string) []string {
	taken := make(map[string]struct{}, len(booked))
	for _, t := range booked {
		taken[normalizeTime(t)] = struct{}{}
	}

	var open []string
	for _, c := range candidates {
		if _, ok := taken[normalizeTime(c)]; !ok {
			open = append(open, c)
		}
	}
	return open
}

// normalizeTime zero-pads "9:00" to "09:00" so bookings written in either
// form match the generated candidates.
func normalizeTime(t string) string {
	if !model.ValidTimeOfDay(t) {
		return t
	}
	return formatMinute(minuteOfDay(t))
}

// inWindow reports whether timeOfDay falls on or after the opening time
// and strictly before the closing time.
func inWindow(timeOfDay, openTime, closeTime string) bool {
	m := minuteOfDay(timeOfDay)
	return m >= minuteOfDay(openTime) && m < minuteOfDay(closeTime)
}
