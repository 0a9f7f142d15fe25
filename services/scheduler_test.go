package services

import (
	"testing"
	"time"
)

func TestNextOccurrence(t *testing.T) {
	due := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

	if got := nextOccurrence(due, "daily"); !got.Equal(due.AddDate(0, 0, 1)) {
		t.Errorf("daily next = %v, want %v", got, due.AddDate(0, 0, 1))
	}
	if got := nextOccurrence(due, "weekly"); !got.Equal(due.AddDate(0, 0, 7)) {
		t.Errorf("weekly next = %v, want %v", got, due.AddDate(0, 0, 7))
	}
	// Unrecognized rules fall back to daily
	if got := nextOccurrence(due, ""); !got.Equal(due.AddDate(0, 0, 1)) {
		t.Errorf("fallback next = %v, want %v", got, due.AddDate(0, 0, 1))
	}
}
