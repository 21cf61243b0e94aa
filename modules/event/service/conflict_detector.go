package service

import (
	"context"
	"time"

	"venueplanner/core/constants"
	"venueplanner/modules/event/repository"

	"github.com/google/uuid"
)

// ConflictDetector checks an organizer's schedule for overlapping events
type ConflictDetector struct {
	repo repository.EventRepositoryInterface
}

// NewConflictDetector creates a new conflict detector
func NewConflictDetector(repo repository.EventRepositoryInterface) *ConflictDetector {
	return &ConflictDetector{repo: repo}
}

// Overlaps reports whether the candidate window collides with any of the
// organizer's non-cancelled, non-completed events on the same date. Windows
// are half-open, so touching boundaries do not count as overlap.
func (d *ConflictDetector) Overlaps(ctx context.Context, organizerID uuid.UUID, start time.Time, durationMinutes int, excludeEventID *uuid.UUID) (bool, error) {
	if durationMinutes <= 0 {
		durationMinutes = constants.DefaultEventDurationMinutes
	}
	newStart := start
	newEnd := start.Add(time.Duration(durationMinutes) * time.Minute)

	existing, err := d.repo.GetActiveEventsOnDate(ctx, organizerID, start, excludeEventID)
	if err != nil {
		return false, err
	}

	for _, ev := range existing {
		if ev.ScheduledAt == nil {
			continue
		}
		dur := ev.DurationMinutes
		if dur <= 0 {
			dur = constants.DefaultEventDurationMinutes
		}
		existingStart := *ev.ScheduledAt
		existingEnd := existingStart.Add(time.Duration(dur) * time.Minute)

		if newStart.Before(existingEnd) && newEnd.After(existingStart) {
			return true, nil
		}
	}

	return false, nil
}
