package service

import "math"

// Quorum computes the minimum accepted-participant count required to advance
// an event past the inviting phase: ceil(expected * threshold).
func Quorum(expectedAttendees int, acceptanceThreshold float64) int {
	if expectedAttendees <= 0 {
		return 0
	}
	return int(math.Ceil(float64(expectedAttendees) * acceptanceThreshold))
}
