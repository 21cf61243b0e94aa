package service

import (
	"testing"

	"venueplanner/modules/event/entity"

	"github.com/stretchr/testify/assert"
)

func TestCheckTransition(t *testing.T) {
	tests := []struct {
		name string
		from entity.EventStatus
		to   entity.EventStatus
		want TransitionCheck
	}{
		{"draft to planning", entity.StatusDraft, entity.StatusPlanning, TransitionOK},
		{"draft direct confirm", entity.StatusDraft, entity.StatusConfirmed, TransitionOK},
		{"planning to inviting", entity.StatusPlanning, entity.StatusInviting, TransitionOK},
		{"planning direct confirm", entity.StatusPlanning, entity.StatusConfirmed, TransitionOK},
		{"inviting to gathering", entity.StatusInviting, entity.StatusGatheringPreferences, TransitionOK},
		{"gathering to recommending", entity.StatusGatheringPreferences, entity.StatusAIRecommending, TransitionOK},
		{"recommending to voting", entity.StatusAIRecommending, entity.StatusVoting, TransitionOK},
		{"voting to confirmed", entity.StatusVoting, entity.StatusConfirmed, TransitionOK},
		{"confirmed to completed", entity.StatusConfirmed, entity.StatusCompleted, TransitionOK},

		{"no phase skipping", entity.StatusPlanning, entity.StatusVoting, TransitionInvalidEdge},
		{"no going backwards", entity.StatusVoting, entity.StatusInviting, TransitionInvalidEdge},
		{"inviting cannot confirm directly", entity.StatusInviting, entity.StatusConfirmed, TransitionInvalidEdge},
		{"draft cannot complete", entity.StatusDraft, entity.StatusCompleted, TransitionInvalidEdge},

		{"cancel from draft", entity.StatusDraft, entity.StatusCancelled, TransitionOK},
		{"cancel from voting", entity.StatusVoting, entity.StatusCancelled, TransitionOK},
		{"cancel from confirmed", entity.StatusConfirmed, entity.StatusCancelled, TransitionOK},

		{"completed is terminal", entity.StatusCompleted, entity.StatusCancelled, TransitionTerminalState},
		{"cancelled is terminal", entity.StatusCancelled, entity.StatusPlanning, TransitionTerminalState},
		{"cancelled cannot re-cancel", entity.StatusCancelled, entity.StatusCancelled, TransitionTerminalState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckTransition(tt.from, tt.to))
		})
	}
}
