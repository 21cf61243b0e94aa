package service

import (
	"venueplanner/modules/event/entity"
)

// TransitionCheck classifies the outcome of validating a status edge
type TransitionCheck int

const (
	TransitionOK TransitionCheck = iota
	TransitionInvalidEdge
	TransitionTerminalState
)

// edges is the closed transition table. Cancellation from any non-terminal
// state is handled separately so the table only lists forward edges.
var edges = map[entity.EventStatus][]entity.EventStatus{
	entity.StatusDraft:                {entity.StatusPlanning, entity.StatusConfirmed},
	entity.StatusPlanning:             {entity.StatusInviting, entity.StatusConfirmed},
	entity.StatusInviting:             {entity.StatusGatheringPreferences},
	entity.StatusGatheringPreferences: {entity.StatusAIRecommending},
	entity.StatusAIRecommending:       {entity.StatusVoting},
	entity.StatusVoting:               {entity.StatusConfirmed},
	entity.StatusConfirmed:            {entity.StatusCompleted},
}

// CheckTransition validates a status edge against the transition table.
// Guards (quorum, deadlines, ownership) are evaluated by the service on top of
// this structural check.
func CheckTransition(from, to entity.EventStatus) TransitionCheck {
	if from.IsTerminal() {
		return TransitionTerminalState
	}
	if to == entity.StatusCancelled {
		return TransitionOK
	}
	for _, next := range edges[from] {
		if next == to {
			return TransitionOK
		}
	}
	return TransitionInvalidEdge
}
