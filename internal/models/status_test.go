package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatusTransition(t *testing.T) {
	cases := []struct {
		name     string
		from     Status
		event    StatusEvent
		expected Status
	}{
		{"pending to ai-evaluated", StatusPending, EventAIEvaluated, StatusAIEvaluated},
		{"ai-evaluated approval", StatusAIEvaluated, EventFeedbackApproved, StatusApproved},
		{"ai-evaluated revision", StatusAIEvaluated, EventFeedbackRevision, StatusTrainerReviewed},
		{"approval straight from pending", StatusPending, EventFeedbackApproved, StatusApproved},
		{"approved drops back on revision", StatusApproved, EventFeedbackRevision, StatusTrainerReviewed},
		{"reviewed promotes on approval", StatusTrainerReviewed, EventFeedbackApproved, StatusApproved},
		{"unknown event keeps status", StatusTrainerReviewed, StatusEvent("noop"), StatusTrainerReviewed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, tc.from.Transition(tc.event))
		})
	}
}

func TestFeedbackEvent(t *testing.T) {
	require.Equal(t, EventFeedbackApproved, FeedbackEvent(true))
	require.Equal(t, EventFeedbackRevision, FeedbackEvent(false))
}

func TestValidRole(t *testing.T) {
	require.True(t, ValidRole(RoleTrainee))
	require.True(t, ValidRole(RoleTrainer))
	require.False(t, ValidRole("admin"))
	require.False(t, ValidRole(""))
}
