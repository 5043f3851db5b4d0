package dto

import "github.com/skillcam-io/skillcam-api/internal/models"

// SubmissionCreateRequest carries the metadata for a new submission. The video
// itself is uploaded to the storage gateway separately, before this call.
type SubmissionCreateRequest struct {
	TaskName      string  `json:"taskName" validate:"required"`
	ToolType      string  `json:"toolType" validate:"required"`
	Difficulty    string  `json:"difficulty" validate:"required"`
	Notes         string  `json:"notes"`
	VideoURL      string  `json:"videoUrl"`
	VideoPath     string  `json:"videoPath"`
	VideoSize     *int64  `json:"videoSize"`
	VideoMimeType *string `json:"videoMimeType"`
	VideoDuration *int    `json:"videoDuration"`
}

// StatusUpdateRequest is the trainer-only administrative status override.
type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required"`
}

// SubmissionSummary is a list entry annotated with the AI overall score when an
// evaluation exists. The score is a derived projection, never stored.
type SubmissionSummary struct {
	models.Submission
	AIScore *int `json:"aiScore"`
}

// SubmissionDetails bundles a submission with its evaluation and latest
// trainer feedback for the detail view.
type SubmissionDetails struct {
	Submission      models.Submission       `json:"submission"`
	AIEvaluation    *models.AIEvaluation    `json:"aiEvaluation"`
	TrainerFeedback *models.TrainerFeedback `json:"trainerFeedback"`
}
