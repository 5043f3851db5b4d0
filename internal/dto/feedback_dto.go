package dto

// FeedbackCreateRequest carries a trainer's assessment of a submission. The
// approved flag is a pointer so the validator can reject its absence while
// still allowing an explicit false.
type FeedbackCreateRequest struct {
	SubmissionID      string   `json:"submissionId" validate:"required,uuid4"`
	OverallAssessment string   `json:"overallAssessment" validate:"required"`
	TrainerScore      *int     `json:"trainerScore" validate:"omitempty,min=0,max=100"`
	NextSteps         []string `json:"nextSteps"`
	AttachmentPaths   []string `json:"attachmentPaths"`
	AttachmentNames   []string `json:"attachmentNames"`
	Approved          *bool    `json:"approved" validate:"required"`
}
