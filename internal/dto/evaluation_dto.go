package dto

// EvaluationCreateRequest is the JSON contract delivered by the external AI
// analysis pipeline. Required numeric fields are pointers so that a genuine
// zero score is distinguishable from an absent field.
type EvaluationCreateRequest struct {
	SubmissionID   string   `json:"submissionId" validate:"required,uuid4"`
	Accuracy       *int     `json:"accuracy" validate:"required,min=0,max=100"`
	Stability      *int     `json:"stability" validate:"required,min=0,max=100"`
	CompletionTime string   `json:"completionTime" validate:"required"`
	ToolUsage      *int     `json:"toolUsage" validate:"required,min=0,max=100"`
	OverallScore   *int     `json:"overallScore" validate:"required,min=0,max=100"`
	Feedback       string   `json:"feedback"`
	AnalysisPoints []string `json:"analysisPoints"`
}
