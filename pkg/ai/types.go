package ai

import "context"

// SubmissionInput contains the artefacts needed to evaluate a task video.
type SubmissionInput struct {
	TaskName   string
	ToolType   string
	Difficulty string
	Notes      string
	// VideoURL is a signed read URL for the submission recording.
	VideoURL string
}

// EvaluationResult is the structured assessment returned by the AI evaluator.
// Scores are on a 0-100 scale, matching the evaluation intake contract.
type EvaluationResult struct {
	Accuracy       int      `json:"accuracy"`
	Stability      int      `json:"stability"`
	ToolUsage      int      `json:"toolUsage"`
	OverallScore   int      `json:"overallScore"`
	CompletionTime string   `json:"completionTime"`
	Feedback       string   `json:"feedback"`
	AnalysisPoints []string `json:"analysisPoints"`
}

// Evaluator describes an AI model capable of assessing a training submission.
type Evaluator interface {
	Evaluate(ctx context.Context, input SubmissionInput) (EvaluationResult, error)
}
