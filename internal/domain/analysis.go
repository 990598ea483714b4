package domain

import "fmt"

// RootCause is one of the fixed root-cause themes an analysis may assign.
type RootCause string

const (
	RootCauseInsufficientTraining  RootCause = "Insufficient Training"
	RootCauseSystemLimitations     RootCause = "System/Tool Limitations"
	RootCauseProcessAmbiguity      RootCause = "Process Ambiguity"
	RootCauseTimePressure          RootCause = "Time Pressure"
	RootCauseKnowledgeGap          RootCause = "Knowledge Gap"
	RootCauseCommunicationDeficit  RootCause = "Communication Skills Deficit"
	RootCauseAttentionIssues       RootCause = "Attention/Focus Issues"
	RootCausePolicyUnderstanding   RootCause = "Policy Understanding Gap"
	RootCauseResourceUnavailable   RootCause = "Resource Unavailability"
	RootCauseMotivationIssues      RootCause = "Motivation/Engagement Issues"
	RootCauseCoachingGap           RootCause = "Coaching/Feedback Gap"
)

// RootCauses lists the closed vocabulary in the order it appears in prompts.
var RootCauses = []RootCause{
	RootCauseInsufficientTraining,
	RootCauseSystemLimitations,
	RootCauseProcessAmbiguity,
	RootCauseTimePressure,
	RootCauseKnowledgeGap,
	RootCauseCommunicationDeficit,
	RootCauseAttentionIssues,
	RootCausePolicyUnderstanding,
	RootCauseResourceUnavailable,
	RootCauseMotivationIssues,
	RootCauseCoachingGap,
}

// ParseRootCause matches s against the closed vocabulary. Only exact
// matches are accepted; anything else is a ParseError so an invented
// theme can never slip through as a success.
func ParseRootCause(s string) (RootCause, error) {
	for _, rc := range RootCauses {
		if string(rc) == s {
			return rc, nil
		}
	}
	return "", &ParseError{Reason: fmt.Sprintf("unknown root cause %q", s)}
}

// Completion is the structured payload extracted from one AI response.
type Completion struct {
	RootCause    RootCause
	Reasoning    string
	EmpathyScore int
}

// Analysis is a completed per-row outcome.
type Analysis struct {
	RowID string
	Completion
}

// FailureKind categorizes why a row could not be analyzed.
type FailureKind string

const (
	FailValidation   FailureKind = "validation"
	FailTransient    FailureKind = "transient"
	FailNonRetryable FailureKind = "non_retryable"
	FailParse        FailureKind = "parse"
	FailCancelled    FailureKind = "cancelled"
)

// Failure records a row that yielded no analysis.
type Failure struct {
	RowID   string
	Kind    FailureKind
	Message string
}
