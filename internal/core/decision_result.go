package core

// DecisionResult represents the outcome of a lifecycle decision in a Decide function.
//
// IMPORTANT: DecisionResult should only be constructed using the provided
// factory methods: SuccessDecision(record) or FailureDecision(reason).
// A failure is a business no-op with a user-visible reason, never a hard error.
type DecisionResult struct {
	Outcome string         // "success" or "failure"
	Record  ActivityRecord // the ledger entry to append; zero value for failures
	Reason  string         // user-visible flash text; empty for successes
}

const (
	successOutcome = "success"
	failureOutcome = "failure"
)

// SuccessDecision creates a DecisionResult carrying the ledger entry to append.
func SuccessDecision(record ActivityRecord) DecisionResult {
	return DecisionResult{
		Outcome: successOutcome,
		Record:  record,
	}
}

// FailureDecision creates a DecisionResult carrying the user-visible reason.
func FailureDecision(reason string) DecisionResult {
	return DecisionResult{
		Outcome: failureOutcome,
		Reason:  reason,
	}
}

// IsSuccess reports whether the decision produced a state transition.
func (r DecisionResult) IsSuccess() bool {
	return r.Outcome == successOutcome
}

// FailureReason returns the user-visible reason, or "" for successes.
func (r DecisionResult) FailureReason() string {
	return r.Reason
}
