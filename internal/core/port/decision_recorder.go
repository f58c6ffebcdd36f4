package port

// DecisionRecorder counts authorization decisions for observability. The
// authorizer records every decision with its outcome ("allow" or "deny") and
// the reason that produced it.
type DecisionRecorder interface {
	Record(outcome, reason string)
}
