package types

// ActionStatus names a state of the form action pipeline.
type ActionStatus string

// Pipeline states. A submission moves Idle -> Validating, then either to
// Invalid or to Persisting, and from Persisting to Failed or Succeeded.
const (
	StatusIdle       ActionStatus = "idle"
	StatusValidating ActionStatus = "validating"
	StatusInvalid    ActionStatus = "invalid"
	StatusPersisting ActionStatus = "persisting"
	StatusFailed     ActionStatus = "failed"
	StatusSucceeded  ActionStatus = "succeeded"
)

// ActionState is the transient result of one form submission. It is never
// persisted. ID names the written row after a successful create or update.
type ActionState struct {
	Status      ActionStatus      `json:"state"`
	Message     string            `json:"message,omitempty"`
	FieldErrors map[string]string `json:"fieldErrors"`
	ID          string            `json:"id,omitempty"`
}

// Succeeded reports whether the submission was persisted.
func (s ActionState) Succeeded() bool {
	return s.Status == StatusSucceeded
}
