package models

import "time"

// RunMetric is one immutable record of a completed agent run. Agents build
// the counts during execution; the record is appended to the run history at
// the end of the session and never mutated afterwards.
type RunMetric struct {
	RunID     string             `json:"run_id"`
	AgentType string             `json:"agent_type"`
	Timestamp time.Time          `json:"timestamp"`
	Counts    map[string]int     `json:"counts,omitempty"`
	Rates     map[string]float64 `json:"rates,omitempty"`
	Notes     []string           `json:"notes,omitempty"`
}

// Count returns the counter value for a named outcome, zero if absent.
func (m RunMetric) Count(outcome string) int {
	return m.Counts[outcome]
}

// Rate returns a caller-supplied derived rate and whether it was present.
func (m RunMetric) Rate(signal string) (float64, bool) {
	v, ok := m.Rates[signal]
	return v, ok
}

// Known agent types. Each owns a disjoint parameter namespace.
const (
	AgentOutreach         = "outreach_agent"
	AgentInviteWithdrawal = "invite_withdrawal"
	AgentNotification     = "notification_agent"
)

// Outcome counter names recorded by the agent workflows.
const (
	OutcomeScrollSuccess     = "scroll_success"
	OutcomeScrollFailure     = "scroll_failure"
	OutcomeMessageVerified   = "message_verified"
	OutcomeMessageFailed     = "message_failed"
	OutcomeChatOpened        = "chat_opened"
	OutcomeChatOpenFailure   = "chat_open_failure"
	OutcomeIdentityVerified  = "identity_verified"
	OutcomeIdentityFailure   = "identity_verify_failure"
	OutcomeFileUploaded      = "file_uploaded"
	OutcomeFileUploadFailure = "file_upload_failure"
	OutcomeInviteSent        = "invite_sent"
	OutcomeInviteError       = "invite_error"
	OutcomeDialogConfirmed   = "dialog_confirmed"
	OutcomeDialogTimeout     = "dialog_timeout"
)
