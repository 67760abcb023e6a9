package state

import (
	"fmt"
	"time"

	contractx "github.com/autostream-ai/leadflow/agent/contract"
)

// Field identifies which slot the next user message will populate.
// FieldNone means no slot-filling flow is in progress.
type Field string

const (
	FieldNone     Field = ""
	FieldName     Field = "name"
	FieldEmail    Field = "email"
	FieldPlatform Field = "platform"
	FieldPlan     Field = "plan"
)

// fieldOrder is the fixed slot-filling progression. A flow always walks it
// front to back; there is no skipping and no way to abort short of finishing.
var fieldOrder = []Field{FieldName, FieldEmail, FieldPlatform, FieldPlan}

func fieldIndex(f Field) int {
	for i, candidate := range fieldOrder {
		if candidate == f {
			return i
		}
	}
	return -1
}

// SessionState is the per-conversation source of truth. It is created on the
// first message for a session id and mutated only by the dialogue controller,
// one transition at a time.
type SessionState struct {
	SessionID string `json:"session_id"`

	// Transcript is append-only: user messages and controller replies in
	// arrival order. The last element is always the most recent text.
	Transcript []string `json:"transcript,omitempty"`

	// LastIntent is set only when intent classification runs, i.e. when no
	// slot-filling flow is active. Empty means never classified.
	LastIntent contractx.Intent `json:"last_intent,omitempty"`

	ActiveField Field `json:"active_field,omitempty"`

	CapturedName     string `json:"captured_name,omitempty"`
	CapturedEmail    string `json:"captured_email,omitempty"`
	CapturedPlatform string `json:"captured_platform,omitempty"`
	CapturedPlan     string `json:"captured_plan,omitempty"`

	// Reserved for a future explicit-confirmation flow; nothing sets these yet.
	NameConfirmed     bool `json:"name_confirmed,omitempty"`
	EmailConfirmed    bool `json:"email_confirmed,omitempty"`
	PlatformConfirmed bool `json:"platform_confirmed,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

func NewSessionState(sessionID string, now time.Time) *SessionState {
	return &SessionState{
		SessionID: sessionID,
		UpdatedAt: now.UTC(),
	}
}

func (s *SessionState) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

// Append adds text to the transcript (a user message or a controller reply).
func (s *SessionState) Append(text string) {
	s.Transcript = append(s.Transcript, text)
}

// LastMessage returns the most recent transcript entry.
func (s *SessionState) LastMessage() (string, bool) {
	if len(s.Transcript) == 0 {
		return "", false
	}
	return s.Transcript[len(s.Transcript)-1], true
}

// Collecting reports whether a slot-filling flow is in progress.
func (s *SessionState) Collecting() bool {
	return s.ActiveField != FieldNone
}

// BeginCapture starts the slot-filling flow at the name step. Any capture
// left over from a previously completed flow is cleared so the slot ordering
// invariant holds for the new one.
func (s *SessionState) BeginCapture() {
	s.ActiveField = FieldName
	s.CapturedName = ""
	s.CapturedEmail = ""
	s.CapturedPlatform = ""
	s.CapturedPlan = ""
}

// capturedPrefix returns how many slots have been filled, in order.
func (s *SessionState) capturedPrefix() int {
	captured := []string{s.CapturedName, s.CapturedEmail, s.CapturedPlatform, s.CapturedPlan}
	n := 0
	for _, v := range captured {
		if v == "" {
			break
		}
		n++
	}
	return n
}

// Validate checks the slot-filling invariants: filled slots form a prefix of
// the fixed order, and the active field is always the first unfilled slot.
func (s *SessionState) Validate() error {
	captured := []string{s.CapturedName, s.CapturedEmail, s.CapturedPlatform, s.CapturedPlan}
	prefix := s.capturedPrefix()
	for i := prefix; i < len(captured); i++ {
		if captured[i] != "" {
			return fmt.Errorf("%w: slot %s filled out of order", contractx.ErrValidation, fieldOrder[i])
		}
	}

	if s.ActiveField == FieldNone {
		// Idle (nothing captured), completed (everything captured), or a
		// finished flow followed by a fresh one that has not started yet.
		if prefix != 0 && prefix != len(fieldOrder) {
			return fmt.Errorf("%w: %d slots filled with no active field", contractx.ErrValidation, prefix)
		}
		return nil
	}

	idx := fieldIndex(s.ActiveField)
	if idx < 0 {
		return fmt.Errorf("%w: unknown active field %q", contractx.ErrValidation, s.ActiveField)
	}
	if idx != prefix {
		return fmt.Errorf("%w: active field %s but %d slots filled", contractx.ErrValidation, s.ActiveField, prefix)
	}
	return nil
}

// Clone returns a deep copy. Store implementations hand out copies so callers
// never alias the stored state.
func (s *SessionState) Clone() *SessionState {
	if s == nil {
		return nil
	}
	dup := *s
	dup.Transcript = append([]string(nil), s.Transcript...)
	return &dup
}
