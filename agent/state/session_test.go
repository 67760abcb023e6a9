package state

import (
	"errors"
	"testing"
	"time"

	contractx "github.com/autostream-ai/leadflow/agent/contract"
)

func TestNewSessionStateIsValid(t *testing.T) {
	t.Parallel()

	st := NewSessionState("s1", time.Now())
	if err := st.Validate(); err != nil {
		t.Fatalf("fresh state should validate, got %v", err)
	}
	if st.Collecting() {
		t.Fatal("fresh state should not be collecting")
	}
}

func TestTranscriptAppendAndLast(t *testing.T) {
	t.Parallel()

	st := NewSessionState("s1", time.Now())

	if _, ok := st.LastMessage(); ok {
		t.Fatal("empty transcript should have no last message")
	}

	st.Append("hello")
	st.Append("welcome")

	last, ok := st.LastMessage()
	if !ok || last != "welcome" {
		t.Fatalf("unexpected last message: %q ok=%v", last, ok)
	}
	if len(st.Transcript) != 2 {
		t.Fatalf("expected 2 transcript entries, got %d", len(st.Transcript))
	}
}

func TestBeginCaptureResetsSlots(t *testing.T) {
	t.Parallel()

	st := NewSessionState("s1", time.Now())
	st.CapturedName = "Ana"
	st.CapturedEmail = "ana@example.com"
	st.CapturedPlatform = "YouTube"
	st.CapturedPlan = "Pro"

	st.BeginCapture()

	if st.ActiveField != FieldName {
		t.Fatalf("expected active field name, got %q", st.ActiveField)
	}
	if st.CapturedName != "" || st.CapturedEmail != "" || st.CapturedPlatform != "" || st.CapturedPlan != "" {
		t.Fatal("BeginCapture should clear previous captures")
	}
	if err := st.Validate(); err != nil {
		t.Fatalf("restarted flow should validate, got %v", err)
	}
}

func TestValidateSlotOrdering(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		mutate  func(*SessionState)
		wantErr bool
	}{
		{
			name:   "idle",
			mutate: func(st *SessionState) {},
		},
		{
			name: "collecting_name",
			mutate: func(st *SessionState) {
				st.ActiveField = FieldName
			},
		},
		{
			name: "collecting_email_with_name",
			mutate: func(st *SessionState) {
				st.CapturedName = "Ana"
				st.ActiveField = FieldEmail
			},
		},
		{
			name: "completed",
			mutate: func(st *SessionState) {
				st.CapturedName = "Ana"
				st.CapturedEmail = "ana@example.com"
				st.CapturedPlatform = "YouTube"
				st.CapturedPlan = "Pro"
			},
		},
		{
			name: "email_without_name",
			mutate: func(st *SessionState) {
				st.CapturedEmail = "ana@example.com"
				st.ActiveField = FieldName
			},
			wantErr: true,
		},
		{
			name: "active_field_behind_captures",
			mutate: func(st *SessionState) {
				st.CapturedName = "Ana"
				st.ActiveField = FieldName
			},
			wantErr: true,
		},
		{
			name: "active_field_ahead_of_captures",
			mutate: func(st *SessionState) {
				st.ActiveField = FieldPlan
			},
			wantErr: true,
		},
		{
			name: "partial_captures_without_active_field",
			mutate: func(st *SessionState) {
				st.CapturedName = "Ana"
				st.CapturedEmail = "ana@example.com"
			},
			wantErr: true,
		},
		{
			name: "unknown_active_field",
			mutate: func(st *SessionState) {
				st.ActiveField = Field("nickname")
			},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			st := NewSessionState("s1", time.Now())
			tc.mutate(st)

			err := st.Validate()
			if tc.wantErr {
				if !errors.Is(err, contractx.ErrValidation) {
					t.Fatalf("expected ErrValidation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
		})
	}
}

func TestCloneIsIndependent(t *testing.T) {
	t.Parallel()

	st := NewSessionState("s1", time.Now())
	st.Append("hello")
	st.ActiveField = FieldName

	dup := st.Clone()
	dup.Append("mutated")
	dup.ActiveField = FieldEmail
	dup.CapturedName = "Ana"

	if len(st.Transcript) != 1 {
		t.Fatalf("clone mutation leaked into original transcript: %v", st.Transcript)
	}
	if st.ActiveField != FieldName || st.CapturedName != "" {
		t.Fatal("clone mutation leaked into original fields")
	}

	var nilState *SessionState
	if nilState.Clone() != nil {
		t.Fatal("nil clone should stay nil")
	}
}

func TestTouchNormalizesToUTC(t *testing.T) {
	t.Parallel()

	st := NewSessionState("s1", time.Now())
	loc := time.FixedZone("UTC+7", 7*3600)
	st.Touch(time.Date(2025, 6, 1, 12, 0, 0, 0, loc))

	if st.UpdatedAt.Location() != time.UTC {
		t.Fatalf("expected UTC timestamp, got %v", st.UpdatedAt.Location())
	}
}
