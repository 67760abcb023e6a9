package contract

import "time"

// Intent is the coarse classification of a user message's purpose.
type Intent string

const (
	IntentGreeting       Intent = "greeting"
	IntentProductQuery   Intent = "product_query"
	IntentHighIntentLead Intent = "high_intent_lead"
)

// IsValid reports whether the intent belongs to the fixed label set.
func (i Intent) IsValid() bool {
	switch i {
	case IntentGreeting, IntentProductQuery, IntentHighIntentLead:
		return true
	}
	return false
}

// IntentResult is the classifier output for a single message. The classifier
// guarantees Intent is always one of the fixed labels; unparseable or
// out-of-set model output is mapped to IntentProductQuery with confidence 0.5
// before it ever reaches the controller.
type IntentResult struct {
	Intent     Intent  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// RetrievalResult is a relevance-scored passage from the knowledge base.
// A zero-relevance result with an empty passage is the sentinel for "nothing
// indexed" — retrieval never fails on an empty corpus.
type RetrievalResult struct {
	Passage     string  `json:"passage"`
	Relevance   float64 `json:"relevance"` // clamped to [0,1]
	ResultCount int     `json:"result_count"`
}

// Lead is a completed slot-filling capture, handed to the LeadSink exactly
// once when the plan step succeeds.
type Lead struct {
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Platform   string    `json:"platform"`
	Plan       string    `json:"plan"`
	CapturedAt time.Time `json:"captured_at"`
}

// LeadRecord is the persisted shape, as returned by the admin read API.
type LeadRecord struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Platform  string    `json:"platform"`
	Plan      string    `json:"plan,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Status    string    `json:"status"`
}
