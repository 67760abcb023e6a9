package contract

import "context"

// Classifier maps free text to one of the fixed intent labels.
type Classifier interface {
	Classify(ctx context.Context, text string) (IntentResult, error)
}

// Retriever returns a relevance-scored passage for a product question.
type Retriever interface {
	Retrieve(ctx context.Context, text string) (RetrievalResult, error)
}

// LeadSink durably stores a completed lead. Store returns ErrDuplicateEmail
// when the email is already captured; the storage boundary enforces
// uniqueness, the controller decides what to do with the outcome.
type LeadSink interface {
	Store(ctx context.Context, lead Lead) error
}

// LeadDirectory is the administrative read side of lead storage.
type LeadDirectory interface {
	List(ctx context.Context) ([]LeadRecord, error)
	GetByEmail(ctx context.Context, email string) (LeadRecord, error)
	UpdateStatus(ctx context.Context, email string, status string) error
}
