package controllernode

import (
	"context"
	"fmt"

	contractx "github.com/autostream-ai/leadflow/agent/contract"
)

// ClassifyIntent asks the classifier for the message intent and records it on
// the session. The classifier contract guarantees an in-set intent (it falls
// back to product_query itself), but an out-of-set value slipping through is
// normalized here rather than trusted downstream.
func ClassifyIntent(
	ctx context.Context,
	in *GraphState,
	classifier contractx.Classifier,
) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	result, err := classifier.Classify(ctx, in.Text)
	if err != nil {
		return nil, fmt.Errorf("classify intent: %w", err)
	}

	if !result.Intent.IsValid() {
		result = contractx.IntentResult{
			Intent:     contractx.IntentProductQuery,
			Confidence: 0.5,
			Reason:     "out-of-set intent normalized to product_query",
		}
	}

	in.Intent = result
	in.Session.LastIntent = result.Intent
	return in, nil
}
