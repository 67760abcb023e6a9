package controllernode

import (
	"context"
	"fmt"

	contractx "github.com/autostream-ai/leadflow/agent/contract"
)

// relevanceThreshold gates retrieval replies: passages scoring below it are
// deflected rather than risk answering with an irrelevant chunk.
const relevanceThreshold = 0.3

// DispatchIntent picks the response strategy for the classified intent:
// a fixed welcome for greetings, knowledge-base retrieval for product
// questions, and the start of the slot-filling flow for purchase-ready leads.
func DispatchIntent(
	ctx context.Context,
	in *GraphState,
	retriever contractx.Retriever,
) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	switch in.Intent.Intent {
	case contractx.IntentGreeting:
		in.Reply = replyWelcome

	case contractx.IntentProductQuery:
		result, err := retriever.Retrieve(ctx, in.Text)
		if err != nil {
			return nil, fmt.Errorf("retrieve context: %w", err)
		}
		if result.Relevance < relevanceThreshold {
			in.Reply = replyDeflection
		} else {
			in.Reply = result.Passage
		}

	case contractx.IntentHighIntentLead:
		in.Session.BeginCapture()
		in.Reply = replyAskName

	default:
		in.Reply = replyFallback
	}

	return in, nil
}
