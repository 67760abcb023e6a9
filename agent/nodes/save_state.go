package controllernode

import (
	"context"
	"fmt"

	contractx "github.com/autostream-ai/leadflow/agent/contract"
	statex "github.com/autostream-ai/leadflow/agent/state"
)

// SaveState appends the computed reply to the transcript and persists the
// session. The reply is always the transcript's last element on the way out.
func SaveState(
	ctx context.Context,
	in *GraphState,
	store statex.Store,
) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}
	if in.Reply == "" {
		return nil, fmt.Errorf("%w: transition produced no reply", contractx.ErrValidation)
	}

	in.Session.Append(in.Reply)
	in.Session.Touch(in.Now)
	if err := in.Session.Validate(); err != nil {
		return nil, fmt.Errorf("state validation failed: %w", err)
	}
	if err := store.Save(ctx, in.Session); err != nil {
		return nil, err
	}

	return in, nil
}
