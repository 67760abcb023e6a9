package controllernode

import (
	"fmt"
	"strings"

	contractx "github.com/autostream-ai/leadflow/agent/contract"
)

func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil || in.Session == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	reply := strings.TrimSpace(in.Reply)
	if reply == "" {
		return GraphOutput{}, fmt.Errorf("%w: transition produced an empty reply", contractx.ErrValidation)
	}

	return GraphOutput{
		Reply:  in.Reply,
		Intent: in.Session.LastIntent,
	}, nil
}
