// Package controller implements the dialogue controller: one synchronous
// state transition per incoming message, routed either through the
// slot-filling flow or through intent classification and dispatch.
package controller

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/autostream-ai/leadflow/agent/contract"
	nodex "github.com/autostream-ai/leadflow/agent/nodes"
	statex "github.com/autostream-ai/leadflow/agent/state"
)

var (
	ErrInvalidMessage = nodex.ErrInvalidMessage
	ErrInvalidSession = nodex.ErrInvalidSession
)

// Result is one completed transition: the reply plus the session's last
// classified intent (empty until classification has run at least once).
type Result struct {
	Reply  string
	Intent contractx.Intent
}

type Controller struct {
	store      statex.Store
	classifier contractx.Classifier
	retriever  contractx.Retriever
	sink       contractx.LeadSink

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	now func() time.Time
}

func New(
	store statex.Store,
	classifier contractx.Classifier,
	retriever contractx.Retriever,
	sink contractx.LeadSink,
) (*Controller, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}
	if classifier == nil {
		return nil, errors.New("intent classifier is required")
	}
	if retriever == nil {
		return nil, errors.New("context retriever is required")
	}
	if sink == nil {
		return nil, errors.New("lead sink is required")
	}

	c := &Controller{
		store:      store,
		classifier: classifier,
		retriever:  retriever,
		sink:       sink,
		now:        time.Now,
	}

	graphRunner, err := c.compileHandleMessageGraph(context.Background())
	if err != nil {
		return nil, err
	}
	c.graphRunner = graphRunner

	return c, nil
}

// HandleMessage runs one transition for the session. Callers must serialize
// concurrent messages for the same session id; the controller itself assumes
// at most one in-flight transition per session.
func (c *Controller) HandleMessage(ctx context.Context, sessionID string, text string) (Result, error) {
	out, err := c.graphRunner.Invoke(ctx, nodex.GraphInput{
		SessionID: sessionID,
		Text:      text,
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Reply: out.Reply, Intent: out.Intent}, nil
}
