package lead

import (
	"context"

	"github.com/rs/zerolog/log"

	contractx "github.com/autostream-ai/leadflow/agent/contract"
	qstashx "github.com/autostream-ai/leadflow/pkg/qstash"
)

// NotifyingSink stores a lead through the inner sink and then publishes a
// capture notification over QStash. Notification failures are logged, never
// surfaced; the capture itself already succeeded.
type NotifyingSink struct {
	inner       contractx.LeadSink
	publisher   *qstashx.Client
	destination string
}

var _ contractx.LeadSink = (*NotifyingSink)(nil)

func NewNotifyingSink(inner contractx.LeadSink, publisher *qstashx.Client, destination string) *NotifyingSink {
	return &NotifyingSink{
		inner:       inner,
		publisher:   publisher,
		destination: destination,
	}
}

func (s *NotifyingSink) Store(ctx context.Context, lead contractx.Lead) error {
	if err := s.inner.Store(ctx, lead); err != nil {
		return err
	}

	if err := s.publisher.PublishJSON(ctx, s.destination, map[string]any{
		"event": "lead.captured",
		"lead":  lead,
	}); err != nil {
		log.Warn().Err(err).Str("email", lead.Email).Msg("lead notification not published")
	}
	return nil
}
