package lead

import (
	"context"

	"github.com/rs/zerolog/log"

	contractx "github.com/autostream-ai/leadflow/agent/contract"
)

// LogSink records captured leads in the application log only. Meant for
// local development when no database is configured.
type LogSink struct{}

var _ contractx.LeadSink = LogSink{}

func (LogSink) Store(_ context.Context, lead contractx.Lead) error {
	log.Info().
		Str("name", lead.Name).
		Str("email", lead.Email).
		Str("platform", lead.Platform).
		Str("plan", lead.Plan).
		Msg("lead captured")
	return nil
}
