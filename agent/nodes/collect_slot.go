package controllernode

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/autostream-ai/leadflow/agent/contract"
	statex "github.com/autostream-ai/leadflow/agent/state"
)

// emailPattern is the lead-capture email shape: local-part@domain.tld with
// word characters, dots, and hyphens, and at least one dot in the domain.
var emailPattern = regexp.MustCompile(`^[\w.-]+@[\w.-]+\.\w+$`)

// CollectSlot runs one slot-filling transition: it validates and stores the
// pending field, advances to the next one, and asks the next question.
// Validation failures re-prompt without advancing. A successful plan step
// completes the flow and hands the lead to the sink.
func CollectSlot(
	ctx context.Context,
	in *GraphState,
	sink contractx.LeadSink,
) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	st := in.Session
	switch st.ActiveField {
	case statex.FieldName:
		st.CapturedName = in.Text
		st.ActiveField = statex.FieldEmail
		in.Reply = replyAskEmail(st.CapturedName)

	case statex.FieldEmail:
		if !emailPattern.MatchString(in.Text) {
			in.Reply = replyEmailRetry
			return in, nil
		}
		st.CapturedEmail = in.Text
		st.ActiveField = statex.FieldPlatform
		in.Reply = replyAskPlatform

	case statex.FieldPlatform:
		st.CapturedPlatform = in.Text
		st.ActiveField = statex.FieldPlan
		in.Reply = replyPlanMenu

	case statex.FieldPlan:
		plan, ok := normalizePlan(in.Text)
		if !ok {
			in.Reply = replyPlanRetry
			return in, nil
		}
		st.CapturedPlan = plan
		st.ActiveField = statex.FieldNone

		lead := contractx.Lead{
			Name:       st.CapturedName,
			Email:      st.CapturedEmail,
			Platform:   st.CapturedPlatform,
			Plan:       st.CapturedPlan,
			CapturedAt: in.Now,
		}
		if err := sink.Store(ctx, lead); err != nil {
			// The user is told the capture succeeded either way; at minimum
			// the discrepancy has to show up in the logs.
			log.Warn().
				Err(err).
				Str("session_id", st.SessionID).
				Str("email", lead.Email).
				Msg("lead not persisted, confirmation sent anyway")
		}

		in.Reply = replyConfirmation(st.CapturedName, st.CapturedEmail, st.CapturedPlatform, st.CapturedPlan)

	default:
		return nil, fmt.Errorf("%w: no slot-filling flow active", contractx.ErrValidation)
	}

	return in, nil
}

// normalizePlan maps free text onto a plan name. Substring match, case
// insensitive, "pro" wins over "basic".
func normalizePlan(text string) (string, bool) {
	choice := strings.ToLower(text)
	switch {
	case strings.Contains(choice, "pro"):
		return "Pro", true
	case strings.Contains(choice, "basic"):
		return "Basic", true
	default:
		return "", false
	}
}
