// Package classifier maps user messages onto the fixed intent label set with
// an LLM. The fallback policy is part of the contract: any model output that
// cannot be parsed, or that names an intent outside the set, becomes
// product_query with confidence 0.5 — callers never see a fourth label.
package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/autostream-ai/leadflow/agent/contract"
)

const (
	fallbackConfidence = 0.5
	defaultConfidence  = 0.7
)

type Classifier struct {
	runner compose.Runnable[map[string]any, *schema.Message]
}

var _ contractx.Classifier = (*Classifier)(nil)

func New(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (*Classifier, error) {
	runner, err := compileClassifierGraph(ctx, chatModel, systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: compile classifier graph: %v", contractx.ErrModelInvoke, err)
	}
	return &Classifier{runner: runner}, nil
}

func (c *Classifier) Classify(ctx context.Context, text string) (contractx.IntentResult, error) {
	if strings.TrimSpace(text) == "" {
		return contractx.IntentResult{}, fmt.Errorf("%w: message is required", contractx.ErrValidation)
	}

	msg, err := c.runner.Invoke(ctx, map[string]any{
		"input": text,
	})
	if err != nil {
		return contractx.IntentResult{}, fmt.Errorf("%w: classifier invoke: %v", contractx.ErrModelInvoke, err)
	}
	if msg == nil {
		return fallbackResult("empty classifier response"), nil
	}

	return parseResult(msg.Content), nil
}

// parseResult turns raw model content into an in-set IntentResult. All parse
// and schema problems resolve to the fallback, never to an error.
func parseResult(content string) contractx.IntentResult {
	raw := extractJSONObject(content)
	if raw == "" {
		return fallbackResult("no JSON object in classifier response")
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return fallbackResult("failed to parse classifier JSON response")
	}

	intent, _ := parsed["intent"].(string)
	if !contractx.Intent(intent).IsValid() {
		return fallbackResult("invalid intent returned, defaulted to product_query")
	}

	confidence := defaultConfidence
	if v, ok := parsed["confidence"].(float64); ok && v >= 0 && v <= 1 {
		confidence = v
	}

	reason, _ := parsed["reason"].(string)
	if reason == "" {
		reason = "intent classified successfully"
	}

	return contractx.IntentResult{
		Intent:     contractx.Intent(intent),
		Confidence: confidence,
		Reason:     reason,
	}
}

func fallbackResult(reason string) contractx.IntentResult {
	return contractx.IntentResult{
		Intent:     contractx.IntentProductQuery,
		Confidence: fallbackConfidence,
		Reason:     reason,
	}
}

// extractJSONObject returns the outermost {...} span so fenced or prefixed
// model output still parses.
func extractJSONObject(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return ""
	}
	return content[start : end+1]
}
