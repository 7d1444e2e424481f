package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	apperrors "github.com/X1NY1NG/VRGame/backend/pkg/errors"
	"github.com/X1NY1NG/VRGame/backend/pkg/logger"
)

// extractionSystemPrompt instructs the model to emit strict JSON entities and
// relations for the personal knowledge graph
const extractionSystemPrompt = `Extract entities and relations for a personal knowledge graph.

Return STRICT JSON only in this form:
{
  "nodes":[
    {"type":"Person|Place|Event|Food|Artist|Song|Theme","name":"...","aliases":[],"props":{}}
  ],
  "edges":[
    {
      "type":"is_family_of|friend_of|lives_in|visited_place_with|attended|enjoys|avoid_topic|remembers_with|photo_shows",
      "from":{"type":"Person","name":"User"},
      "to":{"type":"Person|Place|Event|Food|Artist|Song|Theme","name":"..."},
      "props":{"role":"","since":"","when":"","location":"","context":""},
      "confidence":0.0
    }
  ]
}

Rules:
- Treat the speaker as {"type":"Person","name":"User"} for "I/me/my/we/our".
- Use ONLY the provided enums.
- A node "name" must be a concrete proper name or place/thing name (never a generic role word).
- If a role noun appears beside a named person (e.g., "my daughter Emily"), put it in edge.props.role.
- If a person likes a generic activity/thing (e.g., shopping, clothes), use enjoys -> {"type":"Theme","name":"<paraphrased theme>"}.
- It is valid to output edges about non-speaker people (e.g., "John enjoys Korean food").
- Include all clearly stated facts; omit edges with confidence < 0.7.
- Output pure JSON (no explanations).`

// corefSystemPrompt instructs the model to rewrite pronouns against the
// recent-mention order, substituting only when unambiguous
const corefSystemPrompt = `Rewrite the text by replacing third-person pronouns (he/she/they/him/her/them/his/hers/their/theirs)
with the most likely explicit names based on the recent mention order provided.
Only replace if unambiguous; otherwise leave the pronoun as-is.
Return ONLY the rewritten text (no extra commentary).`

// Extractor handles the LLM calls of a turn: structured fact extraction and
// the optional coreference rewrite
type Extractor struct {
	client  *openai.Client
	model   string
	retries int
	logger  *zap.Logger
}

// NewExtractor creates an extractor. retries is the number of extra attempts
// for the extraction call; 0 preserves the original fail-fast latency profile.
func NewExtractor(apiKey, model string, retries int) *Extractor {
	return &Extractor{
		client:  openai.NewClient(apiKey),
		model:   model,
		retries: retries,
		logger:  logger.Get(),
	}
}

// Extract runs the structured extraction over referentially resolved text.
// A malformed response body degrades to an empty payload rather than an
// error; only transport/API failure after all attempts is surfaced.
func (e *Extractor) Extract(ctx context.Context, text string) (RawPayload, error) {
	req := openai.ChatCompletionRequest{
		Model: e.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: extractionSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	}

	var resp openai.ChatCompletionResponse
	var err error
	for attempt := 0; attempt <= e.retries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * time.Second
			e.logger.Warn("Retrying extraction request",
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", backoff),
			)
			select {
			case <-ctx.Done():
				return RawPayload{}, ctx.Err()
			case <-time.After(backoff):
			}
		}

		resp, err = e.client.CreateChatCompletion(ctx, req)
		if err == nil {
			break
		}
		e.logger.Error("Extraction request failed",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
			zap.String("model", e.model),
		)
	}
	if err != nil {
		return RawPayload{}, apperrors.NewExtractionError(
			fmt.Sprintf("extraction call failed after %d attempts", e.retries+1), err)
	}

	if len(resp.Choices) == 0 {
		return RawPayload{}, nil
	}

	var payload RawPayload
	content := resp.Choices[0].Message.Content
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		// Malformed JSON means no extraction, not a failed turn
		e.logger.Warn("Extraction returned malformed JSON, proceeding without facts",
			zap.Error(err),
			zap.Int("content_length", len(content)),
		)
		return RawPayload{}, nil
	}

	e.logger.Debug("Extraction parsed",
		zap.Int("nodes", len(payload.Nodes)),
		zap.Int("edges", len(payload.Edges)),
	)
	return payload, nil
}

// RewriteCoref asks the model to substitute pronouns using the recent-mention
// order, most recent first. The caller owns the timeout budget.
func (e *Extractor) RewriteCoref(ctx context.Context, text string, recentNames []string) (string, error) {
	recent := "None"
	if len(recentNames) > 0 {
		recent = strings.Join(recentNames, ", ")
	}
	userMsg := fmt.Sprintf("Recent people (most recent first): %s\n\nText:\n%s", recent, text)

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: corefSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMsg},
		},
	})
	if err != nil {
		return "", apperrors.NewCorefError("coreference rewrite failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", apperrors.NewCorefError("coreference rewrite returned no choices", nil)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
