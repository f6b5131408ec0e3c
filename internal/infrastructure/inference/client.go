package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"resty.dev/v3"

	"tutor-server/internal/config"
	"tutor-server/internal/domain/conversation"
	"tutor-server/internal/infrastructure/metrics"
	"tutor-server/internal/utils/platformerrors"
)

// FallbackReply is persisted as the assistant turn whenever the model answers
// with a shape the client does not recognize. Shape mismatch is the designed
// degradation, not an error.
const FallbackReply = "Sorry, I couldn't generate a reply."

// Client issues one chat completion request per reply against an
// OpenAI-compatible backend.
type Client struct {
	http           *resty.Client
	model          string
	persona        string
	maxReplyTokens int
	timeout        time.Duration
	log            zerolog.Logger
}

func NewClient(cfg *config.Config, log zerolog.Logger) *Client {
	httpClient := resty.New().SetBaseURL(strings.TrimRight(strings.TrimSpace(cfg.ModelBaseURL), "/"))
	if strings.TrimSpace(cfg.ModelAPIKey) != "" {
		httpClient.SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.ModelAPIKey))
	}

	return &Client{
		http:           httpClient,
		model:          cfg.ModelName,
		persona:        cfg.Persona,
		maxReplyTokens: cfg.MaxReplyTokens,
		timeout:        cfg.ModelTimeout,
		log:            log,
	}
}

// GenerateReply builds the full transcript from prior lines plus the new user
// message and asks the model for the next assistant turn. Transport and
// backend failures propagate to the caller; only an unrecognized response
// shape degrades to FallbackReply.
func (c *Client) GenerateReply(ctx context.Context, history []string, message string) (string, error) {
	transcript := buildTranscript(history, message)

	request := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.persona},
			{Role: openai.ChatMessageRoleUser, Content: transcript},
		},
		MaxTokens: c.maxReplyTokens,
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(request).
		Post("/chat/completions")
	if err != nil {
		return "", platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
			"model request failed", err, "7d42c6b0-1e5a-4f3d-9c28-b5a08f1e6d94")
	}
	if resp.IsError() {
		body := strings.TrimSpace(resp.String())
		return "", platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
			fmt.Sprintf("model request failed: status %d: %s", resp.StatusCode(), body), nil,
			"0a8e5dc2-6f3b-47e1-8b90-4c7d21a35f68")
	}

	reply := normalizeReply(resp.Bytes())
	if reply == FallbackReply {
		metrics.FallbackRepliesTotal.Inc()
		c.log.Warn().Str("model", c.model).Msg("unrecognized model response shape, using fallback reply")
	}
	return reply, nil
}

// buildTranscript appends the pending user line to the prior lines and joins
// them into the single user-role prompt message.
func buildTranscript(history []string, message string) string {
	lines := make([]string, 0, len(history)+1)
	lines = append(lines, history...)
	lines = append(lines, conversation.UserLine(message))
	return conversation.JoinLines(lines)
}

// normalizeReply extracts the reply text from whatever the backend answered
// with: a bare JSON string, an object carrying a "response" text field, or an
// OpenAI-style chat completion. Anything else yields FallbackReply. This path
// never fails.
func normalizeReply(body []byte) string {
	// A pointer target keeps a literal null from passing as an empty string.
	var plain *string
	if err := json.Unmarshal(body, &plain); err == nil && plain != nil {
		return strings.TrimSpace(*plain)
	}

	var wrapped struct {
		Response *string `json:"response"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Response != nil {
		return strings.TrimSpace(*wrapped.Response)
	}

	var completion openai.ChatCompletionResponse
	if err := json.Unmarshal(body, &completion); err == nil && len(completion.Choices) > 0 {
		if content := strings.TrimSpace(completion.Choices[0].Message.Content); content != "" {
			return content
		}
	}

	return FallbackReply
}
