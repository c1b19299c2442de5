package translate

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash-lite"

// Client is a Gemini-backed translator. Calls are paced by a token-bucket
// limiter so a burst of fan-outs does not trip the upstream API limits; the
// per-guild quota gate is a separate concern and sits in front of it.
type Client struct {
	client  *genai.Client
	model   string
	limiter *rate.Limiter
}

// NewClient builds a translator against the Gemini API. model may be empty
// to use DefaultModel; callsPerSecond bounds the outbound request rate.
func NewClient(ctx context.Context, apiKey, model string, callsPerSecond float64) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is empty")
	}
	if model == "" {
		model = DefaultModel
	}
	if callsPerSecond <= 0 {
		callsPerSecond = 1
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{
		client:  gc,
		model:   model,
		limiter: rate.NewLimiter(rate.Limit(callsPerSecond), 1),
	}, nil
}

// Translate renders text in the target language. It returns ("", nil) when
// there is nothing to do: blank input, or input already in the target
// language per script detection. Mentions are shielded from the model and
// restored in the result.
func (c *Client) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	if DetectLanguage(text) == baseCode(targetLanguage) {
		return "", nil
	}

	cleaned, mentions := CleanMentions(text)

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	prompt := fmt.Sprintf(
		"Translate the following Discord message to %s. "+
			"Output only the translation with no explanations. "+
			"Preserve Discord markdown, emoji codes, URLs, and bracketed placeholders like [user] exactly as written.\n\n%s",
		LanguageName(targetLanguage), cleaned,
	)

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	out := strings.TrimSpace(resp.Text())
	if out == "" {
		return "", fmt.Errorf("empty response from gemini")
	}
	return RestoreMentions(out, mentions), nil
}
