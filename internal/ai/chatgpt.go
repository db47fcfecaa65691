package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/example/adaptedmind/pkg/models"
)

const (
	DefaultAPIURL = "https://api.openai.com/v1/chat/completions"
	DefaultModel  = "gpt-3.5-turbo"
)

// ChatGPT represents a client for an OpenAI-compatible chat completions API
type ChatGPT struct {
	apiKey      string
	apiURL      string
	model       string
	maxTokens   int
	temperature float64
	client      *http.Client
}

// Config holds the connection settings for the ChatGPT client
type Config struct {
	APIKey string
	APIURL string // defaults to DefaultAPIURL
	Model  string // defaults to DefaultModel
}

// GenerationRequest describes the test the model is asked to write
type GenerationRequest struct {
	Subject    string
	Count      int
	Difficulty models.Difficulty
}

// GenerationError is returned when the remote call fails so callers can tell
// transport problems apart from an API-level rejection.
type GenerationError struct {
	Reason     string
	StatusCode int // 0 when no response was received
	Wrapped    error
}

func (e *GenerationError) Error() string {
	msg := "question generation failed: " + e.Reason
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

func (e *GenerationError) Unwrap() error {
	return e.Wrapped
}

// New creates a new ChatGPT client
func New(cfg Config) (*ChatGPT, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	return &ChatGPT{
		apiKey:      cfg.APIKey,
		apiURL:      cfg.APIURL,
		model:       cfg.Model,
		maxTokens:   3000,
		temperature: 0.7,
		client:      &http.Client{},
	}, nil
}

// Message represents a message in the ChatGPT conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest represents a request to the ChatGPT API
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

// ChatResponse represents a response from the ChatGPT API
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// GenerateQuestions asks the model for a JSON array of multiple choice
// questions and returns the raw model text. The caller owns parsing and
// validation; deadlines come from ctx.
func (c *ChatGPT) GenerateQuestions(ctx context.Context, r GenerationRequest) (string, error) {
	messages := []Message{
		{Role: "system", Content: "You are an exam author. You reply with a JSON array only, with no prose and no markdown."},
		{Role: "user", Content: BuildPrompt(r)},
	}
	return c.complete(ctx, messages)
}

// BuildPrompt renders the instruction sent to the model for r.
func BuildPrompt(r GenerationRequest) string {
	return fmt.Sprintf(
		"Write exactly %d multiple choice questions about %s at %s difficulty.\n"+
			"Return a JSON array of exactly %d objects. Each object has the fields:\n"+
			"  \"id\": a short unique string,\n"+
			"  \"question\": the question text,\n"+
			"  \"options\": an array of exactly 4 answer strings,\n"+
			"  \"correct\": the 0-based index of the correct option (0 to 3),\n"+
			"  \"explanation\": one sentence explaining the answer,\n"+
			"  \"topic\": the sub-topic the question covers.\n"+
			"Return only the JSON array.",
		r.Count, r.Subject, r.Difficulty.Description(), r.Count,
	)
}

func (c *ChatGPT) complete(ctx context.Context, messages []Message) (string, error) {
	request := ChatRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	requestData, err := json.Marshal(request)
	if err != nil {
		return "", &GenerationError{Reason: "failed to marshal request", Wrapped: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(requestData))
	if err != nil {
		return "", &GenerationError{Reason: "failed to create request", Wrapped: err}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &GenerationError{Reason: "failed to send request", Wrapped: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &GenerationError{
			Reason:     strings.TrimSpace("API returned an error " + string(body)),
			StatusCode: resp.StatusCode,
		}
	}

	var response ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", &GenerationError{Reason: "failed to decode response", Wrapped: err}
	}

	if response.Error != nil {
		return "", &GenerationError{Reason: "API error: " + response.Error.Message}
	}

	if len(response.Choices) == 0 {
		return "", &GenerationError{Reason: "no response choices returned"}
	}

	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}
