// Package gemini asks the Google Gemini API for market data and reads
// brokerage notes with it.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/phuslu/log"
	"google.golang.org/genai"
)

// DefaultModel is the model used unless WithModel is given.
const DefaultModel = "gemini-2.0-flash"

// ErrNoJSON is returned when an answer holds no JSON document.
var ErrNoJSON = errors.New("no JSON in answer")

// Client is a Gemini backed quote fetcher, benchmark fetcher and brokerage
// note parser.
type Client struct {
	// ask sends a prompt and returns the text of the answer. Search enables
	// the Google Search tool.
	ask    func(ctx context.Context, prompt string, search bool) (string, error)
	model  string
	logger *log.Logger
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithModel sets the model to use.
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client for the Gemini API.
func New(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("missing Gemini API key")
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	c := newClient(opts...)
	c.ask = func(ctx context.Context, prompt string, search bool) (string, error) {
		config := &genai.GenerateContentConfig{Temperature: genai.Ptr[float32](0.1)}
		if search {
			config.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
		}
		result, err := gc.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
		if err != nil {
			return "", fmt.Errorf("failed to generate content: %w", err)
		}
		return extractText(result)
	}
	return c, nil
}

func newClient(opts ...ClientOption) *Client {
	c := &Client{
		model:  DefaultModel,
		logger: &log.Logger{Level: log.PanicLevel, Writer: &log.IOWriter{Writer: io.Discard}},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func extractText(result *genai.GenerateContentResponse) (string, error) {
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}
	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}

// extractJSON returns the outermost JSON document delimited by open and
// close in text, ignoring any prose or code fence around it.
func extractJSON(text string, open, close byte) (string, error) {
	start := strings.IndexByte(text, open)
	end := strings.LastIndexByte(text, close)
	if start < 0 || end < start {
		return "", ErrNoJSON
	}
	return text[start : end+1], nil
}
