package agent

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
)

const (
	defaultRespondPath = "/v1/responses"
	defaultMaxTokens   = 4096
)

// Turn is one prior exchange replayed to the runtime.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ToolDefinition advertises a callable tool to the runtime. The runtime
// invokes tools against the tool server on its own; this client only declares
// them.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// Runtime accepts a list of prior turns and emits a stream of text
// increments, returning the collected assistant text.
type Runtime interface {
	Respond(ctx context.Context, turns []Turn, onDelta func(delta string) error) (string, error)
}

// Logger mirrors the host application's logger without importing it.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Client talks to a hosted agent runtime over its streaming HTTP API.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	system      string
	temperature float64
	maxTokens   int
	tools       []ToolDefinition
	httpClient  *http.Client
	logger      Logger
}

var _ Runtime = (*Client)(nil)

// NewClient creates a runtime client. The caller owns request deadlines via
// context; the underlying HTTP client only guards against a hung stream.
func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		model:       model,
		temperature: 0.4,
		maxTokens:   defaultMaxTokens,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

func (c *Client) WithLogger(logger Logger) *Client {
	c.logger = logger
	return c
}

// WithSystemPrompt sets the instructions sent with every request.
func (c *Client) WithSystemPrompt(system string) *Client {
	c.system = system
	return c
}

// WithTools declares the tools the runtime may call back into.
func (c *Client) WithTools(tools ...ToolDefinition) *Client {
	c.tools = append(c.tools, tools...)
	return c
}

func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	if httpClient != nil {
		c.httpClient = httpClient
	}
	return c
}

type respondRequest struct {
	Model       string           `json:"model"`
	Instructions string          `json:"instructions,omitempty"`
	Input       []Turn           `json:"input"`
	Tools       []ToolDefinition `json:"tools,omitempty"`
	Temperature float64          `json:"temperature,omitempty"`
	MaxTokens   int              `json:"max_output_tokens,omitempty"`
	Stream      bool             `json:"stream"`
}

type streamEvent struct {
	Type  string `json:"type"`
	Delta string `json:"delta,omitempty"`
	Text  string `json:"text,omitempty"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Respond posts the prior turns and consumes the runtime's SSE stream,
// invoking onDelta per text increment. It returns the collected assistant
// text once the runtime signals completion.
func (c *Client) Respond(ctx context.Context, turns []Turn, onDelta func(delta string) error) (string, error) {
	reqBody := respondRequest{
		Model:        c.model,
		Instructions: c.system,
		Input:        turns,
		Tools:        c.tools,
		Temperature:  c.temperature,
		MaxTokens:    c.maxTokens,
		Stream:       true,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to marshal runtime request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+defaultRespondPath, bytes.NewReader(jsonBody))
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to create runtime request")
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryOperation, "runtime request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if c.logger != nil {
			c.logger.Error("runtime returned non-200", "status", resp.StatusCode, "body", string(body))
		}
		return "", errors.New(
			fmt.Sprintf("agent runtime returned status %d", resp.StatusCode),
			errors.CategoryOperation,
		)
	}

	return c.consumeStream(resp.Body, onDelta)
}

// consumeStream reads event:/data: SSE lines, accumulating output_text deltas.
func (c *Client) consumeStream(body io.Reader, onDelta func(delta string) error) (string, error) {
	var collected strings.Builder

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "event:") {
			continue
		}
		if !strings.HasPrefix(line, "data:") {
			continue
		}

		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" || payload == "[DONE]" {
			continue
		}

		var ev streamEvent
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			return "", errors.Wrap(err, errors.CategoryOperation, "failed to parse runtime stream event")
		}

		switch ev.Type {
		case "response.output_text.delta":
			collected.WriteString(ev.Delta)
			if onDelta != nil {
				if err := onDelta(ev.Delta); err != nil {
					return "", err
				}
			}
		case "response.output_text.done":
			// carries the full text; authoritative when deltas were dropped
			if ev.Text != "" && collected.Len() == 0 {
				collected.WriteString(ev.Text)
			}
		case "response.failed", "error":
			msg := ev.Error.Message
			if msg == "" {
				msg = "agent runtime reported a failure"
			}
			return "", errors.New(msg, errors.CategoryOperation)
		}
	}

	if err := scanner.Err(); err != nil {
		return "", errors.Wrap(err, errors.CategoryOperation, "runtime stream read failed")
	}

	return collected.String(), nil
}
