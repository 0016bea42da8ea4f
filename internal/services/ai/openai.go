package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
)

const (
	// DefaultModel is the default model to use
	DefaultModel = "gpt-4o-mini"
	// DefaultBaseURL is the default OpenAI API base URL
	DefaultBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout is the default timeout for API calls
	DefaultTimeout = 30 * time.Second

	// ErrNoChoicesInResponse is returned when the API response has no choices
	ErrNoChoicesInResponse = "no choices in response"
)

// OpenAIProvider implements the Provider interface using OpenAI's API
type OpenAIProvider struct {
	client    openai.Client
	model     string
	logger    *zap.Logger
	debugMode bool
}

var _ Provider = (*OpenAIProvider)(nil)

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	return NewOpenAIProviderWithLogger(apiKey, DefaultBaseURL, model, nil, false)
}

// NewOpenAIProviderWithLogger creates a new OpenAI provider with logger support
func NewOpenAIProviderWithLogger(apiKey, baseURL, model string, logger *zap.Logger, debugMode bool) *OpenAIProvider {
	if model == "" {
		model = DefaultModel
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := &http.Client{
		Timeout: DefaultTimeout,
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(httpClient),
	)

	return &OpenAIProvider{
		client:    client,
		model:     model,
		logger:    logger,
		debugMode: debugMode,
	}
}

// complete sends one system+user exchange and returns the raw content
// of the first choice.
func (p *OpenAIProvider) complete(ctx context.Context, operation, system, prompt string, jsonOnly bool) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(system),
		openai.UserMessage(prompt),
	}
	req := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.model),
		Messages: messages,
	}
	if jsonOnly {
		req.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_request",
			zap.String("operation", operation),
			zap.String("model", p.model),
			zap.Int("prompt_length", len(prompt)),
			zap.String("prompt_preview", SanitizePrompt(prompt, true)),
		)
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, req)
	latency := time.Since(start)
	if err != nil {
		if p.logger != nil && p.debugMode {
			p.logger.Debug("llm_api_error",
				zap.String("operation", operation),
				zap.String("model", p.model),
				zap.Error(err),
				zap.Int64("latency_ms", latency.Milliseconds()),
			)
		}
		return "", fmt.Errorf("%s: %w", operation, err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New(ErrNoChoicesInResponse)
	}

	content := resp.Choices[0].Message.Content
	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_response",
			zap.String("operation", operation),
			zap.String("model", p.model),
			zap.Int("response_length", len(content)),
			zap.String("response_preview", SanitizeResponse(content, true)),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}
	return content, nil
}

// GenerateOutline produces a nested task outline for a keyword.
func (p *OpenAIProvider) GenerateOutline(ctx context.Context, keyword string) ([]OutlineNode, error) {
	prompt := fmt.Sprintf(`Generate a hierarchical list of to-do items for the keyword '%s'.

IMPORTANT RULES:
- Keep descriptions simple and clean
- Each description should be under 50 characters

Return the output as a valid JSON array ONLY, with no other text or explanations.

Each object in the array should have a "description" (string) and an optional "children" (array of objects) key.

Example for keyword 'Build a website':
[
  {
    "description": "Planning",
    "children": [
      { "description": "Define website goals" },
      { "description": "Draft the sitemap" }
    ]
  },
  {
    "description": "Design",
    "children": [
      { "description": "Create wireframes" },
      { "description": "Design UI mockups" }
    ]
  },
  { "description": "Development" },
  { "description": "Deployment" }
]`, keyword)

	content, err := p.complete(ctx, "generate_outline",
		"You are a helpful assistant that plans projects as hierarchical to-do outlines. Respond with a valid JSON array only.",
		prompt, false)
	if err != nil {
		return nil, err
	}

	nodes, err := parseOutline(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse outline response: %w", err)
	}
	return nodes, nil
}

// GenerateSubtasks breaks one task into 3-5 subtask descriptions.
func (p *OpenAIProvider) GenerateSubtasks(ctx context.Context, task, keyword string, ancestors []string) ([]string, error) {
	var contextInfo strings.Builder
	if keyword != "" {
		fmt.Fprintf(&contextInfo, "Project: %s\n", keyword)
	}
	if len(ancestors) > 1 {
		// The last ancestor is the task itself.
		parents := ancestors[:len(ancestors)-1]
		fmt.Fprintf(&contextInfo, "Parent tasks: %s\n", strings.Join(parents, " > "))
	}

	prompt := fmt.Sprintf(`Given the following context, generate a list of 3 to 5 detailed, actionable sub-tasks for the current task.

%sCurrent task: %s

IMPORTANT RULES:
- Keep descriptions simple and clean
- Each sub-task should be under 50 characters
- Consider the project context and parent tasks when generating sub-tasks
- Make sub-tasks specific and actionable

Return the list as a numbered list, e.g.,
1. First sub-task
2. Second sub-task
...`, contextInfo.String(), task)

	content, err := p.complete(ctx, "generate_subtasks",
		"You are a helpful assistant that breaks tasks into actionable sub-tasks. Respond with a numbered list only.",
		prompt, false)
	if err != nil {
		return nil, err
	}

	subtasks := parseNumberedList(content)
	if len(subtasks) == 0 {
		return nil, fmt.Errorf("no subtasks in response")
	}
	return subtasks, nil
}

// ParseTask extracts structured task attributes from free text.
func (p *OpenAIProvider) ParseTask(ctx context.Context, text string) (*ParsedTask, error) {
	now := time.Now()
	prompt := fmt.Sprintf(`Analyze the following task sentence and extract structured attributes.

Sentence: "%s"

Current date and time: %s

Respond with a JSON object in this format:
{
  "description": "the task content without date or priority words",
  "priority": "none" | "low" | "medium" | "high",
  "due_date": "2006-01-02T15:04:05Z07:00 or null when no deadline is mentioned"
}

Resolve relative expressions like "tomorrow" or "next friday" against the current date. Words such as "urgent" or "asap" indicate high priority. Return only valid JSON.`,
		text, now.Format(time.RFC3339))

	content, err := p.complete(ctx, "parse_task",
		"You are a helpful assistant that converts natural-language task sentences into structured JSON. Respond with valid JSON only.",
		prompt, true)
	if err != nil {
		return nil, err
	}

	var raw struct {
		Description string  `json:"description"`
		Priority    string  `json:"priority"`
		DueDate     *string `json:"due_date"`
	}
	if err := json.Unmarshal([]byte(extractJSONObject(content)), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse task response: %w", err)
	}

	parsed := &ParsedTask{
		Description: strings.TrimSpace(raw.Description),
		Priority:    raw.Priority,
		DueDate:     parseDueDate(raw.DueDate),
	}
	sanitizeParsedTask(parsed, text)
	return parsed, nil
}
