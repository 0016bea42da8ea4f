package ai

import (
	"context"
	"time"
)

// OutlineNode is one node of an AI-generated task outline. Children may
// nest arbitrarily deep.
type OutlineNode struct {
	Description string        `json:"description"`
	Children    []OutlineNode `json:"children,omitempty"`
}

// ParsedTask is the structured result of parsing a free-form task
// sentence.
type ParsedTask struct {
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// Provider is the interface for AI text-generation backends. Providers
// are untrusted and fallible: callers must treat every error (and every
// malformed success) as recoverable and fall back to fixed content.
type Provider interface {
	// GenerateOutline produces a nested task outline for a keyword.
	GenerateOutline(ctx context.Context, keyword string) ([]OutlineNode, error)

	// GenerateSubtasks breaks one task into a flat list of subtask
	// descriptions, given the project keyword and the ancestor task
	// descriptions from root to the task itself.
	GenerateSubtasks(ctx context.Context, task string, keyword string, ancestors []string) ([]string, error)

	// ParseTask extracts structured task attributes from free text.
	ParseTask(ctx context.Context, text string) (*ParsedTask, error)
}
