package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Models wrap JSON in markdown fences or surround it with prose more
// often than they should. These helpers pull the payload out before
// unmarshalling.

var (
	numberedLineRe = regexp.MustCompile(`^\s*\d+[.)]\s*`)
	bulletLineRe   = regexp.MustCompile(`^\s*[-*]\s*`)
)

// stripCodeFences removes a surrounding markdown code fence, with or
// without a language tag.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		// Drop the language tag line (e.g. ```json).
		first := strings.TrimSpace(s[:idx])
		if len(first) <= 10 && !strings.ContainsAny(first, "{}[]") {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// extractJSONArray returns the outermost JSON array in s, or s
// unchanged when no bracket pair is found.
func extractJSONArray(s string) string {
	s = stripCodeFences(s)
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

// extractJSONObject returns the outermost JSON object in s, or s
// unchanged when no brace pair is found.
func extractJSONObject(s string) string {
	s = stripCodeFences(s)
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

// parseOutline decodes a model response into outline nodes, dropping
// nodes with empty descriptions.
func parseOutline(content string) ([]OutlineNode, error) {
	var nodes []OutlineNode
	if err := json.Unmarshal([]byte(extractJSONArray(content)), &nodes); err != nil {
		return nil, fmt.Errorf("invalid outline JSON: %w", err)
	}
	nodes = pruneEmptyNodes(nodes)
	if len(nodes) == 0 {
		return nil, fmt.Errorf("outline has no usable nodes")
	}
	return nodes, nil
}

func pruneEmptyNodes(nodes []OutlineNode) []OutlineNode {
	kept := nodes[:0]
	for _, n := range nodes {
		n.Description = strings.TrimSpace(n.Description)
		if n.Description == "" {
			continue
		}
		n.Children = pruneEmptyNodes(n.Children)
		kept = append(kept, n)
	}
	return kept
}

// parseNumberedList extracts line items from a numbered or bulleted
// list response. Lines without a list marker are ignored.
func parseNumberedList(content string) []string {
	var items []string
	for _, line := range strings.Split(stripCodeFences(content), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		switch {
		case numberedLineRe.MatchString(trimmed):
			trimmed = numberedLineRe.ReplaceAllString(trimmed, "")
		case bulletLineRe.MatchString(trimmed):
			trimmed = bulletLineRe.ReplaceAllString(trimmed, "")
		default:
			continue
		}
		trimmed = strings.TrimSpace(trimmed)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// dueDateLayouts are the timestamp shapes models actually emit,
// tried in order.
var dueDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseDueDate parses a model-supplied due date, returning nil when
// the value is absent or unparseable.
func parseDueDate(raw *string) *time.Time {
	if raw == nil {
		return nil
	}
	s := strings.TrimSpace(*raw)
	if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "none") {
		return nil
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func validPriority(p string) bool {
	switch p {
	case "none", "low", "medium", "high":
		return true
	}
	return false
}

// sanitizeParsedTask enforces the parse contract: an empty description
// falls back to the original sentence and an unknown priority collapses
// to "none", so a sloppy model response still yields a usable task.
func sanitizeParsedTask(parsed *ParsedTask, original string) {
	if parsed.Description == "" {
		parsed.Description = strings.TrimSpace(original)
	}
	parsed.Priority = strings.ToLower(strings.TrimSpace(parsed.Priority))
	if !validPriority(parsed.Priority) {
		parsed.Priority = "none"
	}
}
