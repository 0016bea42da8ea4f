package ai

import "fmt"

// Fixed content used when the provider fails or returns output that
// cannot be parsed. List creation and subtask expansion must succeed
// even with the AI unavailable, so these stand in for model output.

// FallbackOutline returns a small generic outline for a keyword.
func FallbackOutline(keyword string) []OutlineNode {
	return []OutlineNode{
		{
			Description: fmt.Sprintf("Brainstorm tasks related to %s", keyword),
			Children: []OutlineNode{
				{Description: "Write down the first idea"},
				{Description: "Write down the second idea"},
			},
		},
		{Description: fmt.Sprintf("Prioritize the most important %s task", keyword)},
	}
}

// FallbackSubtasks returns a small generic subtask set for a task.
func FallbackSubtasks(task string) []string {
	return []string{
		fmt.Sprintf("First step towards '%s'", task),
		fmt.Sprintf("Second step towards '%s'", task),
		fmt.Sprintf("Third step towards '%s'", task),
	}
}
