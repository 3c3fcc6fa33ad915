package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/meetingcopilot/api/pkg/meeting"
)

// parseSuggestions decodes a model response into suggestion lists, tolerating
// markdown code fences around the JSON
func parseSuggestions(content string) (meeting.Suggestions, error) {
	suggestions := meeting.Suggestions{
		Topics:    []string{},
		Decisions: []meeting.Decision{},
		Actions:   []meeting.ActionItem{},
	}

	if err := json.Unmarshal([]byte(stripCodeFence(content)), &suggestions); err != nil {
		return meeting.Suggestions{}, fmt.Errorf("failed to parse suggestions response: %w", err)
	}

	// Normalize nil slices left by explicit JSON nulls
	if suggestions.Topics == nil {
		suggestions.Topics = []string{}
	}
	if suggestions.Decisions == nil {
		suggestions.Decisions = []meeting.Decision{}
	}
	if suggestions.Actions == nil {
		suggestions.Actions = []meeting.ActionItem{}
	}

	return suggestions, nil
}

// parseSummary decodes a model response into a structured summary
func parseSummary(content string) (*meeting.Summary, error) {
	var summary meeting.Summary
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &summary); err != nil {
		return nil, fmt.Errorf("failed to parse summary response: %w", err)
	}

	if summary.ActionItems == nil {
		summary.ActionItems = []meeting.ActionItem{}
	}
	if summary.Decisions == nil {
		summary.Decisions = []meeting.Decision{}
	}
	if summary.Topics == nil {
		summary.Topics = []meeting.TopicSummary{}
	}

	return &summary, nil
}

// stripCodeFence removes a surrounding markdown code fence if the model
// wrapped its JSON in one
func stripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
