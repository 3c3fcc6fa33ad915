// Package ai calls the external AI engine for suggestion extraction, final
// summarization, and note enhancement. The engine is an opaque service; this
// package only shapes prompts and parses responses.
package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/meetingcopilot/api/pkg/meeting"
)

// Service defines the AI operations used by the application
type Service interface {
	// GenerateSuggestions extracts topics, decisions, and action items from
	// an in-progress transcript
	GenerateSuggestions(ctx context.Context, transcript []string) (meeting.Suggestions, error)

	// GenerateSummary produces the final structured summary from the full
	// segment list once a meeting ends
	GenerateSummary(ctx context.Context, title string, segments []meeting.TranscriptSegment) (*meeting.Summary, error)

	// EnhanceNotes rewrites user-authored raw notes into polished prose
	EnhanceNotes(ctx context.Context, rawNotes string) (string, error)
}

const suggestionsSystemPrompt = `You are a meeting copilot listening to an in-progress meeting.
From the transcript so far, extract the topics discussed, the decisions made, and the action items assigned.
Respond with a single JSON object of the shape:
{"topics": ["..."], "decisions": [{"text": "...", "confidence": 0.0}], "actions": [{"text": "...", "assignee": "", "due_date": "", "priority": "", "confidence": 0.0}]}
Use empty arrays when nothing qualifies. Respond with JSON only, no prose.`

const summarySystemPrompt = `You are a meeting copilot producing the final summary of a finished meeting.
From the transcript, write an overall synthesis, a detailed variant, and per-topic syntheses, plus the decision and action item lists.
Respond with a single JSON object of the shape:
{"overall": "...", "detailed": "...", "action_items": [{"text": "...", "assignee": "", "due_date": "", "priority": "", "confidence": 0.0}], "decisions": [{"text": "...", "confidence": 0.0}], "topics": [{"topic": "...", "synthesis": "..."}]}
Respond with JSON only, no prose.`

const enhanceNotesSystemPrompt = `You are a meeting copilot. Rewrite the user's rough meeting notes into clear, well-organized prose.
Keep every fact from the original notes; do not invent content. Respond with the rewritten notes only.`

// OpenAIService implements Service against the OpenAI API
type OpenAIService struct {
	client openai.Client
	model  string
}

// NewOpenAIService creates the AI service. An empty model selects gpt-4o-mini.
func NewOpenAIService(apiKey, model string) *OpenAIService {
	if model == "" {
		model = openai.ChatModelGPT4oMini
	}
	return &OpenAIService{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

// GenerateSuggestions extracts live suggestions from the transcript so far
func (s *OpenAIService) GenerateSuggestions(ctx context.Context, transcript []string) (meeting.Suggestions, error) {
	content, err := s.complete(ctx, suggestionsSystemPrompt, strings.Join(transcript, "\n"))
	if err != nil {
		return meeting.Suggestions{}, err
	}
	return parseSuggestions(content)
}

// GenerateSummary produces the final structured summary
func (s *OpenAIService) GenerateSummary(ctx context.Context, title string, segments []meeting.TranscriptSegment) (*meeting.Summary, error) {
	var sb strings.Builder
	if title != "" {
		fmt.Fprintf(&sb, "Meeting title: %s\n\n", title)
	}
	for _, seg := range segments {
		if seg.Speaker != "" {
			fmt.Fprintf(&sb, "[%.0fs] %s: %s\n", seg.Timestamp, seg.Speaker, seg.Text)
		} else {
			fmt.Fprintf(&sb, "[%.0fs] %s\n", seg.Timestamp, seg.Text)
		}
	}

	content, err := s.complete(ctx, summarySystemPrompt, sb.String())
	if err != nil {
		return nil, err
	}
	return parseSummary(content)
}

// EnhanceNotes rewrites raw notes into polished prose
func (s *OpenAIService) EnhanceNotes(ctx context.Context, rawNotes string) (string, error) {
	content, err := s.complete(ctx, enhanceNotesSystemPrompt, rawNotes)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

// complete runs one system+user chat completion and returns the raw content
func (s *OpenAIService) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: s.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	})
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}
