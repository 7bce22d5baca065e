package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"inkpress/internal/ai"
	"inkpress/internal/models"
)

var (
	errAIDisabled    = errors.New("generator not configured")
	errMediaDisabled = errors.New("media store not configured")

	listMarker = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s*`)
)

const (
	defaultIdeaCount = 5
	maxIdeaCount     = 10
	maxPromptInput   = 20000
)

type AIService struct {
	gen ai.Generator
}

func NewAIService(gen ai.Generator) *AIService {
	return &AIService{gen: gen}
}

func (s *AIService) generate(ctx context.Context, prompt string) (string, error) {
	if s == nil || s.gen == nil {
		return "", models.NewUpstreamError("AI provider", errAIDisabled)
	}
	return s.gen.Generate(ctx, prompt)
}

func requireText(field, v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", models.NewValidationError(field + " is required")
	}
	if utf8.RuneCountInString(v) > maxPromptInput {
		return "", models.NewValidationError(field + " is too long")
	}
	return v, nil
}

// Ideas asks for count post ideas about topic, one per line.
func (s *AIService) Ideas(ctx context.Context, topic string, count int) ([]string, error) {
	topic, err := requireText("topic", topic)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		count = defaultIdeaCount
	}
	if count < 1 || count > maxIdeaCount {
		return nil, models.NewValidationError("count must be between 1 and 10")
	}

	prompt := fmt.Sprintf("Suggest %d blog post titles about %q. Return one title per line.", count, topic)
	text, err := s.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return parseLines(text, count), nil
}

// parseLines splits a list answer into items, dropping bullets and numbering.
func parseLines(text string, limit int) []string {
	out := make([]string, 0, limit)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(listMarker.ReplaceAllString(line, ""))
		line = strings.Trim(line, `"`)
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == limit {
			break
		}
	}
	return out
}

func (s *AIService) DraftReply(ctx context.Context, postTitle, comment string) (string, error) {
	postTitle, err := requireText("post_title", postTitle)
	if err != nil {
		return "", err
	}
	comment, err = requireText("comment", comment)
	if err != nil {
		return "", err
	}
	prompt := fmt.Sprintf("Write a short, friendly reply from the author of the post %q to this reader comment:\n\n%s", postTitle, comment)
	return s.generate(ctx, prompt)
}

func (s *AIService) Summarize(ctx context.Context, content string) (string, error) {
	content, err := requireText("content", content)
	if err != nil {
		return "", err
	}
	prompt := "Summarize the following blog post in two or three sentences:\n\n" + content
	return s.generate(ctx, prompt)
}
