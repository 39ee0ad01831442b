// Package classify scores task content on the Eisenhower axes using an
// OpenAI chat completion. Every failure path degrades to the default
// score tuple so callers never have to abort a batch over one bad
// reply.
package classify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/harrisonrobin/quadrant/pkg/matrix"
)

const (
	systemPrompt = "You are a professional task analyzer. Always return JSON in the exact required format."

	maxReplyTokens = 100
)

// ErrMalformedReply reports a completion that could not be interpreted
// as the required JSON object.
var ErrMalformedReply = errors.New("malformed classification reply")

// ChatCompleter is the single call this package needs from the OpenAI
// client. *openai.Client satisfies it.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Result is a self-consistent score tuple: Quadrant is always derived
// from the (clamped) scores, never taken from the collaborator.
type Result struct {
	Urgency    int
	Importance int
	Quadrant   matrix.Quadrant
}

// Default is the fallback tuple used whenever classification cannot
// produce a trustworthy answer.
func Default() Result {
	return Result{
		Urgency:    matrix.DefaultUrgency,
		Importance: matrix.DefaultImportance,
		Quadrant:   matrix.DefaultQuadrant,
	}
}

// Classifier holds the injected completion client and model name.
type Classifier struct {
	client ChatCompleter
	model  string
}

// New builds a classifier on a fresh OpenAI client.
func New(apiKey, model string) *Classifier {
	return NewWithClient(openai.NewClient(apiKey), model)
}

// NewWithClient builds a classifier on any ChatCompleter, which lets
// tests substitute a canned collaborator.
func NewWithClient(client ChatCompleter, model string) *Classifier {
	return &Classifier{client: client, model: model}
}

// Classify scores one task. The returned Result is always usable: on
// collaborator failure or a malformed reply it is Default() and the
// error describes what went wrong. Scores are clamped to [1,5] and the
// quadrant is recomputed locally, so the three fields can never
// contradict each other even when the reply does.
func (c *Classifier) Classify(ctx context.Context, content string) (Result, error) {
	if strings.TrimSpace(content) == "" {
		return Default(), nil
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(content)},
		},
		Temperature: 0,
		MaxTokens:   maxReplyTokens,
	})
	if err != nil {
		slog.Error("classification call failed", "error", err)
		return Default(), fmt.Errorf("classification call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Default(), fmt.Errorf("%w: no choices returned", ErrMalformedReply)
	}

	urgency, importance, err := parseReply(resp.Choices[0].Message.Content)
	if err != nil {
		slog.Error("classification reply unusable", "error", err)
		return Default(), err
	}

	urgency = matrix.Clamp(urgency)
	importance = matrix.Clamp(importance)
	return Result{
		Urgency:    urgency,
		Importance: importance,
		Quadrant:   matrix.For(urgency, importance),
	}, nil
}

// buildPrompt renders the fixed scoring rubric plus the task content,
// demanding a strict JSON-only reply.
func buildPrompt(content string) string {
	var b strings.Builder
	b.WriteString("Analyze the following task and return a JSON object with:\n\n")
	b.WriteString("1. urgency (scale 1-5):\n")
	for _, level := range matrix.UrgencyLevels {
		fmt.Fprintf(&b, "    - %s\n", level)
	}
	b.WriteString("\n2. importance (scale 1-5):\n")
	for _, level := range matrix.ImportanceLevels {
		fmt.Fprintf(&b, "    - %s\n", level)
	}
	b.WriteString("\n3. quadrant (Q1/Q2/Q3/Q4) based on:\n")
	fmt.Fprintf(&b, "    Q1: Urgency >=%d AND Importance >=%d (Important & Urgent)\n", matrix.UrgencyThreshold, matrix.ImportanceThreshold)
	fmt.Fprintf(&b, "    Q2: Urgency <%d AND Importance >=%d (Important, Not Urgent)\n", matrix.UrgencyThreshold, matrix.ImportanceThreshold)
	fmt.Fprintf(&b, "    Q3: Urgency >=%d AND Importance <%d (Not Important but Urgent)\n", matrix.UrgencyThreshold, matrix.ImportanceThreshold)
	fmt.Fprintf(&b, "    Q4: Urgency <%d AND Importance <%d (Not Important, Not Urgent)\n", matrix.UrgencyThreshold, matrix.ImportanceThreshold)
	b.WriteString("\nRETURN ONLY JSON: {\"urgency\": number, \"importance\": number, \"quadrant\": \"Q1/Q2/Q3/Q4\"}\n")
	b.WriteString("NO EXPLANATION. NO ADDITIONAL TEXT.\n\n")
	fmt.Fprintf(&b, "Task: %q", content)
	return b.String()
}

// parseReply extracts the score fields from the completion text. The
// quadrant field, if present, is deliberately ignored. Code fences and
// surrounding prose are tolerated by slicing the outermost JSON object.
func parseReply(text string) (urgency, importance int, err error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return 0, 0, fmt.Errorf("%w: no JSON object in %q", ErrMalformedReply, text)
	}

	var reply struct {
		Urgency    *float64 `json:"urgency"`
		Importance *float64 `json:"importance"`
	}
	if jerr := json.Unmarshal([]byte(text[start:end+1]), &reply); jerr != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrMalformedReply, jerr)
	}
	if reply.Urgency == nil || reply.Importance == nil {
		return 0, 0, fmt.Errorf("%w: missing urgency/importance fields", ErrMalformedReply)
	}
	return int(*reply.Urgency), int(*reply.Importance), nil
}
