// Package ai turns free-form reminder text into a structured draft.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
)

type Client struct {
	client *openai.Client
	model  string
}

func New(apiKey, baseURL, model string) *Client {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL

	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// ParsedReminder is the structured form of a quick-add phrase like
// "dentist tuesday 3pm #health".
type ParsedReminder struct {
	Title    string `json:"title"`
	Date     string `json:"date"`
	Category string `json:"category"`
}

const systemPromptTemplate = `You turn a short reminder phrase into structured fields.

Current time: %s

Rules:
1. title: what the user wants to be reminded about, without the time words.
2. date: the due time in RFC3339 (e.g. 2026-01-15T15:00:00+08:00). Resolve
   relative phrases ("tomorrow", "in 3 hours", "next monday") against the
   current time. If no time is given, use one hour from now.
3. category: a single word if the phrase carries one (a #tag or an obvious
   topic), otherwise an empty string.`

func systemPrompt(now time.Time) string {
	return fmt.Sprintf(systemPromptTemplate, now.Format("2006-01-02 15:04 (Monday) -07:00"))
}

var reminderSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"title": {
			"type": "string",
			"description": "What to be reminded about"
		},
		"date": {
			"type": "string",
			"description": "Due time in RFC3339"
		},
		"category": {
			"type": "string",
			"description": "Category word, or empty"
		}
	},
	"required": ["title", "date", "category"],
	"additionalProperties": false
}`)

// ParseReminder resolves the phrase against now and returns the draft fields.
func (c *Client) ParseReminder(ctx context.Context, input string, now time.Time) (*ParsedReminder, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt(now),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: input,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "reminder",
				Schema: reminderSchema,
				Strict: true,
			},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call AI API: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from AI")
	}

	parsed := &ParsedReminder{}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), parsed); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}
	return parsed, nil
}
