package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pavelanni/parabola/internal/llm/prompts"
	"github.com/pavelanni/parabola/internal/model"
	"github.com/pavelanni/parabola/internal/parabola"

	openai "github.com/sashabaranov/go-openai"
)

// ErrNoStep is returned when the requested step does not exist.
var ErrNoStep = errors.New("exercise has no such step")

// Explanation is the tutor's answer for one step.
type Explanation struct {
	Text     string   `json:"explanation"`
	Mistakes []string `json:"mistakes"`
}

// ExplainRequest describes what the learner is looking at.
type ExplainRequest struct {
	Lang     string
	Exercise model.Exercise
	Step     int
	Answers  map[string]string
	States   map[string]model.AnswerState
}

// Client wraps an OpenAI-compatible API client.
type Client struct {
	api     *openai.Client
	model   string
	variant prompts.Variant
}

// New creates a new tutor client. An unknown variant falls back to standard.
func New(baseURL, apiKey, modelName string, variant prompts.Variant) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if !prompts.IsValidVariant(string(variant)) {
		variant = prompts.VariantStandard
	}
	return &Client{
		api:     openai.NewClientWithConfig(config),
		model:   modelName,
		variant: variant,
	}
}

// Ping checks that the endpoint answers.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.api.ListModels(ctx); err != nil {
		return fmt.Errorf("LLM list models: %w", err)
	}
	return nil
}

// Explain asks the model to explain the current step to the learner.
func (c *Client) Explain(ctx context.Context, req ExplainRequest) (*Explanation, error) {
	data, err := buildExplainData(req)
	if err != nil {
		return nil, err
	}
	systemPrompt, err := prompts.BuildExplainPrompt(c.variant, data)
	if err != nil {
		return nil, fmt.Errorf("build prompt: %w", err)
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: explainInstruction},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM API call: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("LLM returned no choices")
	}

	raw := resp.Choices[0].Message.Content
	slog.Debug("LLM response", "raw", raw)

	var result Explanation
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("parse LLM response: %w (raw: %s)", err, raw)
	}
	if strings.TrimSpace(result.Text) == "" {
		return nil, fmt.Errorf("LLM returned an empty explanation")
	}
	if result.Mistakes == nil {
		result.Mistakes = []string{}
	}
	return &result, nil
}

const explainInstruction = `Explain this step to me. Respond ONLY with a JSON object: {"explanation": "<text>", "mistakes": ["<one entry per incorrect blank>"]}`

func buildExplainData(req ExplainRequest) (prompts.ExplainData, error) {
	ex := req.Exercise
	if req.Step < 0 || req.Step >= len(ex.Steps) {
		return prompts.ExplainData{}, fmt.Errorf("%w: %d of %d", ErrNoStep, req.Step, len(ex.Steps))
	}
	step := ex.Steps[req.Step]
	lang := req.Lang
	if lang == "" {
		lang = "en"
	}

	data := prompts.ExplainData{
		Language:    lang,
		Title:       ex.Title,
		Description: ex.Description,
		Instruction: step.Instruction,
		Explanation: step.Explanation,
		Template:    step.Template,
		StepNumber:  req.Step + 1,
		StepCount:   len(ex.Steps),
	}
	for _, b := range step.Blanks {
		state := req.States[b.ID]
		if state == "" {
			state = model.AnswerEmpty
		}
		label := b.Label
		if label == "" {
			label = b.ID
		}
		data.Blanks = append(data.Blanks, prompts.BlankData{
			Label:   label,
			Answer:  req.Answers[b.ID],
			State:   string(state),
			Correct: parabola.FormatNumber(b.CorrectAnswer),
			// A revealed hint already showed the value to the learner.
			ShowSolution: state == model.AnswerHintShown,
		})
	}
	return data, nil
}
