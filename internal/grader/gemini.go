package grader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dotwork/testadmin-service/internal/utils"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ErrUnavailable is returned when the model cannot produce a usable
// evaluation. Callers keep the attempt and surface the failure.
var ErrUnavailable = errors.New("grading model unavailable")

const (
	defaultModel   = "gemini-1.5-flash"
	requestTimeout = 60 * time.Second
)

// Evaluator grades a frozen submission.
type Evaluator interface {
	Evaluate(ctx context.Context, payload *Payload) (*Result, error)
}

type geminiEvaluator struct {
	model  *genai.GenerativeModel
	logger utils.Logger
}

// NewGeminiEvaluator builds an Evaluator backed by the Gemini API.
// The model name falls back to gemini-1.5-flash when empty.
func NewGeminiEvaluator(ctx context.Context, apiKey, modelName string, logger utils.Logger) (Evaluator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	if modelName == "" {
		modelName = defaultModel
	}

	model := client.GenerativeModel(modelName)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemInstruction)}}
	model.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema,
	}

	return &geminiEvaluator{model: model, logger: logger}, nil
}

// Evaluate sends the payload to the model and parses the structured
// verdict. One retry covers transient API failures; after that the
// error wraps ErrUnavailable.
func (g *geminiEvaluator) Evaluate(ctx context.Context, payload *Payload) (*Result, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal grading payload: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			g.logger.WarnContext(ctx, "retrying grading request", "error", lastErr)
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
			case <-time.After(2 * time.Second):
			}
		}

		result, err := g.generate(ctx, body)
		if err == nil {
			return result, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%w: %w", ErrUnavailable, lastErr)
}

func (g *geminiEvaluator) generate(ctx context.Context, body []byte) (*Result, error) {
	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := g.model.GenerateContent(reqCtx, genai.Text(string(body)))
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	raw := strings.TrimSpace(sb.String())
	if raw == "" {
		return nil, fmt.Errorf("gemini returned an empty response")
	}

	var result Result
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("failed to parse gemini response: %w", err)
	}
	if len(result.PerQuestion) == 0 {
		return nil, fmt.Errorf("gemini response has no per-question verdicts")
	}
	return &result, nil
}
