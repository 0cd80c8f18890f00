package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/nguyentantai21042004/meeting-digest/internal/apperror"
	"github.com/nguyentantai21042004/meeting-digest/internal/processor"
	"github.com/nguyentantai21042004/meeting-digest/internal/transcript"
)

// Provider is the name stamped on results.
const Provider = "gemini"

var errEmptyResponse = errors.New("empty response from Gemini")

type generateFunc func(ctx context.Context, apiKey, model, prompt string) (string, error)

func (s *implSummarizer) Summarize(ctx context.Context, src transcript.Source, opts processor.Options) (*processor.Result, error) {
	model := opts.Model
	if model == "" {
		model = s.model
	}

	started := time.Now()
	text, err := s.callGemini(ctx, model, buildPrompt(src, opts.Language))
	if err != nil {
		return nil, err
	}

	return &processor.Result{
		Summary: strings.TrimSpace(text),
		Metadata: processor.Metadata{
			Provider:       Provider,
			Model:          model,
			ProcessingTime: time.Since(started),
		},
	}, nil
}

// callGemini sends the prompt to Gemini and returns the summary text.
// Rotates API keys on 429 / quota errors. Once every key is rate limited the
// last 429 is returned so the retry engine can back off.
func (s *implSummarizer) callGemini(ctx context.Context, model, prompt string) (string, error) {
	if len(s.apiKeys) == 0 {
		return "", apperror.New(apperror.TypeAuthMissing, "no Gemini API key configured", nil)
	}

	var lastErr error
	for range len(s.apiKeys) {
		idx, key := s.key()

		text, err := s.generate(ctx, key, model, prompt)
		if err == nil {
			if strings.TrimSpace(text) == "" {
				return "", errEmptyResponse
			}
			return text, nil
		}

		err = toStatusError(err)
		if !rateLimited(err) {
			return "", fmt.Errorf("generate content: %w", err)
		}

		s.logger.Warn(ctx, "Key %d rate limited, rotating...", idx+1)
		s.rotateKey(idx)
		lastErr = err
	}

	return "", fmt.Errorf("all API keys exhausted: %w", lastErr)
}

func (s *implSummarizer) key() (int, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentKey, s.apiKeys[s.currentKey]
}

// rotateKey moves past from unless another call already has.
func (s *implSummarizer) rotateKey(from int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentKey == from {
		s.currentKey = (s.currentKey + 1) % len(s.apiKeys)
	}
}

func rateLimited(err error) bool {
	var se *apperror.StatusError
	if errors.As(err, &se) {
		return se.Code == 429
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "resource_exhausted") || strings.Contains(msg, "quota")
}

// toStatusError converts a Gemini API error into a StatusError so the
// classifier can map its HTTP code.
func toStatusError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return statusFromAPI(apiErr)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return statusFromAPI(*apiErrPtr)
	}
	return err
}

func statusFromAPI(e genai.APIError) *apperror.StatusError {
	msg := e.Message
	if e.Status != "" {
		msg = strings.TrimSpace(e.Status + ": " + msg)
	}
	return &apperror.StatusError{Code: e.Code, Message: msg}
}

func generateGemini(ctx context.Context, apiKey, model, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("create client: %w", err)
	}

	result, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}

	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", nil
	}

	var b strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	return b.String(), nil
}
