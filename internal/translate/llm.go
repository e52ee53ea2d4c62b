// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/olegiv/otrans-go/internal/logging"
)

const llmHTTPTimeout = 120 * time.Second

// DefaultEvaluationScore is the score assigned when the evaluation response
// cannot be parsed as JSON. This is a deliberate policy fallback, not a
// heuristic: the raw text is kept as feedback so nothing is lost.
const DefaultEvaluationScore = 75

// Evaluation is the structured result of a translation quality check.
type Evaluation struct {
	Score        int      `json:"score"`
	Summary      string   `json:"summary"`
	Issues       []string `json:"issues"`
	Improvements []string `json:"improvements"`
	Feedback     string   `json:"feedback"`
}

// LLM is the chat-completion adapter used for translation improvement and
// evaluation. The provider tag selects headers and body/response shape at
// construction time; every call goes through the same contract.
type LLM struct {
	endpoint string
	apiKey   string
	model    string
	provider string
	spec     providerSpec
	client   *http.Client
	usage    *logging.UsageRing
	logger   *slog.Logger
}

// LLMOptions configures the LLM adapter.
type LLMOptions struct {
	Endpoint string
	APIKey   string
	Model    string
	Provider string
	Usage    *logging.UsageRing
	Logger   *slog.Logger
}

// NewLLM creates an LLM adapter, resolving the provider spec once.
func NewLLM(opts LLMOptions) *LLM {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &LLM{
		endpoint: strings.TrimRight(opts.Endpoint, "/"),
		apiKey:   opts.APIKey,
		model:    opts.Model,
		provider: opts.Provider,
		spec:     providerSpecFor(opts.Provider),
		client:   &http.Client{Timeout: llmHTTPTimeout},
		usage:    opts.Usage,
		logger:   logger,
	}
}

// IsConfigured reports whether the adapter has an endpoint and credential.
func (l *LLM) IsConfigured() bool {
	return l.endpoint != "" && l.apiKey != "" && l.model != ""
}

// Chat performs one chat completion call.
func (l *LLM) Chat(ctx context.Context, messages []ChatMessage, maxTokens int, temperature float64) (string, ChatUsage, error) {
	if !l.IsConfigured() {
		return "", ChatUsage{}, ErrNotConfigured
	}

	body := l.spec.buildBody(l.model, messages, maxTokens, temperature)
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", ChatUsage{}, fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return "", ChatUsage{}, &RequestError{Op: "new request", Err: err}
	}
	for k, v := range l.spec.headers(l.apiKey) {
		req.Header.Set(k, v)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return "", ChatUsage{}, &RequestError{Op: "http call", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", ChatUsage{}, &RequestError{Op: "read body", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", ChatUsage{}, parseAPIError(resp.StatusCode, respBody)
	}

	content, usage, err := l.spec.extract(respBody)
	if err != nil {
		return "", ChatUsage{}, err
	}
	return content, usage, nil
}

// ImproveTranslation asks the model to polish a machine translation while
// preserving meaning and HTML structure.
func (l *LLM) ImproveTranslation(ctx context.Context, original, machineTranslated, lang string) (string, error) {
	messages := []ChatMessage{
		{Role: "system", Content: improveSystemPrompt(lang)},
		{Role: "user", Content: fmt.Sprintf("Original text:\n%s\n\nMachine translation:\n%s", original, machineTranslated)},
	}

	improved, usage, err := l.Chat(ctx, messages, 8192, 0.3)
	if err != nil {
		l.logger.Error("llm improvement failed", "provider", l.provider, "lang", lang, "error", err)
		return "", err
	}

	l.recordUsage("improve", lang, usage)
	return strings.TrimSpace(improved), nil
}

// EvaluateTranslation scores a translation from 0 to 100. The model is asked
// for strict JSON; a markdown code fence around the JSON is tolerated. When
// the response still cannot be parsed, the result falls back to
// DefaultEvaluationScore with the raw text as feedback.
func (l *LLM) EvaluateTranslation(ctx context.Context, original, translated, lang string) (*Evaluation, error) {
	messages := []ChatMessage{
		{Role: "system", Content: evaluateSystemPrompt(lang)},
		{Role: "user", Content: fmt.Sprintf("Original text:\n%s\n\nTranslation:\n%s", original, translated)},
	}

	content, usage, err := l.Chat(ctx, messages, 2048, 0)
	if err != nil {
		l.logger.Error("llm evaluation failed", "provider", l.provider, "lang", lang, "error", err)
		return nil, err
	}
	l.recordUsage("evaluate", lang, usage)

	eval := &Evaluation{}
	if err := json.Unmarshal([]byte(stripCodeFence(content)), eval); err != nil {
		l.logger.Warn("llm evaluation response was not valid JSON, using default score",
			"provider", l.provider, "lang", lang)
		return &Evaluation{
			Score:    DefaultEvaluationScore,
			Feedback: content,
		}, nil
	}
	if eval.Score < 0 {
		eval.Score = 0
	}
	if eval.Score > 100 {
		eval.Score = 100
	}
	return eval, nil
}

// stripCodeFence removes a markdown code fence wrapper around a JSON payload.
func stripCodeFence(s string) string {
	cleaned := strings.TrimSpace(s)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
	} else {
		return cleaned
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	return strings.TrimSpace(cleaned)
}

func improveSystemPrompt(lang string) string {
	return fmt.Sprintf(`You are a professional translator and editor working in %s.
You receive an original text and its machine translation. Improve the translation:
fix grammar, unnatural phrasing and terminology while preserving the meaning,
tone and any HTML markup exactly as it appears.
Respond ONLY with the improved translation, no commentary.`, lang)
}

func evaluateSystemPrompt(lang string) string {
	return fmt.Sprintf(`You are a translation quality reviewer for %s.
Compare the original text with its translation and respond with a valid JSON
object (no markdown code fences, no extra text) with exactly these fields:

{
  "score": 0-100,
  "summary": "one-sentence overall assessment",
  "issues": ["list of concrete problems found"],
  "improvements": ["list of suggested fixes"],
  "feedback": "short free-form feedback for the editor"
}`, lang)
}

func (l *LLM) recordUsage(operation, lang string, usage ChatUsage) {
	if l.usage == nil {
		return
	}
	l.usage.Record(logging.UsageEntry{
		Time:      time.Now(),
		APIType:   logging.APITypeLLM,
		Operation: operation,
		Usage: map[string]string{
			"provider":          l.provider,
			"model":             l.model,
			"lang":              lang,
			"prompt_tokens":     strconv.Itoa(usage.PromptTokens),
			"completion_tokens": strconv.Itoa(usage.CompletionTokens),
			"total_tokens":      strconv.Itoa(usage.TotalTokens),
		},
	})
}
