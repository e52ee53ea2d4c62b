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
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/olegiv/otrans-go/internal/logging"
)

const machineHTTPTimeout = 60 * time.Second

// QueryLengthLimit is the text length above which the machine adapter
// switches from a query-based GET to a body-based POST. The switch is
// deterministic on length alone; callers never get a query-based request
// for longer texts.
const QueryLengthLimit = 1000

// Machine is the machine-translation adapter.
type Machine struct {
	apiKey  string
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	usage   *logging.UsageRing
	logger  *slog.Logger
}

// MachineOptions configures the machine-translation adapter.
type MachineOptions struct {
	APIKey  string
	BaseURL string
	// RequestsPerSecond throttles outgoing calls (0 = no limit).
	RequestsPerSecond float64
	Usage             *logging.UsageRing
	Logger            *slog.Logger
}

// NewMachine creates a machine-translation adapter.
func NewMachine(opts MachineOptions) *Machine {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Machine{
		apiKey:  opts.APIKey,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		client:  &http.Client{Timeout: machineHTTPTimeout},
		limiter: limiter,
		usage:   opts.Usage,
		logger:  logger,
	}
}

// IsConfigured reports whether an API credential is set.
func (m *Machine) IsConfigured() bool {
	return m.apiKey != ""
}

// Translate translates a single text into targetLang. sourceLang may be
// empty to let the vendor detect it.
func (m *Machine) Translate(ctx context.Context, text, targetLang, sourceLang string) (string, error) {
	results, err := m.TranslateBatch(ctx, []string{text}, targetLang, sourceLang)
	if err != nil {
		return "", err
	}
	return results[0], nil
}

// TranslateBatch translates several texts in one request, with the same
// semantics and error taxonomy as Translate. The transport switch uses the
// combined text length.
func (m *Machine) TranslateBatch(ctx context.Context, texts []string, targetLang, sourceLang string) ([]string, error) {
	if !m.IsConfigured() {
		return nil, ErrNotConfigured
	}
	if len(texts) == 0 {
		return nil, nil
	}

	if err := m.limiter.Wait(ctx); err != nil {
		return nil, &RequestError{Op: "rate limit", Err: err}
	}

	total := 0
	for _, t := range texts {
		total += len(t)
	}

	var body []byte
	var err error
	if total > QueryLengthLimit {
		body, err = m.doPost(ctx, texts, targetLang, sourceLang)
	} else {
		body, err = m.doGet(ctx, texts, targetLang, sourceLang)
	}
	if err != nil {
		m.logger.Error("machine translation request failed",
			"target", targetLang, "source", sourceLang, "texts", len(texts), "error", err)
		return nil, err
	}

	results, err := m.parseResponse(body, len(texts))
	if err != nil {
		m.logger.Error("machine translation response invalid",
			"target", targetLang, "error", err)
		return nil, err
	}

	m.recordUsage("translate", targetLang, total, len(texts))
	return results, nil
}

// doPost issues a body-based request, used for texts over the length limit.
func (m *Machine) doPost(ctx context.Context, texts []string, targetLang, sourceLang string) ([]byte, error) {
	payload := map[string]any{
		"q":      texts,
		"target": targetLang,
		"format": "html",
	}
	if sourceLang != "" {
		payload["source"] = sourceLang
	}
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		m.baseURL+"/translate?key="+url.QueryEscape(m.apiKey), bytes.NewReader(jsonBody))
	if err != nil {
		return nil, &RequestError{Op: "new request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	return m.do(req)
}

// doGet issues a query-based request, only valid under the length limit.
func (m *Machine) doGet(ctx context.Context, texts []string, targetLang, sourceLang string) ([]byte, error) {
	q := url.Values{}
	q.Set("key", m.apiKey)
	q.Set("target", targetLang)
	q.Set("format", "html")
	if sourceLang != "" {
		q.Set("source", sourceLang)
	}
	for _, t := range texts {
		q.Add("q", t)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		m.baseURL+"/translate?"+q.Encode(), nil)
	if err != nil {
		return nil, &RequestError{Op: "new request", Err: err}
	}

	return m.do(req)
}

func (m *Machine) do(req *http.Request) ([]byte, error) {
	resp, err := m.client.Do(req)
	if err != nil {
		return nil, &RequestError{Op: "http call", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{Op: "read body", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseAPIError(resp.StatusCode, body)
	}
	return body, nil
}

// parseAPIError aggregates all vendor sub-errors into one message.
func parseAPIError(status int, body []byte) *APIError {
	var envelope struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Errors  []struct {
				Message string `json:"message"`
			} `json:"errors"`
		} `json:"error"`
	}

	message := http.StatusText(status)
	if err := json.Unmarshal(body, &envelope); err == nil {
		var parts []string
		if envelope.Error.Message != "" {
			parts = append(parts, envelope.Error.Message)
		}
		for _, sub := range envelope.Error.Errors {
			if sub.Message != "" && sub.Message != envelope.Error.Message {
				parts = append(parts, sub.Message)
			}
		}
		if len(parts) > 0 {
			message = strings.Join(parts, "; ")
		}
	}

	return &APIError{Status: status, Message: message, Raw: string(body)}
}

// parseResponse extracts translated texts from a success-shaped response.
func (m *Machine) parseResponse(body []byte, want int) ([]string, error) {
	var result struct {
		Data struct {
			Translations []struct {
				TranslatedText string `json:"translatedText"`
			} `json:"translations"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if len(result.Data.Translations) != want {
		return nil, fmt.Errorf("%w: expected %d translations, got %d",
			ErrInvalidResponse, want, len(result.Data.Translations))
	}

	texts := make([]string, len(result.Data.Translations))
	for i, t := range result.Data.Translations {
		texts[i] = t.TranslatedText
	}
	return texts, nil
}

func (m *Machine) recordUsage(operation, targetLang string, chars, texts int) {
	if m.usage == nil {
		return
	}
	m.usage.Record(logging.UsageEntry{
		Time:      time.Now(),
		APIType:   logging.APITypeMachine,
		Operation: operation,
		Usage: map[string]string{
			"target": targetLang,
			"chars":  strconv.Itoa(chars),
			"texts":  strconv.Itoa(texts),
		},
	})
}
