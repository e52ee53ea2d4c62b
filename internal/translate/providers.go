// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package translate

import (
	"encoding/json"
	"fmt"
)

// Provider tags for the LLM adapter. The tag drives request headers and
// body/response shape only; the calling contract is identical for all.
const (
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderCustom     = "custom"
)

// ChatMessage is a single message in a chat completion request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatUsage carries vendor-reported token counts.
type ChatUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// providerSpec is one entry of the provider strategy table: how to build
// headers and a request body for a vendor, and how to extract the completion
// text from its response. Resolved once at adapter construction.
type providerSpec struct {
	headers   func(apiKey string) map[string]string
	buildBody func(model string, messages []ChatMessage, maxTokens int, temperature float64) map[string]any
	extract   func(body []byte) (string, ChatUsage, error)
}

// providerTable maps provider tag to its spec.
var providerTable = map[string]providerSpec{
	ProviderOpenAI:     {headers: bearerHeaders, buildBody: openAIBody, extract: openAIExtract},
	ProviderOpenRouter: {headers: bearerHeaders, buildBody: openAIBody, extract: openAIExtract},
	ProviderCustom:     {headers: bearerHeaders, buildBody: openAIBody, extract: openAIExtract},
	ProviderAnthropic:  {headers: anthropicHeaders, buildBody: anthropicBody, extract: anthropicExtract},
	ProviderGemini:     {headers: geminiHeaders, buildBody: openAIBody, extract: openAIExtract},
}

// providerSpecFor resolves a provider tag. Unknown tags fall back to the
// OpenAI-compatible custom spec.
func providerSpecFor(tag string) providerSpec {
	if spec, ok := providerTable[tag]; ok {
		return spec
	}
	return providerTable[ProviderCustom]
}

func bearerHeaders(apiKey string) map[string]string {
	return map[string]string{
		"Content-Type":  "application/json",
		"Authorization": "Bearer " + apiKey,
	}
}

// anthropicHeaders uses the vendor's side-channel API-key header instead of
// a bearer token.
func anthropicHeaders(apiKey string) map[string]string {
	return map[string]string{
		"Content-Type":      "application/json",
		"x-api-key":         apiKey,
		"anthropic-version": "2023-06-01",
	}
}

// geminiHeaders uses Google's API-key header on the OpenAI-compatible endpoint.
func geminiHeaders(apiKey string) map[string]string {
	return map[string]string{
		"Content-Type":   "application/json",
		"x-goog-api-key": apiKey,
	}
}

func openAIBody(model string, messages []ChatMessage, maxTokens int, temperature float64) map[string]any {
	body := map[string]any{
		"model":    model,
		"messages": messages,
	}
	if maxTokens > 0 {
		body["max_tokens"] = maxTokens
	}
	if temperature > 0 {
		body["temperature"] = temperature
	}
	return body
}

// anthropicBody hoists the system message into the top-level system field.
func anthropicBody(model string, messages []ChatMessage, maxTokens int, _ float64) map[string]any {
	systemPrompt := ""
	rest := make([]ChatMessage, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == "system" {
			systemPrompt = msg.Content
			continue
		}
		rest = append(rest, msg)
	}

	if maxTokens <= 0 {
		maxTokens = 8192
	}
	body := map[string]any{
		"model":      model,
		"messages":   rest,
		"max_tokens": maxTokens,
	}
	if systemPrompt != "" {
		body["system"] = systemPrompt
	}
	return body
}

func openAIExtract(body []byte) (string, ChatUsage, error) {
	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
			TotalTokens      int `json:"total_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", ChatUsage{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if len(result.Choices) == 0 {
		return "", ChatUsage{}, fmt.Errorf("%w: no choices returned", ErrInvalidResponse)
	}
	usage := ChatUsage{
		PromptTokens:     result.Usage.PromptTokens,
		CompletionTokens: result.Usage.CompletionTokens,
		TotalTokens:      result.Usage.TotalTokens,
	}
	return result.Choices[0].Message.Content, usage, nil
}

func anthropicExtract(body []byte) (string, ChatUsage, error) {
	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		Usage struct {
			InputTokens  int `json:"input_tokens"`
			OutputTokens int `json:"output_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", ChatUsage{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	content := ""
	for _, c := range result.Content {
		if c.Type == "text" {
			content = c.Text
			break
		}
	}
	if content == "" {
		return "", ChatUsage{}, fmt.Errorf("%w: no text content returned", ErrInvalidResponse)
	}
	usage := ChatUsage{
		PromptTokens:     result.Usage.InputTokens,
		CompletionTokens: result.Usage.OutputTokens,
		TotalTokens:      result.Usage.InputTokens + result.Usage.OutputTokens,
	}
	return content, usage, nil
}
