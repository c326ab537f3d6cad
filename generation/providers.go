package generation

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"zhiyi-cms/models"
)

var errEmptyCompletion = errors.New("completion text is empty")

// provider builds the request and parses the response for one API family.
type provider interface {
	url(t Target) string
	setHeaders(h http.Header, t Target)
	body(t Target, req Request) interface{}
	parse(data []byte) (string, error)
}

func providerFor(kind models.ProviderKind) provider {
	switch kind {
	case models.ProviderAnthropic:
		return anthropicProvider{}
	case models.ProviderGoogle:
		return googleProvider{}
	default:
		return openAIProvider{}
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// OpenAI-compatible chat completions.

type openAIProvider struct{}

type openAIRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (openAIProvider) url(t Target) string {
	return t.BaseURL + "/chat/completions"
}

func (openAIProvider) setHeaders(h http.Header, t Target) {
	h.Set("Authorization", "Bearer "+t.APIKey)
}

func (openAIProvider) body(t Target, req Request) interface{} {
	messages := make([]chatMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	return openAIRequest{
		Model:       t.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
}

func (openAIProvider) parse(data []byte) (string, error) {
	var resp openAIResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in response")
	}
	return nonEmpty(resp.Choices[0].Message.Content)
}

// Anthropic messages API.

const anthropicVersion = "2023-06-01"

type anthropicProvider struct{}

type anthropicRequest struct {
	Model       string        `json:"model"`
	System      string        `json:"system,omitempty"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (anthropicProvider) url(t Target) string {
	return t.BaseURL + "/messages"
}

func (anthropicProvider) setHeaders(h http.Header, t Target) {
	h.Set("x-api-key", t.APIKey)
	h.Set("Authorization", "Bearer "+t.APIKey)
	h.Set("anthropic-version", anthropicVersion)
}

func (anthropicProvider) body(t Target, req Request) interface{} {
	return anthropicRequest{
		Model:       t.Model,
		System:      req.System,
		Messages:    []chatMessage{{Role: "user", Content: req.Prompt}},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
}

func (anthropicProvider) parse(data []byte) (string, error) {
	var resp anthropicResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", err
	}
	for _, block := range resp.Content {
		if block.Type == "text" {
			return nonEmpty(block.Text)
		}
	}
	return "", errors.New("no text block in response")
}

// Google generateContent API.

type googleProvider struct{}

type googlePart struct {
	Text string `json:"text"`
}

type googleContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []googlePart `json:"parts"`
}

type googleGenerationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
}

type googleRequest struct {
	SystemInstruction *googleContent         `json:"systemInstruction,omitempty"`
	Contents          []googleContent        `json:"contents"`
	GenerationConfig  googleGenerationConfig `json:"generationConfig"`
}

type googleResponse struct {
	Candidates []struct {
		Content googleContent `json:"content"`
	} `json:"candidates"`
}

func (googleProvider) url(t Target) string {
	return fmt.Sprintf("%s/models/%s:generateContent", t.BaseURL, url.PathEscape(t.Model))
}

func (googleProvider) setHeaders(h http.Header, t Target) {
	h.Set("x-goog-api-key", t.APIKey)
	h.Set("Authorization", "Bearer "+t.APIKey)
}

func (googleProvider) body(t Target, req Request) interface{} {
	body := googleRequest{
		Contents: []googleContent{{Role: "user", Parts: []googlePart{{Text: req.Prompt}}}},
		GenerationConfig: googleGenerationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxTokens,
		},
	}
	if req.System != "" {
		body.SystemInstruction = &googleContent{Parts: []googlePart{{Text: req.System}}}
	}
	return body
}

func (googleProvider) parse(data []byte) (string, error) {
	var resp googleResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("no candidates in response")
	}
	return nonEmpty(resp.Candidates[0].Content.Parts[0].Text)
}

func nonEmpty(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errEmptyCompletion
	}
	return text, nil
}

// errorDetail pulls a readable message out of a provider error body.
func errorDetail(status int, data []byte) string {
	var structured struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(data, &structured); err == nil && len(structured.Error) > 0 {
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(structured.Error, &nested); err == nil && nested.Message != "" {
			return nested.Message
		}
		var plain string
		if err := json.Unmarshal(structured.Error, &plain); err == nil && plain != "" {
			return plain
		}
	}

	if text := strings.TrimSpace(string(data)); text != "" {
		if len(text) > 300 {
			text = text[:300]
		}
		return text
	}
	return http.StatusText(status)
}
