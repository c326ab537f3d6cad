package services

import (
	"context"
	"unicode/utf8"

	"zhiyi-cms/generation"
)

const autoFillTemperature = 0.3

const (
	translationSystemPrompt = "你是一个专业的学术翻译助手，精通中英文翻译。请提供准确、流畅、符合学术风格的翻译。"
	termSystemPrompt        = "你是一个专业的学术术语解释助手，精通中英文学术术语。请提供准确、简洁、易懂的术语解释。"
	analysisSystemPrompt    = "你是一个专业的语言分析助手，精通语法、句法和语义分析。请提供详细、准确的句子分析。"
)

// GenerationService fills translations, term definitions and sentence
// analyses. Settings are read fresh for every call.
type GenerationService interface {
	Translate(ctx context.Context, text string) (string, error)
	DefineTerm(ctx context.Context, term string) (string, error)
	AnalyzeSentence(ctx context.Context, sentence string) (string, error)
}

type generationService struct {
	settings  SettingsService
	completer Completer
}

func NewGenerationService(settings SettingsService, completer Completer) GenerationService {
	return &generationService{settings: settings, completer: completer}
}

func (s *generationService) Translate(ctx context.Context, text string) (string, error) {
	return s.complete(ctx, generation.Request{
		Task:      "translate",
		System:    translationSystemPrompt,
		Prompt:    "Translate the following English text to Chinese. Maintain academic tone and accuracy:\n\n" + text,
		MaxTokens: utf8.RuneCountInString(text) * 2,
	})
}

func (s *generationService) DefineTerm(ctx context.Context, term string) (string, error) {
	return s.complete(ctx, generation.Request{
		Task:      "define",
		System:    termSystemPrompt,
		Prompt:    "请提供以下学术术语的定义和解释，包括其在学术领域的用法：" + term,
		MaxTokens: 300,
	})
}

func (s *generationService) AnalyzeSentence(ctx context.Context, sentence string) (string, error) {
	return s.complete(ctx, generation.Request{
		Task:      "analyze",
		System:    analysisSystemPrompt,
		Prompt:    "请分析以下句子的结构、语法和含义，解释其中的复杂表达和修辞手法：\n\n" + sentence,
		MaxTokens: 500,
	})
}

func (s *generationService) complete(ctx context.Context, req generation.Request) (string, error) {
	target, err := s.settings.Target(ctx)
	if err != nil {
		return "", err
	}

	temperature := autoFillTemperature
	req.Temperature = &temperature
	return s.completer.Complete(ctx, target, req)
}
