package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
		ok   bool
	}{
		{"technology", CategoryTechnology, true},
		{"Opinions", CategoryOpinion, true},
		{"humanities", CategoryHumanities, true},
		{"科技", CategoryTechnology, true},
		{"sports", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseCategory(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}

	assert.Equal(t, "technology", CategoryTechnology.Slug())
	assert.Equal(t, "", Category("sports").Slug())
}

func TestParagraph_HasTranslation(t *testing.T) {
	empty := ""
	blank := "   "
	text := "量子"

	assert.False(t, Paragraph{English: "a"}.HasTranslation())
	assert.False(t, Paragraph{English: "a", Chinese: &empty}.HasTranslation())
	assert.False(t, Paragraph{English: "a", Chinese: &blank}.HasTranslation())
	assert.True(t, Paragraph{English: "a", Chinese: &text}.HasTranslation())
}

func TestDetectProvider(t *testing.T) {
	assert.Equal(t, ProviderOpenAI, DetectProvider("https://api.openai.com/v1"))
	assert.Equal(t, ProviderAnthropic, DetectProvider("https://api.anthropic.com/v1"))
	assert.Equal(t, ProviderGoogle, DetectProvider("https://generativelanguage.googleapis.com/v1"))
	assert.Equal(t, ProviderOpenAI, DetectProvider("http://localhost:11434/v1"))
	// a path mentioning a provider does not change the host
	assert.Equal(t, ProviderOpenAI, DetectProvider("https://example.com/anthropic.com"))
}

func TestAPISettings_Resolve(t *testing.T) {
	s := APISettings{APIEndpoint: "https://api.anthropic.com/v1"}.Resolve()
	assert.Equal(t, ProviderAnthropic, s.Provider)

	explicit := APISettings{APIEndpoint: "https://proxy.internal/v1", Provider: ProviderGoogle}.Resolve()
	assert.Equal(t, ProviderGoogle, explicit.Provider)

	defaults := DefaultAPISettings()
	assert.True(t, defaults.UseProxy)
	assert.Equal(t, DefaultModel, defaults.Model)
	assert.Empty(t, defaults.APIKey)
}
