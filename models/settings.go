package models

import (
	"net/url"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// ProviderKind selects the request/response shape used for chat completions.
type ProviderKind string

const (
	ProviderOpenAI    ProviderKind = "openai"
	ProviderAnthropic ProviderKind = "anthropic"
	ProviderGoogle    ProviderKind = "google"
)

func (k ProviderKind) Valid() bool {
	switch k {
	case ProviderOpenAI, ProviderAnthropic, ProviderGoogle:
		return true
	}
	return false
}

// DetectProvider derives the provider from the endpoint host. Anything that is
// not Anthropic or Google is treated as OpenAI-compatible.
func DetectProvider(endpoint string) ProviderKind {
	host := endpoint
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		host = u.Hostname()
	}
	host = strings.ToLower(host)
	switch {
	case strings.HasSuffix(host, "anthropic.com"):
		return ProviderAnthropic
	case strings.HasSuffix(host, "googleapis.com"):
		return ProviderGoogle
	default:
		return ProviderOpenAI
	}
}

const (
	DefaultAPIEndpoint = "https://api.openai.com/v1"
	DefaultModel       = "gpt-4"
	FallbackModel      = "gpt-4o-mini"
)

// APISettings is the single persisted configuration record read by every
// generation call.
type APISettings struct {
	APIKey      string       `json:"api_key"`
	APIEndpoint string       `json:"api_endpoint"`
	Model       string       `json:"model"`
	UseProxy    bool         `json:"use_proxy"`
	Provider    ProviderKind `json:"provider,omitempty"`
}

func DefaultAPISettings() APISettings {
	return APISettings{
		APIEndpoint: DefaultAPIEndpoint,
		Model:       DefaultModel,
		UseProxy:    true,
		Provider:    ProviderOpenAI,
	}
}

// Resolve fills the provider once, from the endpoint, when it was not stored explicitly.
func (s APISettings) Resolve() APISettings {
	if !s.Provider.Valid() {
		s.Provider = DetectProvider(s.APIEndpoint)
	}
	return s
}

// Setting is a key/value record; the API settings live under one fixed key.
type Setting struct {
	Key       string         `gorm:"primarykey;type:varchar(64)"`
	Value     datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

func (Setting) TableName() string { return "app_settings" }
