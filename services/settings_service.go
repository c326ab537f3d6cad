package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"time"

	"zhiyi-cms/generation"
	"zhiyi-cms/models"
	"zhiyi-cms/repositories"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SettingsKey is the record holding the generation provider configuration.
const SettingsKey = "zhiyi_api_settings"

const connectionTestTimeout = 30 * time.Second

// Completer is the generation client as seen by services.
type Completer interface {
	Complete(ctx context.Context, target generation.Target, req generation.Request) (string, error)
}

type SettingsService interface {
	Get(ctx context.Context) (models.APISettings, error)
	Update(ctx context.Context, req models.APISettingsRequest) (models.APISettings, error)
	TestConnection(ctx context.Context, req *models.APISettingsRequest) models.ConnectionTestResult
	Target(ctx context.Context) (generation.Target, error)
}

type settingsService struct {
	repo      repositories.SettingsRepository
	completer Completer
	relayURL  string
	log       zerolog.Logger
}

func NewSettingsService(repo repositories.SettingsRepository, completer Completer, relayURL string, log zerolog.Logger) SettingsService {
	return &settingsService{
		repo:      repo,
		completer: completer,
		relayURL:  relayURL,
		log:       log.With().Str("component", "settings_service").Logger(),
	}
}

// storedSettings tolerates records written before use_proxy existed.
type storedSettings struct {
	APIKey      string              `json:"api_key"`
	APIEndpoint string              `json:"api_endpoint"`
	Model       string              `json:"model"`
	UseProxy    *bool               `json:"use_proxy"`
	Provider    models.ProviderKind `json:"provider"`
}

// Get reads the record on every call. A missing record yields the defaults.
func (s *settingsService) Get(ctx context.Context) (models.APISettings, error) {
	record, err := s.repo.Get(ctx, SettingsKey)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DefaultAPISettings(), nil
	}
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to read API settings")
		return models.APISettings{}, err
	}

	var stored storedSettings
	if err := json.Unmarshal(record.Value, &stored); err != nil {
		s.log.Warn().Err(err).Msg("Stored API settings are unreadable, using defaults")
		return models.DefaultAPISettings(), nil
	}

	settings := models.APISettings{
		APIKey:      stored.APIKey,
		APIEndpoint: stored.APIEndpoint,
		Model:       stored.Model,
		UseProxy:    true,
		Provider:    stored.Provider,
	}
	if stored.UseProxy != nil {
		settings.UseProxy = *stored.UseProxy
	}
	return settings.Resolve(), nil
}

func (s *settingsService) Update(ctx context.Context, req models.APISettingsRequest) (models.APISettings, error) {
	settings, err := normalizeSettings(req)
	if err != nil {
		return models.APISettings{}, err
	}

	value, err := json.Marshal(settings)
	if err != nil {
		return models.APISettings{}, err
	}

	if err := s.repo.Save(ctx, SettingsKey, datatypes.JSON(value)); err != nil {
		s.log.Error().Err(err).Msg("Failed to save API settings")
		return models.APISettings{}, err
	}

	s.log.Info().
		Str("provider", string(settings.Provider)).
		Str("model", settings.Model).
		Bool("use_proxy", settings.UseProxy).
		Msg("API settings saved")
	return settings, nil
}

// TestConnection sends a tiny prompt with an explicit deadline. A nil req tests the stored settings.
func (s *settingsService) TestConnection(ctx context.Context, req *models.APISettingsRequest) models.ConnectionTestResult {
	var settings models.APISettings
	if req != nil {
		settings = settingsFromRequest(*req)
	} else {
		stored, err := s.Get(ctx)
		if err != nil {
			return models.ConnectionTestResult{Message: "Connection failed: could not read the stored API settings"}
		}
		settings = stored
	}

	if strings.TrimSpace(settings.APIKey) == "" {
		return models.ConnectionTestResult{Message: "Connection failed: the API key must not be empty."}
	}

	ctx, cancel := context.WithTimeout(ctx, connectionTestTimeout)
	defer cancel()

	_, err := s.completer.Complete(ctx, generation.TargetFor(settings, s.relayURL), generation.Request{
		Task:      "test",
		Prompt:    "Hello",
		MaxTokens: 5,
	})
	var genErr *generation.Error
	if errors.As(err, &genErr) && genErr.Answered() {
		// any 2xx counts as a working configuration, text or not
		err = nil
	}
	if err != nil {
		return models.ConnectionTestResult{Message: "Connection failed: " + err.Error()}
	}

	return models.ConnectionTestResult{Success: true, Message: "Connection successful! The API configuration is valid."}
}

func (s *settingsService) Target(ctx context.Context) (generation.Target, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return generation.Target{}, err
	}
	return generation.TargetFor(settings, s.relayURL), nil
}

func settingsFromRequest(req models.APISettingsRequest) models.APISettings {
	settings := models.APISettings{
		APIKey:      strings.TrimSpace(req.APIKey),
		APIEndpoint: strings.TrimSpace(req.APIEndpoint),
		Model:       strings.TrimSpace(req.Model),
		UseProxy:    true,
		Provider:    req.Provider,
	}
	if req.UseProxy != nil {
		settings.UseProxy = *req.UseProxy
	}
	if settings.Model == "" {
		settings.Model = models.FallbackModel
	}
	return settings.Resolve()
}

// normalizeSettings checks the form in order and reports the first violated rule.
func normalizeSettings(req models.APISettingsRequest) (models.APISettings, error) {
	err := firstViolation([]fieldCheck{
		{"api_key", strings.TrimSpace(req.APIKey), []validation.Rule{
			validation.Required.Error("API key is required"),
		}},
		{"api_endpoint", strings.TrimSpace(req.APIEndpoint), []validation.Rule{
			validation.Required.Error("API endpoint is required"),
			validation.By(absoluteURL),
		}},
		{"provider", string(req.Provider), []validation.Rule{
			validation.In("openai", "anthropic", "google").Error("provider must be openai, anthropic or google"),
		}},
	})
	if err != nil {
		return models.APISettings{}, err
	}

	return settingsFromRequest(req), nil
}

func absoluteURL(value interface{}) error {
	raw, _ := value.(string)
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("API endpoint must be a valid URL")
	}
	return nil
}
