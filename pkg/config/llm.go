package config

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	// SectionIDLLM is the identifier for the LLM settings section
	SectionIDLLM = "llm"

	DefaultAPIURL                = "https://api.deepseek.com"
	DefaultModel                 = "deepseek-chat"
	DefaultMaxToolRounds         = 8
	DefaultHistoryWindow         = 10
	DefaultRequestTimeoutSeconds = 120
)

// Settings is the resolved, read-only view of the chat endpoint settings
// handed to the orchestrator and provider.
type Settings struct {
	APIKey         string
	APIURL         string
	Model          string
	MaxToolRounds  int
	HistoryWindow  int
	RequestTimeout time.Duration
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		APIURL:         DefaultAPIURL,
		Model:          DefaultModel,
		MaxToolRounds:  DefaultMaxToolRounds,
		HistoryWindow:  DefaultHistoryWindow,
		RequestTimeout: DefaultRequestTimeoutSeconds * time.Second,
	}
}

// CompletionsURL returns {api_url}/chat/completions.
func (s *Settings) CompletionsURL() string {
	return strings.TrimRight(s.APIURL, "/") + "/chat/completions"
}

// LLMSection manages the chat endpoint settings.
type LLMSection struct {
	APIKey                string
	APIURL                string
	Model                 string
	MaxToolRounds         int
	HistoryWindow         int
	RequestTimeoutSeconds int
	mu                    sync.RWMutex
}

// NewLLMSection creates a new LLM section with default settings.
func NewLLMSection() *LLMSection {
	s := &LLMSection{}
	s.Reset()
	return s
}

// ID returns the section identifier.
func (s *LLMSection) ID() string {
	return SectionIDLLM
}

// Title returns the section title.
func (s *LLMSection) Title() string {
	return "LLM Settings"
}

// Description returns the section description.
func (s *LLMSection) Description() string {
	return "Chat completion endpoint, model and API key. The key is sent as a Bearer token to {api_url}/chat/completions."
}

// Data returns the current configuration data.
func (s *LLMSection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]any{
		"api_key":                 s.APIKey,
		"api_url":                 s.APIURL,
		"model":                   s.Model,
		"max_tool_rounds":         s.MaxToolRounds,
		"history_window":          s.HistoryWindow,
		"request_timeout_seconds": s.RequestTimeoutSeconds,
	}
}

// SetData merges the provided data over the current values.
// Unknown keys are ignored.
func (s *LLMSection) SetData(data map[string]any) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		var err error
		switch key {
		case "api_key":
			err = setString(&s.APIKey, key, value)
		case "api_url":
			err = setString(&s.APIURL, key, value)
		case "model":
			err = setString(&s.Model, key, value)
		case "max_tool_rounds":
			err = setInt(&s.MaxToolRounds, key, value)
		case "history_window":
			err = setInt(&s.HistoryWindow, key, value)
		case "request_timeout_seconds":
			err = setInt(&s.RequestTimeoutSeconds, key, value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Validate validates the current configuration. An empty API key is allowed
// here and rejected when a message is sent.
func (s *LLMSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if strings.TrimSpace(s.APIURL) == "" {
		return fmt.Errorf("api_url must not be empty")
	}
	if s.Model == "" {
		return fmt.Errorf("model must not be empty")
	}
	if s.MaxToolRounds < 1 {
		return fmt.Errorf("max_tool_rounds must be at least 1, got %d", s.MaxToolRounds)
	}
	if s.HistoryWindow < 0 {
		return fmt.Errorf("history_window must not be negative, got %d", s.HistoryWindow)
	}
	if s.RequestTimeoutSeconds < 1 {
		return fmt.Errorf("request_timeout_seconds must be at least 1, got %d", s.RequestTimeoutSeconds)
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *LLMSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.APIKey = ""
	s.APIURL = DefaultAPIURL
	s.Model = DefaultModel
	s.MaxToolRounds = DefaultMaxToolRounds
	s.HistoryWindow = DefaultHistoryWindow
	s.RequestTimeoutSeconds = DefaultRequestTimeoutSeconds
}

// Settings returns a snapshot of the section as Settings.
func (s *LLMSection) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Settings{
		APIKey:         s.APIKey,
		APIURL:         s.APIURL,
		Model:          s.Model,
		MaxToolRounds:  s.MaxToolRounds,
		HistoryWindow:  s.HistoryWindow,
		RequestTimeout: time.Duration(s.RequestTimeoutSeconds) * time.Second,
	}
}

// SetAPIKey sets the API key.
func (s *LLMSection) SetAPIKey(apiKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.APIKey = apiKey
}

// SetAPIURL sets the endpoint base URL.
func (s *LLMSection) SetAPIURL(apiURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.APIURL = apiURL
}

// SetModel sets the model name.
func (s *LLMSection) SetModel(model string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Model = model
}

func setString(dst *string, key string, value any) error {
	v, ok := value.(string)
	if !ok {
		return fmt.Errorf("invalid value type for %s: expected string, got %T", key, value)
	}
	*dst = v
	return nil
}

// setInt accepts JSON numbers, which decode as float64.
func setInt(dst *int, key string, value any) error {
	switch v := value.(type) {
	case float64:
		*dst = int(v)
	case int:
		*dst = v
	case int64:
		*dst = int(v)
	default:
		return fmt.Errorf("invalid value type for %s: expected number, got %T", key, value)
	}
	return nil
}
