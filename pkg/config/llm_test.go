package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLLMSection_Defaults(t *testing.T) {
	s := NewLLMSection()

	assert.Equal(t, SectionIDLLM, s.ID())
	assert.NoError(t, s.Validate())

	data := s.Data()
	assert.Equal(t, "", data["api_key"])
	assert.Equal(t, "https://api.deepseek.com", data["api_url"])
	assert.Equal(t, "deepseek-chat", data["model"])
	assert.Equal(t, 8, data["max_tool_rounds"])
	assert.Equal(t, 10, data["history_window"])
	assert.Equal(t, 120, data["request_timeout_seconds"])
}

func TestLLMSection_SetData(t *testing.T) {
	tests := []struct {
		name    string
		data    map[string]any
		check   func(t *testing.T, s Settings)
		wantErr bool
	}{
		{
			name: "partial update keeps other defaults",
			data: map[string]any{"api_key": "sk-1"},
			check: func(t *testing.T, s Settings) {
				assert.Equal(t, "sk-1", s.APIKey)
				assert.Equal(t, DefaultModel, s.Model)
			},
		},
		{
			name: "json numbers",
			data: map[string]any{"max_tool_rounds": float64(4), "request_timeout_seconds": float64(30)},
			check: func(t *testing.T, s Settings) {
				assert.Equal(t, 4, s.MaxToolRounds)
				assert.Equal(t, 30*time.Second, s.RequestTimeout)
			},
		},
		{
			name: "unknown keys ignored",
			data: map[string]any{"temperature": 0.2},
			check: func(t *testing.T, s Settings) {
				assert.Equal(t, DefaultSettings(), s)
			},
		},
		{name: "wrong string type", data: map[string]any{"model": 42}, wantErr: true},
		{name: "wrong number type", data: map[string]any{"history_window": "ten"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewLLMSection()
			err := s.SetData(tt.data)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, s.Settings())
		})
	}
}

func TestLLMSection_Validate(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
	}{
		{"empty url", map[string]any{"api_url": " "}},
		{"empty model", map[string]any{"model": ""}},
		{"zero rounds", map[string]any{"max_tool_rounds": 0}},
		{"negative window", map[string]any{"history_window": -1}},
		{"zero timeout", map[string]any{"request_timeout_seconds": 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewLLMSection()
			require.NoError(t, s.SetData(tt.data))
			assert.Error(t, s.Validate())
		})
	}
}

func TestLLMSection_Reset(t *testing.T) {
	s := NewLLMSection()
	s.SetAPIKey("sk")
	s.SetAPIURL("http://localhost")
	s.SetModel("other")

	s.Reset()
	assert.Equal(t, DefaultSettings(), s.Settings())
}

func TestSettings_CompletionsURL(t *testing.T) {
	for _, base := range []string{"https://api.deepseek.com", "https://api.deepseek.com/"} {
		s := Settings{APIURL: base}
		assert.Equal(t, "https://api.deepseek.com/chat/completions", s.CompletionsURL())
	}
}
