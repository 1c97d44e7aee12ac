package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUISection(t *testing.T) {
	s := NewUISection()
	width, style := s.RenderSettings()
	assert.Equal(t, 80, width)
	assert.Equal(t, "auto", style)
	assert.True(t, s.ShouldShowToolActivity())
	assert.NoError(t, s.Validate())

	require.NoError(t, s.SetData(map[string]any{
		"word_wrap":          float64(100),
		"markdown_style":     "dark",
		"show_tool_activity": false,
		"unknown":            "ignored",
	}))
	width, style = s.RenderSettings()
	assert.Equal(t, 100, width)
	assert.Equal(t, "dark", style)
	assert.False(t, s.ShouldShowToolActivity())
}

func TestUISection_Validate(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
	}{
		{"too narrow", map[string]any{"word_wrap": 5}},
		{"too wide", map[string]any{"word_wrap": 1000}},
		{"unknown style", map[string]any{"markdown_style": "neon"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewUISection()
			require.NoError(t, s.SetData(tt.data))
			assert.Error(t, s.Validate())
		})
	}

	s := NewUISection()
	assert.Error(t, s.SetData(map[string]any{"show_tool_activity": "yes"}))
}
