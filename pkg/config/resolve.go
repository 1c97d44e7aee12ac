package config

import "os"

// Environment variables consulted by ResolveSettings.
const (
	EnvAPIKey = "VAULTCHAT_API_KEY"
	EnvAPIURL = "VAULTCHAT_API_URL"
	EnvModel  = "VAULTCHAT_MODEL"

	// EnvDeepSeekAPIKey is read when EnvAPIKey is unset.
	EnvDeepSeekAPIKey = "DEEPSEEK_API_KEY"
)

// Overrides holds values given on the command line.
type Overrides struct {
	APIKey string
	APIURL string
	Model  string
}

// ResolveSettings builds the effective settings with the precedence
// command line > environment > config file > defaults.
// A nil section means no config file was loaded.
func ResolveSettings(section *LLMSection, o Overrides) Settings {
	settings := DefaultSettings()
	if section != nil {
		settings = section.Settings()
	}

	settings.APIKey = firstNonEmpty(o.APIKey, os.Getenv(EnvAPIKey), os.Getenv(EnvDeepSeekAPIKey), settings.APIKey)
	settings.APIURL = firstNonEmpty(o.APIURL, os.Getenv(EnvAPIURL), settings.APIURL, DefaultAPIURL)
	settings.Model = firstNonEmpty(o.Model, os.Getenv(EnvModel), settings.Model, DefaultModel)

	return settings
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
