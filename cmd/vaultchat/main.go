// Package main provides vaultchat, a chat panel for a markdown note vault
// that answers with the active note as context and can search and edit
// the vault through tool calls.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/entrhq/vaultchat/pkg/agent"
	appconfig "github.com/entrhq/vaultchat/pkg/config"
	"github.com/entrhq/vaultchat/pkg/executor/cli"
	"github.com/entrhq/vaultchat/pkg/executor/httpapi"
	"github.com/entrhq/vaultchat/pkg/executor/tui"
	"github.com/entrhq/vaultchat/pkg/host"
	"github.com/entrhq/vaultchat/pkg/llm/openai"
	"github.com/entrhq/vaultchat/pkg/vault"
)

const version = "0.1.0"

// Config holds the command line configuration.
type Config struct {
	VaultDir    string
	ConfigPath  string
	APIKey      string
	APIURL      string
	Model       string
	Open        string
	UI          string
	Addr        string
	ShowVersion bool
}

func main() {
	// A missing .env is not an error.
	_ = godotenv.Load()

	config := parseFlags()
	if config.ShowVersion {
		fmt.Printf("vaultchat v%s\n", version)
		return
	}

	if err := config.validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	if err := run(ctx, config); err != nil {
		cancel()
		log.Fatalf("Application error: %v", err)
	}
	cancel()
}

func parseFlags() *Config {
	config := &Config{}

	flag.StringVar(&config.VaultDir, "vault", "", "Vault directory (defaults to the configured vault, then the current directory)")
	flag.StringVar(&config.ConfigPath, "config", "", "Path to the config file (default ~/.vaultchat/config.json)")
	flag.StringVar(&config.APIKey, "api-key", "", "API key (or set VAULTCHAT_API_KEY / DEEPSEEK_API_KEY)")
	flag.StringVar(&config.APIURL, "api-url", "", "Chat completions base URL (or set VAULTCHAT_API_URL)")
	flag.StringVar(&config.Model, "model", "", "Model name (or set VAULTCHAT_MODEL)")
	flag.StringVar(&config.Open, "open", "", "Note to open as the active note")
	flag.StringVar(&config.UI, "ui", "tui", "Front end: tui, cli or http")
	flag.StringVar(&config.Addr, "addr", "127.0.0.1:8765", "Listen address for -ui http")
	flag.BoolVar(&config.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "vaultchat - chat with your note vault\n\n")
		fmt.Fprintf(os.Stderr, "Usage: vaultchat [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables (also read from .env):\n")
		fmt.Fprintf(os.Stderr, "  %-20s API key\n", appconfig.EnvAPIKey)
		fmt.Fprintf(os.Stderr, "  %-20s API key fallback\n", appconfig.EnvDeepSeekAPIKey)
		fmt.Fprintf(os.Stderr, "  %-20s Chat completions base URL\n", appconfig.EnvAPIURL)
		fmt.Fprintf(os.Stderr, "  %-20s Model name\n", appconfig.EnvModel)
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  vaultchat -vault ~/Notes -open Daily/today.md\n")
		fmt.Fprintf(os.Stderr, "  vaultchat -vault ~/Notes -ui cli\n")
		fmt.Fprintf(os.Stderr, "  vaultchat -vault ~/Notes -ui http -addr :8765\n")
	}

	flag.Parse()
	return config
}

func (c *Config) validate() error {
	switch c.UI {
	case "tui", "cli", "http":
	default:
		return fmt.Errorf("unknown -ui %q (want tui, cli or http)", c.UI)
	}
	return nil
}

func run(ctx context.Context, config *Config) error {
	if err := appconfig.Initialize(config.ConfigPath); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	settings := appconfig.ResolveSettings(appconfig.GetLLM(), appconfig.Overrides{
		APIKey: config.APIKey,
		APIURL: config.APIURL,
		Model:  config.Model,
	})

	vaultSection := appconfig.GetVault()
	dir := config.VaultDir
	if dir == "" {
		dir = vaultSection.GetDir()
	}
	if dir == "" {
		dir = "."
	}

	store, err := vault.NewFileStore(dir, vaultSection.GetIgnore())
	if err != nil {
		return fmt.Errorf("failed to open vault: %w", err)
	}

	ui := appconfig.GetUI()
	width, style := ui.RenderSettings()
	renderer, err := host.NewRenderer(width, style)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	h := host.NewLocal(store, renderer)
	if config.Open != "" {
		if err := h.Open(ctx, config.Open); err != nil {
			return fmt.Errorf("failed to open %s: %w", config.Open, err)
		}
	}

	provider := openai.NewProvider(&settings)
	session := agent.NewSession(provider, &settings)
	if err := h.RegisterView(session); err != nil {
		return err
	}

	switch config.UI {
	case "cli":
		return cli.NewExecutor(session, h, cli.WithShowTools(ui.ShouldShowToolActivity())).Run(ctx)
	case "http":
		return httpapi.NewServer(session, h, version).Serve(ctx, config.Addr)
	default:
		return tui.NewExecutor(session, h, ui.ShouldShowToolActivity()).Run(ctx)
	}
}
