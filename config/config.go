// ABOUTME: Run configuration: defaults, optional YAML file, environment overrides, validation.
// ABOUTME: A missing policy-service credential is fatal at startup; the loop never starts without one.

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "100ms" parse.
type Duration time.Duration

// UnmarshalYAML accepts either a duration string ("2s", "100ms") or a
// plain integer nanosecond count.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("invalid duration value: %w", err)
	}
	*d = Duration(n)
	return nil
}

// MarshalYAML renders the duration in its string form.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d Duration) String() string { return time.Duration(d).String() }

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds everything a run needs.
type Config struct {
	// Policy service selection.
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`

	// Sequence mode asks the policy for a bracketed action list per
	// decision instead of a single action.
	Sequence bool `yaml:"sequence"`

	// Emulator bridge. ColorRomPath, when it exists on disk, is loaded
	// instead of RomPath.
	BridgeURL    string `yaml:"bridge_url"`
	RomPath      string `yaml:"rom_path"`
	ColorRomPath string `yaml:"color_rom_path"`
	SavePath     string `yaml:"save_path"`

	// Loop cadence.
	TickInterval  Duration `yaml:"tick_interval"`
	FrameInterval int      `yaml:"frame_interval"`
	ButtonHold    Duration `yaml:"button_hold"`

	// Operator surfaces.
	SuggestionFile string `yaml:"suggestion_file"`
	WebAddr        string `yaml:"web_addr"`
	JournalPath    string `yaml:"journal_path"`
	Palette        string `yaml:"palette"`

	// Credentials come from the environment only, never from the file.
	AnthropicAPIKey string `yaml:"-"`
	OpenAIAPIKey    string `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Provider:       "anthropic",
		Model:          "claude-sonnet-4-5",
		MaxTokens:      1024,
		BridgeURL:      "http://127.0.0.1:8373",
		SavePath:       "gamepilot.state",
		TickInterval:   Duration(100 * time.Millisecond),
		FrameInterval:  10,
		ButtonHold:     Duration(200 * time.Millisecond),
		SuggestionFile: "ai_suggestions.txt",
		WebAddr:        "127.0.0.1:8484",
		JournalPath:    "gamepilot.db",
		Palette:        "classic",
	}
}

// Load builds the configuration: defaults, then the YAML file at path if
// it exists, then environment overrides. Path may be empty.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Optional file; defaults apply.
		case err != nil:
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overlays environment variables on the loaded configuration.
func (c *Config) applyEnv() {
	c.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	c.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")

	if v := os.Getenv("GAMEPILOT_PROVIDER"); v != "" {
		c.Provider = v
	}
	if v := os.Getenv("GAMEPILOT_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("GAMEPILOT_BRIDGE_URL"); v != "" {
		c.BridgeURL = v
	}
	if v := os.Getenv("GAMEPILOT_WEB_ADDR"); v != "" {
		c.WebAddr = v
	}
	if v := os.Getenv("GAMEPILOT_SUGGESTION_FILE"); v != "" {
		c.SuggestionFile = v
	}
}

// Validate checks that the configuration can support a run.
func (c Config) Validate() error {
	switch c.Provider {
	case "anthropic":
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for provider %q", c.Provider)
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for provider %q", c.Provider)
		}
	default:
		return fmt.Errorf("unknown provider %q (want anthropic or openai)", c.Provider)
	}

	if c.Model == "" {
		return fmt.Errorf("model must not be empty")
	}
	if c.FrameInterval <= 0 {
		return fmt.Errorf("frame_interval must be positive, got %d", c.FrameInterval)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive, got %s", c.TickInterval)
	}
	return nil
}
