// ABOUTME: CLI entrypoint for gamepilot: wires the emulator bridge, policy client, control loop,
// ABOUTME: suggestion watcher, journal, operator web server, and optional TUI, with signal handling.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/2389-research/gamepilot/config"
	"github.com/2389-research/gamepilot/emu"
	"github.com/2389-research/gamepilot/journal"
	"github.com/2389-research/gamepilot/llm"
	"github.com/2389-research/gamepilot/palette"
	"github.com/2389-research/gamepilot/pilot"
	"github.com/2389-research/gamepilot/tui"
	"github.com/2389-research/gamepilot/web"
)

var version = "dev"

// cliFlags holds command-line options layered on top of the config file.
type cliFlags struct {
	configPath  string
	provider    string
	model       string
	bridgeURL   string
	sequence    bool
	tuiMode     bool
	verbose     bool
	showVersion bool
}

func main() {
	loadDotEnv(".env")

	flags := parseFlags()
	if flags.showVersion {
		fmt.Printf("gamepilot %s\n", version)
		os.Exit(0)
	}

	os.Exit(run(flags))
}

// parseFlags parses command-line flags.
func parseFlags() cliFlags {
	var flags cliFlags

	fs := flag.NewFlagSet("gamepilot", flag.ContinueOnError)
	fs.StringVar(&flags.configPath, "config", "gamepilot.yaml", "Path to the YAML config file")
	fs.StringVar(&flags.provider, "provider", "", "Policy provider: anthropic or openai")
	fs.StringVar(&flags.model, "model", "", "Policy model name")
	fs.StringVar(&flags.bridgeURL, "bridge", "", "Emulator bridge base URL")
	fs.BoolVar(&flags.sequence, "sequence", false, "Ask for action sequences instead of single actions")
	fs.BoolVar(&flags.tuiMode, "tui", false, "Run with interactive terminal UI")
	fs.BoolVar(&flags.verbose, "verbose", false, "Log every run event to stderr")
	fs.BoolVar(&flags.showVersion, "version", false, "Print version and exit")

	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}
	return flags
}

// run wires everything together and drives the loop until shutdown.
// Returns an exit code.
func run(flags cliFlags) int {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		log.Printf("ERROR: %v", err)
		return 1
	}
	if flags.provider != "" {
		cfg.Provider = flags.provider
	}
	if flags.model != "" {
		cfg.Model = flags.model
	}
	if flags.bridgeURL != "" {
		cfg.BridgeURL = flags.bridgeURL
	}
	if flags.sequence {
		cfg.Sequence = true
	}
	if err := cfg.Validate(); err != nil {
		log.Printf("ERROR: %v", err)
		return 1
	}
	if _, err := palette.Lookup(cfg.Palette); err != nil {
		log.Printf("ERROR: %v", err)
		return 1
	}

	runID := uuid.NewString()
	events := pilot.NewEventEmitter(runID)
	defer events.Close()

	history := pilot.NewHistory()
	suggestions := pilot.NewSuggestionBox()

	client := buildPolicyClient(cfg)
	engine := pilot.NewEngine(client, history, suggestions, events, pilot.EngineConfig{
		Model:       cfg.Model,
		Provider:    cfg.Provider,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		Sequence:    cfg.Sequence,
		Retry:       llm.DefaultRetryPolicy(),
	})

	bridge := emu.NewBridgeClient(cfg.BridgeURL)
	if err := bootEmulator(bridge, cfg); err != nil {
		log.Printf("ERROR: %v", err)
		return 1
	}

	loop := pilot.NewLoop(bridge, engine, history, events, pilot.LoopConfig{
		TickInterval:  cfg.TickInterval.Std(),
		FrameInterval: cfg.FrameInterval,
		ButtonHold:    cfg.ButtonHold.Std(),
		SavePath:      cfg.SavePath,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Shut down cleanly on SIGINT/SIGTERM so the loop saves state.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	if flags.verbose {
		go logEvents(events.Subscribe())
	}

	if cfg.JournalPath != "" {
		j, err := journal.Open(cfg.JournalPath)
		if err != nil {
			log.Printf("ERROR: %v", err)
			return 1
		}
		defer j.Close()
		go j.Consume(ctx, events.Subscribe(), func(err error) {
			log.Printf("journal: %v", err)
		})
	}

	if cfg.SuggestionFile != "" {
		watcher := pilot.NewSuggestionWatcher(cfg.SuggestionFile, suggestions, events)
		go func() {
			if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("suggestion watcher: %v", err)
			}
		}()
	}

	if cfg.WebAddr != "" {
		server := web.NewServer(suggestions, history, loop, web.ServerConfig{Addr: cfg.WebAddr, RunID: runID})
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("web server: %v", err)
			}
		}()
		log.Printf("operator server on http://%s/status", cfg.WebAddr)
	}

	if flags.tuiMode {
		return runTUI(ctx, cancel, loop, events)
	}

	log.Printf("gamepilot %s run %s: model %s via %s, bridge %s", version, runID, cfg.Model, cfg.Provider, cfg.BridgeURL)
	if err := loop.Run(ctx); err != nil {
		log.Printf("ERROR: %v", err)
		return 1
	}
	return 0
}

// bootEmulator loads the configured ROM into the bridge, preferring the
// colorized image when it exists, and restores a prior save state.
func bootEmulator(bridge *emu.BridgeClient, cfg config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rom := cfg.RomPath
	if cfg.ColorRomPath != "" {
		if _, err := os.Stat(cfg.ColorRomPath); err == nil {
			rom = cfg.ColorRomPath
		}
	}
	if rom != "" {
		if err := bridge.LoadROM(ctx, rom, cfg.Palette); err != nil {
			return fmt.Errorf("loading ROM %s: %w", rom, err)
		}
		log.Printf("loaded ROM %s", rom)
	}

	if cfg.SavePath != "" {
		if _, err := os.Stat(cfg.SavePath); err == nil {
			if err := bridge.LoadState(ctx, cfg.SavePath); err != nil {
				return fmt.Errorf("restoring state %s: %w", cfg.SavePath, err)
			}
			log.Printf("restored state from %s", cfg.SavePath)
		}
	}
	return nil
}

// runTUI drives the loop in the background while Bubble Tea owns the
// terminal. Quitting the TUI cancels the loop, which saves state.
func runTUI(ctx context.Context, cancel context.CancelFunc, loop *pilot.Loop, events *pilot.EventEmitter) int {
	loopDone := make(chan error, 1)
	go func() { loopDone <- loop.Run(ctx) }()

	model := tui.NewAppModel(loop, events.Subscribe(), cancel)
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		log.Printf("ERROR: %v", err)
		cancel()
		<-loopDone
		return 1
	}

	cancel()
	if err := <-loopDone; err != nil {
		log.Printf("ERROR: %v", err)
		return 1
	}
	return 0
}

// logEvents prints run events to stderr for verbose mode.
func logEvents(ch <-chan pilot.RunEvent) {
	for ev := range ch {
		if len(ev.Data) == 0 {
			log.Printf("[%s]", ev.Kind)
			continue
		}
		log.Printf("[%s] %v", ev.Kind, ev.Data)
	}
}

func buildPolicyClient(cfg config.Config) *llm.Client {
	var opts []llm.ClientOption
	if cfg.AnthropicAPIKey != "" {
		opts = append(opts, llm.WithProvider("anthropic", llm.NewAnthropicAdapter(cfg.AnthropicAPIKey)))
	}
	if cfg.OpenAIAPIKey != "" {
		opts = append(opts, llm.WithProvider("openai", llm.NewOpenAIAdapter(cfg.OpenAIAPIKey, "")))
	}
	opts = append(opts, llm.WithDefaultProvider(cfg.Provider))
	return llm.NewClient(opts...)
}
