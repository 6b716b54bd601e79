package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/alecthomas/kong"
	"github.com/alkime/monshin/internal/audio"
	"github.com/alkime/monshin/internal/capability"
	"github.com/alkime/monshin/internal/capture"
	"github.com/alkime/monshin/internal/intake"
	"github.com/alkime/monshin/internal/keyring"
	"github.com/alkime/monshin/internal/logger"
	"github.com/alkime/monshin/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
)

// CLI defines the intake command structure.
type CLI struct {
	Globals

	// Default command (runs when no subcommand given)
	Run RunCmd `cmd:"" default:"withargs" help:"Start the patient intake terminal UI"`

	Transcribe TranscribeCmd `cmd:"" help:"Transcribe an audio file and print the text"`
	Devices    DevicesCmd    `cmd:"" help:"List available audio devices"`
	Config     ConfigCmd     `cmd:"" help:"Manage API keys for --pipeline=local"`
}

// Globals are flags shared by every command.
type Globals struct {
	Debug   bool   `help:"Enable debug logging"`
	LogFile string `name:"log-file" type:"path" help:"Log file (the TUI defaults to one in the temp dir, other commands log to stderr)"`
}

// setupLogger opens the log destination. The TUI owns the terminal, so it
// always logs to a file.
func (g *Globals) setupLogger(toFile bool) (*slog.Logger, func(), error) {
	path := g.LogFile
	if path == "" && toFile {
		path = filepath.Join(os.TempDir(), "monshin-intake.log")
	}

	if path == "" {
		return logger.SetupCLILogger(os.Stderr, g.Debug), func() {}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return logger.SetupCLILogger(f, g.Debug), func() { _ = f.Close() }, nil
}

// RunCmd is the default command that runs the intake TUI.
type RunCmd struct {
	PipelineFlags

	InputMethod string        `name:"input-method" enum:"auto,speech,upload" default:"auto" help:"Override the detected input method (auto, speech, upload)"`
	Live        bool          `default:"true" negatable:"" help:"Allow live recognition when a microphone is present"`
	Interval    time.Duration `default:"3s" help:"How often live recognition refreshes the provisional text"`
}

// Run executes the TUI command.
//
//nolint:funlen // CLI command with multiple setup steps
func (c *RunCmd) Run(g *Globals) error {
	lg, closeLog, err := g.setupLogger(true)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pipeline, err := c.build(ctx, lg)
	if err != nil {
		return err
	}

	dev := audio.NewLevelTap(audio.NewDevice(nil), audio.DefaultLevelWindow)
	// always release the microphone when we're done
	defer dev.Release()

	detection := intake.Detect(c.environment(dev))
	lg.Info("input method detected",
		"method", detection.Method,
		"platform", detection.Platform,
		"pipeline", c.Pipeline,
	)

	recorder := capture.NewRecorder(dev, audio.EncoderConfig{})
	recognizer := capture.NewWindowedRecognizer(dev, pipeline, capture.RecognizerConfig{Interval: c.Interval})

	exec := intake.NewExecutor(pipeline, intake.Capturer{
		Recognizer: recognizer,
		Recorder:   recorder,
	}, lg)
	sess := intake.NewSession(intake.Initial(detection), exec, lg)

	wg := sync.WaitGroup{}
	wg.Go(func() {
		if err := sess.Run(ctx); err != nil {
			lg.Error("intake session error", "error", err)
		}
	})

	p := tea.NewProgram(tui.New(tui.Config{
		Session: sess,
		Files:   capture.NewFileSource(afero.NewOsFs()),
		Meter:   recorder,
		Levels:  dev,
		Cancel:  cancel,
	}), tea.WithAltScreen())

	_, runErr := p.Run()

	cancel()
	wg.Wait()

	if runErr != nil {
		return fmt.Errorf("failed to run TUI: %w", runErr)
	}

	fmt.Println("お疲れさまでした。")

	return nil
}

func (c *RunCmd) environment(dev capability.DeviceLister) intake.CapabilityProvider {
	switch c.InputMethod {
	case "speech":
		return capability.Static{Name: "override", Live: true}
	case "upload":
		return capability.Static{Name: "override"}
	default:
		return capability.NewTerminal(dev, c.Live)
	}
}

// TranscribeCmd transcribes one audio file without the TUI.
type TranscribeCmd struct {
	PipelineFlags

	File      string `arg:"" type:"existingfile" help:"Path to an audio file (max 25 MiB)"`
	Summarize bool   `help:"Also print the AI summary"`
}

// Run executes the transcribe command.
func (c *TranscribeCmd) Run(g *Globals) error {
	lg, closeLog, err := g.setupLogger(false)
	if err != nil {
		return err
	}
	defer closeLog()

	a, err := capture.NewFileSource(afero.NewOsFs()).Open(c.File)
	if err != nil {
		return fmt.Errorf("cannot use %s: %w", c.File, err)
	}

	lg.Info("transcribing", "file", a.Name, "size", humanize.IBytes(uint64(a.Size())), "type", a.MediaType)

	ctx := context.Background()

	pipeline, err := c.build(ctx, lg)
	if err != nil {
		return err
	}

	text, err := pipeline.Transcribe(ctx, a)
	if err != nil {
		return fmt.Errorf("transcription failed: %w", err)
	}

	if intake.Blank(text) {
		return errors.New(intake.MsgNoSpeech)
	}

	fmt.Println(text)

	if !c.Summarize {
		return nil
	}

	summary, err := pipeline.Summarize(ctx, text)
	if err != nil {
		return fmt.Errorf("summary failed: %w", err)
	}

	fmt.Println()
	fmt.Println(summary)

	return nil
}

// DevicesCmd lists available audio devices.
type DevicesCmd struct{}

// Run executes the devices command.
func (dcmd *DevicesCmd) Run(g *Globals) error {
	lg, closeLog, err := g.setupLogger(false)
	if err != nil {
		return err
	}
	defer closeLog()

	lg.Debug("Enumerating audio devices...")

	devices, err := audio.NewDevice(nil).EnumerateDevices(context.Background())
	if err != nil {
		return fmt.Errorf("failed to enumerate audio devices: %w", err)
	}

	if len(devices) == 0 {
		fmt.Println("no capture devices found; the intake will offer file upload only")
		return nil
	}

	for _, dev := range devices {
		marker := " "
		if dev.IsDefault {
			marker = "*"
		}

		fmt.Printf("%s %s\n", marker, dev.Name)
		for _, f := range dev.Formats {
			fmt.Printf("    %s\n", f)
		}
	}

	return nil
}

// ConfigCmd groups configuration-related subcommands.
type ConfigCmd struct {
	SetKey   SetKeyCmd   `cmd:"" help:"Store an API key in system keychain"`
	ListKeys ListKeysCmd `cmd:"" name:"list-keys" help:"Show which API keys are configured"`
}

// SetKeyCmd stores an API key in the system keychain.
type SetKeyCmd struct {
	Service string `arg:"" enum:"openai,anthropic" help:"Service name (openai or anthropic)"`
	Secret  string `arg:"" help:"API key value"`
}

// Run executes the set-key command.
func (c *SetKeyCmd) Run() error {
	if strings.TrimSpace(c.Secret) == "" {
		return errors.New("API key cannot be empty")
	}

	apiKey, err := keyring.APIKeyFromServiceName(c.Service)
	if err != nil {
		return fmt.Errorf("invalid service: %w", err)
	}

	if err := keyring.Set(apiKey, c.Secret); err != nil {
		return fmt.Errorf("failed to store API key: %w", err)
	}

	fmt.Printf("%s API key stored in keychain\n", c.Service)

	return nil
}

// ListKeysCmd shows which API keys are configured.
type ListKeysCmd struct{}

// Run executes the list-keys command.
//
//nolint:unparam // error return required by Kong interface
func (c *ListKeysCmd) Run() error {
	printKeys(os.Stdout)
	return nil
}

func printKeys(w io.Writer) {
	allSet := true

	for _, apiKey := range keyring.AllAPIKeys() {
		switch {
		case os.Getenv(apiKey.EnvVar()) != "":
			fmt.Fprintf(w, "%s: set via %s\n", apiKey.DisplayName(), apiKey.EnvVar())
		case keyring.IsSet(apiKey):
			fmt.Fprintf(w, "%s: configured\n", apiKey.DisplayName())
		default:
			fmt.Fprintf(w, "%s: not set\n", apiKey.DisplayName())
			allSet = false
		}
	}

	if !allSet {
		fmt.Fprintln(w, "\nRun 'intake config set-key <service> <key>' to configure.")
	}
}

func main() {
	cli := &CLI{} //nolint:exhaustruct // Kong fills in command fields
	ctx := kong.Parse(cli,
		kong.Name("intake"),
		kong.Description("Voice-driven patient intake for the clinic waiting room."),
		kong.UsageOnError(),
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
	os.Exit(0)
}
