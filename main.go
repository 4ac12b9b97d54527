package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"go-noteroll/config"
	"go-noteroll/debug"
	"go-noteroll/display"
	"go-noteroll/render"
	"go-noteroll/sequence"
	"go-noteroll/server"
	"go-noteroll/theme"
	"go-noteroll/tui"
)

var (
	configPath string
	debugLog   bool
	savePath   string
	serverPort int
	outputFile string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "noteroll",
	Short: "Show notes as draggable blocks and move them in time",
	Long: `noteroll draws the notes of a MIDI file as blocks on a piano roll.
Drag a block to move its note; the note starts at the beat where you drop it.

Examples:
  noteroll tui song.mid --save song.mid
  noteroll serve song.mid --port 8080
  noteroll snapshot song.mid -o roll.png`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if debugLog {
			return debug.Enable()
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		debug.Disable()
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui [file.mid]",
	Short: "Open the terminal piano roll",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTUI,
}

var serveCmd = &cobra.Command{
	Use:   "serve [file.mid]",
	Short: "Serve block geometry and accept drops over HTTP",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runServe,
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot [file.mid]",
	Short: "Render the note blocks to a PNG",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSnapshot,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Write the current configuration to disk",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default ~/.config/go-noteroll/config.json)")
	rootCmd.PersistentFlags().BoolVar(&debugLog, "debug", false, "Write a debug log to ~/.config/go-noteroll/debug.log")
	rootCmd.PersistentFlags().StringVarP(&savePath, "save", "s", "", "MIDI file moved notes are saved to")

	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 0, "Server port (default from config)")
	snapshotCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .png path (default noteroll-<uuid>.png)")

	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(configCmd)
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFrom(configPath)
	}
	return config.Load()
}

// loadSequence reads the MIDI file named in args, or the demo phrase
func loadSequence(args []string) (*sequence.Sequence, error) {
	if len(args) == 0 {
		return sequence.Demo(), nil
	}
	seq, err := sequence.LoadSMF(args[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", args[0], err)
	}
	return seq, nil
}

func loadTheme(cfg *config.Config) (*theme.Theme, error) {
	palette, err := theme.LoadOrDefault(cfg.Terminal.Palette)
	if err != nil {
		return nil, fmt.Errorf("palette: %w", err)
	}
	return theme.New(palette), nil
}

func setup(args []string) (*config.Config, *theme.Theme, *sequence.Sequence, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("config: %w", err)
	}
	th, err := loadTheme(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	seq, err := loadSequence(args)
	if err != nil {
		return nil, nil, nil, err
	}
	if savePath != "" && cfg.Files.AutoSave {
		sequence.NewAutoSaver(seq, savePath, cfg.Files.Debounce())
	}
	debug.Log("main", "loaded %d notes", seq.Len())
	return cfg, th, seq, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, th, seq, err := setup(args)
	if err != nil {
		return err
	}

	m, err := tui.NewModel(seq, th, tui.Options{
		Display:    cfg.Display.Options(th.BlockFill()),
		CellWidth:  cfg.Terminal.CellWidth,
		CellHeight: cfg.Terminal.CellHeight,
		SavePath:   savePath,
	})
	if err != nil {
		return err
	}
	return tui.Run(m)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, th, seq, err := setup(args)
	if err != nil {
		return err
	}

	srv, err := server.New(seq, cfg.Display.Options(th.BlockFill())...)
	if err != nil {
		return err
	}

	port := cfg.Server.Port
	if serverPort != 0 {
		port = serverPort
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("noteroll listening on :%d\n", port)
	return srv.Run(ctx, fmt.Sprintf(":%d", port))
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	cfg, th, seq, err := setup(args)
	if err != nil {
		return err
	}

	surface := display.NewContainer()
	d, err := display.New(surface, seq, cfg.Display.Options(th.BlockFill())...)
	if err != nil {
		return err
	}
	d.DrawNotes()

	out := outputFile
	if out == "" {
		out = render.DefaultPath()
	}
	if err := render.SavePNG(out, surface); err != nil {
		return err
	}
	fmt.Printf("%d blocks -> %s\n", len(d.Blocks()), out)
	return nil
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if configPath != "" {
		return cfg.SaveTo(configPath)
	}
	return cfg.Save()
}
