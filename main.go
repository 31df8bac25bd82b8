// Package main is the entry point for the vani CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/Hazenbox/Vani-ai-sub001/audio"
	"github.com/Hazenbox/Vani-ai-sub001/cache"
	"github.com/Hazenbox/Vani-ai-sub001/library"
	"github.com/Hazenbox/Vani-ai-sub001/scriptgen"
	"github.com/Hazenbox/Vani-ai-sub001/synth"
	"github.com/Hazenbox/Vani-ai-sub001/ui"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	libraryDir string
	cacheDir   string
	mockSynth  bool
	mute       bool
	mouse      bool

	rootCmd = &cobra.Command{
		Use:   "vani [DIR]",
		Short: "Author and perform two-voice Hinglish podcasts in the terminal",
		Long: "\nVani is a dialogue studio: draft a two-host script, mark it up\n" +
			"with performance cues, render it with synthesized voices, and\n" +
			"play it back with each line highlighted as it is spoken.",
		SilenceUsage: true,
		Args:         cobra.MaximumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return applyOptions(cmd)
		},
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) == 1 {
				libraryDir = args[0]
			}
			return runTUI()
		},
	}
)

// applyOptions reconciles config file values and flags.
func applyOptions(cmd *cobra.Command) error {
	if !cmd.Flags().Changed("library") {
		if v := viper.GetString("library"); v != "" {
			libraryDir = v
		}
	}
	if !cmd.Flags().Changed("cache-dir") {
		if v := viper.GetString("cache_dir"); v != "" {
			cacheDir = v
		}
	}
	if !cmd.Flags().Changed("mock") {
		mockSynth = viper.GetBool("mock")
	}
	if !cmd.Flags().Changed("mute") {
		mute = viper.GetBool("mute")
	}
	if !cmd.Flags().Changed("mouse") {
		mouse = viper.GetBool("mouse")
	}
	return nil
}

// loadUIConfig merges environment configuration over flag and config
// file values.
func loadUIConfig() (ui.Config, error) {
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return ui.Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.LibraryDir == "" {
		cfg.LibraryDir = libraryDir
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = cacheDir
	}
	cfg.MockSynthesis = cfg.MockSynthesis || mockSynth
	cfg.Mute = cfg.Mute || mute
	cfg.EnableMouse = cfg.EnableMouse || mouse
	applyDefaultDirs(&cfg)
	return cfg, nil
}

func applyDefaultDirs(cfg *ui.Config) {
	scope := gap.NewScope(gap.User, "vani")
	if cfg.LibraryDir == "" {
		if dirs, err := scope.DataDirs(); err == nil && len(dirs) > 0 {
			cfg.LibraryDir = filepath.Join(dirs[0], "episodes")
		} else {
			cfg.LibraryDir = "episodes"
		}
	}
	if cfg.CacheDir == "" {
		if dir, err := scope.CacheDir(); err == nil {
			cfg.CacheDir = filepath.Join(dir, "renders")
		} else {
			cfg.CacheDir = filepath.Join(cfg.LibraryDir, ".cache")
		}
	}
}

// buildDeps wires the live services from configuration.
func buildDeps(cfg ui.Config, logger *log.Logger) (ui.Deps, error) {
	store, err := library.Open(cfg.LibraryDir)
	if err != nil {
		return ui.Deps{}, err
	}

	renderCache, err := cache.Open(cfg.CacheDir, 512<<20)
	if err != nil {
		return ui.Deps{}, err
	}

	var provider synth.Provider
	if cfg.MockSynthesis || cfg.ElevenLabsKey == "" {
		if !cfg.MockSynthesis {
			logger.Warn("no ELEVENLABS_API_KEY set, using mock synthesis")
		}
		provider = &synth.Mock{}
	} else {
		provider = synth.NewElevenLabs(cfg.ElevenLabsKey)
	}
	session := synth.NewSession(provider,
		synth.WithCache(renderCache),
		synth.WithLogger(logger))

	var generator scriptgen.Generator
	if cfg.GeminiKey != "" {
		generator = scriptgen.NewGemini(cfg.GeminiKey)
	} else {
		generator = unavailableGenerator{}
	}

	var player audio.Player
	if cfg.Mute || cfg.MockSynthesis {
		player = &audio.MockPlayer{}
	} else {
		player, err = audio.NewOtoPlayer()
		if err != nil {
			logger.Warn("audio device unavailable, playback will be silent", "err", err)
			player = &audio.MockPlayer{}
		}
	}

	return ui.Deps{
		Store:     store,
		Session:   session,
		Generator: generator,
		Player:    player,
		Logger:    logger,
	}, nil
}

func runTUI() error {
	cfg, err := loadUIConfig()
	if err != nil {
		return err
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("vani needs a terminal; use 'vani render' for headless output")
	}

	logger, closeLog, err := setupLog(cfg.CacheDir)
	if err != nil {
		return err
	}
	defer closeLog()

	deps, err := buildDeps(cfg, logger)
	if err != nil {
		return err
	}
	if _, err := ui.NewProgram(cfg, deps).Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}
	return nil
}

// setupLog sends logs to a file so they don't fight the TUI for the
// terminal. VANI_DEBUG=1 turns on debug level.
func setupLog(dir string) (*log.Logger, func(), error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "vani.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	logger := log.NewWithOptions(f, log.Options{ReportTimestamp: true})
	if os.Getenv("VANI_DEBUG") != "" {
		logger.SetLevel(log.DebugLevel)
	}
	log.SetDefault(logger)
	return logger, func() { f.Close() }, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	tryLoadConfigFromDefaultPlaces()

	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().StringVar(&libraryDir, "library", "", "episodes directory")
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "render cache directory")
	rootCmd.PersistentFlags().BoolVar(&mockSynth, "mock", false, "fabricate audio instead of calling the voice provider")
	rootCmd.Flags().BoolVar(&mute, "mute", false, "skip the audio device")
	rootCmd.Flags().BoolVarP(&mouse, "mouse", "m", false, "enable mouse wheel")
	_ = rootCmd.Flags().MarkHidden("mouse")

	_ = viper.BindPFlag("library", rootCmd.PersistentFlags().Lookup("library"))
	_ = viper.BindPFlag("cache_dir", rootCmd.PersistentFlags().Lookup("cache-dir"))
	_ = viper.BindPFlag("mock", rootCmd.PersistentFlags().Lookup("mock"))
	_ = viper.BindPFlag("mute", rootCmd.Flags().Lookup("mute"))
	_ = viper.BindPFlag("mouse", rootCmd.Flags().Lookup("mouse"))

	viper.SetDefault("mock", false)
	viper.SetDefault("mute", false)

	rootCmd.AddCommand(newCmd, renderCmd, configCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "vani")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "vani")}, dirs...)
	}
	if c := os.Getenv("VANI_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("vani")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("vani")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if viper.ConfigFileUsed() == "" && len(dirs) > 0 {
		configFile = filepath.Join(dirs[0], "vani.yml")
	}
}
