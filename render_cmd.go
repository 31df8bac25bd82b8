package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Hazenbox/Vani-ai-sub001/library"
	"github.com/Hazenbox/Vani-ai-sub001/script"
	"github.com/Hazenbox/Vani-ai-sub001/scriptgen"
)

// unavailableGenerator stands in when no generation key is configured.
type unavailableGenerator struct{}

func (unavailableGenerator) Generate(context.Context, string) (*script.Script, error) {
	return nil, errors.New("script generation needs GEMINI_API_KEY")
}

var renderCmd = &cobra.Command{
	Use:   "render SLUG",
	Short: "Render an episode to audio without the TUI",
	Long: "\nRender synthesizes every line of a stored episode and writes\n" +
		"the assembled audio and line timings back into the episode\n" +
		"directory. Suitable for scripting and CI.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadUIConfig()
		if err != nil {
			return err
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

		slug := args[0]
		sc, err := deps.Store.LoadScript(slug)
		if err != nil {
			if errors.Is(err, library.ErrNotFound) {
				return fmt.Errorf("no episode %q in %s", slug, cfg.LibraryDir)
			}
			return err
		}

		fmt.Fprintf(os.Stderr, "rendering %q (%d lines)...\n", sc.Title, len(sc.Lines))
		start := time.Now()

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Minute)
		defer cancel()
		res, err := deps.Session.Run(ctx, sc)
		if err != nil {
			return err
		}
		if err := deps.Store.SaveRender(slug, res.Audio, res.Timings); err != nil {
			return err
		}

		total := res.Timings[len(res.Timings)-1].End
		fmt.Fprintf(os.Stderr, "done in %s: %s of audio (%s)\n",
			time.Since(start).Round(time.Second),
			total.Round(time.Second),
			humanize.Bytes(uint64(len(res.Audio))))
		return nil
	},
}

var newCmd = &cobra.Command{
	Use:   "new TOPIC",
	Short: "Draft a new episode script from a topic",
	Long: "\nNew asks the configured generation model for a two-host script\n" +
		"about the topic and saves it to the library, ready to edit and\n" +
		"render.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadUIConfig()
		if err != nil {
			return err
		}
		if cfg.GeminiKey == "" {
			return errors.New("script generation needs GEMINI_API_KEY")
		}

		store, err := library.Open(cfg.LibraryDir)
		if err != nil {
			return err
		}
		gen := scriptgen.NewGemini(cfg.GeminiKey)

		topic := strings.Join(args, " ")
		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()
		sc, err := gen.Generate(ctx, topic)
		if err != nil {
			return err
		}

		slug, err := store.Save(sc)
		if err != nil {
			return err
		}
		fmt.Printf("saved %q as %s (%d lines)\n", sc.Title, slug, len(sc.Lines))
		return nil
	},
}
