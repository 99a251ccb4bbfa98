// Command bedrust is an interactive CLI for hosted foundation models: chat
// with durable conversation history, image captioning, and source review.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/darko-mesaros/bedrust"
	"github.com/darko-mesaros/bedrust/config"
	"github.com/darko-mesaros/bedrust/logging"
)

func main() {
	var (
		initConfig = flag.Bool("init", false, "write the default configuration file and exit")
		modelID    = flag.String("m", "", "model id to use (defaults to the configured default_model)")
		captionDir = flag.String("c", "", "caption the images in this directory instead of chatting")
		xmlOut     = flag.Bool("x", false, "write captions as XML instead of JSON")
		sourceDir  = flag.String("s", "", "start a code review chat over this source directory")
		verbose    = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	if err := run(*initConfig, *modelID, *captionDir, *xmlOut, *sourceDir, *verbose); err != nil {
		fmt.Fprintln(os.Stderr, "bedrust:", err)
		os.Exit(1)
	}
}

func run(initConfig bool, modelID, captionDir string, xmlOut bool, sourceDir string, verbose bool) error {
	path, err := config.Path()
	if err != nil {
		return err
	}

	if initConfig {
		if err := config.Init(path, false); err != nil {
			return err
		}
		fmt.Printf("configuration file created at %s\n", path)
		return nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	level := logging.LevelWarn
	if verbose {
		level = logging.LevelDebug
	}
	logger := logging.New(level, "text", os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app, err := bedrust.New(ctx, cfg, func(o *bedrust.Options) {
		o.Logger = logger
	})
	if err != nil {
		return err
	}

	if modelID == "" {
		modelID = cfg.DefaultModel
	}
	if err := app.ValidateModel(modelID); err != nil {
		return err
	}

	switch {
	case captionDir != "":
		return app.RunCaption(ctx, modelID, captionDir, xmlOut)
	case sourceDir != "":
		return app.RunCodeReview(ctx, modelID, sourceDir)
	default:
		return app.RunChat(ctx, modelID)
	}
}
