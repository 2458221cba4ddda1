// Package main is the entry point for the map2prop converter.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/Faultbox/map2prop/internal/config"
	"github.com/Faultbox/map2prop/internal/convert"
	"github.com/Faultbox/map2prop/internal/logger"
)

func main() {
	flag.Usage = usage
	config.ParseFlags()

	inputs := config.Inputs()
	if len(inputs) == 0 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== map2prop ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if config.SaveRequested() {
		if err := cfg.Save(); err != nil {
			logger.Error("failed to save config", zap.Error(err))
		} else {
			logger.Info("config saved", zap.String("dir", config.ConfigDir()))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	failed := 0
	for _, input := range inputs {
		result, err := convert.Convert(ctx, cfg, input)
		if err != nil {
			logger.Error("conversion failed", logger.Input(input), zap.Error(err))
			failed++
			continue
		}
		logger.Info("conversion finished",
			logger.Input(input),
			zap.Strings("models", result.Models),
			zap.String("output", result.OutputDir))
		if len(result.MissingTextures) > 0 {
			logger.Warn("some textures are missing, check the log before compiling",
				zap.Strings("textures", result.MissingTextures))
		}
	}

	if failed > 0 {
		logger.Sync()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: map2prop [flags] <file.map|.rmf|.jmf|.obj|.ol>...\n\n")
	fmt.Fprintf(os.Stderr, "Converts level editor brushes into studio model sources.\n\n")
	fmt.Fprintf(os.Stderr, "Flags:\n")
	flag.PrintDefaults()
}
