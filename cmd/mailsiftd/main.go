package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"mailsift/internal/config"
	"mailsift/internal/daemon"
	"mailsift/internal/journal"
	"mailsift/internal/llm"
	"mailsift/internal/logging"
	"mailsift/internal/mail"
	"mailsift/internal/preflight"
	"mailsift/internal/prompts"
	"mailsift/internal/tasks"
	"mailsift/internal/workflow"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	configPath := os.Getenv("MAILSIFT_CONFIG")
	cfg, path, found, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logFile, err := os.OpenFile(filepath.Join(cfg.Paths.LogDir, "mailsiftd.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		log.Fatalf("open log file: %v", err)
	}
	defer logFile.Close()

	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: logFile,
	})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	if found {
		logger.Info("configuration loaded", logging.String("path", path))
	} else {
		logger.Warn("no configuration file found, using defaults", logging.String("path", path))
	}

	for _, result := range preflight.RunAll(ctx, cfg) {
		if result.Passed {
			logger.Info("preflight check passed",
				logging.String("check", result.Name),
				logging.String("detail", result.Detail),
			)
			continue
		}
		logger.Warn("preflight check failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
		)
	}

	catalog, err := prompts.Load(cfg.Prompts.Path)
	if err != nil {
		logger.Error("load prompt catalog", logging.Error(err))
		os.Exit(1)
	}

	var artifacts *journal.Store
	if cfg.Journal.Enabled {
		artifacts, err = journal.Open(cfg.Journal.Path)
		if err != nil {
			logger.Error("open artifact journal", logging.Error(err))
			os.Exit(1)
		}
	}

	source, err := mail.NewGmailSource(ctx, cfg.Gmail, logger)
	if err != nil {
		logger.Error("init gmail source", logging.Error(err))
		os.Exit(1)
	}

	analyzer := llm.NewClient(llm.ConfigFrom(cfg.LLM))
	structurer := llm.NewStructurer(llm.NewClient(llm.ConfigFrom(cfg.StructurerLLM())))

	store := tasks.NewStore()
	runner := workflow.NewRunner(cfg, store, source, analyzer, structurer, catalog, artifacts, logger)

	d, err := daemon.New(cfg, store, runner, artifacts, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		os.Exit(1)
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("mailsiftd shutting down")
	d.Stop()
}
