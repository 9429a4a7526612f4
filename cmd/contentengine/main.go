// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/parkho-ai/contentengine/config"
	"github.com/parkho-ai/contentengine/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "contentengine",
		Usage: "Turn videos, documents and web pages into summaries and questions",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML configuration file",
			},
			&cli.StringSliceFlag{
				Name:  "env-file",
				Usage: "Load variables from these .env files (default .env.local, .env)",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB job store directory (overrides config)",
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "Serve Prometheus metrics on this address, e.g. :9090",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "process",
				Usage:     "Process a job from flags or a YAML job file",
				ArgsUsage: "[job.yaml]",
				Action:    processCommand,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "video", Usage: "YouTube URL to process"},
					&cli.StringSliceFlag{Name: "pdf", Usage: "PDF file to process"},
					&cli.StringSliceFlag{Name: "docx", Usage: "DOCX file to process"},
					&cli.StringSliceFlag{Name: "url", Usage: "Web page to process"},
					&cli.StringFlag{Name: "title", Usage: "Job title"},
					&cli.StringFlag{Name: "strategy", Usage: "Strategy name, or auto"},
					&cli.StringFlag{Name: "difficulty", Usage: "Question difficulty (easy, medium, hard)"},
					&cli.StringFlag{Name: "provider", Usage: "Preferred text-generation provider"},
					&cli.StringFlag{Name: "collection", Usage: "Collection id for additional context"},
					&cli.IntFlag{Name: "multiple-choice", Usage: "Number of multiple choice questions", Value: -1},
					&cli.IntFlag{Name: "true-false", Usage: "Number of true/false questions", Value: -1},
					&cli.IntFlag{Name: "short-answer", Usage: "Number of short answer questions", Value: -1},
					&cli.BoolFlag{Name: "background", Usage: "Run on the worker pool and wait for the handle"},
				},
			},
			{
				Name:  "job",
				Usage: "Inspect stored jobs",
				Subcommands: []*cli.Command{
					{
						Name:      "show",
						Usage:     "Print a stored job",
						ArgsUsage: "<job-id>",
						Action:    jobShowCommand,
					},
					{
						Name:   "list",
						Usage:  "List recent jobs",
						Action: jobListCommand,
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "limit", Usage: "Maximum number of jobs", Value: 20},
						},
					},
				},
			},
			{
				Name:  "cache",
				Usage: "Manage the audio artifact cache",
				Subcommands: []*cli.Command{
					{
						Name:   "stats",
						Usage:  "Print cache statistics",
						Action: cacheStatsCommand,
					},
					{
						Name:   "sweep",
						Usage:  "Remove expired artifacts",
						Action: cacheSweepCommand,
					},
				},
			},
			{
				Name:   "strategies",
				Usage:  "List the registered processing strategies",
				Action: strategiesCommand,
			},
		},
	}
}

// loadConfig builds the configuration from the global flags.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"), c.StringSlice("env-file")...)
	if err != nil {
		return nil, err
	}
	if db := c.String("db"); db != "" {
		cfg.DBPath = db
	}
	return cfg, nil
}

// startMetrics serves a fresh registry on --metrics-addr. It returns nil
// metrics and a no-op stop func when the flag is unset.
func startMetrics(c *cli.Context) (*metrics.Metrics, func()) {
	addr := c.String("metrics-addr")
	if addr == "" {
		return nil, func() {}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server stopped", "addr", addr, "err", err)
		}
	}()
	slog.Info("serving metrics", "addr", addr)

	return m, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(c *cli.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
