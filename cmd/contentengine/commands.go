package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/parkho-ai/contentengine"
	"github.com/parkho-ai/contentengine/cache"
	"github.com/parkho-ai/contentengine/core"
	"github.com/parkho-ai/contentengine/storage"
	"github.com/parkho-ai/contentengine/storage/badger"
	"github.com/urfave/cli/v2"
)

func processCommand(c *cli.Context) error {
	ctx, cancel := signalContext(c)
	defer cancel()

	job, err := buildJob(c)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	m, stopMetrics := startMetrics(c)
	defer stopMetrics()

	engine, err := contentengine.NewEngine(ctx, cfg, contentengine.WithMetrics(m))
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}
	defer engine.Close()

	var result *core.ProcessingResult
	if c.Bool("background") {
		h, err := engine.Submit(ctx, job)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Submitted job %s\n", h.JobID())
		result, err = h.Wait(ctx)
		if err != nil {
			return err
		}
	} else {
		result, err = engine.Process(ctx, job)
		if err != nil {
			return err
		}
	}

	if err := printJSON(c, result); err != nil {
		return err
	}
	if result.Status == core.StatusFailed {
		return cli.Exit(fmt.Sprintf("job %s failed: %s", job.ID, result.Error), 1)
	}
	return nil
}

func jobShowCommand(c *cli.Context) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("job id is required")
	}
	return withJobStore(c, func(jobs storage.JobRepository) error {
		job, err := jobs.GetJob(c.Context, id)
		if err != nil {
			return err
		}
		return printJSON(c, job)
	})
}

func jobListCommand(c *cli.Context) error {
	return withJobStore(c, func(jobs storage.JobRepository) error {
		list, err := jobs.ListJobs(c.Context, c.Int("limit"))
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTATUS\tPROGRESS\tSTRATEGY\tCREATED")
		for _, job := range list {
			strategy := "-"
			if job.Result != nil && job.Result.StrategyUsed != "" {
				strategy = job.Result.StrategyUsed
			}
			fmt.Fprintf(w, "%s\t%s\t%.0f%%\t%s\t%s\n",
				job.ID, job.Status, job.Progress, strategy, job.CreatedAt.Format(time.RFC3339))
		}
		return w.Flush()
	})
}

// withJobStore opens the configured job store for the duration of fn.
func withJobStore(c *cli.Context, fn func(jobs storage.JobRepository) error) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if cfg.DBPath == "" {
		return fmt.Errorf("database path is required")
	}

	backend, err := badger.OpenBackend(cfg.DBPath, false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewJobRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer repo.Close()

	return fn(repo)
}

func cacheStatsCommand(c *cli.Context) error {
	return withCache(c, func(ac *cache.ArtifactCache) error {
		stats, err := ac.Stats(c.Context)
		if err != nil {
			return err
		}
		return printJSON(c, stats)
	})
}

func cacheSweepCommand(c *cli.Context) error {
	return withCache(c, func(ac *cache.ArtifactCache) error {
		removed, err := ac.SweepExpired(c.Context)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "Removed %d expired artifacts from %s\n", removed, ac.Dir())
		return nil
	})
}

func withCache(c *cli.Context, fn func(ac *cache.ArtifactCache) error) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	ac, err := cache.New(cfg.CacheDir, cache.WithTTL(cfg.CacheTTL))
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer ac.Release()
	return fn(ac)
}

func strategiesCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	// Listing never touches stored jobs.
	cfg.DBPath = ""
	cfg.CacheEnabled = false

	engine, err := contentengine.NewEngine(c.Context, cfg)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}
	defer engine.Close()

	return printJSON(c, engine.Orchestrator().Strategies())
}

func printJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
