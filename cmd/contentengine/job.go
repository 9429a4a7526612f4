package main

import (
	"fmt"
	"os"

	"github.com/parkho-ai/contentengine/core"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// jobFile is the YAML layout accepted by the process command.
type jobFile struct {
	ID      string                 `yaml:"id"`
	Title   string                 `yaml:"title"`
	Sources []core.ContentSource   `yaml:"sources"`
	Options core.ProcessingOptions `yaml:"options"`
}

// readJobFile loads a job from a YAML file.
func readJobFile(path string) (*core.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job file %s: %w", path, err)
	}
	var f jobFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, core.ValidationError(fmt.Sprintf("invalid job file %s", path), err)
	}
	return &core.Job{ID: f.ID, Title: f.Title, Sources: f.Sources, Options: f.Options}, nil
}

// buildJob reads the job file argument when given, then applies the
// command flags on top. Sources from flags are appended.
func buildJob(c *cli.Context) (*core.Job, error) {
	job := &core.Job{}
	if path := c.Args().First(); path != "" {
		var err error
		if job, err = readJobFile(path); err != nil {
			return nil, err
		}
	}

	for _, flag := range []struct {
		name string
		kind core.ContentType
	}{
		{"video", core.ContentTypeVideo},
		{"pdf", core.ContentTypePDF},
		{"docx", core.ContentTypeDOCX},
		{"url", core.ContentTypeWebPage},
	} {
		for _, ref := range c.StringSlice(flag.name) {
			job.Sources = append(job.Sources, core.ContentSource{ContentType: flag.kind, Reference: ref})
		}
	}

	if v := c.String("title"); v != "" {
		job.Title = v
	}
	if v := c.String("strategy"); v != "" {
		job.Options.Strategy = v
	}
	if v := c.String("difficulty"); v != "" {
		job.Options.Difficulty = core.Difficulty(v)
	}
	if v := c.String("provider"); v != "" {
		job.Options.PreferredProvider = v
	}
	if v := c.String("collection"); v != "" {
		job.Options.CollectionID = v
	}

	for _, flag := range []struct {
		name string
		kind core.QuestionType
	}{
		{"multiple-choice", core.QuestionTypeMultipleChoice},
		{"true-false", core.QuestionTypeTrueFalse},
		{"short-answer", core.QuestionTypeShortAnswer},
	} {
		if n := c.Int(flag.name); n >= 0 {
			if job.Options.QuestionCounts == nil {
				job.Options.QuestionCounts = make(map[core.QuestionType]int)
			}
			job.Options.QuestionCounts[flag.kind] = n
		}
	}

	if len(job.Sources) == 0 {
		return nil, core.ValidationError("no content sources provided", core.ErrNoSources)
	}
	return job, nil
}
