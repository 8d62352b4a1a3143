package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/okian/modelgate/internal/adapters/repository"
	service "github.com/okian/modelgate/internal/app"
	"github.com/okian/modelgate/internal/datagen"
	"github.com/okian/modelgate/internal/domain/gate"
	"github.com/okian/modelgate/internal/domain/training"
	"github.com/okian/modelgate/pkg/logger"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

const pushJob = "modelgate"

// History output formats.
const (
	formatJSON = "json"
	formatYAML = "yaml"
)

var (
	commitFlag = &cli.StringFlag{
		Name:  "commit",
		Usage: "Record the score under this version when the gate passes (e.g. 1.2)",
	}

	formatFlag = &cli.StringFlag{
		Name:  "format",
		Usage: "Output format: json or yaml",
		Value: formatJSON,
	}

	rowsFlag = &cli.IntFlag{
		Name:  "rows",
		Usage: "Number of records to generate (default: generate_rows from config)",
	}

	seedFlag = &cli.Int64Flag{
		Name:  "seed",
		Usage: "Seed of the record generator",
		Value: datagen.DefaultConfig().Seed,
	}

	outFlag = &cli.StringFlag{
		Name:  "out",
		Usage: "Output CSV path (default: data_path from config)",
	}
)

func evaluateCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:    "evaluate",
		Aliases: []string{"eval"},
		Usage:   "Train, score and compare with the last recorded score",
		UsageText: `modelgate evaluate                 # gate only, history is never written
   modelgate evaluate --commit 1.2    # gate and record the score as version 1.2`,
		Flags: []cli.Flag{
			commitFlag,
		},
		Action: func(c *cli.Context) error {
			return e.evaluate(c.Context, c.String(commitFlag.Name))
		},
	}
}

func historyCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Print the recorded score history",
		Flags: []cli.Flag{
			formatFlag,
		},
		Action: func(c *cli.Context) error {
			return e.history(c.Context, c.String(formatFlag.Name))
		},
	}
}

func generateCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Write a synthetic transaction dataset",
		Flags: []cli.Flag{
			rowsFlag,
			seedFlag,
			outFlag,
		},
		Action: func(c *cli.Context) error {
			cfg := datagen.Config{
				Rows: e.cfg.GenerateRows,
				Seed: c.Int64(seedFlag.Name),
			}
			if c.IsSet(rowsFlag.Name) {
				cfg.Rows = c.Int(rowsFlag.Name)
			}
			out := e.cfg.DataPath
			if v := c.String(outFlag.Name); v != "" {
				out = v
			}
			return e.generate(c.Context, out, cfg)
		},
	}
}

// evaluate runs the gate and, when version is not empty, records the score.
func (e *env) evaluate(ctx context.Context, version string) error {
	svc, err := e.newService()
	if err != nil {
		return err
	}

	var rep service.Report
	if version == "" {
		rep, err = svc.Evaluate(ctx)
	} else {
		rep, err = svc.Commit(ctx, version)
	}
	if err == nil || !errors.Is(err, gate.ErrTraining) {
		fmt.Fprintf(e.stdout, "Model accuracy is: %s\n", strconv.FormatFloat(rep.Score, 'f', -1, 64))
	}
	e.exportMetrics(ctx, svc)
	return err
}

func (e *env) newService() (*service.Service, error) {
	cfg := e.cfg
	history, err := repository.NewJSONHistoryStore(cfg.HistoryPath)
	if err != nil {
		return nil, err
	}
	artifacts, err := repository.NewJSONArtifactStore(cfg.ModelPath)
	if err != nil {
		return nil, err
	}
	trainer := training.NewCSVTrainer(cfg.DataPath,
		training.WithTarget(cfg.TargetColumn),
		training.WithTestSize(cfg.TestSize),
		training.WithSeed(cfg.RandomSeed),
		training.WithParams(training.Params{
			LearningRate: cfg.LearningRate,
			Epochs:       cfg.Epochs,
			L2:           cfg.L2,
		}),
	)
	return service.New(
		service.WithLogger(logger.Named("gate")),
		service.WithTrainer(trainer),
		service.WithHistoryStore(history),
		service.WithArtifactStore(artifacts),
	), nil
}

// exportMetrics writes and pushes the run metrics when configured. Export
// problems are logged; they never change the gate verdict.
func (e *env) exportMetrics(ctx context.Context, svc *service.Service) {
	log := logger.Named("metrics")
	if path := e.cfg.MetricsPath; path != "" {
		if err := svc.Metrics().WriteTextfile(path); err != nil {
			log.Warn(ctx, "metrics textfile not written", logger.Error(err))
		} else {
			log.Debug(ctx, "metrics textfile written", logger.String("path", path))
		}
	}
	if url := e.cfg.PushgatewayURL; url != "" {
		grouping := map[string]string{"run_id": svc.RunID()}
		if err := svc.Metrics().Push(ctx, url, pushJob, grouping); err != nil {
			log.Warn(ctx, "metrics push failed", logger.Error(err))
		} else {
			log.Debug(ctx, "metrics pushed", logger.String("url", url))
		}
	}
}

func (e *env) history(ctx context.Context, format string) error {
	store, err := repository.NewJSONHistoryStore(e.cfg.HistoryPath)
	if err != nil {
		return err
	}
	h, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", gate.ErrCorruptHistory, err)
	}
	if err := gate.ValidateHistory(h); err != nil {
		return err
	}

	switch format {
	case formatJSON:
		enc := json.NewEncoder(e.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(h)
	case formatYAML:
		enc := yaml.NewEncoder(e.stdout)
		enc.SetIndent(2)
		if err := enc.Encode(h); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q, want %s or %s", format, formatJSON, formatYAML)
	}
}

func (e *env) generate(ctx context.Context, out string, cfg datagen.Config) error {
	n, err := datagen.WriteFile(ctx, out, cfg)
	if err != nil {
		return err
	}
	logger.Get().Info(ctx, "dataset generated", logger.String("path", out), logger.Int("rows", n))
	fmt.Fprintf(e.stdout, "Wrote %d records to %s\n", n, out)
	return nil
}
