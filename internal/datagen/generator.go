// Package datagen produces synthetic credit card transactions for training.
package datagen

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Record is one synthetic transaction.
type Record struct {
	Date       time.Time
	Amount     float64
	Location   string
	Store      string
	Fraudulent bool
}

// Config controls generation.
type Config struct {
	Rows int   // number of records
	Seed int64 // PRNG seed; equal seeds yield identical files
}

// DefaultConfig returns the settings used when none are given.
func DefaultConfig() Config {
	return Config{Rows: defaultRows, Seed: defaultSeed}
}

// Generate returns cfg.Rows records drawn from a PRNG seeded with cfg.Seed.
func Generate(ctx context.Context, cfg Config) ([]Record, error) {
	if cfg.Rows <= 0 {
		return nil, fmt.Errorf("rows must be positive, got %d", cfg.Rows)
	}
	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // reproducible fixtures

	span := int64(latestDate.Sub(earliestDate) / (24 * time.Hour))
	records := make([]Record, cfg.Rows)
	for i := range records {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during generation: %w", err)
		}
		records[i] = Record{
			Date:       earliestDate.AddDate(0, 0, int(rng.Int63n(span+1))),
			Amount:     roundCents(amountMin + rng.Float64()*(amountMax-amountMin)),
			Location:   cities[rng.Intn(len(cities))],
			Store:      stores[rng.Intn(len(stores))],
			Fraudulent: rng.Float64() < fraudFraction,
		}
	}
	return records, nil
}

// Write encodes records as CSV with a header row.
func Write(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range records {
		label := falseLabel
		if r.Fraudulent {
			label = trueLabel
		}
		row := []string{
			r.Date.Format(dateLayout),
			strconv.FormatFloat(r.Amount, 'f', 2, 64),
			r.Location,
			r.Store,
			label,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile generates records and writes them to path, creating parent
// directories as needed. It returns the number of rows written.
func WriteFile(ctx context.Context, path string, cfg Config) (int, error) {
	records, err := Generate(ctx, cfg)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return 0, fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fileMode)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	if err := Write(f, records); err != nil {
		_ = f.Close()
		return 0, fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("close %s: %w", path, err)
	}
	return len(records), nil
}

func roundCents(v float64) float64 {
	return math.Round(v*centsPerUnit) / centsPerUnit
}
