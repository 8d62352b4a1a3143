// Package dataset loads tabular training data and prepares it for training.
package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// dateLayout is the calendar date format accepted for date columns.
const dateLayout = "2006-01-02"

// Dataset is a dense feature matrix with a binary target.
type Dataset struct {
	// Features names the columns of X in order.
	Features []string
	// X holds one row per sample.
	X [][]float64
	// Y holds the target label (0 or 1) per sample.
	Y []float64
}

// Rows returns the number of samples.
func (d Dataset) Rows() int { return len(d.Y) }

// Load reads a CSV file with a header row and turns it into a Dataset.
// target names the label column.
func Load(ctx context.Context, path, target string) (Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("open dataset %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return Read(ctx, f, target)
}

// Read parses CSV records from r. See Load.
func Read(ctx context.Context, r io.Reader, target string) (Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return Dataset{}, fmt.Errorf("%w: empty file", ErrMalformedData)
	}
	if err != nil {
		return Dataset{}, fmt.Errorf("%w: header: %w", ErrMalformedData, err)
	}

	targetIdx := -1
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
		if header[i] == target {
			targetIdx = i
		}
	}
	if targetIdx < 0 {
		return Dataset{}, fmt.Errorf("%w: target column %q not found", ErrMalformedData, target)
	}

	records, err := cr.ReadAll()
	if err != nil {
		return Dataset{}, fmt.Errorf("%w: %w", ErrMalformedData, err)
	}
	if len(records) == 0 {
		return Dataset{}, fmt.Errorf("%w: no data rows", ErrMalformedData)
	}
	if err := ctx.Err(); err != nil {
		return Dataset{}, err
	}

	ds := Dataset{
		X: make([][]float64, len(records)),
		Y: make([]float64, len(records)),
	}
	for i := range ds.X {
		ds.X[i] = make([]float64, 0, len(header)+2)
	}

	for col, name := range header {
		values := column(records, col)
		if col == targetIdx {
			labels, err := parseLabels(values)
			if err != nil {
				return Dataset{}, fmt.Errorf("%w: target %q: %w", ErrMalformedData, name, err)
			}
			ds.Y = labels
			continue
		}
		names, cols := encodeColumn(name, values)
		ds.Features = append(ds.Features, names...)
		for _, c := range cols {
			for i, v := range c {
				ds.X[i] = append(ds.X[i], v)
			}
		}
	}
	if len(ds.Features) == 0 {
		return Dataset{}, fmt.Errorf("%w: no feature columns besides %q", ErrMalformedData, target)
	}
	return ds, nil
}

func column(records [][]string, col int) []string {
	out := make([]string, len(records))
	for i, rec := range records {
		out[i] = strings.TrimSpace(rec[col])
	}
	return out
}

// encodeColumn picks a representation for one input column.
// Numeric columns pass through, dates expand into year/month/day and anything
// else is label encoded.
func encodeColumn(name string, values []string) ([]string, [][]float64) {
	if nums, ok := parseFloats(values); ok {
		return []string{name}, [][]float64{nums}
	}
	if years, months, days, ok := parseDates(values); ok {
		return []string{name + "_year", name + "_month", name + "_day"}, [][]float64{years, months, days}
	}
	return []string{name}, [][]float64{labelEncode(values)}
}

func parseFloats(values []string) ([]float64, bool) {
	out := make([]float64, len(values))
	for i, v := range values {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}

func parseDates(values []string) (years, months, days []float64, ok bool) {
	years = make([]float64, len(values))
	months = make([]float64, len(values))
	days = make([]float64, len(values))
	for i, v := range values {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return nil, nil, nil, false
		}
		years[i] = float64(t.Year())
		months[i] = float64(t.Month())
		days[i] = float64(t.Day())
	}
	return years, months, days, true
}

// labelEncode maps each distinct value to its index in sorted order.
func labelEncode(values []string) []float64 {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	classes := make([]string, 0, len(seen))
	for v := range seen {
		classes = append(classes, v)
	}
	sort.Strings(classes)

	codes := make(map[string]float64, len(classes))
	for i, c := range classes {
		codes[c] = float64(i)
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = codes[v]
	}
	return out
}

func parseLabels(values []string) ([]float64, error) {
	out := make([]float64, len(values))
	for i, v := range values {
		if b, err := strconv.ParseBool(v); err == nil {
			if b {
				out[i] = 1
			}
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || (f != 0 && f != 1) {
			return nil, fmt.Errorf("row %d: %q is not a binary label", i+1, v)
		}
		out[i] = f
	}
	return out, nil
}
