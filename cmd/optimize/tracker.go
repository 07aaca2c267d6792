package main

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"
)

// evalTracker logs every evaluation to CSV, keeps the best parameters seen
// and prints a progress line with an ETA.
type evalTracker struct {
	file   *os.File
	w      *csv.Writer
	budget int

	count       int
	best        []float64
	bestFitness float64
	start       time.Time
}

func newEvalTracker(path string, params *ParamVector, budget int) (*evalTracker, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating evaluation log: %w", err)
	}
	t := &evalTracker{
		file:        f,
		w:           csv.NewWriter(f),
		budget:      budget,
		bestFitness: math.Inf(1),
		start:       time.Now(),
	}

	header := []string{"eval", "fitness", "quality"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	if err := t.w.Write(header); err != nil {
		f.Close()
		return nil, err
	}
	return t, nil
}

// Record logs one evaluation of the clamped parameter values.
func (t *evalTracker) Record(values []float64, fitness, quality float64) {
	t.count++
	if fitness < t.bestFitness {
		t.bestFitness = fitness
		t.best = append(t.best[:0], values...)
	}

	row := []string{strconv.Itoa(t.count), fmt.Sprintf("%.6f", fitness), fmt.Sprintf("%.4f", quality)}
	for _, v := range values {
		row = append(row, fmt.Sprintf("%.6f", v))
	}
	t.w.Write(row)
	t.w.Flush()

	elapsed := time.Since(t.start)
	remaining := time.Duration(t.budget-t.count) * (elapsed / time.Duration(t.count))
	fmt.Printf("Eval %d/%d: quality=%.3f (best=%.3f) | elapsed: %s, ETA: %s\n",
		t.count, t.budget, quality, -t.bestFitness, formatDuration(elapsed), formatDuration(remaining))
}

// Best returns the best parameters seen and their fitness.
func (t *evalTracker) Best() ([]float64, float64) {
	return t.best, t.bestFitness
}

// Count returns the number of evaluations recorded.
func (t *evalTracker) Count() int {
	return t.count
}

// Elapsed returns the time since the tracker was created.
func (t *evalTracker) Elapsed() time.Duration {
	return time.Since(t.start)
}

// Close flushes and closes the evaluation log.
func (t *evalTracker) Close() error {
	t.w.Flush()
	if err := t.w.Error(); err != nil {
		t.file.Close()
		return err
	}
	return t.file.Close()
}
