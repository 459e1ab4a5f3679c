// Package pipeline runs the generate, store, query, fit and render workflow.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/plot/vg"

	"github.com/timeplus-io/processviz/pkg/analysis"
	"github.com/timeplus-io/processviz/pkg/config"
	"github.com/timeplus-io/processviz/pkg/generator"
	"github.com/timeplus-io/processviz/pkg/store"
	"github.com/timeplus-io/processviz/pkg/visualize"
)

// Chart file names, relative to the output directory
const (
	LinesChartFile      = "three_parameters.png"
	ExpScatterChartFile = "sin_vs_exp.png"
	SinScatterChartFile = "sin_vs_sinexp.png"
)

// Fit names used as keys in Report.Fits
const (
	FitSinVsExp    = "sin_vs_exp"
	FitSinVsSinExp = "sin_vs_sinexp"
)

var (
	// ErrEmptyResult is returned when the query range holds no rows
	ErrEmptyResult = errors.New("query returned no rows")
	// ErrOutputDir is returned when the chart directory does not exist
	ErrOutputDir = errors.New("output directory is not usable")
)

// Runner executes the workflow against a process store
type Runner struct {
	store store.ProcessStore
	cfg   *config.Config
}

// NewRunner creates a new workflow runner
func NewRunner(st store.ProcessStore, cfg *config.Config) *Runner {
	return &Runner{store: st, cfg: cfg}
}

// OutputDir is where charts are written
func (r *Runner) OutputDir() string {
	return r.cfg.Output.Dir
}

// Run executes one full pass of the workflow. Stages run strictly in order
// and the first failure aborts the run.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Fits:      make(map[string]analysis.Fit),
	}
	log := logrus.WithField("run_id", report.RunID)

	if err := CheckOutputDir(r.cfg.Output.Dir); err != nil {
		return nil, fmt.Errorf("preflight: %w", err)
	}
	start, err := r.cfg.Generator.StartDate()
	if err != nil {
		return nil, fmt.Errorf("preflight: %w", err)
	}
	from, to, err := r.cfg.Query.Range()
	if err != nil {
		return nil, fmt.Errorf("preflight: %w", err)
	}

	ds := generator.Generate(generator.Options{
		Length: r.cfg.Generator.Length,
		Start:  start,
		Seed:   r.cfg.Generator.Seed,
	})
	log.Infof("Generated %d process records starting %s", len(ds), start.Format(config.DateLayout))

	written, err := r.store.ReplaceProcessTable(ctx, ds)
	if err != nil {
		return nil, fmt.Errorf("replace table: %w", err)
	}
	report.RowsWritten = written

	rows, err := r.store.QueryProcessRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("query range: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("query range %s to %s: %w",
			from.Format(config.DateLayout), to.Format(config.DateLayout), ErrEmptyResult)
	}
	report.RowsQueried = int64(len(rows))
	log.Infof("Queried %d rows in [%s, %s)", len(rows), from.Format(config.DateLayout), to.Format(config.DateLayout))

	exp := rows.ExpParams()
	sin := rows.SinParams()
	sinExp := analysis.SinTransform(exp)

	expFit, err := analysis.LinearRegression(exp, sin)
	if err != nil {
		return nil, fmt.Errorf("fit %s: %w", FitSinVsExp, err)
	}
	sinFit, err := analysis.LinearRegression(sinExp, sin)
	if err != nil {
		return nil, fmt.Errorf("fit %s: %w", FitSinVsSinExp, err)
	}
	report.Fits[FitSinVsExp] = expFit
	report.Fits[FitSinVsSinExp] = sinFit
	log.Infof("sin_param ~ exp_param: %s", expFit)
	log.Infof("sin_param ~ sin(exp_param)+100: %s", sinFit)

	charts := []struct {
		file  string
		build func() (*visualize.Figure, error)
	}{
		{LinesChartFile, func() (*visualize.Figure, error) {
			return visualize.ParameterLines(fmt.Sprintf("%d Process Parameter Measurements", from.Year()), rows)
		}},
		{ExpScatterChartFile, func() (*visualize.Figure, error) {
			return visualize.RegressionScatter(visualize.Regression{
				Title:  "Sinusoidal vs. Exponential Parameters",
				XLabel: store.ColumnExpParam,
				YLabel: store.ColumnSinParam,
				X:      exp,
				Y:      sin,
				Fit:    expFit,
				LabelX: 104,
				LabelY: 100.5,
			})
		}},
		{SinScatterChartFile, func() (*visualize.Figure, error) {
			return visualize.RegressionScatter(visualize.Regression{
				Title:  "Sinusoidal vs. sin(Exponential) Parameters",
				XLabel: "sin(" + store.ColumnExpParam + ")+100",
				YLabel: store.ColumnSinParam,
				X:      sinExp,
				Y:      sin,
				Fit:    sinFit,
				LabelX: 99,
				LabelY: 100,
			})
		}},
	}

	width := vg.Length(r.cfg.Output.Width) * vg.Inch
	height := vg.Length(r.cfg.Output.Height) * vg.Inch
	for _, c := range charts {
		fig, err := c.build()
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", c.file, err)
		}
		path := filepath.Join(r.cfg.Output.Dir, c.file)
		if err := fig.Save(path, width, height); err != nil {
			return nil, fmt.Errorf("render %s: %w", c.file, err)
		}
		report.Artifacts = append(report.Artifacts, path)
		log.Debugf("Saved chart %s", path)
	}

	report.Duration = time.Since(report.StartedAt)
	log.Infof("Run finished in %s", report.Duration.Round(time.Millisecond))
	return report, nil
}

// CheckOutputDir fails when dir is missing or is not a directory.
// The workflow never creates it.
func CheckOutputDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrOutputDir, dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrOutputDir, dir)
	}
	return nil
}
