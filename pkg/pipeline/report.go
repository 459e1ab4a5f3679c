package pipeline

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/timeplus-io/processviz/pkg/analysis"
)

// Report summarises one workflow run
type Report struct {
	RunID       string                  `json:"runId"`
	StartedAt   time.Time               `json:"startedAt"`
	Duration    time.Duration           `json:"duration"`
	RowsWritten int64                   `json:"rowsWritten"`
	RowsQueried int64                   `json:"rowsQueried"`
	Fits        map[string]analysis.Fit `json:"fits"`
	Artifacts   []string                `json:"artifacts"`
}

// Render writes the report as text tables
func (r *Report) Render(w io.Writer) {
	summary := table.NewWriter()
	summary.SetOutputMirror(w)
	summary.SetStyle(table.StyleLight)
	summary.AppendRows([]table.Row{
		{"Run", r.RunID},
		{"Started", r.StartedAt.Format(time.RFC3339)},
		{"Duration", r.Duration.Round(time.Millisecond).String()},
		{"Rows written", r.RowsWritten},
		{"Rows queried", r.RowsQueried},
	})
	for _, a := range r.Artifacts {
		summary.AppendRow(table.Row{"Chart", a})
	}
	summary.Render()

	if len(r.Fits) == 0 {
		return
	}

	names := make([]string, 0, len(r.Fits))
	for name := range r.Fits {
		names = append(names, name)
	}
	sort.Strings(names)

	fits := table.NewWriter()
	fits.SetOutputMirror(w)
	fits.SetStyle(table.StyleLight)
	fits.AppendHeader(table.Row{"Fit", "Slope", "Intercept", "r²", "N"})
	for _, name := range names {
		f := r.Fits[name]
		fits.AppendRow(table.Row{
			name,
			fmt.Sprintf("%.6f", f.Slope),
			fmt.Sprintf("%.6f", f.Intercept),
			fmt.Sprintf("%.6f", f.RSquared),
			f.N,
		})
	}
	fits.Render()
}
