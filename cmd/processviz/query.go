package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/timeplus-io/processviz/pkg/config"
	"github.com/timeplus-io/processviz/pkg/models"
	"github.com/timeplus-io/processviz/pkg/store"
)

type queryOptions struct {
	from   string
	to     string
	format string
}

func newQueryCommand(opts *rootOptions) *cobra.Command {
	qopts := &queryOptions{}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Print the stored process rows in a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if qopts.format != "table" && qopts.format != "json" {
				return fmt.Errorf("invalid format %q: must be table or json", qopts.format)
			}
			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			if qopts.from != "" {
				cfg.Query.From = qopts.from
			}
			if qopts.to != "" {
				cfg.Query.To = qopts.to
			}
			from, to, err := cfg.Query.Range()
			if err != nil {
				return err
			}

			st, err := store.Open(cmd.Context(), &cfg.Database)
			if err != nil {
				return err
			}
			defer closeStore(st)

			rows, err := st.QueryProcessRange(cmd.Context(), from, to)
			if err != nil {
				return err
			}
			if qopts.format == "json" {
				return renderJSON(cmd.OutOrStdout(), rows)
			}
			renderRows(cmd.OutOrStdout(), rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&qopts.from, "from", "", "first date, inclusive (YYYY-MM-DD; default query.from)")
	cmd.Flags().StringVar(&qopts.to, "to", "", "last date, exclusive (YYYY-MM-DD; default query.to)")
	cmd.Flags().StringVar(&qopts.format, "format", "table", "output format (table|json)")

	return cmd
}

func renderRows(w io.Writer, rows models.Dataset) {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{
		store.ColumnDate, store.ColumnExpParam, store.ColumnConstParam, store.ColumnRandParam, store.ColumnSinParam,
	})
	for _, r := range rows {
		t.AppendRow(table.Row{
			r.Date.Format(config.DateLayout),
			fmt.Sprintf("%.6f", r.ExpParam),
			fmt.Sprintf("%.1f", r.ConstParam),
			r.RandParam,
			fmt.Sprintf("%.6f", r.SinParam),
		})
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(rows))
}

func renderJSON(w io.Writer, rows models.Dataset) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}
