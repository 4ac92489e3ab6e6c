package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"exampulse/app"
	"exampulse/domain/student"
	"exampulse/internal/config"
	"exampulse/internal/container"
	"exampulse/internal/report"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type options struct {
	source    string
	file      string
	filter    string
	precision int
	asJSON    bool
}

func main() {
	_ = godotenv.Load()

	opts := &options{}
	rootCmd := &cobra.Command{
		Use:   "exampulse-cli",
		Short: "Exam performance statistics from the command line",
		Long: `Compute the dashboard statistics without running the server.

The record source defaults to the DATA_SOURCE environment settings and can be
overridden per call.

Example: exampulse-cli summary --filter "parentalEducation:master's degree"`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return applySourceFlags(opts)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.source, "source", "", "Record source: fixture|file|postgres (default from DATA_SOURCE)")
	rootCmd.PersistentFlags().StringVar(&opts.file, "file", "", "CSV or XLSX file for --source file")
	rootCmd.PersistentFlags().StringVar(&opts.filter, "filter", "all", `Filter as attribute:value, "all", or an education level`)
	rootCmd.PersistentFlags().IntVar(&opts.precision, "precision", -1, "Display precision (default from DISPLAY_PRECISION)")
	rootCmd.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "Print JSON instead of tables")

	rootCmd.AddCommand(
		newSummaryCmd(opts),
		newCorrelateCmd(opts),
		newKPICmd(opts),
		newGenderCmd(opts),
		newDemographicsCmd(opts),
		newReportCmd(opts),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newSummaryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Five-number summaries by parental education",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, precision, err := buildDashboard(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if opts.asJSON {
				return printJSON(cmd.OutOrStdout(), d.Summaries)
			}
			w := newTable(cmd.OutOrStdout())
			fmt.Fprintln(w, "EDUCATION\tSUBJECT\tN\tMIN\tQ1\tMEDIAN\tQ3\tMAX")
			for _, s := range d.Summaries {
				fmt.Fprintf(w, "%s\t%s\t%d\t%.*f\t%.*f\t%.*f\t%.*f\t%.*f\n", s.GroupKey, s.Series, s.Count,
					precision, s.Min, precision, s.Q1, precision, s.Median, precision, s.Q3, precision, s.Max)
			}
			return w.Flush()
		},
	}
}

func newCorrelateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "correlate",
		Short: "Pearson correlation matrix of the three scores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, precision, err := buildDashboard(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if d.Correlations == nil {
				return fmt.Errorf("%s", d.CorrelationNote)
			}
			if opts.asJSON {
				return printJSON(cmd.OutOrStdout(), d.Correlations)
			}
			names := d.Correlations.Names()
			w := newTable(cmd.OutOrStdout())
			fmt.Fprintln(w, "\t"+strings.Join(names, "\t"))
			for i, row := range d.Correlations.Rows() {
				cells := make([]string, len(row))
				for j, c := range row {
					cells[j] = report.FormatCoefficient(c, precision)
				}
				fmt.Fprintln(w, names[i]+"\t"+strings.Join(cells, "\t"))
			}
			return w.Flush()
		},
	}
}

func newKPICmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "kpi",
		Short: "Average score and trend band per subject",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, _, err := buildDashboard(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if opts.asJSON {
				return printJSON(cmd.OutOrStdout(), d.KPIs)
			}
			w := newTable(cmd.OutOrStdout())
			fmt.Fprintln(w, "SUBJECT\tAVERAGE\tTREND")
			for _, k := range d.KPIs {
				fmt.Fprintf(w, "%s\t%.*f\t%s\n", k.Subject.Label(), app.KPIPrecision, k.Average, k.Trend)
			}
			return w.Flush()
		},
	}
}

func newGenderCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "gender",
		Short: "Average score per subject for male and female students",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, _, err := buildDashboard(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if opts.asJSON {
				return printJSON(cmd.OutOrStdout(), d.Genders)
			}
			w := newTable(cmd.OutOrStdout())
			fmt.Fprintln(w, "SUBJECT\tMALE\tFEMALE")
			for _, g := range d.Genders {
				fmt.Fprintf(w, "%s\t%.*f\t%.*f\n", g.Subject.Label(), app.KPIPrecision, g.Male, app.KPIPrecision, g.Female)
			}
			return w.Flush()
		},
	}
}

func newDemographicsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "demographics",
		Short: "Student counts for the filtered view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, _, err := buildDashboard(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if opts.asJSON {
				return printJSON(cmd.OutOrStdout(), d.Demographics)
			}
			dm := d.Demographics
			w := newTable(cmd.OutOrStdout())
			fmt.Fprintf(w, "Students\t%d\n", dm.Students)
			fmt.Fprintf(w, "Education levels\t%d\n", dm.EducationLevels)
			fmt.Fprintf(w, "Male\t%d\n", dm.Male)
			fmt.Fprintf(w, "Female\t%d\n", dm.Female)
			fmt.Fprintf(w, "Test prep completed\t%d\n", dm.TestPrepCompleted)
			return w.Flush()
		},
	}
}

func newReportCmd(opts *options) *cobra.Command {
	var format, out string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render the full dashboard as Markdown or HTML",
		Long: `Render every dashboard section for the filtered view.

Example: exampulse-cli report --format html --out report.html --filter gender:female`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, precision, err := buildDashboard(cmd.Context(), opts)
			if err != nil {
				return err
			}

			var body []byte
			switch strings.ToLower(format) {
			case "md", "markdown":
				body = []byte(report.Markdown(d, precision))
			case "html":
				body = report.Page(d, precision)
			default:
				return fmt.Errorf("unknown format %q (use md or html)", format)
			}

			if out == "" {
				_, err = cmd.OutOrStdout().Write(body)
				return err
			}
			if err := os.WriteFile(out, body, 0o644); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "md", "Output format: md|html")
	cmd.Flags().StringVar(&out, "out", "", "Write to file instead of stdout")
	return cmd
}

// buildDashboard loads records through the configured source and computes the
// full-precision dashboard; callers round when printing.
func buildDashboard(ctx context.Context, opts *options) (*app.Dashboard, int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, 0, err
	}
	if os.Getenv("LOG_LEVEL") == "" {
		cfg.LogLevel = "WARN"
	}
	precision := cfg.Display.Precision
	if opts.precision >= 0 {
		precision = opts.precision
	}

	filter, err := student.ParseFilter(opts.filter)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid --filter: %w", err)
	}

	c, err := container.New(cfg)
	if err != nil {
		return nil, 0, err
	}
	defer c.Close()

	d, err := c.Dashboards.Build(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return d, precision, nil
}

// applySourceFlags exports --source/--file so config.Load sees them
func applySourceFlags(opts *options) error {
	if opts.source != "" {
		if err := os.Setenv("DATA_SOURCE", opts.source); err != nil {
			return err
		}
	}
	if opts.file != "" {
		if err := os.Setenv("DATA_FILE", opts.file); err != nil {
			return err
		}
		if opts.source == "" {
			return os.Setenv("DATA_SOURCE", config.SourceFile)
		}
	}
	return nil
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
