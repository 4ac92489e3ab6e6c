package report

import (
	"fmt"
	"strings"

	"exampulse/app"
	"exampulse/domain/stats"
	"exampulse/domain/student"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Markdown renders a dashboard as a Markdown document. Values are rounded for
// display; d itself is not modified.
func Markdown(d *app.Dashboard, precision int) string {
	shown := d.Display(precision)
	num := func(v float64) string { return formatNumber(v, precision) }

	var b strings.Builder
	fmt.Fprintf(&b, "# Student Performance Report\n\n")
	fmt.Fprintf(&b, "Filter: **%s** | Students: **%d** | Snapshot: `%s`\n\n", filterLabel(shown.Filter), shown.RecordCount, shown.Snapshot)

	b.WriteString("## Averages\n\n")
	b.WriteString("| Subject | Average | Trend |\n|---|---:|---|\n")
	for _, k := range shown.KPIs {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", k.Subject.Label(), formatNumber(k.Average, app.KPIPrecision), k.Trend)
	}

	b.WriteString("\n## Score Distribution by Parental Education\n\n")
	if len(shown.Summaries) == 0 {
		b.WriteString("_No students match this filter._\n")
	} else {
		b.WriteString("| Education | Subject | N | Min | Q1 | Median | Q3 | Max |\n|---|---|---:|---:|---:|---:|---:|---:|\n")
		for _, s := range shown.Summaries {
			fmt.Fprintf(&b, "| %s | %s | %d | %s | %s | %s | %s | %s |\n",
				s.GroupKey, s.Series.Label(), s.Count, num(s.Min), num(s.Q1), num(s.Median), num(s.Q3), num(s.Max))
		}
	}

	b.WriteString("\n## Gender Comparison\n\n")
	b.WriteString("| Subject | Male | Female |\n|---|---:|---:|\n")
	for _, g := range shown.Genders {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", g.Subject.Label(), formatNumber(g.Male, app.KPIPrecision), formatNumber(g.Female, app.KPIPrecision))
	}

	b.WriteString("\n## Score Correlations\n\n")
	if shown.Correlations == nil {
		fmt.Fprintf(&b, "_%s._\n", shown.CorrelationNote)
	} else {
		writeMatrix(&b, shown.Correlations, precision)
	}

	dm := shown.Demographics
	b.WriteString("\n## Demographics\n\n")
	fmt.Fprintf(&b, "- Students: %d\n", dm.Students)
	fmt.Fprintf(&b, "- Education levels: %d\n", dm.EducationLevels)
	fmt.Fprintf(&b, "- Male: %d\n", dm.Male)
	fmt.Fprintf(&b, "- Female: %d\n", dm.Female)
	fmt.Fprintf(&b, "- Test prep completed: %d\n", dm.TestPrepCompleted)
	return b.String()
}

// HTML renders the Markdown report to an HTML fragment
func HTML(d *app.Dashboard, precision int) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML([]byte(Markdown(d, precision)), p, renderer)
}

// Page wraps the HTML fragment in a standalone document
func Page(d *app.Dashboard, precision int) []byte {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>Student Performance Report</title>")
	b.WriteString("<style>body{font-family:sans-serif;max-width:60rem;margin:2rem auto}table{border-collapse:collapse}td,th{border:1px solid #ccc;padding:.25rem .5rem}</style>")
	b.WriteString("</head><body>\n")
	b.Write(HTML(d, precision))
	b.WriteString("</body></html>\n")
	return []byte(b.String())
}

func writeMatrix(b *strings.Builder, m *stats.CorrelationMatrix, precision int) {
	names := m.Names()
	b.WriteString("| |")
	for _, n := range names {
		fmt.Fprintf(b, " %s |", n)
	}
	b.WriteString("\n|---|")
	for range names {
		b.WriteString("---:|")
	}
	b.WriteString("\n")
	for i, row := range m.Rows() {
		fmt.Fprintf(b, "| %s |", names[i])
		for _, c := range row {
			fmt.Fprintf(b, " %s |", FormatCoefficient(c, precision))
		}
		b.WriteString("\n")
	}
}

// FormatCoefficient prints a coefficient, or "n/a" when undefined
func FormatCoefficient(c stats.Coefficient, precision int) string {
	if !c.Defined {
		return "n/a"
	}
	return formatNumber(c.Value, precision)
}

func formatNumber(v float64, precision int) string {
	if precision < 0 {
		precision = 2
	}
	return fmt.Sprintf("%.*f", precision, stats.Round(v, precision))
}

func filterLabel(f student.Filter) string {
	if f.IsAll() {
		return "all students"
	}
	return fmt.Sprintf("%s = %s", f.Attribute, f.Value)
}
