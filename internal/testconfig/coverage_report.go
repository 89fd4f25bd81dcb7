package testconfig

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/fatih/color"
)

// Coverage report file names inside the coverage directory
const (
	CoverageSummaryFile = "coverage-summary.json"
	CoverageLCOVFile    = "lcov.info"
	CoverageHTMLFile    = "index.html"
)

// WriteCoverageReports runs every configured coverage reporter. The text
// reporter writes to out; the others write into the coverage directory
// under root.
func (c *Config) WriteCoverageReports(cov *Profile, root string, out io.Writer) error {
	dir := filepath.Join(root, c.Coverage.Directory)
	for _, name := range c.Coverage.Reporters {
		var err error
		switch name {
		case CoverageText:
			err = WriteCoverageText(out, cov, c.Coverage.Thresholds)
		case CoverageJSON:
			err = writeFile(filepath.Join(dir, CoverageSummaryFile), func(w io.Writer) error {
				return WriteCoverageJSON(w, cov)
			})
		case CoverageLCOV:
			err = writeFile(filepath.Join(dir, CoverageLCOVFile), func(w io.Writer) error {
				return WriteLCOV(w, cov, root)
			})
		case CoverageHTML:
			err = writeFile(filepath.Join(dir, CoverageHTMLFile), func(w io.Writer) error {
				return WriteCoverageHTML(w, cov, c.Coverage.Thresholds)
			})
		default:
			err = fmt.Errorf("unknown coverage reporter: %s", name)
		}
		if err != nil {
			return fmt.Errorf("coverage reporter %s: %w", name, err)
		}
	}
	return nil
}

// WriteCoverageText writes a per-file table followed by the totals.
// Percentages below their threshold are highlighted.
func WriteCoverageText(w io.Writer, cov *Profile, t Thresholds) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "File\t% Stmts\t% Branch\t% Funcs\t% Lines")
	for _, f := range cov.Files {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", f.Path,
			pct(f.Summary.Statements, t.Statements),
			pct(f.Summary.Branches, t.Branches),
			pct(f.Summary.Functions, t.Functions),
			pct(f.Summary.Lines, t.Lines))
	}
	s := cov.Summary()
	fmt.Fprintf(tw, "All files\t%s\t%s\t%s\t%s\n",
		pct(s.Statements, t.Statements),
		pct(s.Branches, t.Branches),
		pct(s.Functions, t.Functions),
		pct(s.Lines, t.Lines))
	return tw.Flush()
}

func pct(m Metric, threshold float64) string {
	if !m.Measured {
		return "n/a"
	}
	s := fmt.Sprintf("%.2f", m.Percent())
	if m.Percent() < threshold {
		return color.RedString(s)
	}
	return color.GreenString(s)
}

type jsonFileSummary struct {
	Summary
	Path string `json:"path"`
}

// WriteCoverageJSON writes the totals and per-file summaries as JSON
func WriteCoverageJSON(w io.Writer, cov *Profile) error {
	report := struct {
		Total Summary           `json:"total"`
		Files []jsonFileSummary `json:"files"`
	}{Total: cov.Summary()}
	for _, f := range cov.Files {
		report.Files = append(report.Files, jsonFileSummary{Summary: f.Summary, Path: f.Path})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// WriteLCOV writes the coverage in lcov tracefile format
func WriteLCOV(w io.Writer, cov *Profile, root string) error {
	for _, f := range cov.Files {
		fmt.Fprintf(w, "SF:%s\n", filepath.ToSlash(filepath.Join(root, f.Path)))
		for _, fn := range f.Functions {
			fmt.Fprintf(w, "FN:%d,%s\n", fn.Line, fn.Name)
		}
		for _, fn := range f.Functions {
			fmt.Fprintf(w, "FNDA:%d,%s\n", fn.Hits, fn.Name)
		}
		fmt.Fprintf(w, "FNF:%d\nFNH:%d\n", f.Summary.Functions.Total, f.Summary.Functions.Covered)

		lines := make([]int, 0, len(f.LineHits))
		for line := range f.LineHits {
			lines = append(lines, line)
		}
		sort.Ints(lines)
		for _, line := range lines {
			fmt.Fprintf(w, "DA:%d,%d\n", line, f.LineHits[line])
		}
		fmt.Fprintf(w, "LF:%d\nLH:%d\n", f.Summary.Lines.Total, f.Summary.Lines.Covered)
		if _, err := fmt.Fprintln(w, "end_of_record"); err != nil {
			return err
		}
	}
	return nil
}

var coverageHTML = template.Must(template.New("coverage").Funcs(template.FuncMap{
	"pct": func(m Metric) string {
		if !m.Measured {
			return "n/a"
		}
		return fmt.Sprintf("%.2f%%", m.Percent())
	},
	"low": func(m Metric, threshold float64) bool {
		return m.Measured && m.Percent() < threshold
	},
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Coverage report</title>
<style>
body { font-family: sans-serif; }
td, th { padding: 4px 12px; text-align: left; }
.low { color: #b00020; }
</style>
</head>
<body>
<h1>Coverage report</h1>
<table>
<tr><th>File</th><th>Statements</th><th>Branches</th><th>Functions</th><th>Lines</th></tr>
{{- range .Files}}
<tr>
<td>{{.Path}}</td>
<td{{if low .Summary.Statements $.Thresholds.Statements}} class="low"{{end}}>{{pct .Summary.Statements}}</td>
<td>{{pct .Summary.Branches}}</td>
<td{{if low .Summary.Functions $.Thresholds.Functions}} class="low"{{end}}>{{pct .Summary.Functions}}</td>
<td{{if low .Summary.Lines $.Thresholds.Lines}} class="low"{{end}}>{{pct .Summary.Lines}}</td>
</tr>
{{- end}}
<tr>
<th>All files</th>
<th>{{pct .Total.Statements}}</th>
<th>{{pct .Total.Branches}}</th>
<th>{{pct .Total.Functions}}</th>
<th>{{pct .Total.Lines}}</th>
</tr>
</table>
</body>
</html>
`))

// WriteCoverageHTML writes a standalone HTML coverage table
func WriteCoverageHTML(w io.Writer, cov *Profile, t Thresholds) error {
	return coverageHTML.Execute(w, struct {
		Files      []FileCoverage
		Total      Summary
		Thresholds Thresholds
	}{cov.Files, cov.Summary(), t})
}

// writeFile creates path and its parent directories and fills it with fn
func writeFile(path string, fn func(w io.Writer) error) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(f)
}
