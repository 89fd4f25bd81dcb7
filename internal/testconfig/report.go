package testconfig

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jstemmer/go-junit-report/v2/gtr"
	"github.com/jstemmer/go-junit-report/v2/junit"
	"github.com/jstemmer/go-junit-report/v2/parser/gotest"
)

// Report option defaults
const (
	DefaultResultsDir  = "test-results"
	DefaultJUnitName   = "junit.xml"
	DefaultHTMLName    = "test-report.html"
	DefaultSuiteName   = "AWS Workshop Studio Tests"
	defaultHTMLExpand  = false
	failureOutputLimit = 50
)

// ParseResults reads go test -json output
func ParseResults(r io.Reader) (gtr.Report, error) {
	report, err := gotest.NewJSONParser().Parse(r)
	if err != nil {
		return gtr.Report{}, fmt.Errorf("failed to parse test output: %w", err)
	}
	return report, nil
}

// Totals counts test results across a report
type Totals struct {
	Tests    int
	Passed   int
	Failed   int
	Skipped  int
	Duration time.Duration
}

// CountResults totals the tests of every package in the report
func CountResults(report gtr.Report) Totals {
	var t Totals
	for _, pkg := range report.Packages {
		t.Duration += pkg.Duration
		for _, test := range pkg.Tests {
			t.Tests++
			switch test.Result {
			case gtr.Pass:
				t.Passed++
			case gtr.Fail:
				t.Failed++
			case gtr.Skip:
				t.Skipped++
			}
		}
	}
	return t
}

// WriteReports runs every configured reporter over the report. The
// default reporter writes to out; file reporters write under root.
func (c *Config) WriteReports(report gtr.Report, root string, out io.Writer) error {
	for _, r := range c.Reporters {
		var err error
		switch r.Name {
		case ReporterDefault:
			err = WriteConsoleReport(out, report, c.Verbose)
		case ReporterJUnit:
			path := filepath.Join(root,
				r.StringOption(OptOutputDirectory, DefaultResultsDir),
				r.StringOption(OptOutputName, DefaultJUnitName))
			err = writeFile(path, func(w io.Writer) error {
				return WriteJUnitReport(w, report, r.StringOption(OptSuiteName, DefaultSuiteName))
			})
		case ReporterHTML:
			path := filepath.Join(root,
				r.StringOption(OptPublicPath, DefaultResultsDir),
				r.StringOption(OptFilename, DefaultHTMLName))
			err = writeFile(path, func(w io.Writer) error {
				return WriteHTMLReport(w, report, r.BoolOption(OptExpand, defaultHTMLExpand))
			})
		default:
			err = fmt.Errorf("unknown reporter: %s", r.Name)
		}
		if err != nil {
			return fmt.Errorf("reporter %s: %w", r.Name, err)
		}
	}
	return nil
}

// WriteConsoleReport writes a colored per-package summary. Verbose output
// lists every test; otherwise only failures are listed.
func WriteConsoleReport(w io.Writer, report gtr.Report, verbose bool) error {
	pass := color.New(color.FgGreen, color.Bold).SprintFunc()
	fail := color.New(color.FgRed, color.Bold).SprintFunc()
	skip := color.New(color.FgYellow).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	for _, pkg := range report.Packages {
		status := pass("PASS")
		if !packagePassed(pkg) {
			status = fail("FAIL")
		}
		fmt.Fprintf(w, "%s %s %s\n", status, pkg.Name, dim(fmt.Sprintf("(%.2fs)", pkg.Duration.Seconds())))

		for _, test := range pkg.Tests {
			switch test.Result {
			case gtr.Fail:
				fmt.Fprintf(w, "  %s %s\n", fail("✕"), test.Name)
				for _, line := range tail(test.Output, failureOutputLimit) {
					fmt.Fprintf(w, "      %s\n", line)
				}
			case gtr.Skip:
				if verbose {
					fmt.Fprintf(w, "  %s %s\n", skip("○"), test.Name)
				}
			default:
				if verbose {
					fmt.Fprintf(w, "  %s %s %s\n", pass("✓"), test.Name, dim(fmt.Sprintf("(%s)", test.Duration.Round(time.Millisecond))))
				}
			}
		}
	}

	t := CountResults(report)
	summary := fmt.Sprintf("%d passed", t.Passed)
	if t.Failed > 0 {
		summary = fail(fmt.Sprintf("%d failed", t.Failed)) + ", " + summary
	}
	if t.Skipped > 0 {
		summary += ", " + skip(fmt.Sprintf("%d skipped", t.Skipped))
	}
	_, err := fmt.Fprintf(w, "\nTests: %s, %d total\nTime:  %.3fs\n", summary, t.Tests, t.Duration.Seconds())
	return err
}

func packagePassed(pkg gtr.Package) bool {
	if pkg.BuildError.Name != "" || pkg.RunError.Name != "" {
		return false
	}
	for _, test := range pkg.Tests {
		if test.Result == gtr.Fail {
			return false
		}
	}
	return true
}

func tail(lines []string, n int) []string {
	if len(lines) > n {
		return lines[len(lines)-n:]
	}
	return lines
}

// WriteJUnitReport writes the report as JUnit XML under the given suite name
func WriteJUnitReport(w io.Writer, report gtr.Report, suiteName string) error {
	hostname, _ := os.Hostname()
	suites := junit.CreateFromReport(report, hostname)
	suites.Name = suiteName
	return suites.WriteXML(w)
}

type htmlTest struct {
	Name     string
	Result   string
	Duration time.Duration
	Output   string
}

type htmlPackage struct {
	Name     string
	Passed   bool
	Duration time.Duration
	Tests    []htmlTest
}

var testHTML = template.Must(template.New("tests").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Test report</title>
<style>
body { font-family: sans-serif; }
.pass { color: #1b7f3b; }
.fail { color: #b00020; }
.skip { color: #a06000; }
pre { background: #f4f4f4; padding: 8px; }
</style>
</head>
<body>
<h1>Test report</h1>
<p>{{.Totals.Tests}} tests: {{.Totals.Passed}} passed, {{.Totals.Failed}} failed, {{.Totals.Skipped}} skipped in {{.Totals.Duration}}</p>
{{- range .Packages}}
<details{{if or $.Expand (not .Passed)}} open{{end}}>
<summary class="{{if .Passed}}pass{{else}}fail{{end}}">{{.Name}} ({{.Duration}})</summary>
<ul>
{{- range .Tests}}
<li class="{{.Result}}">{{.Name}} ({{.Duration}}){{if .Output}}<pre>{{.Output}}</pre>{{end}}</li>
{{- end}}
</ul>
</details>
{{- end}}
</body>
</html>
`))

// WriteHTMLReport writes a standalone HTML test report. Failing packages
// are always expanded; expand opens the passing ones too.
func WriteHTMLReport(w io.Writer, report gtr.Report, expand bool) error {
	var pkgs []htmlPackage
	for _, pkg := range report.Packages {
		hp := htmlPackage{Name: pkg.Name, Passed: packagePassed(pkg), Duration: pkg.Duration}
		for _, test := range pkg.Tests {
			ht := htmlTest{Name: test.Name, Result: resultClass(test.Result), Duration: test.Duration}
			if test.Result == gtr.Fail {
				ht.Output = strings.Join(test.Output, "\n")
			}
			hp.Tests = append(hp.Tests, ht)
		}
		pkgs = append(pkgs, hp)
	}
	return testHTML.Execute(w, struct {
		Totals   Totals
		Packages []htmlPackage
		Expand   bool
	}{CountResults(report), pkgs, expand})
}

func resultClass(r gtr.Result) string {
	switch r {
	case gtr.Fail:
		return "fail"
	case gtr.Skip:
		return "skip"
	default:
		return "pass"
	}
}
