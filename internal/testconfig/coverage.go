package testconfig

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/tools/cover"
)

// ErrThresholdsNotMet is returned when coverage falls below a threshold
var ErrThresholdsNotMet = errors.New("coverage thresholds not met")

// Metric is a covered/total count for one coverage dimension
type Metric struct {
	Covered  int  `json:"covered"`
	Total    int  `json:"total"`
	Measured bool `json:"measured"`
}

// Percent returns the covered percentage. A metric with nothing to cover is
// fully covered.
func (m Metric) Percent() float64 {
	if m.Total == 0 {
		return 100
	}
	return float64(m.Covered) * 100 / float64(m.Total)
}

func (m *Metric) add(o Metric) {
	m.Covered += o.Covered
	m.Total += o.Total
}

// Summary holds the four coverage metrics. Go profiles carry no branch
// data, so Branches is never measured.
type Summary struct {
	Branches   Metric `json:"branches"`
	Functions  Metric `json:"functions"`
	Lines      Metric `json:"lines"`
	Statements Metric `json:"statements"`
}

func newSummary() Summary {
	return Summary{
		Functions:  Metric{Measured: true},
		Lines:      Metric{Measured: true},
		Statements: Metric{Measured: true},
	}
}

func (s *Summary) add(o Summary) {
	s.Functions.add(o.Functions)
	s.Lines.add(o.Lines)
	s.Statements.add(o.Statements)
}

// Enforce checks every measured metric against its threshold and returns
// an error naming each one that falls short
func (t Thresholds) Enforce(s Summary) error {
	checks := []struct {
		name      string
		metric    Metric
		threshold float64
	}{
		{"branches", s.Branches, t.Branches},
		{"functions", s.Functions, t.Functions},
		{"lines", s.Lines, t.Lines},
		{"statements", s.Statements, t.Statements},
	}

	var failures []string
	for _, c := range checks {
		if !c.metric.Measured {
			continue
		}
		if got := c.metric.Percent(); got < c.threshold {
			failures = append(failures, fmt.Sprintf("%s %.2f%% < %.2f%%", c.name, got, c.threshold))
		}
	}
	if len(failures) > 0 {
		return fmt.Errorf("%w: %s", ErrThresholdsNotMet, strings.Join(failures, ", "))
	}
	return nil
}

// FileCoverage is the coverage of one source file
type FileCoverage struct {
	// Path is relative to the module root
	Path      string
	Summary   Summary
	LineHits  map[int]int
	Functions []FunctionCoverage
}

// FunctionCoverage is the coverage of one function declaration
type FunctionCoverage struct {
	Name string
	Line int
	Hits int
}

// Profile is a parsed cover profile
type Profile struct {
	Module string
	Files  []FileCoverage
}

// Summary totals the metrics of every file
func (c *Profile) Summary() Summary {
	total := newSummary()
	for _, f := range c.Files {
		total.add(f.Summary)
	}
	return total
}

// SummarizeProfile computes the coverage summary of a cover profile
// produced by go test -coverprofile
func SummarizeProfile(profilePath, moduleRoot string) (Summary, error) {
	cov, err := LoadProfile(profilePath, moduleRoot)
	if err != nil {
		return Summary{}, err
	}
	return cov.Summary(), nil
}

// LoadProfile parses a cover profile and the source files it names. Files
// are resolved relative to moduleRoot through the module path in go.mod.
func LoadProfile(profilePath, moduleRoot string) (*Profile, error) {
	data, err := os.ReadFile(filepath.Join(moduleRoot, "go.mod"))
	if err != nil {
		return nil, fmt.Errorf("failed to read go.mod: %w", err)
	}
	module := modfile.ModulePath(data)
	if module == "" {
		return nil, fmt.Errorf("no module path in %s", filepath.Join(moduleRoot, "go.mod"))
	}

	profiles, err := cover.ParseProfiles(profilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse cover profile: %w", err)
	}

	cov := &Profile{Module: module}
	for _, p := range profiles {
		rel, ok := strings.CutPrefix(p.FileName, module+"/")
		if !ok {
			return nil, fmt.Errorf("%s is outside module %s", p.FileName, module)
		}
		fc, err := fileCoverage(p, rel, filepath.Join(moduleRoot, filepath.FromSlash(rel)))
		if err != nil {
			return nil, err
		}
		cov.Files = append(cov.Files, fc)
	}
	sort.Slice(cov.Files, func(i, j int) bool {
		return cov.Files[i].Path < cov.Files[j].Path
	})
	return cov, nil
}

// Filter keeps only the files keep accepts
func (c *Profile) Filter(keep func(path string) bool) *Profile {
	out := &Profile{Module: c.Module}
	for _, f := range c.Files {
		if keep(f.Path) {
			out.Files = append(out.Files, f)
		}
	}
	return out
}

func fileCoverage(p *cover.Profile, rel, path string) (FileCoverage, error) {
	fc := FileCoverage{
		Path:     rel,
		Summary:  newSummary(),
		LineHits: make(map[int]int),
	}

	for _, b := range p.Blocks {
		fc.Summary.Statements.Total += b.NumStmt
		if b.Count > 0 {
			fc.Summary.Statements.Covered += b.NumStmt
		}
		for line := b.StartLine; line <= b.EndLine; line++ {
			if b.Count > fc.LineHits[line] {
				fc.LineHits[line] = b.Count
			} else if _, ok := fc.LineHits[line]; !ok {
				fc.LineHits[line] = 0
			}
		}
	}
	fc.Summary.Lines.Total = len(fc.LineHits)
	for _, hits := range fc.LineHits {
		if hits > 0 {
			fc.Summary.Lines.Covered++
		}
	}

	funcs, err := functionCoverage(path, p.Blocks)
	if err != nil {
		return FileCoverage{}, err
	}
	fc.Functions = funcs
	for _, fn := range funcs {
		fc.Summary.Functions.Total++
		if fn.Hits > 0 {
			fc.Summary.Functions.Covered++
		}
	}
	return fc, nil
}

// functionCoverage attributes profile blocks to the function declarations
// that contain them. Functions without blocks are not counted.
func functionCoverage(path string, blocks []cover.ProfileBlock) ([]FunctionCoverage, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	var funcs []FunctionCoverage
	ast.Inspect(file, func(n ast.Node) bool {
		fd, ok := n.(*ast.FuncDecl)
		if !ok || fd.Body == nil {
			return true
		}
		start, end := fset.Position(fd.Pos()), fset.Position(fd.End())
		fn := FunctionCoverage{Name: funcName(fd), Line: start.Line}
		found := false
		for _, b := range blocks {
			if !notBefore(b.StartLine, b.StartCol, start.Line, start.Column) ||
				!notBefore(end.Line, end.Column, b.EndLine, b.EndCol) {
				continue
			}
			found = true
			if b.Count > fn.Hits {
				fn.Hits = b.Count
			}
		}
		if found {
			funcs = append(funcs, fn)
		}
		return false
	})
	return funcs, nil
}

// notBefore reports whether line:col is at or after atLine:atCol
func notBefore(line, col, atLine, atCol int) bool {
	return line > atLine || line == atLine && col >= atCol
}

func funcName(fd *ast.FuncDecl) string {
	if fd.Recv == nil || len(fd.Recv.List) == 0 {
		return fd.Name.Name
	}
	typ := fd.Recv.List[0].Type
	if star, ok := typ.(*ast.StarExpr); ok {
		typ = star.X
	}
	if idx, ok := typ.(*ast.IndexExpr); ok {
		typ = idx.X
	}
	if ident, ok := typ.(*ast.Ident); ok {
		return ident.Name + "." + fd.Name.Name
	}
	return fd.Name.Name
}
