package testconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("package x\n"), 0o600))
	}
	return root
}

func TestConfig_Discover(t *testing.T) {
	root := writeTree(t,
		"a_test.go",
		"pkg/b.go",
		"pkg/b_test.go",
		"tests/e2e/flow_test.go",
		"_examples/repo/c_test.go",
		".git/d_test.go",
		"vendor/mod/e_test.go",
		"pkg/testdata/f_test.go",
	)

	files, err := Default().Discover(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"a_test.go", "pkg/b_test.go", "tests/e2e/flow_test.go"}, files)
}

func TestConfig_DiscoverInvalidPattern(t *testing.T) {
	cfg := Default()
	cfg.TestMatch = []string{"[a-"}
	_, err := cfg.Discover(t.TempDir())
	assert.ErrorContains(t, err, "invalid pattern")
}

func TestConfig_CoverageSources(t *testing.T) {
	root := writeTree(t,
		"internal/tasks/handler.go",
		"internal/tasks/handler_test.go",
		"cmd/testkit/main.go",
		"test/fixtures.go",
		"internal/coverage/report.go",
	)

	files, err := Default().CoverageSources(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"cmd/testkit/main.go", "internal/tasks/handler.go"}, files)
}

func TestConfig_Covered(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.Covered("internal/tasks/handler.go"))
	assert.False(t, cfg.Covered("internal/tasks/handler_test.go"))
	assert.False(t, cfg.Covered("test/fixtures.go"))
}

func TestConfig_ResolveAlias(t *testing.T) {
	cfg := Default()
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "@/tasks/handler", want: "/repo/internal/tasks/handler", ok: true},
		{in: "@tests/mocks", want: "/repo/test/mocks", ok: true},
		{in: "@utils/strings", want: "/repo/internal/utils/strings", ok: true},
		{in: "github.com/sirupsen/logrus"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := cfg.ResolveAlias(tt.in, "/repo")
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfig_ResolveAliasFirstMatchWins(t *testing.T) {
	cfg := &Config{ModuleNameMapping: []Alias{
		{Pattern: `^@(.*)$`, Target: "<rootDir>/first/$1"},
		{Pattern: `^@lib$`, Target: "<rootDir>/second"},
	}}
	got, ok := cfg.ResolveAlias("@lib", "/r")
	require.True(t, ok)
	assert.Equal(t, "/r/first/lib", got)
}
