package test

import (
	"math/rand"
	"strings"
	"sync"
)

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// Generated value prefixes and suffix lengths
const (
	taskIDSuffixLen      = 9
	userIDSuffixLen      = 9
	emailSuffixLen       = 5
	titleSuffixLen       = 5
	descriptionSuffixLen = 10
)

// Generator produces random but reproducible test data. It is safe for
// concurrent use.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewGenerator creates a generator seeded with seed
func NewGenerator(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))} //nolint:gosec // test data only
}

// TaskID returns an id of the form task-xxxxxxxxx
func (g *Generator) TaskID() string {
	return "task-" + g.suffix(taskIDSuffixLen)
}

// UserID returns an id of the form user-xxxxxxxxx
func (g *Generator) UserID() string {
	return "user-" + g.suffix(userIDSuffixLen)
}

// Email returns an address of the form test-xxxxx@example.com
func (g *Generator) Email() string {
	return "test-" + g.suffix(emailSuffixLen) + "@example.com"
}

// Title returns a task title of the form "Test Task xxxxx"
func (g *Generator) Title() string {
	return "Test Task " + g.suffix(titleSuffixLen)
}

// Description returns a task description of the form "Test description xxxxxxxxxx"
func (g *Generator) Description() string {
	return "Test description " + g.suffix(descriptionSuffixLen)
}

func (g *Generator) suffix(n int) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(base36[g.rnd.Intn(len(base36))])
	}
	return b.String()
}
