package mocks

import (
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go/aws/awserr"

	"github.com/workshopstudio/taskapi/internal/awsclients"
)

// Names of the substitutable service clients
const (
	ServiceDynamoDB         = "dynamodb"
	ServiceDynamoDBDocument = "dynamodb-document"
	ServiceLambda           = "lambda"
	ServiceS3               = "s3"
	ServiceCloudFormation   = "cloudformation"
)

// Double is a test stand-in for a service client
type Double interface {
	// Name returns the service the double replaces
	Name() string
	// Calls returns the invocation recorder
	Calls() *CallRecorder
	// Clear drops recorded invocations and any stored state
	Clear()
	// ResetToStandard restores the standard behavior of every operation
	ResetToStandard()
}

// Registry maps service names to the doubles substituted for them.
// It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	doubles  map[string]Double
	Standard *StandardResponses
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		doubles:  make(map[string]Double),
		Standard: NewStandardResponses(),
	}
}

// Install substitutes double for the named service. Installing a name twice
// is allowed; the latest double wins.
func (r *Registry) Install(name string, double Double) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.doubles[name] = double
}

// InstallDefaults substitutes the standard double for every service the
// task API uses. The document client shares the DynamoDB double.
func (r *Registry) InstallDefaults() {
	dynamo := NewMockDynamoDB()
	r.Install(ServiceDynamoDB, dynamo)
	r.Install(ServiceDynamoDBDocument, dynamo)
	r.Install(ServiceLambda, NewMockLambda(r.Standard))
	r.Install(ServiceS3, NewMockS3())
	r.Install(ServiceCloudFormation, NewMockCloudFormation(r.Standard))
}

// Get returns the double installed for name
func (r *Registry) Get(name string) (Double, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.doubles[name]
	return d, ok
}

// Installed reports whether name is substituted
func (r *Registry) Installed(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Names returns the substituted service names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.doubles)
}

// ClearCalls zeroes the recorded invocations of every double. Behavior
// overrides and stored data are kept.
func (r *Registry) ClearCalls() {
	for _, d := range r.unique() {
		d.Calls().Clear()
	}
}

// Restore returns every double to its freshly installed state: standard
// behavior, no stored data and no recorded invocations.
func (r *Registry) Restore() {
	for _, d := range r.unique() {
		d.ResetToStandard()
		d.Clear()
	}
}

// TotalCalls returns the number of invocations recorded across all doubles
func (r *Registry) TotalCalls() int {
	n := 0
	for _, d := range r.unique() {
		n += d.Calls().Total()
	}
	return n
}

// DynamoDB returns the installed DynamoDB double, or nil
func (r *Registry) DynamoDB() *MockDynamoDB {
	d, _ := r.Get(ServiceDynamoDB)
	m, _ := d.(*MockDynamoDB)
	return m
}

// S3 returns the installed S3 double, or nil
func (r *Registry) S3() *MockS3 {
	d, _ := r.Get(ServiceS3)
	m, _ := d.(*MockS3)
	return m
}

// Lambda returns the installed Lambda double, or nil
func (r *Registry) Lambda() *MockLambda {
	d, _ := r.Get(ServiceLambda)
	m, _ := d.(*MockLambda)
	return m
}

// CloudFormation returns the installed CloudFormation double, or nil
func (r *Registry) CloudFormation() *MockCloudFormation {
	d, _ := r.Get(ServiceCloudFormation)
	m, _ := d.(*MockCloudFormation)
	return m
}

// Clients returns service clients backed by the installed doubles. Services
// without a double are left nil so a call panics instead of reaching AWS.
func (r *Registry) Clients() *awsclients.Clients {
	c := &awsclients.Clients{}
	if m := r.DynamoDB(); m != nil {
		c.DynamoDB = m
	}
	if m := r.S3(); m != nil {
		c.S3 = m
	}
	if m := r.Lambda(); m != nil {
		c.Lambda = m
	}
	if m := r.CloudFormation(); m != nil {
		c.CloudFormation = m
	}
	return c
}

// unique returns each installed double once, even when installed under several names
func (r *Registry) unique() []Double {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[Double]bool, len(r.doubles))
	var out []Double
	for _, name := range sortedKeys(r.doubles) {
		d := r.doubles[name]
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}

func sortedKeys(m map[string]Double) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func awsValidationError(msg string) error {
	return awserr.New("ValidationException", msg, nil)
}
