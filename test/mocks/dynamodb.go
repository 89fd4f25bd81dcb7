package mocks

import (
	"regexp"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"

	"github.com/workshopstudio/taskapi/internal/types"
)

// DynamoDB method names as recorded by the CallRecorder
const (
	MethodPutItem    = "PutItem"
	MethodGetItem    = "GetItem"
	MethodQuery      = "Query"
	MethodScan       = "Scan"
	MethodDeleteItem = "DeleteItem"
)

var (
	conditionRe    = regexp.MustCompile(`^\s*(attribute_exists|attribute_not_exists)\((\w+)\)\s*$`)
	keyConditionRe = regexp.MustCompile(`^\s*(\w+)\s*=\s*(:\w+)\s*$`)
)

// Item is a DynamoDB record
type Item = map[string]*dynamodb.AttributeValue

// MockDynamoDB is an in-memory DynamoDB with one string hash key per table.
// Tables are created on first write.
type MockDynamoDB struct {
	dynamodbiface.DynamoDBAPI

	// HashKey is the partition key attribute of every table
	HashKey string

	PutItemFunc    func(ctx aws.Context, in *dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error)
	GetItemFunc    func(ctx aws.Context, in *dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error)
	QueryFunc      func(ctx aws.Context, in *dynamodb.QueryInput) (*dynamodb.QueryOutput, error)
	ScanFunc       func(ctx aws.Context, in *dynamodb.ScanInput) (*dynamodb.ScanOutput, error)
	DeleteItemFunc func(ctx aws.Context, in *dynamodb.DeleteItemInput) (*dynamodb.DeleteItemOutput, error)

	calls    *CallRecorder
	behavior sync.RWMutex
	mu       sync.Mutex
	tables   map[string]map[string]Item
}

// NewMockDynamoDB creates an empty in-memory DynamoDB keyed by taskId
func NewMockDynamoDB() *MockDynamoDB {
	m := &MockDynamoDB{
		HashKey: types.TaskIDField,
		calls:   NewCallRecorder(),
		tables:  make(map[string]map[string]Item),
	}
	setupStandardDynamoDBResponses(m)
	return m
}

// setupStandardDynamoDBResponses points every operation at the in-memory tables
func setupStandardDynamoDBResponses(m *MockDynamoDB) {
	m.behavior.Lock()
	defer m.behavior.Unlock()
	m.PutItemFunc = m.putItem
	m.GetItemFunc = m.getItem
	m.QueryFunc = m.query
	m.ScanFunc = m.scan
	m.DeleteItemFunc = m.deleteItem
}

// Name returns the service name
func (m *MockDynamoDB) Name() string {
	return ServiceDynamoDB
}

// Calls returns the invocation recorder
func (m *MockDynamoDB) Calls() *CallRecorder {
	return m.calls
}

// Clear drops recorded invocations and every stored item
func (m *MockDynamoDB) Clear() {
	m.calls.Clear()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables = make(map[string]map[string]Item)
}

// ResetToStandard restores the in-memory behavior of every operation
func (m *MockDynamoDB) ResetToStandard() {
	setupStandardDynamoDBResponses(m)
}

// Seed stores items directly, bypassing conditions and the recorder
func (m *MockDynamoDB) Seed(table string, items ...Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range items {
		m.tableLocked(table)[m.keyOf(item)] = copyItem(item)
	}
}

// Items returns the table's items ordered by hash key
func (m *MockDynamoDB) Items(table string) []Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedLocked(table)
}

// SimulateThrottling configures every operation to fail with ErrThrottled
func (m *MockDynamoDB) SimulateThrottling() {
	m.failAll(ErrThrottled)
}

// SimulateAccessDenied configures every operation to fail with ErrAccessDenied
func (m *MockDynamoDB) SimulateAccessDenied() {
	m.failAll(ErrAccessDenied)
}

// SimulateNotFound configures every operation to fail as if the table did not exist
func (m *MockDynamoDB) SimulateNotFound() {
	m.failAll(ErrTableNotFound)
}

func (m *MockDynamoDB) failAll(err error) {
	m.behavior.Lock()
	defer m.behavior.Unlock()
	m.PutItemFunc = func(aws.Context, *dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error) {
		return nil, err
	}
	m.GetItemFunc = func(aws.Context, *dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
		return nil, err
	}
	m.QueryFunc = func(aws.Context, *dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
		return nil, err
	}
	m.ScanFunc = func(aws.Context, *dynamodb.ScanInput) (*dynamodb.ScanOutput, error) {
		return nil, err
	}
	m.DeleteItemFunc = func(aws.Context, *dynamodb.DeleteItemInput) (*dynamodb.DeleteItemOutput, error) {
		return nil, err
	}
}

// PutItemWithContext calls the mocked PutItem function
func (m *MockDynamoDB) PutItemWithContext(ctx aws.Context, in *dynamodb.PutItemInput, _ ...request.Option) (*dynamodb.PutItemOutput, error) {
	m.calls.Record(MethodPutItem, in)
	m.behavior.RLock()
	fn := m.PutItemFunc
	m.behavior.RUnlock()
	return fn(ctx, in)
}

// GetItemWithContext calls the mocked GetItem function
func (m *MockDynamoDB) GetItemWithContext(ctx aws.Context, in *dynamodb.GetItemInput, _ ...request.Option) (*dynamodb.GetItemOutput, error) {
	m.calls.Record(MethodGetItem, in)
	m.behavior.RLock()
	fn := m.GetItemFunc
	m.behavior.RUnlock()
	return fn(ctx, in)
}

// QueryWithContext calls the mocked Query function
func (m *MockDynamoDB) QueryWithContext(ctx aws.Context, in *dynamodb.QueryInput, _ ...request.Option) (*dynamodb.QueryOutput, error) {
	m.calls.Record(MethodQuery, in)
	m.behavior.RLock()
	fn := m.QueryFunc
	m.behavior.RUnlock()
	return fn(ctx, in)
}

// ScanWithContext calls the mocked Scan function
func (m *MockDynamoDB) ScanWithContext(ctx aws.Context, in *dynamodb.ScanInput, _ ...request.Option) (*dynamodb.ScanOutput, error) {
	m.calls.Record(MethodScan, in)
	m.behavior.RLock()
	fn := m.ScanFunc
	m.behavior.RUnlock()
	return fn(ctx, in)
}

// DeleteItemWithContext calls the mocked DeleteItem function
func (m *MockDynamoDB) DeleteItemWithContext(ctx aws.Context, in *dynamodb.DeleteItemInput, _ ...request.Option) (*dynamodb.DeleteItemOutput, error) {
	m.calls.Record(MethodDeleteItem, in)
	m.behavior.RLock()
	fn := m.DeleteItemFunc
	m.behavior.RUnlock()
	return fn(ctx, in)
}

func (m *MockDynamoDB) putItem(_ aws.Context, in *dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table := m.tableLocked(aws.StringValue(in.TableName))
	key := m.keyOf(in.Item)
	if err := checkCondition(aws.StringValue(in.ConditionExpression), table[key]); err != nil {
		return nil, err
	}
	table[key] = copyItem(in.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (m *MockDynamoDB) getItem(_ aws.Context, in *dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.tableLocked(aws.StringValue(in.TableName))[m.keyOf(in.Key)]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: copyItem(item)}, nil
}

func (m *MockDynamoDB) query(_ aws.Context, in *dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	match := keyConditionRe.FindStringSubmatch(aws.StringValue(in.KeyConditionExpression))
	if match == nil {
		return nil, awsValidationError("unsupported key condition expression")
	}
	want := in.ExpressionAttributeValues[match[2]]
	if want == nil {
		return nil, awsValidationError("missing expression attribute value " + match[2])
	}

	var items []Item
	for _, item := range m.sortedLocked(aws.StringValue(in.TableName)) {
		if got := item[match[1]]; got != nil && aws.StringValue(got.S) == aws.StringValue(want.S) {
			items = append(items, item)
		}
	}
	return &dynamodb.QueryOutput{Items: items, Count: aws.Int64(int64(len(items)))}, nil
}

func (m *MockDynamoDB) scan(_ aws.Context, in *dynamodb.ScanInput) (*dynamodb.ScanOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.sortedLocked(aws.StringValue(in.TableName))
	return &dynamodb.ScanOutput{Items: items, Count: aws.Int64(int64(len(items)))}, nil
}

func (m *MockDynamoDB) deleteItem(_ aws.Context, in *dynamodb.DeleteItemInput) (*dynamodb.DeleteItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table := m.tableLocked(aws.StringValue(in.TableName))
	key := m.keyOf(in.Key)
	old, ok := table[key]
	if err := checkCondition(aws.StringValue(in.ConditionExpression), old); err != nil {
		return nil, err
	}
	delete(table, key)

	out := &dynamodb.DeleteItemOutput{}
	if ok && aws.StringValue(in.ReturnValues) == dynamodb.ReturnValueAllOld {
		out.Attributes = old
	}
	return out, nil
}

func (m *MockDynamoDB) tableLocked(name string) map[string]Item {
	table, ok := m.tables[name]
	if !ok {
		table = make(map[string]Item)
		m.tables[name] = table
	}
	return table
}

func (m *MockDynamoDB) sortedLocked(name string) []Item {
	table := m.tables[name]
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	items := make([]Item, 0, len(keys))
	for _, k := range keys {
		items = append(items, copyItem(table[k]))
	}
	return items
}

func (m *MockDynamoDB) keyOf(item Item) string {
	if v := item[m.HashKey]; v != nil {
		return aws.StringValue(v.S)
	}
	return ""
}

// checkCondition evaluates the attribute_exists / attribute_not_exists
// conditions the task store uses. An empty expression always passes.
func checkCondition(expr string, existing Item) error {
	if expr == "" {
		return nil
	}
	match := conditionRe.FindStringSubmatch(expr)
	if match == nil {
		return awsValidationError("unsupported condition expression: " + expr)
	}
	_, exists := existing[match[2]]
	if (match[1] == "attribute_exists") != exists {
		return ErrConditionFailed
	}
	return nil
}

func copyItem(item Item) Item {
	if item == nil {
		return nil
	}
	out := make(Item, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}
