package mocks

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// S3 method names as recorded by the CallRecorder
const (
	MethodPutObject    = "PutObject"
	MethodGetObject    = "GetObject"
	MethodDeleteObject = "DeleteObject"
)

// MockS3 is an in-memory object store
type MockS3 struct {
	s3iface.S3API

	PutObjectFunc    func(ctx aws.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error)
	GetObjectFunc    func(ctx aws.Context, in *s3.GetObjectInput) (*s3.GetObjectOutput, error)
	DeleteObjectFunc func(ctx aws.Context, in *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error)

	calls    *CallRecorder
	behavior sync.RWMutex
	mu       sync.Mutex
	objects  map[string][]byte
}

// NewMockS3 creates an empty in-memory object store
func NewMockS3() *MockS3 {
	m := &MockS3{
		calls:   NewCallRecorder(),
		objects: make(map[string][]byte),
	}
	setupStandardS3Responses(m)
	return m
}

func setupStandardS3Responses(m *MockS3) {
	m.behavior.Lock()
	defer m.behavior.Unlock()
	m.PutObjectFunc = m.putObject
	m.GetObjectFunc = m.getObject
	m.DeleteObjectFunc = m.deleteObject
}

// Name returns the service name
func (m *MockS3) Name() string {
	return ServiceS3
}

// Calls returns the invocation recorder
func (m *MockS3) Calls() *CallRecorder {
	return m.calls
}

// Clear drops recorded invocations and every stored object
func (m *MockS3) Clear() {
	m.calls.Clear()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects = make(map[string][]byte)
}

// ResetToStandard restores the in-memory behavior of every operation
func (m *MockS3) ResetToStandard() {
	setupStandardS3Responses(m)
}

// Object returns the stored body of bucket/key
func (m *MockS3) Object(bucket, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	body, ok := m.objects[objectKey(bucket, key)]
	return body, ok
}

// SimulateAccessDenied configures every operation to fail with ErrAccessDenied
func (m *MockS3) SimulateAccessDenied() {
	m.failAll(ErrAccessDenied)
}

// SimulateThrottling configures every operation to fail with ErrThrottled
func (m *MockS3) SimulateThrottling() {
	m.failAll(ErrThrottled)
}

func (m *MockS3) failAll(err error) {
	m.behavior.Lock()
	defer m.behavior.Unlock()
	m.PutObjectFunc = func(aws.Context, *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return nil, err
	}
	m.GetObjectFunc = func(aws.Context, *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
		return nil, err
	}
	m.DeleteObjectFunc = func(aws.Context, *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
		return nil, err
	}
}

// PutObjectWithContext calls the mocked PutObject function
func (m *MockS3) PutObjectWithContext(ctx aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	m.calls.Record(MethodPutObject, in)
	m.behavior.RLock()
	fn := m.PutObjectFunc
	m.behavior.RUnlock()
	return fn(ctx, in)
}

// GetObjectWithContext calls the mocked GetObject function
func (m *MockS3) GetObjectWithContext(ctx aws.Context, in *s3.GetObjectInput, _ ...request.Option) (*s3.GetObjectOutput, error) {
	m.calls.Record(MethodGetObject, in)
	m.behavior.RLock()
	fn := m.GetObjectFunc
	m.behavior.RUnlock()
	return fn(ctx, in)
}

// DeleteObjectWithContext calls the mocked DeleteObject function
func (m *MockS3) DeleteObjectWithContext(ctx aws.Context, in *s3.DeleteObjectInput, _ ...request.Option) (*s3.DeleteObjectOutput, error) {
	m.calls.Record(MethodDeleteObject, in)
	m.behavior.RLock()
	fn := m.DeleteObjectFunc
	m.behavior.RUnlock()
	return fn(ctx, in)
}

func (m *MockS3) putObject(_ aws.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
	var body []byte
	if in.Body != nil {
		data, err := io.ReadAll(in.Body)
		if err != nil {
			return nil, fmt.Errorf("mock: failed to read body: %w", err)
		}
		body = data
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[objectKey(aws.StringValue(in.Bucket), aws.StringValue(in.Key))] = body
	return &s3.PutObjectOutput{ETag: aws.String(DefaultETag)}, nil
}

func (m *MockS3) getObject(_ aws.Context, in *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	body, ok := m.objects[objectKey(aws.StringValue(in.Bucket), aws.StringValue(in.Key))]
	if !ok {
		return nil, ErrNoSuchKey
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: aws.Int64(int64(len(body))),
	}, nil
}

func (m *MockS3) deleteObject(_ aws.Context, in *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, objectKey(aws.StringValue(in.Bucket), aws.StringValue(in.Key)))
	return &s3.DeleteObjectOutput{}, nil
}

func objectKey(bucket, key string) string {
	return bucket + "/" + key
}
