package s3

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// MockInstance keeps buckets in memory
type MockInstance struct {
	mx        sync.Mutex
	files     map[string]map[string][]byte
	connected bool
}

func NewMock(files map[string]map[string][]byte) *MockInstance {
	mp := make(map[string]map[string][]byte, len(files))
	for k, v := range files {
		bucket := make(map[string][]byte, len(v))
		for key, data := range v {
			bucket[key] = data
		}

		mp[k] = bucket
	}

	return &MockInstance{
		files:     mp,
		connected: true,
	}
}

func (a *MockInstance) SetConnected(connected bool) {
	a.mx.Lock()
	defer a.mx.Unlock()

	a.connected = connected
}

// File returns the content stored under a key
func (a *MockInstance) File(bucket, key string) ([]byte, bool) {
	a.mx.Lock()
	defer a.mx.Unlock()

	data, ok := a.files[bucket][key]

	return data, ok
}

func (a *MockInstance) ListBuckets(ctx context.Context) (*s3.ListBucketsOutput, error) {
	a.mx.Lock()
	defer a.mx.Unlock()

	if !a.connected {
		return nil, http.ErrHandlerTimeout
	}

	resp := &s3.ListBucketsOutput{}

	for name := range a.files {
		resp.Buckets = append(resp.Buckets, &s3.Bucket{
			Name:         aws.String(name),
			CreationDate: aws.Time(time.Now()),
		})
	}

	return resp, nil
}

func (a *MockInstance) UploadFile(ctx context.Context, opts *s3manager.UploadInput) error {
	a.mx.Lock()
	defer a.mx.Unlock()

	if !a.connected {
		return http.ErrHandlerTimeout
	}

	if opts.Bucket == nil {
		return errors.New(s3.ErrCodeNoSuchBucket)
	}

	if opts.Key == nil {
		return errors.New(s3.ErrCodeNoSuchKey)
	}

	files, ok := a.files[*opts.Bucket]
	if !ok {
		return errors.New(s3.ErrCodeNoSuchBucket)
	}

	data, err := io.ReadAll(opts.Body)
	if err != nil {
		return err
	}

	files[*opts.Key] = data

	return nil
}
