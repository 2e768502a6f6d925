package s3infra

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockS3 struct {
	mock.Mock
	body string
}

func (m *mockS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	b, _ := io.ReadAll(in.Body)
	m.body = string(b)
	args := m.Called(aws.ToString(in.Bucket), aws.ToString(in.Key), aws.ToString(in.ContentType))
	return &s3.PutObjectOutput{}, args.Error(0)
}

func TestUpload(t *testing.T) {
	api := new(mockS3)
	api.On("PutObject", "archive", "delivery-log/x.jsonl", "application/x-ndjson").Return(nil)

	uri, err := NewStore(api, "archive").Upload(context.Background(), "delivery-log/x.jsonl", strings.NewReader("{}\n"), "application/x-ndjson")
	require.NoError(t, err)
	assert.Equal(t, "s3://archive/delivery-log/x.jsonl", uri)
	assert.Equal(t, "{}\n", api.body)
	api.AssertExpectations(t)
}

func TestUpload_Error(t *testing.T) {
	api := new(mockS3)
	apiErr := errors.New("access denied")
	api.On("PutObject", mock.Anything, mock.Anything, mock.Anything).Return(apiErr)

	_, err := NewStore(api, "archive").Upload(context.Background(), "k", strings.NewReader(""), "text/plain")
	assert.ErrorIs(t, err, apiErr)
}
