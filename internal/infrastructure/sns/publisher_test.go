package sns

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSNS struct{ mock.Mock }

func (m *mockSNS) Publish(ctx context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, in)
	return &sns.PublishOutput{MessageId: aws.String("m-1")}, args.Error(0)
}

func TestPublish_ARN(t *testing.T) {
	api := new(mockSNS)
	api.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
		return aws.ToString(in.TargetArn) == "arn:aws:sns:us-east-1:1:app/APNS/x" &&
			in.PhoneNumber == nil &&
			aws.ToString(in.Subject) == "Hello" &&
			aws.ToString(in.Message) == "body"
	})).Return(nil)

	p := &Publisher{client: api}
	require.NoError(t, p.Publish(context.Background(), "arn:aws:sns:us-east-1:1:app/APNS/x", "Hello", "body"))
	api.AssertExpectations(t)
}

func TestPublish_Phone(t *testing.T) {
	api := new(mockSNS)
	api.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
		return aws.ToString(in.PhoneNumber) == "+14155550100" && in.TargetArn == nil && in.Subject == nil
	})).Return(nil)

	require.NoError(t, (&Publisher{client: api}).Publish(context.Background(), "+14155550100", "ignored", "code 1234"))
	api.AssertExpectations(t)
}

func TestPublish_InvalidTargetSkipsSNS(t *testing.T) {
	api := new(mockSNS)
	err := (&Publisher{client: api}).Publish(context.Background(), "device-token", "", "x")
	assert.True(t, errors.Is(err, ErrInvalidTarget))
	api.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestPublish_WrapsClientError(t *testing.T) {
	api := new(mockSNS)
	apiErr := errors.New("throttled")
	api.On("Publish", mock.Anything, mock.Anything).Return(apiErr)

	err := (&Publisher{client: api}).Publish(context.Background(), "+14155550100", "", "x")
	assert.ErrorIs(t, err, apiErr)
}

func TestValidTarget(t *testing.T) {
	assert.True(t, ValidTarget("arn:aws:sns:eu-west-1:1:topic"))
	assert.True(t, ValidTarget("+447700900123"))
	assert.False(t, ValidTarget("447700900123"))
	assert.False(t, ValidTarget("+0123456"))
	assert.False(t, ValidTarget(""))
}
