package sns

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/go-notification-hub/internal/config"
)

var ErrInvalidTarget = errors.New("push target must be an SNS ARN or an E.164 phone number")

var e164Re = regexp.MustCompile(`^\+[1-9][0-9]{6,14}$`)

// snsAPI is the subset of the SNS client used here.
type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Publisher sends push notifications and SMS through AWS SNS.
type Publisher struct {
	client snsAPI
}

func NewPublisher(ctx context.Context, cfg *config.Config) (*Publisher, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.SNSRegion),
	}
	if cfg.AWSAccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config for SNS: %w", err)
	}

	clientOpts := []func(*sns.Options){}
	if cfg.AWSEndpointURL != "" {
		clientOpts = append(clientOpts, func(o *sns.Options) {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
		})
	}
	return &Publisher{client: sns.NewFromConfig(awsCfg, clientOpts...)}, nil
}

// ValidTarget reports whether target is an ARN (topic or endpoint) or an E.164 number.
func ValidTarget(target string) bool {
	return strings.HasPrefix(target, "arn:") || e164Re.MatchString(target)
}

// Publish routes ARNs to TargetArn and phone numbers to PhoneNumber.
func (p *Publisher) Publish(ctx context.Context, target, subject, message string) error {
	in := &sns.PublishInput{Message: aws.String(message)}
	switch {
	case strings.HasPrefix(target, "arn:"):
		in.TargetArn = aws.String(target)
		if subject != "" {
			in.Subject = aws.String(subject)
		}
	case e164Re.MatchString(target):
		in.PhoneNumber = aws.String(target)
	default:
		return fmt.Errorf("%q: %w", target, ErrInvalidTarget)
	}
	if _, err := p.client.Publish(ctx, in); err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}
