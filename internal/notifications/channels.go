package notifications

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"go.uber.org/zap"
)

// Mailer delivers a plain-text email.
type Mailer interface {
	Send(ctx context.Context, to, subject, text string) error
}

// Texter delivers a short SMS.
type Texter interface {
	Send(ctx context.Context, to, body string) error
}

type sesMailer struct {
	client *sesv2.Client
	from   string
}

// NewSESMailer returns an SES-backed mailer, or a logging no-op when no
// sender address is configured.
func NewSESMailer(ctx context.Context, region, from string, logger *zap.Logger) Mailer {
	if from == "" {
		logger.Info("email sender not configured, email notifications disabled")
		return noopMailer{logger: logger}
	}
	cfg, err := loadAWSConfig(ctx, region)
	if err != nil {
		logger.Warn("failed to load aws config for SES, email notifications disabled", zap.Error(err))
		return noopMailer{logger: logger}
	}
	return &sesMailer{client: sesv2.NewFromConfig(cfg), from: from}
}

func (m *sesMailer) Send(ctx context.Context, to, subject, text string) error {
	_, err := m.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.from),
		Destination:      &sestypes.Destination{ToAddresses: []string{to}},
		Content: &sestypes.EmailContent{
			Simple: &sestypes.Message{
				Subject: &sestypes.Content{Data: aws.String(subject)},
				Body:    &sestypes.Body{Text: &sestypes.Content{Data: aws.String(text)}},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ses send to %s: %w", to, err)
	}
	return nil
}

type snsTexter struct {
	client   *sns.Client
	senderID string
}

// NewSNSTexter returns an SNS-backed texter, or a logging no-op when no
// sender id is configured.
func NewSNSTexter(ctx context.Context, region, senderID string, logger *zap.Logger) Texter {
	if senderID == "" {
		logger.Info("sms sender not configured, sms notifications disabled")
		return noopTexter{logger: logger}
	}
	cfg, err := loadAWSConfig(ctx, region)
	if err != nil {
		logger.Warn("failed to load aws config for SNS, sms notifications disabled", zap.Error(err))
		return noopTexter{logger: logger}
	}
	return &snsTexter{client: sns.NewFromConfig(cfg), senderID: senderID}
}

func (t *snsTexter) Send(ctx context.Context, to, body string) error {
	_, err := t.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(body),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"AWS.SNS.SMS.SenderID": {
				DataType:    aws.String("String"),
				StringValue: aws.String(t.senderID),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish to %s: %w", to, err)
	}
	return nil
}

func loadAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	if region == "" {
		region = "ap-southeast-1"
	}
	return awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
}

type noopMailer struct {
	logger *zap.Logger
}

func (n noopMailer) Send(_ context.Context, to, subject, _ string) error {
	n.logger.Info("skipping email, transport not configured",
		zap.String("to", to), zap.String("subject", subject))
	return nil
}

type noopTexter struct {
	logger *zap.Logger
}

func (n noopTexter) Send(_ context.Context, to, body string) error {
	n.logger.Info("skipping sms, transport not configured",
		zap.String("to", to), zap.String("body", body))
	return nil
}
