package cloud

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/rs/zerolog"

	"github.com/ANIKETSHETTY47/smart-incubator-monitor/internal/alerting"
	"github.com/ANIKETSHETTY47/smart-incubator-monitor/internal/domain"
)

const alertSubject = "Incubator Alert"

type snsPublisher interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSNotifier sends operator notifications for raised alerts to an SNS topic.
type SNSNotifier struct {
	svc      snsPublisher
	topicArn string
	log      zerolog.Logger
}

func NewSNSNotifier(ctx context.Context, region, topicArn string, logger zerolog.Logger) (*SNSNotifier, error) {
	if topicArn == "" {
		return nil, fmt.Errorf("sns topic arn is empty")
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	return &SNSNotifier{
		svc:      sns.NewFromConfig(cfg),
		topicArn: topicArn,
		log:      logger.With().Str("component", "sns").Logger(),
	}, nil
}

// NotifyAlert publishes one message describing a.
func (n *SNSNotifier) NotifyAlert(ctx context.Context, a domain.Alert) error {
	return n.publish(ctx, alertSubject, AlertMessage(a))
}

// AlertMessage renders the notification body for a.
func AlertMessage(a domain.Alert) string {
	return fmt.Sprintf(
		"Incubator Alert\n\n"+
			"Severity: %s\n"+
			"Temperature: %.1f°C\n"+
			"Humidity: %.1f%%\n"+
			"Raised: %s\n"+
			"Alert ID: %s\n\n"+
			"%s",
		alerting.SeverityOf(a),
		a.Temperature,
		a.Humidity,
		a.RaisedAt.UTC().Format(time.RFC3339),
		a.ID,
		a.Message,
	)
}

func (n *SNSNotifier) publish(ctx context.Context, subject, message string) error {
	out, err := n.svc.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicArn),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	})
	if err != nil {
		return fmt.Errorf("failed to publish to SNS: %w", err)
	}

	n.log.Info().Str("message_id", aws.ToString(out.MessageId)).Msg("alert notification sent")
	return nil
}
