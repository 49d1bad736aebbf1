package notify

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"

	"fda-watch/config"
)

// SESNotifier verschickt Benachrichtigungen über AWS SES. Absender und
// Empfänger sind feste Konfiguration.
type SESNotifier struct {
	Config *config.Config
	Logger *zap.Logger
	client *sesv2.Client
}

// NewSESNotifier erstellt einen SES-Client für die konfigurierte Region.
func NewSESNotifier(cfg *config.Config, logger *zap.Logger) (*SESNotifier, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.SESRegion),
	)
	if err != nil {
		return nil, err
	}

	return &SESNotifier{
		Config: cfg,
		Logger: logger,
		client: sesv2.NewFromConfig(awsCfg),
	}, nil
}

// Send verschickt eine einzelne Text-Mail an den konfigurierten Empfänger.
func (n *SESNotifier) Send(ctx context.Context, subject, body string) error {
	out, err := n.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(n.Config.NotifySender),
		Destination: &types.Destination{
			ToAddresses: []string{n.Config.NotifyRecipient},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body)},
				},
			},
		},
	})
	if err != nil {
		return err
	}

	n.Logger.Info("Benachrichtigung verschickt", zap.Stringp("message_id", out.MessageId))
	return nil
}
