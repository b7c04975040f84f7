package email

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/agora/internal/observability/logger"
)

// SenderNotifier implementa Notifier sobre un Sender.
type SenderNotifier struct {
	sender  Sender
	baseURL string
}

func NewSenderNotifier(sender Sender, baseURL string) *SenderNotifier {
	return &SenderNotifier{sender: sender, baseURL: baseURL}
}

func (n *SenderNotifier) SendJoinRequestEmail(ctx context.Context, ownerEmail, actorName, channelName string) error {
	subject := fmt.Sprintf("%s wants to join %s", actorName, channelName)
	text := fmt.Sprintf(
		"%s requested to join your channel %q.\n\nReview pending requests: %s\n",
		actorName, channelName, n.baseURL)
	html := fmt.Sprintf(
		"<p><strong>%s</strong> requested to join your channel <strong>%s</strong>.</p><p><a href=%q>Review pending requests</a></p>",
		actorName, channelName, n.baseURL)

	if err := n.sender.Send(ownerEmail, subject, html, text); err != nil {
		logger.From(ctx).Warn("join request email failed",
			logger.Component("email"), logger.Email(ownerEmail), logger.Err(err))
		return err
	}
	return nil
}

func (n *SenderNotifier) SendAcceptedEmail(ctx context.Context, actorEmail, channelName string) error {
	subject := fmt.Sprintf("You joined %s", channelName)
	text := fmt.Sprintf("Your request to join %q was approved. Welcome!\n\n%s\n", channelName, n.baseURL)
	html := fmt.Sprintf(
		"<p>Your request to join <strong>%s</strong> was approved. Welcome!</p><p><a href=%q>Open the channel</a></p>",
		channelName, n.baseURL)

	if err := n.sender.Send(actorEmail, subject, html, text); err != nil {
		logger.From(ctx).Warn("accepted email failed",
			logger.Component("email"), logger.Email(actorEmail), logger.Err(err))
		return err
	}
	return nil
}
