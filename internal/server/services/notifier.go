package services

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
)

// VerificationNotifier delivers an email verification token to its owner.
type VerificationNotifier interface {
	SendVerification(ctx context.Context, email, username, token string) error
}

// LogNotifier writes verification tokens to the log instead of sending
// mail. Meant for development deployments.
type LogNotifier struct {
	logger logging.Logger
}

func NewLogNotifier(logger logging.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendVerification(ctx context.Context, email, username, token string) error {
	n.logger.Info(ctx, "verification token issued", "email", email, "username", username, "token", token)
	return nil
}
