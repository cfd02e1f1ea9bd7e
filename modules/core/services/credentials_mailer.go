package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/irrigodev/irrigationdesign/modules/core/domain/aggregates/user"
	"github.com/irrigodev/irrigationdesign/pkg/mailer"
)

// CredentialsMailer mails a freshly created user its temporary credentials.
// It subscribes to user.CreatedEvent on the application event bus.
type CredentialsMailer struct {
	mailer      mailer.Mailer
	logger      *logrus.Logger
	frontendURL string
}

func NewCredentialsMailer(m mailer.Mailer, logger *logrus.Logger, frontendURL string) *CredentialsMailer {
	return &CredentialsMailer{
		mailer:      m,
		logger:      logger,
		frontendURL: frontendURL,
	}
}

func (s *CredentialsMailer) OnUserCreated(event *user.CreatedEvent) {
	u := event.Result
	if u.Email() == "" {
		return
	}
	body := fmt.Sprintf(
		"Hello %s,\n\n"+
			"An account has been created for you.\n\n"+
			"Username: %s\nTemporary password: %s\n\n"+
			"Sign in at %s and change your password on first login.\n",
		u.FirstName(), u.Username(), event.TempPassword, s.frontendURL,
	)
	err := s.mailer.Send(context.Background(), mailer.Message{
		To:      []string{u.Email()},
		Subject: "Your account credentials",
		Body:    body,
	})
	if err != nil {
		s.logger.WithError(err).WithField("user", u.ID()).Error("failed to send credentials mail")
	}
}
