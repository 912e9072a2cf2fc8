// Package notify holds the observer collaborators the engine fans changes
// out to: email notification, external calendar sync, and write-through
// persistence. Effects go through narrow interfaces so transports stay
// pluggable.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"apptmed/backend/internal/domain"
	"apptmed/backend/internal/scheduling"
)

// EmailSender delivers a single email message.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// EmailObserver mails every participant of a changed appointment. Delivery
// failures are logged and never surface to the engine.
type EmailObserver struct {
	sender EmailSender
	log    *slog.Logger
}

func NewEmailObserver(sender EmailSender, log *slog.Logger) *EmailObserver {
	if log == nil {
		log = slog.Default()
	}
	return &EmailObserver{
		sender: sender,
		log:    log.With(slog.String("component", "notify.email")),
	}
}

func (o *EmailObserver) Notify(ctx context.Context, appt domain.Appointment, change scheduling.ChangeKind) {
	subject := fmt.Sprintf("Appointment %s: %s", change, appt.Title)
	body := fmt.Sprintf(
		"Your appointment %q has been %s.\nWhen: %s – %s",
		appt.Title, change,
		appt.StartTime.Format("Mon, 02 Jan 2006 15:04 MST"),
		appt.EndTime.Format("15:04 MST"),
	)
	if appt.Location != "" {
		body += "\nWhere: " + appt.Location
	}

	for _, to := range recipients(appt) {
		if err := o.sender.Send(ctx, to, subject, body); err != nil {
			o.log.Error(
				"email delivery failed",
				slog.Any("err", err),
				slog.String("appointment_id", appt.ID.String()),
				slog.String("to", to),
			)
		}
	}
}

func recipients(appt domain.Appointment) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(email string) {
		if email == "" {
			return
		}
		if _, ok := seen[email]; ok {
			return
		}
		seen[email] = struct{}{}
		out = append(out, email)
	}

	add(appt.Client.Email)
	for _, c := range appt.Clients {
		add(c.Email)
	}
	if appt.Staff != nil {
		add(appt.Staff.Email)
	}
	return out
}

// LogEmailSender records outgoing mail instead of delivering it. It is the
// default sender when no mail transport is configured.
type LogEmailSender struct {
	log *slog.Logger
}

func NewLogEmailSender(log *slog.Logger) *LogEmailSender {
	if log == nil {
		log = slog.Default()
	}
	return &LogEmailSender{log: log.With(slog.String("component", "notify.email.log"))}
}

func (s *LogEmailSender) Send(ctx context.Context, to, subject, body string) error {
	s.log.Info("email", slog.String("to", to), slog.String("subject", subject))
	return nil
}
