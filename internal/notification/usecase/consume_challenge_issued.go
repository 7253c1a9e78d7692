package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/reportgate/reportgate/internal/notification/entity"
	"github.com/reportgate/reportgate/internal/pkg/mail"
	"github.com/reportgate/reportgate/internal/pkg/valueobject"
	"github.com/sethvargo/go-retry"
)

const passwordResetBody = `
<p>Hello,</p>
<p>Use this code to reset your {{.company_name}} password:</p>
<p><strong style="font-size:24px;letter-spacing:4px;">{{.code}}</strong></p>
<p>The code expires in {{.expires_minutes}} minutes. If you did not request it, you can ignore this email.</p>
<p>{{.company_name}} &middot; {{.support_email}} &middot; {{.year}}</p>`

const guestAccessBody = `
<p>Hello,</p>
<p>Use this code to open the reports shared with you on {{.company_name}}:</p>
<p><strong style="font-size:24px;letter-spacing:4px;">{{.code}}</strong></p>
<p>The code expires in {{.expires_minutes}} minutes. If you did not request it, you can ignore this email.</p>
<p>{{.company_name}} &middot; {{.support_email}} &middot; {{.year}}</p>`

type ConsumeChallengeIssuedInput struct {
	ChallengeID      int64  `validate:"required,gt=0"`
	RecipientEmail   string `validate:"required,email"`
	Purpose          string `validate:"required,oneof=password-reset guest-access"`
	Code             string `validate:"required,otpcode"`
	ExpiresInSeconds int64  `validate:"required,gt=0"`
}

// ConsumeChallengeIssued delivers a one-time code email and records the
// outcome in the delivery log. Malformed payloads are dropped, not retried.
func (s *Usecase) ConsumeChallengeIssued(ctx context.Context, in ConsumeChallengeIssuedInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeChallengeIssued")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "Validation failed", "error", err)
		return nil
	}

	subject, bodyTpl := "Your verification code", passwordResetBody
	if in.Purpose == "guest-access" {
		subject, bodyTpl = "Your report access code", guestAccessBody
	}

	data := s.baseEmailTemplateData()
	data["code"] = in.Code
	data["expires_minutes"] = in.ExpiresInSeconds / 60

	body, err := s.renderTemplate(in.Purpose, bodyTpl, data)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render email body", "purpose", in.Purpose, "error", err)
		return nil
	}

	d := entity.CreateDelivery{
		ID:             s.uid.Generate(),
		RecipientEmail: in.RecipientEmail,
		Purpose:        in.Purpose,
		Subject:        subject,
		Status:         entity.DeliveryStatusQueued,
	}
	if err := s.repoDB.CreateDelivery(ctx, d); err != nil {
		slog.ErrorContext(ctx, "failed to repo create delivery", "challenge_id", in.ChallengeID, "error", err)
		return err
	}

	var attempts int32
	backoff := retry.WithMaxRetries(
		s.cfg.GetUint64("modules.notification.send_max_retries"),
		retry.NewExponential(s.cfg.GetSecond("modules.notification.send_backoff_seconds")),
	)

	mailErr := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		if err := s.repoMail.Send(ctx, mail.Message{
			To:       []string{in.RecipientEmail},
			Subject:  subject,
			HTMLBody: body,
		}); err != nil {
			return retry.RetryableError(err)
		}

		return nil
	})

	up := entity.UpdateDelivery{
		ID:               d.ID,
		Status:           entity.DeliveryStatusSent,
		Attempts:         attempts,
		ProviderResponse: valueobject.JSONMap{"delivered_at": s.clock.Now().Format(time.RFC3339)},
	}
	if mailErr != nil {
		up.Status = entity.DeliveryStatusFailed
		up.ProviderResponse = valueobject.JSONMap{"error": mailErr.Error()}
		slog.ErrorContext(ctx, "failed to send challenge email",
			"challenge_id", in.ChallengeID, "attempts", attempts, "error", mailErr)
	}

	if err := s.repoDB.UpdateDeliveryStatus(ctx, up); err != nil {
		slog.ErrorContext(ctx, "failed to repo update delivery status", "delivery_id", d.ID, "error", err)
	}

	return nil
}
