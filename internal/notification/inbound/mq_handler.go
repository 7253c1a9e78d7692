package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/reportgate/reportgate/internal/notification/usecase"
	"github.com/reportgate/reportgate/internal/pkg/instrument"
	"github.com/reportgate/reportgate/internal/pkg/messaging"
	"github.com/reportgate/reportgate/internal/pkg/uid"
	"github.com/reportgate/reportgate/internal/shared/event"
)

const keyOfCorrelationID string = "cID"

type MQHandler struct {
	uc   uc
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, headers []messaging.Header) context.Context {
	for i := range headers {
		if headers[i].Key == keyOfCorrelationID {
			return instrument.SetCorrelationID(ctx, string(headers[i].Value))
		}
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

func (h *MQHandler) ChallengeIssuedNotification(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers())

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "ChallengeIssuedNotification")
	defer span.End()

	// The payload carries the plaintext code so it is never logged.
	var payload event.ChallengeIssuedMessage
	if err := json.Unmarshal(msg.Body(), &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of challenge issued notification", "error", err)
		return nil
	}

	slog.InfoContext(ctx, "consume: challenge issued notification",
		"challenge_id", payload.ChallengeID, "purpose", payload.Purpose)

	if err := h.uc.ConsumeChallengeIssued(ctx, usecase.ConsumeChallengeIssuedInput{
		ChallengeID:      payload.ChallengeID,
		RecipientEmail:   payload.RecipientEmail,
		Purpose:          payload.Purpose,
		Code:             payload.Code,
		ExpiresInSeconds: payload.ExpiresInSeconds,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume challenge issued", "challenge_id", payload.ChallengeID, "error", err)
		return err
	}

	return nil
}
