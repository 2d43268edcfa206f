package payment

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Sandbox approves every payment at once and signs it with the sandbox
// secret, so the sandbox backend's verification passes.
type Sandbox struct {
	secret string
	log    *zap.Logger

	// Decline makes every payment fail with DeclineReason.
	Decline       bool
	DeclineReason string
}

// NewSandbox constructs a Sandbox gateway.
func NewSandbox(secret string, log *zap.Logger) *Sandbox {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sandbox{secret: secret, log: log.Named("gateway")}
}

func (s *Sandbox) Open(ctx context.Context, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, &Error{Code: CodeCancelled, Description: err.Error()}
	}
	if err := validate(opts); err != nil {
		return nil, err
	}
	if s.Decline {
		s.log.Info("sandbox payment declined", zap.String("order_id", opts.OrderID))
		return nil, &Error{Code: CodeDeclined, Description: s.DeclineReason}
	}

	paymentID := "pay_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:14]
	s.log.Info("sandbox payment captured",
		zap.String("order_id", opts.OrderID),
		zap.String("payment_id", paymentID),
		zap.Int64("amount", opts.Amount),
		zap.String("currency", opts.Currency))

	return &Result{
		PaymentID: paymentID,
		OrderID:   opts.OrderID,
		Signature: Sign(opts.OrderID, paymentID, s.secret),
	}, nil
}
