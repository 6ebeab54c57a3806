package bot

import (
	"context"
	"fmt"

	"github.com/polkiloo/earnbot/internal/domain/model"
	pkgAuth "github.com/polkiloo/earnbot/internal/pkg/auth"
)

// Notifier delivers withdrawal events through the messenger.
type Notifier struct {
	messenger Messenger
	signer    pkgAuth.Signer
	adminChat int64
}

// NewNotifier constructs Notifier posting admin messages to adminChat.
func NewNotifier(messenger Messenger, signer pkgAuth.Signer, adminChat int64) *Notifier {
	return &Notifier{messenger: messenger, signer: signer, adminChat: adminChat}
}

// WithdrawalRequested asks admins to approve or reject w.
func (n *Notifier) WithdrawalRequested(ctx context.Context, w model.Withdrawal) error {
	row := []Button{
		{Text: "Approve", Data: n.signer.Sign(withdrawalPayload(model.WithdrawalApprove, w.ID))},
		{Text: "Reject", Data: n.signer.Sign(withdrawalPayload(model.WithdrawalReject, w.ID))},
	}
	if _, err := n.messenger.Send(ctx, n.adminChat, formatWithdrawalRequest(w), row); err != nil {
		return fmt.Errorf("notify admins: %w", err)
	}
	return nil
}

// WithdrawalResolved tells the requesting user about the outcome.
func (n *Notifier) WithdrawalResolved(ctx context.Context, w model.Withdrawal) error {
	if _, err := n.messenger.Send(ctx, w.UserID, formatResolution(w)); err != nil {
		return fmt.Errorf("notify user %d: %w", w.UserID, err)
	}
	return nil
}
