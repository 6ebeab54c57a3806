package bot

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polkiloo/earnbot/internal/domain/model"
	pkgAuth "github.com/polkiloo/earnbot/internal/pkg/auth"
)

func TestWithdrawalPayloadRoundTrip(t *testing.T) {
	id := uuid.New()
	for _, action := range []model.WithdrawalAction{model.WithdrawalApprove, model.WithdrawalReject} {
		gotAction, gotID, err := parseWithdrawalPayload(withdrawalPayload(action, id))
		require.NoError(t, err)
		assert.Equal(t, action, gotAction)
		assert.Equal(t, id, gotID)
	}
}

func TestSignedPayloadFitsCallbackLimit(t *testing.T) {
	signer := pkgAuth.NewHMACSigner("a-rather-long-secret-value-for-production")
	data := signer.Sign(withdrawalPayload(model.WithdrawalApprove, uuid.New()))
	assert.LessOrEqual(t, len(data), 64)
}

func TestParseWithdrawalPayloadRejectsMalformed(t *testing.T) {
	id := uuid.NewString()
	for _, payload := range []string{
		"",
		"wd:a",
		"xx:a:" + id,
		"wd:x:" + id,
		"wd:a:not-a-uuid",
		"wd:a:" + id + ":extra",
	} {
		_, _, err := parseWithdrawalPayload(payload)
		assert.ErrorIs(t, err, errMalformedCallback, payload)
	}
}
