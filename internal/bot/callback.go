package bot

import (
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/polkiloo/earnbot/internal/domain/model"
)

const withdrawalPrefix = "wd"

var errMalformedCallback = errors.New("malformed callback data")

var actionCodes = map[model.WithdrawalAction]string{
	model.WithdrawalApprove: "a",
	model.WithdrawalReject:  "r",
}

// withdrawalPayload encodes an admin decision as "wd:<a|r>:<uuid>".
func withdrawalPayload(action model.WithdrawalAction, id uuid.UUID) string {
	return withdrawalPrefix + ":" + actionCodes[action] + ":" + id.String()
}

// withdrawalGuardKey covers both buttons of one request.
func withdrawalGuardKey(id uuid.UUID) string {
	return withdrawalPrefix + ":" + id.String()
}

func parseWithdrawalPayload(payload string) (model.WithdrawalAction, uuid.UUID, error) {
	parts := strings.Split(payload, ":")
	if len(parts) != 3 || parts[0] != withdrawalPrefix {
		return "", uuid.Nil, errMalformedCallback
	}
	var action model.WithdrawalAction
	for a, code := range actionCodes {
		if code == parts[1] {
			action = a
		}
	}
	if action == "" {
		return "", uuid.Nil, errMalformedCallback
	}
	id, err := uuid.Parse(parts[2])
	if err != nil {
		return "", uuid.Nil, errMalformedCallback
	}
	return action, id, nil
}
