package services

import (
	"encoding/hex"
	"math"
	"net/http"

	"github.com/basisledger/iou-ledger-service/internal/types"
	"github.com/basisledger/iou-ledger-service/internal/utils"
)

// Amounts are capped at the largest signed 64 bit value so every storage
// engine can hold them unchanged.
const MaxAmount = math.MaxInt64

func parsePubKey(field, pkHex string) ([]byte, *types.Error) {
	pk, err := utils.ParsePubKeyHex(pkHex)
	if err != nil {
		return nil, types.NewFieldError(http.StatusBadRequest, types.MalformedKey, field, err.Error())
	}
	return pk, nil
}

func validateAmount(amount uint64) *types.Error {
	if amount == 0 {
		return types.NewFieldError(http.StatusBadRequest, types.MalformedAmount, "amount", "amount must be greater than 0")
	}
	if amount > MaxAmount {
		return types.NewFieldError(http.StatusBadRequest, types.MalformedAmount, "amount", "amount is too large")
	}
	return nil
}

func hexKey(b []byte) string {
	return hex.EncodeToString(b)
}
