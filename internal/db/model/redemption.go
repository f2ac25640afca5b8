package model

import "github.com/basisledger/iou-ledger-service/internal/types"

// DebtAllocation records how much of a redemption was charged to one reserve.
type DebtAllocation struct {
	BoxId            string `bson:"box_id"`
	DebtIncrease     uint64 `bson:"debt_increase"`
	TotalDebt        uint64 `bson:"total_debt"`
	CollateralAmount uint64 `bson:"collateral_amount"`
}

// RedemptionDocument is both the durable log entry of a committed redemption
// and the record used to answer replays of the same request.
type RedemptionDocument struct {
	RedemptionId    string                     `bson:"_id"` // Primary key
	IssuerPkHex     string                     `bson:"issuer_pk_hex"`
	RecipientPkHex  string                     `bson:"recipient_pk_hex"`
	Amount          uint64                     `bson:"amount"`
	Timestamp       uint64                     `bson:"timestamp"`
	AuthorizedBy    types.RedemptionAuthorizer `bson:"authorized_by"`
	SignatureHex    string                     `bson:"signature_hex"`
	RemainingAmount uint64                     `bson:"remaining_amount"`
	Allocations     []DebtAllocation           `bson:"allocations"`
	CommittedAt     int64                      `bson:"committed_at"`
}

// RedemptionRequestDocument carries the fields of a redemption that are known
// before it is committed.
type RedemptionRequestDocument struct {
	RedemptionId   string
	IssuerPkHex    string
	RecipientPkHex string
	Amount         uint64
	Timestamp      uint64
	AuthorizedBy   types.RedemptionAuthorizer
	SignatureHex   string

	// ExpectedRemaining, when set, is the remaining amount of the note the
	// caller checked against. A different amount at commit is a conflict.
	ExpectedRemaining uint64
}
