package types

type NoteState string

const (
	NoteActive            NoteState = "active"
	NotePartiallyRedeemed NoteState = "partially_redeemed"
	NoteFullyRedeemed     NoteState = "fully_redeemed"
)

func (s NoteState) ToString() string {
	return string(s)
}

// NoteStateFor derives the state of a note from its original and remaining amount.
func NoteStateFor(originalAmount, remainingAmount uint64) NoteState {
	switch {
	case remainingAmount == 0:
		return NoteFullyRedeemed
	case remainingAmount < originalAmount:
		return NotePartiallyRedeemed
	default:
		return NoteActive
	}
}

// RedemptionAuthorizer identifies which party signed a redemption request.
type RedemptionAuthorizer string

const (
	AuthorizedByIssuer    RedemptionAuthorizer = "issuer"
	AuthorizedByRecipient RedemptionAuthorizer = "recipient"
)

type EventType string

const (
	NoteCreatedEvent    EventType = "NOTE_CREATED"
	NoteRedeemedEvent   EventType = "NOTE_REDEEMED"
	ReserveCreatedEvent EventType = "RESERVE_CREATED"
	ReserveUpdatedEvent EventType = "RESERVE_UPDATED"
	ReserveSpentEvent   EventType = "RESERVE_SPENT"
	CommitmentEvent     EventType = "COMMITMENT"
	CollateralAlert     EventType = "COLLATERAL_ALERT"
)

func (t EventType) ToString() string {
	return string(t)
}
