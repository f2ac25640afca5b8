package client

const (
	ReserveEventsQueueName string = "reserve_events_queue"
)

type EventType int

const (
	ReserveCreatedEventType   EventType = 1
	ReserveToppedUpEventType  EventType = 2
	ReserveWithdrawnEventType EventType = 3
	ReserveSpentEventType     EventType = 4
)

// ReserveEvent is published by the custody watcher whenever the collateral
// locked in a reserve box changes. CollateralAmount is always the absolute
// amount held by the box after the change. A spent box has left custody and
// its CollateralAmount is ignored.
type ReserveEvent struct {
	EventType        EventType `json:"event_type"`
	BoxId            string    `json:"box_id"`
	OwnerPkHex       string    `json:"owner_pubkey"`
	CollateralAmount uint64    `json:"collateral_amount"`
	Height           uint64    `json:"height"`
}

func NewReserveEvent(eventType EventType, boxId, ownerPkHex string, collateralAmount, height uint64) ReserveEvent {
	return ReserveEvent{
		EventType:        eventType,
		BoxId:            boxId,
		OwnerPkHex:       ownerPkHex,
		CollateralAmount: collateralAmount,
		Height:           height,
	}
}

func (e EventType) IsValid() bool {
	return e >= ReserveCreatedEventType && e <= ReserveSpentEventType
}
