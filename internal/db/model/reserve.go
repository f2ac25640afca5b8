package model

type ReserveDocument struct {
	BoxId            string `bson:"_id"` // Primary key
	OwnerPkHex       string `bson:"owner_pk_hex"`
	CollateralAmount uint64 `bson:"collateral_amount"`
	TotalDebt        uint64 `bson:"total_debt"`
	// Unix nanoseconds of the first custody event for the box, used for insertion order
	CreatedAt int64 `bson:"created_at"`
	UpdatedAt int64 `bson:"updated_at"`
}

// Available returns the collateral not yet backing debt.
func (r *ReserveDocument) Available() uint64 {
	if r.TotalDebt >= r.CollateralAmount {
		return 0
	}
	return r.CollateralAmount - r.TotalDebt
}
