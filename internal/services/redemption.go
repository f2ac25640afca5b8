package services

import (
	"context"
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/basisledger/iou-ledger-service/internal/db"
	"github.com/basisledger/iou-ledger-service/internal/db/model"
	"github.com/basisledger/iou-ledger-service/internal/observability/metrics"
	"github.com/basisledger/iou-ledger-service/internal/observability/tracing"
	"github.com/basisledger/iou-ledger-service/internal/types"
	"github.com/basisledger/iou-ledger-service/internal/utils"
)

type RedemptionRequest struct {
	IssuerPkHex    string
	RecipientPkHex string
	Amount         uint64
	Timestamp      uint64
	SignatureHex   string
}

type ReserveDebtPublic struct {
	BoxId            string `json:"box_id"`
	DebtIncrease     uint64 `json:"debt_increase"`
	TotalDebt        uint64 `json:"total_debt"`
	CollateralAmount uint64 `json:"collateral_amount"`
}

type RedemptionReceiptPublic struct {
	RedemptionId    string              `json:"redemption_id"`
	IssuerPkHex     string              `json:"issuer_pubkey"`
	RecipientPkHex  string              `json:"recipient_pubkey"`
	Amount          uint64              `json:"amount"`
	Timestamp       uint64              `json:"timestamp"`
	AuthorizedBy    string              `json:"authorized_by"`
	RemainingAmount uint64              `json:"remaining_amount"`
	ReservesTouched []ReserveDebtPublic `json:"reserves_touched"`
	CommittedAt     int64               `json:"committed_at"`
}

type PreparedRedemptionPublic struct {
	MessageHex          string `json:"message_hex"`
	RedemptionId        string `json:"redemption_id"`
	RemainingAmount     uint64 `json:"remaining_amount"`
	AvailableCollateral uint64 `json:"available_collateral"`
}

func fromRedemptionDocument(d *model.RedemptionDocument) *RedemptionReceiptPublic {
	touched := make([]ReserveDebtPublic, 0, len(d.Allocations))
	for _, a := range d.Allocations {
		touched = append(touched, ReserveDebtPublic{
			BoxId:            a.BoxId,
			DebtIncrease:     a.DebtIncrease,
			TotalDebt:        a.TotalDebt,
			CollateralAmount: a.CollateralAmount,
		})
	}
	return &RedemptionReceiptPublic{
		RedemptionId:    d.RedemptionId,
		IssuerPkHex:     d.IssuerPkHex,
		RecipientPkHex:  d.RecipientPkHex,
		Amount:          d.Amount,
		Timestamp:       d.Timestamp,
		AuthorizedBy:    string(d.AuthorizedBy),
		RemainingAmount: d.RemainingAmount,
		ReservesTouched: touched,
		CommittedAt:     d.CommittedAt,
	}
}

type parsedRedemption struct {
	issuerPk    []byte
	recipientPk []byte
	message     []byte
	id          string
}

func (p *parsedRedemption) issuerHex() string    { return hexKey(p.issuerPk) }
func (p *parsedRedemption) recipientHex() string { return hexKey(p.recipientPk) }

func parseRedemptionRequest(req *RedemptionRequest) (*parsedRedemption, *types.Error) {
	issuerPk, err := parsePubKey("issuer_pubkey", req.IssuerPkHex)
	if err != nil {
		return nil, err
	}
	recipientPk, err := parsePubKey("recipient_pubkey", req.RecipientPkHex)
	if err != nil {
		return nil, err
	}
	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}
	message := utils.RedemptionMessage(issuerPk, recipientPk, req.Amount, req.Timestamp)
	return &parsedRedemption{
		issuerPk:    issuerPk,
		recipientPk: recipientPk,
		message:     message,
		id:          utils.RedemptionId(message),
	}, nil
}

// authorize returns which party signed the redemption message, if any,
// along with the signature in canonical lowercase hex.
func authorize(p *parsedRedemption, signatureHex string) (types.RedemptionAuthorizer, string, bool) {
	if signatureHex == "" {
		return "", "", false
	}
	signature, err := utils.ParseSignatureHex(signatureHex)
	if err != nil {
		return "", "", false
	}
	if utils.VerifySignature(p.issuerPk, p.message, signature) {
		return types.AuthorizedByIssuer, hexKey(signature), true
	}
	if utils.VerifySignature(p.recipientPk, p.message, signature) {
		return types.AuthorizedByRecipient, hexKey(signature), true
	}
	return "", "", false
}

// PrepareRedemption checks a prospective redemption against the latest
// committed state and returns the exact bytes a party must sign. Nothing is
// written.
func (s *Services) PrepareRedemption(ctx context.Context, req *RedemptionRequest) (*PreparedRedemptionPublic, *types.Error) {
	parsed, err := parseRedemptionRequest(req)
	if err != nil {
		return nil, err
	}
	note, err := s.checkBalance(ctx, parsed, req.Amount)
	if err != nil {
		return nil, err
	}
	available, err := s.checkCollateral(ctx, parsed, req.Amount)
	if err != nil {
		return nil, err
	}
	return &PreparedRedemptionPublic{
		MessageHex:          hex.EncodeToString(parsed.message),
		RedemptionId:        parsed.id,
		RemainingAmount:     note.RemainingAmount,
		AvailableCollateral: available,
	}, nil
}

// Redeem authorizes a redemption and commits it against the note and the
// issuer's reserves. A request identical to a committed one returns the
// original receipt.
func (s *Services) Redeem(ctx context.Context, req *RedemptionRequest) (*RedemptionReceiptPublic, *types.Error) {
	receipt, err := s.redeem(ctx, req)
	if err != nil {
		metrics.RecordRedemptionOutcome(err.ErrorCode.String())
		return nil, err
	}
	metrics.RecordRedemptionOutcome(metrics.Success.String())
	return receipt, nil
}

func (s *Services) redeem(ctx context.Context, req *RedemptionRequest) (*RedemptionReceiptPublic, *types.Error) {
	parsed, err := parseRedemptionRequest(req)
	if err != nil {
		return nil, err
	}

	lockCtx, cancel := context.WithTimeout(ctx, s.cfg.Ledger.LockTimeout)
	defer cancel()
	unlock, lockErr := s.issuerLocks.Lock(lockCtx, parsed.issuerHex())
	if lockErr != nil {
		log.Ctx(ctx).Warn().Err(lockErr).Str("issuer", parsed.issuerHex()).Msg("timed out waiting for issuer lock")
		return nil, types.NewErrorWithMsg(http.StatusConflict, types.Conflict, "redemption could not be serialised, retry later")
	}
	defer unlock()

	committed, err := s.findCommittedRedemption(ctx, parsed.id)
	if err != nil {
		return nil, err
	}
	if committed != nil {
		if _, _, ok := authorize(parsed, req.SignatureHex); !ok {
			return nil, unauthorizedError()
		}
		log.Ctx(ctx).Info().Str("redemptionId", parsed.id).Msg("returning receipt of already committed redemption")
		return committed, nil
	}

	note, err := s.checkBalance(ctx, parsed, req.Amount)
	if err != nil {
		return nil, err
	}
	authorizedBy, signatureHex, ok := authorize(parsed, req.SignatureHex)
	if !ok {
		log.Ctx(ctx).Warn().Str("redemptionId", parsed.id).Msg("redemption signature matches neither issuer nor recipient")
		return nil, unauthorizedError()
	}
	if _, err := s.checkCollateral(ctx, parsed, req.Amount); err != nil {
		return nil, err
	}

	request := &model.RedemptionRequestDocument{
		RedemptionId:   parsed.id,
		IssuerPkHex:    parsed.issuerHex(),
		RecipientPkHex: parsed.recipientHex(),
		Amount:         req.Amount,
		Timestamp:      req.Timestamp,
		AuthorizedBy:   authorizedBy,
		SignatureHex:   signatureHex,
	}
	// the issuer lock keeps the note as read by checkBalance
	request.ExpectedRemaining = note.RemainingAmount
	leaf := leafOf(note)
	leaf.RemainingAmount = note.RemainingAmount - req.Amount
	var redemption *model.RedemptionDocument
	dbErr := s.commitNote(ctx, leaf, func(commitment *model.EventDocument) error {
		var commitErr error
		redemption, commitErr = tracing.WrapWithSpan[*model.RedemptionDocument](ctx, "CommitRedemption", func() (*model.RedemptionDocument, error) {
			return s.DbClient.CommitRedemption(ctx, request, commitment)
		})
		return commitErr
	})
	if dbErr != nil {
		return nil, commitError(ctx, dbErr, request)
	}
	if redemption.RemainingAmount != leaf.RemainingAmount {
		// committed elsewhere first, the stored note is authoritative
		s.refreshLeaf(ctx, request.IssuerPkHex, request.RecipientPkHex)
	}
	s.checkCollateralAlert(ctx, request.IssuerPkHex)

	receipt := fromRedemptionDocument(redemption)
	s.receipts.Set(receipt.RedemptionId, receipt, cache.DefaultExpiration)
	log.Ctx(ctx).Info().Str("redemptionId", receipt.RedemptionId).Uint64("amount", receipt.Amount).
		Uint64("remaining", receipt.RemainingAmount).Msg("redemption committed")
	return receipt, nil
}

// GetRedemption returns the receipt of a committed redemption.
func (s *Services) GetRedemption(ctx context.Context, redemptionId string) (*RedemptionReceiptPublic, *types.Error) {
	if !utils.IsValidRedemptionId(redemptionId) {
		return nil, types.NewFieldError(http.StatusBadRequest, types.BadRequest, "redemption_id", "invalid redemption id")
	}
	receipt, err := s.findCommittedRedemption(ctx, redemptionId)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, types.NewErrorWithMsg(http.StatusNotFound, types.NotFound, "redemption not found")
	}
	return receipt, nil
}

func (s *Services) findCommittedRedemption(ctx context.Context, redemptionId string) (*RedemptionReceiptPublic, *types.Error) {
	if cached, ok := s.receipts.Get(redemptionId); ok {
		return cached.(*RedemptionReceiptPublic), nil
	}
	redemption, err := s.DbClient.FindRedemption(ctx, redemptionId)
	if err != nil {
		if db.IsNotFoundError(err) {
			return nil, nil
		}
		log.Ctx(ctx).Error().Err(err).Msg("failed to look up redemption")
		return nil, types.NewInternalServiceError(err)
	}
	receipt := fromRedemptionDocument(redemption)
	s.receipts.Set(redemptionId, receipt, cache.DefaultExpiration)
	return receipt, nil
}

func (s *Services) checkBalance(ctx context.Context, p *parsedRedemption, amount uint64) (*model.NoteDocument, *types.Error) {
	note, err := s.DbClient.FindNote(ctx, p.issuerHex(), p.recipientHex())
	if err != nil {
		return nil, noteLookupError(ctx, err)
	}
	if amount > note.RemainingAmount {
		return nil, insufficientBalanceError(note.RemainingAmount)
	}
	return note, nil
}

func (s *Services) checkCollateral(ctx context.Context, p *parsedRedemption, amount uint64) (uint64, *types.Error) {
	reserves, err := s.DbClient.FindReservesByOwner(ctx, p.issuerHex())
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to find reserves")
		return 0, types.NewInternalServiceError(err)
	}
	available := db.AvailableCollateral(reserves)
	if amount > available {
		return 0, insufficientCollateralError()
	}
	return available, nil
}

func commitError(ctx context.Context, err error, request *model.RedemptionRequestDocument) *types.Error {
	logger := log.Ctx(ctx).With().Str("redemptionId", request.RedemptionId).Logger()
	switch {
	case db.IsNotFoundError(err):
		logger.Warn().Err(err).Msg("note disappeared before commit")
		return types.NewErrorWithMsg(http.StatusNotFound, types.NoteNotFound, "note not found")
	case db.IsInsufficientBalanceError(err):
		logger.Warn().Err(err).Msg("balance check failed at commit")
		var remaining uint64
		var balanceErr *db.InsufficientBalanceError
		if errors.As(err, &balanceErr) {
			remaining = balanceErr.Remaining
		}
		return insufficientBalanceError(remaining)
	case db.IsInsufficientCollateralError(err):
		logger.Warn().Err(err).Msg("collateral check failed at commit")
		return insufficientCollateralError()
	case db.IsConflictError(err):
		logger.Warn().Err(err).Msg("redemption commit kept conflicting")
		return types.NewErrorWithMsg(http.StatusConflict, types.Conflict, "redemption conflicted with a concurrent update, retry later")
	}
	logger.Error().Err(err).Msg("failed to commit redemption")
	return types.NewInternalServiceError(err)
}

func unauthorizedError() *types.Error {
	return types.NewFieldError(
		http.StatusUnauthorized, types.Unauthorized, "signature",
		"signature must be made by the issuer or the recipient over the redemption terms",
	)
}

func insufficientBalanceError(remaining uint64) *types.Error {
	return types.NewFieldError(
		http.StatusUnprocessableEntity, types.InsufficientBalance, "amount",
		"amount exceeds the remaining balance of the note ("+strconv.FormatUint(remaining, 10)+")",
	)
}

func insufficientCollateralError() *types.Error {
	return types.NewFieldError(
		http.StatusUnprocessableEntity, types.InsufficientCollateral, "amount",
		"issuer reserves do not hold enough available collateral",
	)
}
