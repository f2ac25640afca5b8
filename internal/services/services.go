package services

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/basisledger/iou-ledger-service/internal/commitment"
	"github.com/basisledger/iou-ledger-service/internal/config"
	"github.com/basisledger/iou-ledger-service/internal/db"
	"github.com/basisledger/iou-ledger-service/internal/db/leveldb"
	"github.com/basisledger/iou-ledger-service/internal/types"
	"github.com/basisledger/iou-ledger-service/internal/utils"
)

// Service layer contains the business logic and is used to interact with
// the database and other external clients (if any).
type Services struct {
	DbClient db.DBClient
	cfg      *config.Config
	// serialises redemptions per issuer
	issuerLocks *utils.KeyedLocker
	// committed receipts by redemption id
	receipts *cache.Cache
	// held from computing a commitment root until the store committed it
	commitMu sync.Mutex
	// loaded from the store on first use
	commitment *commitment.Tree
	// issuers whose ratio is below the alert threshold
	alerted *cache.Cache
}

func New(ctx context.Context, cfg *config.Config) (*Services, error) {
	dbClient, err := NewDbClient(ctx, cfg)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("error while creating db client")
		return nil, err
	}
	s := NewWithDbClient(cfg, dbClient)
	if _, loadErr := s.Commitment(ctx); loadErr != nil {
		return nil, loadErr
	}
	return s, nil
}

// NewDbClient opens the storage engine selected by cfg.Db.Type.
func NewDbClient(ctx context.Context, cfg *config.Config) (db.DBClient, error) {
	switch cfg.Db.Type {
	case config.LevelDbType:
		return leveldb.New(cfg.Db)
	case config.MongoDbType, "":
		return db.New(ctx, cfg.Db, cfg.Ledger.MaxCommitAttempts)
	default:
		return nil, fmt.Errorf("unsupported db type: %s", cfg.Db.Type)
	}
}

func NewWithDbClient(cfg *config.Config, dbClient db.DBClient) *Services {
	ttl := cfg.Ledger.ReceiptCacheTTL
	return &Services{
		DbClient:    dbClient,
		cfg:         cfg,
		issuerLocks: utils.NewKeyedLocker(),
		receipts:    cache.New(ttl, 2*ttl),
		alerted:     cache.New(cache.NoExpiration, 0),
	}
}

// DoHealthCheck checks the health of the services by ping the database.
func (s *Services) DoHealthCheck(ctx context.Context) error {
	return s.DbClient.Ping(ctx)
}

func (s *Services) SaveUnprocessableMessages(ctx context.Context, messageBody, receipt string) *types.Error {
	err := s.DbClient.SaveUnprocessableMessage(ctx, messageBody, receipt)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("error while saving unprocessable message")
		return types.NewErrorWithMsg(http.StatusInternalServerError, types.InternalServiceError, "error while saving unprocessable message")
	}
	return nil
}

func paginationError(ctx context.Context, err error) *types.Error {
	if db.IsInvalidPaginationTokenError(err) {
		log.Ctx(ctx).Warn().Err(err).Msg("Invalid pagination token")
		return types.NewError(http.StatusBadRequest, types.BadRequest, err)
	}
	log.Ctx(ctx).Error().Err(err).Msg("Failed to read paginated records")
	return types.NewInternalServiceError(err)
}
