package services_test

import (
	"context"
	"encoding/hex"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"

	"github.com/basisledger/iou-ledger-service/internal/config"
	"github.com/basisledger/iou-ledger-service/internal/db/leveldb"
	"github.com/basisledger/iou-ledger-service/internal/services"
	"github.com/basisledger/iou-ledger-service/internal/utils"
)

type party struct {
	sk    *btcec.PrivateKey
	pk    []byte
	pkHex string
}

func newParty(t *testing.T) party {
	t.Helper()
	sk, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	pk := sk.PubKey().SerializeCompressed()
	return party{sk: sk, pk: pk, pkHex: hex.EncodeToString(pk)}
}

func (p party) sign(t *testing.T, msg []byte) string {
	t.Helper()
	sig, err := utils.SignMessage(p.sk, msg)
	require.NoError(t, err)
	return hex.EncodeToString(sig)
}

func testConfig() *config.Config {
	return &config.Config{
		Db: config.DbConfig{
			Type:               config.LevelDbType,
			Path:               config.InMemoryDbPath,
			MaxPaginationLimit: 10,
		},
		Ledger: config.DefaultLedgerConfig(),
	}
}

func newTestServices(t *testing.T) *services.Services {
	t.Helper()
	cfg := testConfig()
	database, err := leveldb.NewInMemory(cfg.Db.MaxPaginationLimit)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(context.Background()) }) // nolint:errcheck
	return services.NewWithDbClient(cfg, database)
}

// issue creates a note of amount from issuer to recipient.
func issue(t *testing.T, s *services.Services, issuer, recipient party, amount uint64) {
	t.Helper()
	ts := uint64(time.Now().Unix())
	sig := issuer.sign(t, utils.NoteMessage(issuer.pk, recipient.pk, amount, ts))
	_, err := s.CreateNote(context.Background(), issuer.pkHex, recipient.pkHex, amount, ts, sig)
	require.Nil(t, err)
}

func fund(t *testing.T, s *services.Services, boxId string, owner party, collateral uint64) {
	t.Helper()
	_, err := s.ApplyReserveUpdate(context.Background(), boxId, owner.pkHex, collateral)
	require.Nil(t, err)
}

// redemption builds a request signed by signer.
func redemption(t *testing.T, issuer, recipient, signer party, amount, ts uint64) *services.RedemptionRequest {
	t.Helper()
	msg := utils.RedemptionMessage(issuer.pk, recipient.pk, amount, ts)
	return &services.RedemptionRequest{
		IssuerPkHex:    issuer.pkHex,
		RecipientPkHex: recipient.pkHex,
		Amount:         amount,
		Timestamp:      ts,
		SignatureHex:   signer.sign(t, msg),
	}
}

func hexOf(b []byte) string {
	return hex.EncodeToString(b)
}
