package db_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/basisledger/iou-ledger-service/internal/db"
	"github.com/basisledger/iou-ledger-service/internal/utils"
)

type MockDBTransactionClient struct {
	mock.Mock
}

func (m *MockDBTransactionClient) StartSession(opts ...*options.SessionOptions) (db.DBSession, error) {
	args := m.Called()
	if session := args.Get(0); session != nil {
		return session.(db.DBSession), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockDBSession struct {
	mock.Mock
}

func (m *MockDBSession) EndSession(ctx context.Context) {
	m.Called(ctx)
}

func (m *MockDBSession) WithTransaction(
	ctx context.Context, fn func(sessCtx mongo.SessionContext) (interface{}, error),
	opts ...*options.TransactionOptions,
) (interface{}, error) {
	args := m.Called(ctx, mock.Anything)
	return args.Get(0), args.Error(1)
}

func recordSleeps(t *testing.T) *[]time.Duration {
	var sleeps []time.Duration
	utils.SetSleepFunc(func(d time.Duration) { sleeps = append(sleeps, d) })
	t.Cleanup(utils.ResetSleepFunc)
	return &sleeps
}

func TestTxWithRetriesSucceedsFirstTime(t *testing.T) {
	sleeps := recordSleeps(t)
	ctx := context.Background()
	session := new(MockDBSession)
	client := new(MockDBTransactionClient)
	client.On("StartSession").Return(session, nil)
	session.On("WithTransaction", ctx, mock.Anything).Return("ok", nil).Once()
	session.On("EndSession", ctx).Return()

	result, err := db.TxWithRetries(ctx, client, 3, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Empty(t, *sleeps)
	session.AssertNumberOfCalls(t, "WithTransaction", 1)
	session.AssertNumberOfCalls(t, "EndSession", 1)
}

func TestTxWithRetriesRetriesConflicts(t *testing.T) {
	sleeps := recordSleeps(t)
	ctx := context.Background()
	session := new(MockDBSession)
	client := new(MockDBTransactionClient)
	client.On("StartSession").Return(session, nil)
	conflict := &db.ConcurrentUpdateError{Key: "note"}
	session.On("WithTransaction", ctx, mock.Anything).Return(nil, conflict).Twice()
	session.On("WithTransaction", ctx, mock.Anything).Return("done", nil).Once()
	session.On("EndSession", ctx).Return()

	result, err := db.TxWithRetries(ctx, client, 4, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "done", result)
	assert.Equal(t, []time.Duration{db.DefaultInitialBackoff, 2 * db.DefaultInitialBackoff}, *sleeps)
	session.AssertNumberOfCalls(t, "WithTransaction", 3)
}

func TestTxWithRetriesGivesUpAfterMaxAttempts(t *testing.T) {
	recordSleeps(t)
	ctx := context.Background()
	session := new(MockDBSession)
	client := new(MockDBTransactionClient)
	client.On("StartSession").Return(session, nil)
	session.On("WithTransaction", ctx, mock.Anything).Return(nil, &db.ConcurrentUpdateError{Key: "note"})
	session.On("EndSession", ctx).Return()

	_, err := db.TxWithRetries(ctx, client, 2, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, nil
	})
	require.Error(t, err)
	assert.True(t, db.IsConflictError(err))
	session.AssertNumberOfCalls(t, "WithTransaction", 2)
}

func TestTxWithRetriesDoesNotRetryLedgerErrors(t *testing.T) {
	sleeps := recordSleeps(t)
	ctx := context.Background()
	session := new(MockDBSession)
	client := new(MockDBTransactionClient)
	client.On("StartSession").Return(session, nil)
	balanceErr := &db.InsufficientBalanceError{NoteId: "n", Remaining: 1, Requested: 2}
	session.On("WithTransaction", ctx, mock.Anything).Return(nil, balanceErr)
	session.On("EndSession", ctx).Return()

	_, err := db.TxWithRetries(ctx, client, 4, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, nil
	})
	assert.True(t, db.IsInsufficientBalanceError(err))
	assert.Empty(t, *sleeps)
	session.AssertNumberOfCalls(t, "WithTransaction", 1)
}

func TestTxWithRetriesSessionError(t *testing.T) {
	client := new(MockDBTransactionClient)
	client.On("StartSession").Return(nil, errors.New("no session"))

	_, err := db.TxWithRetries(context.Background(), client, 4, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, nil
	})
	assert.EqualError(t, err, "no session")
}
