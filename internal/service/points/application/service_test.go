package application

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"gpoffer/internal/service/points/domain"
	"gpoffer/internal/service/points/infrastructure"
)

func newTestService() *PointsService {
	return NewPointsService(infrastructure.NewMemoryAccountRepository(), noop.NewTracerProvider().Tracer("test"))
}

func TestCreditAndBalance(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	// 未知卖家视作余额为 0 的隐式账户
	balance, err := svc.Balance(ctx, "seller-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)

	require.NoError(t, svc.Credit(ctx, "seller-1", 50, "purchased 50 points via paypal", "pay-123"))
	balance, err = svc.Balance(ctx, "seller-1")
	require.NoError(t, err)
	assert.Equal(t, int64(50), balance)
}

func TestDebit(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.Credit(ctx, "seller-1", 50, "top up", ""))
	require.NoError(t, svc.Debit(ctx, "seller-1", 15, "publish offer", "offer-1"))

	balance, err := svc.Balance(ctx, "seller-1")
	require.NoError(t, err)
	assert.Equal(t, int64(35), balance)
}

// 失败的扣减必须让余额与台账都保持原样。
func TestDebitInsufficientIsAtomic(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.Credit(ctx, "seller-1", 10, "top up", ""))

	err := svc.Debit(ctx, "seller-1", 15, "publish offer", "offer-1")
	assert.ErrorIs(t, err, domain.ErrInsufficientPoints)

	balance, err := svc.Balance(ctx, "seller-1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), balance)

	txs, err := svc.Transactions(ctx, "seller-1")
	require.NoError(t, err)
	require.Len(t, txs, 1) // only the credit, no trace of the failed debit
	assert.Equal(t, int64(10), txs[0].Amount)
}

func TestInvalidAmounts(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	assert.ErrorIs(t, svc.Credit(ctx, "seller-1", 0, "x", ""), domain.ErrInvalidAmount)
	assert.ErrorIs(t, svc.Credit(ctx, "seller-1", -5, "x", ""), domain.ErrInvalidAmount)
	assert.ErrorIs(t, svc.Debit(ctx, "seller-1", 0, "x", ""), domain.ErrInvalidAmount)
}

func TestTransactionsNewestFirst(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.Credit(ctx, "seller-1", 30, "first", ""))
	require.NoError(t, svc.Debit(ctx, "seller-1", 15, "second", ""))

	txs, err := svc.Transactions(ctx, "seller-1")
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "second", txs[0].Reason)
	assert.Equal(t, int64(-15), txs[0].Amount)
	assert.Equal(t, "first", txs[1].Reason)
}

// 并发扣减同一个账户时永远不能透支。
func TestConcurrentDebits(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.Credit(ctx, "seller-1", 100, "top up", ""))

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := svc.Debit(ctx, "seller-1", 15, "publish offer", ""); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// 100 积分恰好够 6 次 15 积分的扣减
	assert.Equal(t, 6, succeeded)
	balance, err := svc.Balance(ctx, "seller-1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), balance)
}
