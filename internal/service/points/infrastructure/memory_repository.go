// internal/service/points/infrastructure/memory_repository.go
package infrastructure

import (
	"context"
	"sync"
	"time"

	"gpoffer/internal/service/points/domain"
)

// MemoryAccountRepository 是 AccountRepository 的内存实现，用于测试与单机部署。
// 一把全局互斥锁同时覆盖余额与台账，天然满足"按卖家串行 + 原子提交"。
type MemoryAccountRepository struct {
	mu       sync.Mutex
	balances map[string]int64
	ledgers  map[string][]domain.Transaction
}

func NewMemoryAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{
		balances: make(map[string]int64),
		ledgers:  make(map[string][]domain.Transaction),
	}
}

func (r *MemoryAccountRepository) Apply(ctx context.Context, sellerID string, delta int64, tx domain.Transaction) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	balance := r.balances[sellerID]
	if balance+delta < 0 {
		// 拒绝时余额与台账都保持原样
		return 0, domain.ErrInsufficientPoints
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}

	r.balances[sellerID] = balance + delta
	r.ledgers[sellerID] = append(r.ledgers[sellerID], tx)
	return balance + delta, nil
}

func (r *MemoryAccountRepository) Balance(ctx context.Context, sellerID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.balances[sellerID], nil
}

func (r *MemoryAccountRepository) Transactions(ctx context.Context, sellerID string) ([]domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.ledgers[sellerID]
	out := make([]domain.Transaction, len(entries))
	// 按时间倒序返回，最新的在前
	for i, tx := range entries {
		out[len(entries)-1-i] = tx
	}
	return out, nil
}
