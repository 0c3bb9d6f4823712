// internal/service/points/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gpoffer/internal/service/points/domain"
)

// GormAccountRepository 是 AccountRepository 的 GORM 实现。
// 余额增量与台账写入在数据库事务内提交；行级锁保证按卖家串行。
type GormAccountRepository struct {
	db *gorm.DB
}

func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// AutoMigrate 创建/更新积分相关表结构。
func (r *GormAccountRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&AccountModel{}, &TransactionModel{})
}

func (r *GormAccountRepository) Apply(ctx context.Context, sellerID string, delta int64, tx domain.Transaction) (int64, error) {
	var newBalance int64
	err := r.db.WithContext(ctx).Transaction(func(dbtx *gorm.DB) error {
		var account AccountModel
		// SELECT ... FOR UPDATE：并发的 Apply 在这里按卖家排队
		err := dbtx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("seller_id = ?", sellerID).First(&account).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 账户按需隐式创建，初始余额 0
			account = AccountModel{SellerID: sellerID, Balance: 0}
			if err := dbtx.Create(&account).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		if account.Balance+delta < 0 {
			// 返回错误让事务整体回滚，余额与台账都不会有部分写入
			return domain.ErrInsufficientPoints
		}
		account.Balance += delta
		if err := dbtx.Model(&AccountModel{}).Where("seller_id = ?", sellerID).
			Update("balance", account.Balance).Error; err != nil {
			return err
		}

		if err := dbtx.Create(&TransactionModel{
			ID:        tx.ID,
			SellerID:  tx.SellerID,
			Amount:    tx.Amount,
			Reason:    tx.Reason,
			Reference: tx.Reference,
			CreatedAt: tx.CreatedAt,
		}).Error; err != nil {
			return err
		}
		newBalance = account.Balance
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}

func (r *GormAccountRepository) Balance(ctx context.Context, sellerID string) (int64, error) {
	var account AccountModel
	err := r.db.WithContext(ctx).Where("seller_id = ?", sellerID).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return account.Balance, nil
}

func (r *GormAccountRepository) Transactions(ctx context.Context, sellerID string) ([]domain.Transaction, error) {
	var models []TransactionModel
	err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Transaction, 0, len(models))
	for _, m := range models {
		out = append(out, domain.Transaction{
			ID:        m.ID,
			SellerID:  m.SellerID,
			Amount:    m.Amount,
			Reason:    m.Reason,
			Reference: m.Reference,
			CreatedAt: m.CreatedAt,
		})
	}
	return out, nil
}
