// internal/service/points/infrastructure/gorm_model.go
package infrastructure

import (
	"time"

	"gorm.io/gorm"
)

// AccountModel 对应数据库中的 points_account 表。
type AccountModel struct {
	gorm.Model
	SellerID string `gorm:"uniqueIndex;size:64"`
	Balance  int64
}

// TableName 指定 GORM 应该使用的表名
func (AccountModel) TableName() string {
	return "points_account"
}

// TransactionModel 对应数据库中的 points_transaction 表。
// 只追加：没有任何 Update/Delete 路径。
type TransactionModel struct {
	ID        string `gorm:"primaryKey;size:36"`
	SellerID  string `gorm:"index;size:64"`
	Amount    int64
	Reason    string `gorm:"size:255"`
	Reference string `gorm:"size:255"`
	CreatedAt time.Time
}

// TableName 指定 GORM 应该使用的表名
func (TransactionModel) TableName() string {
	return "points_transaction"
}
