package mysql

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/JoeShih716/go-tx-engine/internal/app/core/domain"
	"github.com/JoeShih716/go-tx-engine/pkg/mysql"
)

// sqlAccountSnapshot 對應資料庫的 account_snapshots 表
// 金額以 int64 (1/10000) 儲存，與 domain.Money 相同
type sqlAccountSnapshot struct {
	RunID     string `gorm:"column:run_id;type:char(36);primaryKey"`
	ClientID  uint16 `gorm:"column:client_id;primaryKey;autoIncrement:false"`
	Available int64
	Held      int64
	Total     int64
	Locked    bool
	CreatedAt int64 `gorm:"autoCreateTime:milli"` // 自動寫入時間
}

func (*sqlAccountSnapshot) TableName() string {
	return "account_snapshots"
}

// SnapshotExporter 將最終帳戶快照寫入 MySQL (只寫不讀)
type SnapshotExporter struct {
	client *mysql.Client
}

func NewSnapshotExporter(client *mysql.Client) *SnapshotExporter {
	return &SnapshotExporter{
		client: client,
	}
}

// Migrate 建立/更新 account_snapshots 表
func (e *SnapshotExporter) Migrate(ctx context.Context) error {
	return e.client.DB().WithContext(ctx).AutoMigrate(&sqlAccountSnapshot{})
}

// Export 在單一 Transaction 內寫入整份快照
//
// 參數:
//
//	ctx: 上下文
//	runID: 本次執行 ID，與 client_id 組成主鍵
//	accounts: 帳戶快照
//
// 回傳:
//
//	int64: 寫入筆數
//	error: 寫入錯誤 (整份快照 rollback)
func (e *SnapshotExporter) Export(ctx context.Context, runID uuid.UUID, accounts []domain.Account) (int64, error) {
	if len(accounts) == 0 {
		return 0, nil
	}

	rows := make([]sqlAccountSnapshot, 0, len(accounts))
	for _, a := range accounts {
		rows = append(rows, sqlAccountSnapshot{
			RunID:     runID.String(),
			ClientID:  uint16(a.Client),
			Available: int64(a.Available),
			Held:      int64(a.Held),
			Total:     int64(a.Total()),
			Locked:    a.Locked,
		})
	}

	var written int64
	err := e.client.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Create(&rows)
		if result.Error != nil {
			return result.Error
		}
		written = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("export snapshot: %w", err)
	}
	return written, nil
}
