package usecase

import (
	"github.com/JoeShih716/go-tx-engine/internal/app/core/domain"
)

// AccountStore 帳戶儲存介面，純 key-value，不做任何驗證
type AccountStore interface {
	// GetOrCreate 取得帳戶，不存在時建立預設帳戶
	GetOrCreate(client domain.ClientID) *domain.Account
	// Snapshot 依 ClientID 排序的帳戶複本
	Snapshot() []domain.Account
}

// TransactionJournal 存提款紀錄介面
type TransactionJournal interface {
	// Record 寫入紀錄，相同 tx 直接覆蓋
	Record(tx domain.TxID, entry domain.JournalEntry)
	Get(tx domain.TxID) (domain.JournalEntry, bool)
	GetMut(tx domain.TxID) (*domain.JournalEntry, bool)
}
