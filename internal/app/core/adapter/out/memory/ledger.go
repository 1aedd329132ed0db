package memory

import (
	"sort"

	"github.com/JoeShih716/go-tx-engine/internal/app/core/domain"
	"github.com/JoeShih716/go-tx-engine/internal/app/core/usecase"
)

// Ledger 記憶體帳本，保存所有客戶帳戶
//
// 沒有 Mutex：只由 Sequencer 的單一 goroutine 存取
type Ledger struct {
	accounts map[domain.ClientID]*domain.Account
}

// NewLedger 建立一個空帳本
func NewLedger() *Ledger {
	return &Ledger{
		accounts: make(map[domain.ClientID]*domain.Account),
	}
}

// GetOrCreate 取得帳戶，第一次引用時建立
func (l *Ledger) GetOrCreate(client domain.ClientID) *domain.Account {
	account, ok := l.accounts[client]
	if !ok {
		account = domain.NewAccount(client)
		l.accounts[client] = account
	}
	return account
}

// Snapshot 回傳依 ClientID 排序的帳戶複本
func (l *Ledger) Snapshot() []domain.Account {
	out := make([]domain.Account, 0, len(l.accounts))
	for _, account := range l.accounts {
		out = append(out, *account)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Client < out[j].Client
	})
	return out
}

func (l *Ledger) Len() int {
	return len(l.accounts)
}

var _ usecase.AccountStore = (*Ledger)(nil)
