package memory

import (
	"github.com/JoeShih716/go-tx-engine/internal/app/core/domain"
	"github.com/JoeShih716/go-tx-engine/internal/app/core/usecase"
)

// Journal 存提款紀錄，key 為交易 ID
type Journal struct {
	entries map[domain.TxID]*domain.JournalEntry
}

func NewJournal() *Journal {
	return &Journal{
		entries: make(map[domain.TxID]*domain.JournalEntry),
	}
}

// Record 寫入紀錄，相同 tx 直接覆蓋 (是否允許重複由呼叫端決定)
func (j *Journal) Record(tx domain.TxID, entry domain.JournalEntry) {
	j.entries[tx] = &entry
}

// Get 取得紀錄複本
func (j *Journal) Get(tx domain.TxID) (domain.JournalEntry, bool) {
	entry, ok := j.entries[tx]
	if !ok {
		return domain.JournalEntry{}, false
	}
	return *entry, true
}

// GetMut 取得可修改的紀錄
func (j *Journal) GetMut(tx domain.TxID) (*domain.JournalEntry, bool) {
	entry, ok := j.entries[tx]
	return entry, ok
}

func (j *Journal) Len() int {
	return len(j.entries)
}

var _ usecase.TransactionJournal = (*Journal)(nil)
