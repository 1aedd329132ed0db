package usecase

import (
	"fmt"

	"github.com/JoeShih716/go-tx-engine/internal/app/core/domain"
)

// Engine 交易狀態機，獨佔 AccountStore 與 TransactionJournal
//
// 非執行緒安全：同一時間只能有一個呼叫者 (見 Sequencer)
type Engine struct {
	accounts AccountStore
	journal  TransactionJournal
}

func NewEngine(accounts AccountStore, journal TransactionJournal) *Engine {
	return &Engine{
		accounts: accounts,
		journal:  journal,
	}
}

// Apply 套用單筆紀錄
//
// 參數:
//
//	rec: 輸入紀錄
//
// 回傳:
//
//	error: nil 表示已套用；否則為 *domain.RejectionError，且狀態未被修改
func (e *Engine) Apply(rec domain.Record) error {
	account := e.accounts.GetOrCreate(rec.ClientID())
	if account.Locked {
		return domain.Reject(rec, domain.ErrLockedAccount)
	}

	var err error
	switch r := rec.(type) {
	case domain.Deposit:
		err = e.handleDeposit(account, r)
	case domain.Withdrawal:
		err = e.handleWithdrawal(account, r)
	case domain.Dispute:
		err = e.handleDispute(account, r)
	case domain.Resolve:
		err = e.handleResolve(account, r)
	case domain.Chargeback:
		err = e.handleChargeback(account, r)
	default:
		err = fmt.Errorf("%w: unsupported record %T", domain.ErrMalformedRecord, rec)
	}

	if err != nil {
		return domain.Reject(rec, err)
	}
	return nil
}

// Snapshot 目前所有帳戶狀態
func (e *Engine) Snapshot() []domain.Account {
	return e.accounts.Snapshot()
}

func (e *Engine) handleDeposit(account *domain.Account, r domain.Deposit) error {
	if _, ok := e.journal.Get(r.Tx); ok {
		return domain.ErrDuplicateTransaction
	}
	if err := account.Deposit(r.Amount); err != nil {
		return err
	}
	e.journal.Record(r.Tx, domain.JournalEntry{
		Client: r.Client,
		Kind:   domain.KindDeposit,
		Amount: r.Amount,
	})
	return nil
}

func (e *Engine) handleWithdrawal(account *domain.Account, r domain.Withdrawal) error {
	if _, ok := e.journal.Get(r.Tx); ok {
		return domain.ErrDuplicateTransaction
	}
	if err := account.Withdraw(r.Amount); err != nil {
		return err
	}
	e.journal.Record(r.Tx, domain.JournalEntry{
		Client: r.Client,
		Kind:   domain.KindWithdrawal,
		Amount: r.Amount,
	})
	return nil
}

func (e *Engine) handleDispute(account *domain.Account, r domain.Dispute) error {
	entry, err := e.lookup(r.Client, r.Tx)
	if err != nil {
		return err
	}
	if entry.Kind != domain.KindDeposit {
		return domain.ErrInvalidDisputeOrigin
	}
	if entry.UnderDispute {
		return domain.ErrInvalidDisputeState
	}
	if err := account.Hold(entry.Amount); err != nil {
		return err
	}
	entry.UnderDispute = true
	return nil
}

func (e *Engine) handleResolve(account *domain.Account, r domain.Resolve) error {
	entry, err := e.lookup(r.Client, r.Tx)
	if err != nil {
		return err
	}
	if !entry.UnderDispute {
		return domain.ErrInvalidDisputeState
	}
	if err := account.Release(entry.Amount); err != nil {
		return err
	}
	entry.UnderDispute = false
	return nil
}

// handleChargeback 退單後 entry 維持 UnderDispute，帳戶已鎖定所以不會再被處理
func (e *Engine) handleChargeback(account *domain.Account, r domain.Chargeback) error {
	entry, err := e.lookup(r.Client, r.Tx)
	if err != nil {
		return err
	}
	if !entry.UnderDispute {
		return domain.ErrInvalidDisputeState
	}
	return account.Reverse(entry.Amount)
}

// lookup 其他客戶的交易視為不存在
func (e *Engine) lookup(client domain.ClientID, tx domain.TxID) (*domain.JournalEntry, error) {
	entry, ok := e.journal.GetMut(tx)
	if !ok || entry.Client != client {
		return nil, domain.ErrUnknownTransaction
	}
	return entry, nil
}
