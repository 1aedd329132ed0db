package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRecord 紀錄欄位缺漏或格式錯誤
	ErrMalformedRecord = errors.New("malformed record")

	// ErrInsufficientFunds 可用餘額不足
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrUnknownTransaction 找不到被引用的交易
	ErrUnknownTransaction = errors.New("unknown transaction")

	// ErrInvalidDisputeOrigin 只能對存款提出爭議
	ErrInvalidDisputeOrigin = errors.New("dispute target is not a deposit")

	// ErrInvalidDisputeState 交易不在可處理的爭議狀態
	ErrInvalidDisputeState = errors.New("invalid dispute state")

	// ErrInsufficientHeld 凍結餘額不足
	ErrInsufficientHeld = errors.New("insufficient held funds")

	// ErrLockedAccount 帳戶已被鎖定
	ErrLockedAccount = errors.New("account is locked")

	// ErrDuplicateTransaction 存提款的交易 ID 重複
	ErrDuplicateTransaction = errors.New("duplicate transaction id")
)

// rejectionCodes 依檢查順序排列，用於統計與報表
var rejectionCodes = []struct {
	err  error
	code string
}{
	{ErrMalformedRecord, "malformed_record"},
	{ErrInsufficientFunds, "insufficient_funds"},
	{ErrUnknownTransaction, "unknown_transaction"},
	{ErrInvalidDisputeOrigin, "invalid_dispute_origin"},
	{ErrInvalidDisputeState, "invalid_dispute_state"},
	{ErrInsufficientHeld, "insufficient_held"},
	{ErrLockedAccount, "locked_account_rejected"},
	{ErrDuplicateTransaction, "duplicate_transaction_id"},
}

// RejectionCode 回傳錯誤對應的診斷代碼，非拒絕類錯誤回傳 "unknown"
func RejectionCode(err error) string {
	for _, rc := range rejectionCodes {
		if errors.Is(err, rc.err) {
			return rc.code
		}
	}
	return "unknown"
}

// RejectionError 單筆紀錄被拒絕的原因，狀態保證未被修改
type RejectionError struct {
	Kind   RecordKind
	Client ClientID
	Tx     TxID
	Err    error
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s rejected (client=%d tx=%d): %v", e.Kind, e.Client, e.Tx, e.Err)
}

func (e *RejectionError) Unwrap() error {
	return e.Err
}

// Reject 將錯誤包裝為 RejectionError
func Reject(rec Record, err error) *RejectionError {
	return &RejectionError{
		Kind:   rec.Kind(),
		Client: rec.ClientID(),
		Tx:     rec.TxID(),
		Err:    err,
	}
}
