package domain

import (
	"fmt"
	"strings"
)

// ClientID 客戶 ID
type ClientID uint16

// TxID 交易 ID，僅在存提款之間唯一
type TxID uint32

// RecordKind 紀錄類型
// 為了節省記憶體，使用 uint8
type RecordKind uint8

const (
	// 存款
	KindDeposit RecordKind = iota + 1
	// 提款
	KindWithdrawal
	// 爭議
	KindDispute
	// 解除爭議
	KindResolve
	// 退單
	KindChargeback
)

var kindNames = map[RecordKind]string{
	KindDeposit:    "deposit",
	KindWithdrawal: "withdrawal",
	KindDispute:    "dispute",
	KindResolve:    "resolve",
	KindChargeback: "chargeback",
}

func (k RecordKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseRecordKind 解析輸入檔中的 type 欄位 (不分大小寫)
func ParseRecordKind(raw string) (RecordKind, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	for kind, n := range kindNames {
		if n == name {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown record type %q", ErrMalformedRecord, raw)
}

// Record 一筆輸入事件
//
// 封閉型別：只有本套件內的五種紀錄實作此介面，
// 金額只存在於 Deposit / Withdrawal
type Record interface {
	Kind() RecordKind
	ClientID() ClientID
	TxID() TxID
	isRecord()
}

// Deposit 存款
type Deposit struct {
	Client ClientID
	Tx     TxID
	Amount Money
}

// Withdrawal 提款
type Withdrawal struct {
	Client ClientID
	Tx     TxID
	Amount Money
}

// Dispute 對先前存款提出爭議
type Dispute struct {
	Client ClientID
	Tx     TxID
}

// Resolve 解除爭議
type Resolve struct {
	Client ClientID
	Tx     TxID
}

// Chargeback 退單，會鎖定帳戶
type Chargeback struct {
	Client ClientID
	Tx     TxID
}

func (Deposit) Kind() RecordKind        { return KindDeposit }
func (r Deposit) ClientID() ClientID    { return r.Client }
func (r Deposit) TxID() TxID            { return r.Tx }
func (Deposit) isRecord()               {}
func (Withdrawal) Kind() RecordKind     { return KindWithdrawal }
func (r Withdrawal) ClientID() ClientID { return r.Client }
func (r Withdrawal) TxID() TxID         { return r.Tx }
func (Withdrawal) isRecord()            {}
func (Dispute) Kind() RecordKind        { return KindDispute }
func (r Dispute) ClientID() ClientID    { return r.Client }
func (r Dispute) TxID() TxID            { return r.Tx }
func (Dispute) isRecord()               {}
func (Resolve) Kind() RecordKind        { return KindResolve }
func (r Resolve) ClientID() ClientID    { return r.Client }
func (r Resolve) TxID() TxID            { return r.Tx }
func (Resolve) isRecord()               {}
func (Chargeback) Kind() RecordKind     { return KindChargeback }
func (r Chargeback) ClientID() ClientID { return r.Client }
func (r Chargeback) TxID() TxID         { return r.Tx }
func (Chargeback) isRecord()            {}

// NewRecord 依類型組出紀錄，amount 只對存提款有意義
//
// 參數:
//
//	kind: 紀錄類型
//	client: 客戶 ID
//	tx: 交易 ID
//	amount: 金額，nil 表示未提供
//
// 回傳:
//
//	Record: 紀錄
//	error: 存提款缺少金額時回傳 ErrMalformedRecord
func NewRecord(kind RecordKind, client ClientID, tx TxID, amount *Money) (Record, error) {
	switch kind {
	case KindDeposit, KindWithdrawal:
		if amount == nil {
			return nil, fmt.Errorf("%w: %s requires an amount", ErrMalformedRecord, kind)
		}
		if kind == KindDeposit {
			return Deposit{Client: client, Tx: tx, Amount: *amount}, nil
		}
		return Withdrawal{Client: client, Tx: tx, Amount: *amount}, nil
	case KindDispute:
		return Dispute{Client: client, Tx: tx}, nil
	case KindResolve:
		return Resolve{Client: client, Tx: tx}, nil
	case KindChargeback:
		return Chargeback{Client: client, Tx: tx}, nil
	default:
		return nil, fmt.Errorf("%w: unknown record kind %d", ErrMalformedRecord, uint8(kind))
	}
}
