package domain

// JournalEntry 存提款的歷史紀錄，供後續爭議流程查詢
//
// Kind 只會是 KindDeposit 或 KindWithdrawal
type JournalEntry struct {
	Client       ClientID
	Kind         RecordKind
	Amount       Money
	UnderDispute bool
}
