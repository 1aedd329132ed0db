package domain

import "math"

// Account 客戶帳戶，Total = Available + Held
type Account struct {
	Client    ClientID
	Available Money
	Held      Money
	Locked    bool
}

func NewAccount(client ClientID) *Account {
	return &Account{
		Client: client,
	}
}

// Total 總餘額
func (a *Account) Total() Money {
	return a.Available + a.Held
}

// Deposit 存款
func (a *Account) Deposit(amount Money) error {
	if amount.IsNegative() {
		return ErrMalformedRecord
	}
	// Total 不可溢位，之後的凍結/解凍都只在兩個欄位間搬移
	if amount > Money(math.MaxInt64)-a.Total() {
		return ErrMalformedRecord
	}

	a.Available += amount
	return nil
}

// Withdraw 提款
func (a *Account) Withdraw(amount Money) error {
	if amount.IsNegative() {
		return ErrMalformedRecord
	}
	if a.Available < amount {
		return ErrInsufficientFunds
	}

	a.Available -= amount
	return nil
}

// Hold 將可用餘額轉為凍結 (爭議)
func (a *Account) Hold(amount Money) error {
	if a.Available < amount {
		return ErrInsufficientFunds
	}
	a.Available -= amount
	a.Held += amount
	return nil
}

// Release 將凍結餘額轉回可用 (解除爭議)
func (a *Account) Release(amount Money) error {
	if a.Held < amount {
		return ErrInsufficientHeld
	}
	a.Held -= amount
	a.Available += amount
	return nil
}

// Reverse 扣除凍結餘額並鎖定帳戶 (退單)
func (a *Account) Reverse(amount Money) error {
	if a.Held < amount {
		return ErrInsufficientHeld
	}
	a.Held -= amount
	a.Locked = true
	return nil
}
