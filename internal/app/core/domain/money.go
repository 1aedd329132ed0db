package domain

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// amount 使用int64，並定義精度：小數點後 4 位
const (
	CurrencyScale    = 10000
	CurrencyDecimals = 4
)

var (
	maxMoney = decimal.NewFromInt(math.MaxInt64)
	minMoney = decimal.NewFromInt(math.MinInt64)
)

// Money 定點數金額，單位為 1/CurrencyScale
type Money int64

// ParseMoney 解析十進位字串為 Money
//
// 超過 4 位小數 (且非零) 的輸入直接拒絕，不做任何四捨五入
//
// 參數:
//
//	raw: 金額字串，例如 "1.5" / "10.0004"
//
// 回傳:
//
//	Money: 解析後金額
//	error: 格式錯誤、精度超過或溢位 (皆包裝 ErrMalformedRecord)
func ParseMoney(raw string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: invalid amount %q", ErrMalformedRecord, raw)
	}
	if !d.Equal(d.Truncate(CurrencyDecimals)) {
		return 0, fmt.Errorf("%w: amount %q has more than %d decimal places", ErrMalformedRecord, raw, CurrencyDecimals)
	}

	scaled := d.Shift(CurrencyDecimals)
	if scaled.GreaterThan(maxMoney) || scaled.LessThan(minMoney) {
		return 0, fmt.Errorf("%w: amount %q out of range", ErrMalformedRecord, raw)
	}
	return Money(scaled.IntPart()), nil
}

// MustParseMoney 僅供測試與常數使用
func MustParseMoney(raw string) Money {
	m, err := ParseMoney(raw)
	if err != nil {
		panic(err)
	}
	return m
}

// Decimal 轉回 decimal.Decimal
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -CurrencyDecimals)
}

// String 固定輸出 4 位小數
func (m Money) String() string {
	return m.Decimal().StringFixed(CurrencyDecimals)
}

func (m Money) IsNegative() bool {
	return m < 0
}
