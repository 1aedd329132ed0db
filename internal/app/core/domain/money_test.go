package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Money
	}{
		{"integer", "10", 100000},
		{"one decimal", "1.5", 15000},
		{"four decimals", "10.0004", 100004},
		{"padding spaces", "  2.25 ", 22500},
		{"trailing zeros beyond scale", "3.123400", 31234},
		{"zero", "0", 0},
		{"negative", "-1.0001", -10001},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMoney(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMoneyRejects(t *testing.T) {
	for _, raw := range []string{"", "abc", "1.00001", "0.12345", "99999999999999999999"} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseMoney(raw)
			assert.ErrorIs(t, err, ErrMalformedRecord)
		})
	}
}

func TestMoneyString(t *testing.T) {
	assert.Equal(t, "10.0000", MustParseMoney("10").String())
	assert.Equal(t, "0.0000", Money(0).String())
	assert.Equal(t, "1.2345", Money(12345).String())
	assert.Equal(t, "-0.5000", Money(-5000).String())
}
