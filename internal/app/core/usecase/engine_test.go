package usecase_test

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-tx-engine/internal/app/core/adapter/out/memory"
	"github.com/JoeShih716/go-tx-engine/internal/app/core/domain"
	"github.com/JoeShih716/go-tx-engine/internal/app/core/usecase"
)

func money(raw string) domain.Money {
	return domain.MustParseMoney(raw)
}

type fixture struct {
	engine  *usecase.Engine
	ledger  *memory.Ledger
	journal *memory.Journal
}

func newFixture() *fixture {
	ledger := memory.NewLedger()
	journal := memory.NewJournal()
	return &fixture{
		engine:  usecase.NewEngine(ledger, journal),
		ledger:  ledger,
		journal: journal,
	}
}

func (f *fixture) account(client domain.ClientID) domain.Account {
	return *f.ledger.GetOrCreate(client)
}

func (f *fixture) mustApply(t *testing.T, recs ...domain.Record) {
	t.Helper()
	for _, rec := range recs {
		require.NoError(t, f.engine.Apply(rec))
	}
}

func TestEngineDeposit(t *testing.T) {
	f := newFixture()

	f.mustApply(t, domain.Deposit{Client: 1, Tx: 1, Amount: money("10.0000")})

	assert.Equal(t, domain.Account{Client: 1, Available: money("10")}, f.account(1))
	entry, ok := f.journal.Get(1)
	require.True(t, ok)
	assert.Equal(t, domain.JournalEntry{Client: 1, Kind: domain.KindDeposit, Amount: money("10")}, entry)
}

func TestEngineWithdrawal(t *testing.T) {
	f := newFixture()

	f.mustApply(t,
		domain.Deposit{Client: 1, Tx: 1, Amount: money("10")},
		domain.Withdrawal{Client: 1, Tx: 2, Amount: money("5")},
	)

	assert.Equal(t, money("5.0000"), f.account(1).Available)
	entry, ok := f.journal.Get(2)
	require.True(t, ok)
	assert.Equal(t, domain.KindWithdrawal, entry.Kind)
}

func TestEngineOverdraftNeverMutates(t *testing.T) {
	f := newFixture()
	f.mustApply(t, domain.Deposit{Client: 1, Tx: 1, Amount: money("3")})

	err := f.engine.Apply(domain.Withdrawal{Client: 1, Tx: 2, Amount: money("3.0001")})

	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.Equal(t, money("3"), f.account(1).Available)
	_, ok := f.journal.Get(2)
	assert.False(t, ok, "rejected withdrawal must not be journaled")
}

func TestEngineDisputeResolveRoundTrip(t *testing.T) {
	f := newFixture()
	f.mustApply(t,
		domain.Deposit{Client: 1, Tx: 1, Amount: money("10")},
		domain.Deposit{Client: 1, Tx: 2, Amount: money("2.5")},
	)
	before := f.account(1)

	f.mustApply(t, domain.Dispute{Client: 1, Tx: 1})
	assert.Equal(t, domain.Account{Client: 1, Available: money("2.5"), Held: money("10")}, f.account(1))
	entry, _ := f.journal.Get(1)
	assert.True(t, entry.UnderDispute)

	f.mustApply(t, domain.Resolve{Client: 1, Tx: 1})
	assert.Equal(t, before, f.account(1))
	entry, _ = f.journal.Get(1)
	assert.False(t, entry.UnderDispute)
}

func TestEngineDisputeChargeback(t *testing.T) {
	f := newFixture()
	f.mustApply(t,
		domain.Deposit{Client: 1, Tx: 1, Amount: money("10")},
		domain.Dispute{Client: 1, Tx: 1},
	)
	assert.Equal(t, domain.Account{Client: 1, Held: money("10")}, f.account(1))

	f.mustApply(t, domain.Chargeback{Client: 1, Tx: 1})
	locked := f.account(1)
	assert.Equal(t, domain.Account{Client: 1, Locked: true}, locked)

	followUps := []domain.Record{
		domain.Deposit{Client: 1, Tx: 10, Amount: money("1")},
		domain.Withdrawal{Client: 1, Tx: 11, Amount: money("0")},
		domain.Dispute{Client: 1, Tx: 1},
		domain.Resolve{Client: 1, Tx: 1},
		domain.Chargeback{Client: 1, Tx: 1},
	}
	for _, rec := range followUps {
		err := f.engine.Apply(rec)
		assert.ErrorIs(t, err, domain.ErrLockedAccount, rec.Kind().String())
		assert.Equal(t, locked, f.account(1))
	}
	_, ok := f.journal.Get(10)
	assert.False(t, ok)
}

func TestEngineRejections(t *testing.T) {
	tests := []struct {
		name  string
		setup []domain.Record
		rec   domain.Record
		want  error
	}{
		{
			name: "dispute unknown tx",
			rec:  domain.Dispute{Client: 1, Tx: 999},
			want: domain.ErrUnknownTransaction,
		},
		{
			name:  "chargeback without dispute",
			setup: []domain.Record{domain.Deposit{Client: 1, Tx: 1, Amount: money("10")}},
			rec:   domain.Chargeback{Client: 1, Tx: 1},
			want:  domain.ErrInvalidDisputeState,
		},
		{
			name:  "resolve without dispute",
			setup: []domain.Record{domain.Deposit{Client: 1, Tx: 1, Amount: money("10")}},
			rec:   domain.Resolve{Client: 1, Tx: 1},
			want:  domain.ErrInvalidDisputeState,
		},
		{
			name: "dispute twice",
			setup: []domain.Record{
				domain.Deposit{Client: 1, Tx: 1, Amount: money("10")},
				domain.Dispute{Client: 1, Tx: 1},
			},
			rec:  domain.Dispute{Client: 1, Tx: 1},
			want: domain.ErrInvalidDisputeState,
		},
		{
			name: "dispute withdrawal",
			setup: []domain.Record{
				domain.Deposit{Client: 1, Tx: 1, Amount: money("100")},
				domain.Withdrawal{Client: 1, Tx: 2, Amount: money("1")},
			},
			rec:  domain.Dispute{Client: 1, Tx: 2},
			want: domain.ErrInvalidDisputeOrigin,
		},
		{
			name: "dispute after funds withdrawn",
			setup: []domain.Record{
				domain.Deposit{Client: 1, Tx: 1, Amount: money("10")},
				domain.Withdrawal{Client: 1, Tx: 2, Amount: money("6")},
			},
			rec:  domain.Dispute{Client: 1, Tx: 1},
			want: domain.ErrInsufficientFunds,
		},
		{
			name:  "dispute other client's tx",
			setup: []domain.Record{domain.Deposit{Client: 1, Tx: 1, Amount: money("10")}},
			rec:   domain.Dispute{Client: 2, Tx: 1},
			want:  domain.ErrUnknownTransaction,
		},
		{
			name:  "duplicate deposit tx",
			setup: []domain.Record{domain.Deposit{Client: 1, Tx: 1, Amount: money("10")}},
			rec:   domain.Deposit{Client: 1, Tx: 1, Amount: money("20")},
			want:  domain.ErrDuplicateTransaction,
		},
		{
			name:  "withdrawal reusing deposit tx",
			setup: []domain.Record{domain.Deposit{Client: 1, Tx: 1, Amount: money("10")}},
			rec:   domain.Withdrawal{Client: 1, Tx: 1, Amount: money("1")},
			want:  domain.ErrDuplicateTransaction,
		},
		{
			name: "negative deposit",
			rec:  domain.Deposit{Client: 1, Tx: 1, Amount: money("-1")},
			want: domain.ErrMalformedRecord,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.mustApply(t, tt.setup...)
			accounts := f.ledger.Snapshot()
			entry, hadEntry := f.journal.Get(tt.rec.TxID())

			err := f.engine.Apply(tt.rec)

			assert.ErrorIs(t, err, tt.want)
			var rejection *domain.RejectionError
			require.True(t, errors.As(err, &rejection))
			assert.Equal(t, tt.rec.Kind(), rejection.Kind)
			assert.Equal(t, tt.rec.ClientID(), rejection.Client)

			f.ledger.GetOrCreate(tt.rec.ClientID())
			after := f.ledger.Snapshot()
			for _, a := range after {
				if a.Client == tt.rec.ClientID() && !containsClient(accounts, a.Client) {
					// 第一次引用時建立的空帳戶
					assert.Equal(t, domain.Account{Client: a.Client}, a)
					continue
				}
				assert.Contains(t, accounts, a)
			}
			gotEntry, hasEntry := f.journal.Get(tt.rec.TxID())
			assert.Equal(t, hadEntry, hasEntry)
			assert.Equal(t, entry, gotEntry)
		})
	}
}

func containsClient(accounts []domain.Account, client domain.ClientID) bool {
	for _, a := range accounts {
		if a.Client == client {
			return true
		}
	}
	return false
}

func TestEngineLazyAccountCreation(t *testing.T) {
	f := newFixture()

	err := f.engine.Apply(domain.Dispute{Client: 4, Tx: 999})

	assert.ErrorIs(t, err, domain.ErrUnknownTransaction)
	assert.Equal(t, []domain.Account{{Client: 4}}, f.engine.Snapshot())
}

func TestEngineMoneyConservation(t *testing.T) {
	for _, withChargebacks := range []bool{false, true} {
		name := "without chargebacks"
		if withChargebacks {
			name = "with chargebacks"
		}
		t.Run(name, func(t *testing.T) {
			f := newFixture()
			rng := rand.New(rand.NewSource(42))
			deposits := make(map[domain.TxID]domain.Money)
			var expected domain.Money

			kinds := 4
			if withChargebacks {
				kinds = 5
			}
			for i := 0; i < 5000; i++ {
				client := domain.ClientID(rng.Intn(8) + 1)
				tx := domain.TxID(rng.Intn(1200) + 1)
				amount := domain.Money(rng.Int63n(500 * domain.CurrencyScale))

				var rec domain.Record
				switch rng.Intn(kinds) {
				case 0:
					rec = domain.Deposit{Client: client, Tx: tx, Amount: amount}
				case 1:
					rec = domain.Withdrawal{Client: client, Tx: tx, Amount: amount}
				case 2:
					rec = domain.Dispute{Client: client, Tx: tx}
				case 3:
					rec = domain.Resolve{Client: client, Tx: tx}
				case 4:
					rec = domain.Chargeback{Client: client, Tx: tx}
				}

				if err := f.engine.Apply(rec); err != nil {
					continue
				}
				switch r := rec.(type) {
				case domain.Deposit:
					deposits[r.Tx] = r.Amount
					expected += r.Amount
				case domain.Withdrawal:
					expected -= r.Amount
				case domain.Chargeback:
					expected -= deposits[r.Tx]
				}
			}

			var total domain.Money
			for _, a := range f.engine.Snapshot() {
				assert.False(t, a.Available.IsNegative())
				assert.False(t, a.Held.IsNegative())
				total += a.Total()
			}
			assert.Equal(t, expected, total)
		})
	}
}
