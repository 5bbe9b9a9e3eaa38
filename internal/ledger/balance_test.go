package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dukerupert/roomshare/internal/model"
)

func expense(amount float64, paidBy string, split ...string) model.Expense {
	return model.Expense{Amount: amount, PaidBy: paidBy, SplitWith: split}
}

func TestComputeBalanceThreeWaySplit(t *testing.T) {
	expenses := []model.Expense{expense(100, "a", "b", "c")}

	assert.InDelta(t, 66.6666667, ComputeBalance(expenses, "a"), 1e-6)
	assert.InDelta(t, -33.3333333, ComputeBalance(expenses, "b"), 1e-6)
	assert.InDelta(t, -33.3333333, ComputeBalance(expenses, "c"), 1e-6)
	assert.Equal(t, 0.0, ComputeBalance(expenses, "d"))
}

func TestComputeBalanceSoloExpense(t *testing.T) {
	expenses := []model.Expense{expense(40, "a")}
	assert.Equal(t, 0.0, ComputeBalance(expenses, "a"))
}

func TestComputeBalanceEmpty(t *testing.T) {
	assert.Equal(t, 0.0, ComputeBalance(nil, "a"))
}

func TestComputeBalanceSettlesOut(t *testing.T) {
	expenses := []model.Expense{
		expense(60, "a", "b"),
		expense(60, "b", "a"),
	}
	assert.InDelta(t, 0, ComputeBalance(expenses, "a"), 1e-9)
	assert.InDelta(t, 0, ComputeBalance(expenses, "b"), 1e-9)
}

func TestBalancesSumToZero(t *testing.T) {
	users := []string{"a", "b", "c", "d"}
	expenses := []model.Expense{
		expense(100, "a", "b", "c"),
		expense(45.5, "b", "a"),
		expense(12, "c", "a", "b", "d"),
		expense(80, "d"),
		expense(9.99, "a", "d"),
	}

	var total float64
	for _, u := range users {
		total += ComputeBalance(expenses, u)
	}
	assert.InDelta(t, 0, total, 1e-9)
}

func TestMatrixNetMatchesScalar(t *testing.T) {
	users := []string{"a", "b", "c", "d"}
	expenses := []model.Expense{
		expense(100, "a", "b", "c"),
		expense(45.5, "b", "a"),
		expense(12, "c", "a", "b", "d"),
		expense(9.99, "a", "d"),
	}

	m := PairwiseBalances(expenses)
	simplified := m.Simplified()
	for _, u := range users {
		want := ComputeBalance(expenses, u)
		assert.InDelta(t, want, m.Net(u), 1e-9, "net for %s", u)
		assert.InDelta(t, want, simplified.Net(u), 1e-9, "simplified net for %s", u)
	}
}

func TestMatrixPairAmounts(t *testing.T) {
	m := PairwiseBalances([]model.Expense{expense(90, "a", "b", "c")})

	assert.InDelta(t, 30, m[Pair{Debtor: "b", Creditor: "a"}], 1e-9)
	assert.InDelta(t, 30, m[Pair{Debtor: "c", Creditor: "a"}], 1e-9)
	assert.Len(t, m, 2)
}

func TestSimplifiedNetsOppositeDirections(t *testing.T) {
	m := PairwiseBalances([]model.Expense{
		expense(100, "a", "b"), // b owes a 50
		expense(40, "b", "a"),  // a owes b 20
		expense(30, "c", "a"),  // a owes c 15
		expense(30, "a", "c"),  // c owes a 15
	})

	s := m.Simplified()
	assert.Len(t, s, 1)
	assert.InDelta(t, 30, s[Pair{Debtor: "b", Creditor: "a"}], 1e-9)
	_, reverse := s[Pair{Debtor: "a", Creditor: "b"}]
	assert.False(t, reverse)
}

func TestEntriesSorted(t *testing.T) {
	m := Matrix{
		{Debtor: "c", Creditor: "a"}: 1,
		{Debtor: "b", Creditor: "c"}: 2,
		{Debtor: "b", Creditor: "a"}: 3,
	}
	entries := m.Entries()
	assert.Equal(t, []Entry{
		{Pair: Pair{Debtor: "b", Creditor: "a"}, Amount: 3},
		{Pair: Pair{Debtor: "b", Creditor: "c"}, Amount: 2},
		{Pair: Pair{Debtor: "c", Creditor: "a"}, Amount: 1},
	}, entries)
}

func TestNormalizeSplit(t *testing.T) {
	got := normalizeSplit([]string{"b", " c ", "a", "b", "", "d"}, "a")
	assert.Equal(t, []string{"b", "c", "d"}, got)
}
