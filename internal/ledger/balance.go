// Package ledger records shared expenses and derives who owes whom.
package ledger

import (
	"cmp"
	"slices"

	"github.com/dukerupert/roomshare/internal/model"
)

// ComputeBalance returns the viewer's net position over expenses. Each
// expense is split evenly between the payer and its split participants.
// Positive means the viewer is owed money, negative means the viewer owes.
func ComputeBalance(expenses []model.Expense, viewer string) float64 {
	var net float64
	for _, e := range expenses {
		share := e.Amount / float64(len(e.SplitWith)+1)
		switch {
		case e.PaidBy == viewer:
			net += e.Amount - share
		case slices.Contains(e.SplitWith, viewer):
			net -= share
		}
	}
	return net
}

// Pair is an ordered (debtor, creditor) pair.
type Pair struct {
	Debtor   string `json:"debtor"`
	Creditor string `json:"creditor"`
}

// Matrix maps each ordered pair to the amount the debtor owes the creditor.
type Matrix map[Pair]float64

// PairwiseBalances charges every split participant its share toward the
// payer. Self pairs are skipped, so a payer listed in its own split is
// treated as already settled with itself.
func PairwiseBalances(expenses []model.Expense) Matrix {
	m := make(Matrix)
	for _, e := range expenses {
		share := e.Amount / float64(len(e.SplitWith)+1)
		for _, participant := range e.SplitWith {
			if participant == e.PaidBy {
				continue
			}
			m[Pair{Debtor: participant, Creditor: e.PaidBy}] += share
		}
	}
	return m
}

// Net reduces the matrix to user's scalar view: everything owed to user
// minus everything user owes.
func (m Matrix) Net(user string) float64 {
	var net float64
	for p, amount := range m {
		if p.Creditor == user {
			net += amount
		}
		if p.Debtor == user {
			net -= amount
		}
	}
	return net
}

// Simplified nets opposite directions so at most one direction remains per
// unordered pair. Pairs that cancel exactly are dropped.
func (m Matrix) Simplified() Matrix {
	out := make(Matrix)
	for p, amount := range m {
		reverse := Pair{Debtor: p.Creditor, Creditor: p.Debtor}
		diff := amount - m[reverse]
		if diff > 0 {
			out[p] = diff
		}
	}
	return out
}

// Entry is one matrix cell, used for serialisation.
type Entry struct {
	Pair
	Amount float64 `json:"amount"`
}

// Entries flattens the matrix into a slice ordered by debtor then creditor.
func (m Matrix) Entries() []Entry {
	out := make([]Entry, 0, len(m))
	for p, amount := range m {
		out = append(out, Entry{Pair: p, Amount: amount})
	}
	slices.SortFunc(out, func(a, b Entry) int {
		return cmp.Or(cmp.Compare(a.Debtor, b.Debtor), cmp.Compare(a.Creditor, b.Creditor))
	})
	return out
}
