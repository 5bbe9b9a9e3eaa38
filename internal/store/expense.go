package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/roomshare/internal/model"
)

type ExpenseStore struct {
	db *sql.DB
}

func NewExpenseStore(db *sql.DB) *ExpenseStore {
	return &ExpenseStore{db: db}
}

const expenseCols = `id, house_id, description, amount, paid_by, date`

// Create inserts e and its split rows in one transaction.
func (s *ExpenseStore) Create(ctx context.Context, e *model.Expense) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO expenses (`+expenseCols+`) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.HouseID, e.Description, e.Amount, e.PaidBy, e.Date,
	); err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}

	for _, userID := range e.SplitWith {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO expense_splits (expense_id, user_id) VALUES (?, ?)`,
			e.ID, userID,
		); err != nil {
			return fmt.Errorf("insert split %q: %w", userID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ListByHouse returns every expense of houseID with its split participants,
// in insertion order.
func (s *ExpenseStore) ListByHouse(ctx context.Context, houseID string) ([]model.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+expenseCols+` FROM expenses WHERE house_id = ? ORDER BY rowid ASC`,
		houseID,
	)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}

	var expenses []model.Expense
	index := make(map[string]int)
	for rows.Next() {
		var e model.Expense
		if err := rows.Scan(&e.ID, &e.HouseID, &e.Description, &e.Amount, &e.PaidBy, &e.Date); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.SplitWith = []string{}
		index[e.ID] = len(expenses)
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	rows.Close()

	if len(expenses) == 0 {
		return expenses, nil
	}

	splits, err := s.db.QueryContext(ctx,
		`SELECT es.expense_id, es.user_id
		 FROM expense_splits es
		 JOIN expenses e ON e.id = es.expense_id
		 WHERE e.house_id = ?
		 ORDER BY es.rowid ASC`,
		houseID,
	)
	if err != nil {
		return nil, fmt.Errorf("list splits: %w", err)
	}
	defer splits.Close()

	for splits.Next() {
		var expenseID, userID string
		if err := splits.Scan(&expenseID, &userID); err != nil {
			return nil, fmt.Errorf("scan split: %w", err)
		}
		if i, ok := index[expenseID]; ok {
			expenses[i].SplitWith = append(expenses[i].SplitWith, userID)
		}
	}
	return expenses, splits.Err()
}
