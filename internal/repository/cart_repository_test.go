package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

// The cart merge must be one statement: adding a product already in the
// cart folds into the existing line through the unique
// (cart_id, product_id) key, never a read-modify-write and never a
// second line.
func TestAddItemMergesThroughSingleUpsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewCartRepo(db)

	upsert := `INSERT INTO cart_items \(cart_id, product_id, quantity\) VALUES \(\?,\?,\?\)` +
		`\s+ON DUPLICATE KEY UPDATE quantity = quantity \+ VALUES\(quantity\)`

	// First add inserts the line.
	mock.ExpectExec(upsert).WithArgs(10, 7, 2).WillReturnResult(sqlmock.NewResult(1, 1))
	// Second add of the same product hits the unique key and merges;
	// MySQL reports two affected rows for an upsert that updated.
	mock.ExpectExec(upsert).WithArgs(10, 7, 3).WillReturnResult(sqlmock.NewResult(0, 2))

	ctx := context.Background()
	require.NoError(t, repo.AddItem(ctx, 10, 7, 2))
	require.NoError(t, repo.AddItem(ctx, 10, 7, 3))

	// Both adds went through the upsert and nothing else: no SELECT, no
	// separate UPDATE, so concurrent adds cannot race into two lines.
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddItemPropagatesExecError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewCartRepo(db)

	mock.ExpectExec(`INSERT INTO cart_items`).
		WithArgs(10, 7, 2).
		WillReturnError(context.DeadlineExceeded)

	require.Error(t, repo.AddItem(context.Background(), 10, 7, 2))
	require.NoError(t, mock.ExpectationsWereMet())
}
