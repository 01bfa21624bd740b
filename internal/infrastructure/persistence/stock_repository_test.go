package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormProductStockRepository_Balances(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	drifted, orphan := uuid.New(), uuid.New()
	mock.ExpectQuery(`(?s)FROM product_stock s\s+LEFT JOIN \(SELECT product_id, SUM\(qty\) AS total FROM stock_move_lines GROUP BY product_id\) m.*UNION ALL`).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "on_hand_qty", "moves_sum"}).
			AddRow(drifted.String(), "25.000", "20.000").
			AddRow(orphan.String(), "0", "4.500"))

	balances, err := NewGormProductStockRepository(db.DB).Balances(context.Background())
	require.NoError(t, err)
	require.Len(t, balances, 2)
	assert.Equal(t, drifted, balances[0].ProductID)
	assert.Equal(t, "25", balances[0].OnHandQty.String())
	assert.False(t, balances[0].Consistent())
	assert.Equal(t, orphan, balances[1].ProductID)
	assert.Equal(t, "4.5", balances[1].MovesSum.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}
