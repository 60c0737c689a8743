package gmv

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ayuuum/HomeServiceAI-sub000/pkg/db/models"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/enums"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/pagination"
)

func setupGMVTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS gmv_audit_logs (
  id TEXT PRIMARY KEY,
  organization_id TEXT NOT NULL,
  booking_id TEXT NOT NULL,
  action TEXT NOT NULL,
  previous_amount INTEGER,
  new_amount INTEGER NOT NULL,
  reason TEXT,
  actor TEXT NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func insertEntry(t *testing.T, db *gorm.DB, orgID, bookingID uuid.UUID, action enums.GMVAuditAction, amount int, createdAt time.Time) {
	t.Helper()
	err := db.Exec(
		`INSERT INTO gmv_audit_logs (id, organization_id, booking_id, action, new_amount, actor, created_at)
		 VALUES (?, ?, ?, ?, ?, 'admin', ?)`,
		uuid.New().String(), orgID.String(), bookingID.String(), string(action), amount, createdAt,
	).Error
	require.NoError(t, err)
}

func TestInsertTxAppendsRow(t *testing.T) {
	db := setupGMVTestDB(t)
	repo := NewRepository(db)
	orgID, bookingID := uuid.New(), uuid.New()

	previous := 11000
	reason := "parts cost adjusted after inspection"
	err := db.Transaction(func(tx *gorm.DB) error {
		return repo.InsertTx(tx, models.GMVAuditLog{
			OrganizationID: orgID,
			BookingID:      bookingID,
			Action:         enums.GMVAuditActionModified,
			PreviousAmount: &previous,
			NewAmount:      12000,
			Reason:         &reason,
			Actor:          "admin:sato",
		})
	})
	require.NoError(t, err)

	rows, err := repo.ListByBooking(context.Background(), orgID, bookingID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, enums.GMVAuditActionModified, rows[0].Action)
	assert.Equal(t, 12000, rows[0].NewAmount)
	require.NotNil(t, rows[0].PreviousAmount)
	assert.Equal(t, 11000, *rows[0].PreviousAmount)
	require.NotNil(t, rows[0].Reason)
	assert.Equal(t, reason, *rows[0].Reason)
}

func TestListPaginatesNewestFirst(t *testing.T) {
	db := setupGMVTestDB(t)
	repo := NewRepository(db)
	orgID := uuid.New()

	base := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		insertEntry(t, db, orgID, uuid.New(), enums.GMVAuditActionCompleted, 1000*(i+1), base.Add(time.Duration(i)*time.Hour))
	}
	insertEntry(t, db, uuid.New(), uuid.New(), enums.GMVAuditActionCompleted, 9999, base)

	list, err := repo.List(context.Background(), orgID, pagination.Params{Limit: 2}, ListFilters{})
	require.NoError(t, err)
	require.Len(t, list.Entries, 2)
	assert.Equal(t, 3000, list.Entries[0].NewAmount, "newest first")
	assert.NotEmpty(t, list.NextCursor)

	rest, err := repo.List(context.Background(), orgID, pagination.Params{Limit: 2, Cursor: list.NextCursor}, ListFilters{})
	require.NoError(t, err)
	require.Len(t, rest.Entries, 1)
	assert.Equal(t, 1000, rest.Entries[0].NewAmount)
}

func TestListFiltersByAction(t *testing.T) {
	db := setupGMVTestDB(t)
	repo := NewRepository(db)
	orgID := uuid.New()
	base := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

	insertEntry(t, db, orgID, uuid.New(), enums.GMVAuditActionCompleted, 11000, base)
	insertEntry(t, db, orgID, uuid.New(), enums.GMVAuditActionModified, 12000, base.Add(time.Hour))

	modified := enums.GMVAuditActionModified
	list, err := repo.List(context.Background(), orgID, pagination.Params{}, ListFilters{Action: &modified})
	require.NoError(t, err)
	require.Len(t, list.Entries, 1)
	assert.Equal(t, 12000, list.Entries[0].NewAmount)
}

func TestMonthlyTotalCountsLatestAmountPerBooking(t *testing.T) {
	db := setupGMVTestDB(t)
	repo := NewRepository(db)
	orgID := uuid.New()

	amended := uuid.New()
	insertEntry(t, db, orgID, amended, enums.GMVAuditActionCompleted, 11000, time.Date(2026, 9, 5, 10, 0, 0, 0, time.UTC))
	insertEntry(t, db, orgID, amended, enums.GMVAuditActionModified, 12000, time.Date(2026, 9, 6, 10, 0, 0, 0, time.UTC))
	insertEntry(t, db, orgID, uuid.New(), enums.GMVAuditActionCompleted, 5000, time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC))
	// Previous month stays out.
	insertEntry(t, db, orgID, uuid.New(), enums.GMVAuditActionCompleted, 7000, time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC))

	total, err := repo.MonthlyTotal(context.Background(), orgID, 2026, 9)
	require.NoError(t, err)
	assert.Equal(t, int64(17000), total)
}
