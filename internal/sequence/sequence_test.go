package sequence

import (
	"fmt"
	"testing"
	"time"

	"buildcrm/internal/model"
	"buildcrm/internal/tenant"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.SequenceCounter{}))
	return db
}

func TestNextIsSequentialAndZeroPadded(t *testing.T) {
	db := testDB(t)
	p := tenant.ForTenant(db, 1)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	for i := 1; i <= 12; i++ {
		number, err := Next(p, DocTypeInvoice, now)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("INV-2026-%04d", i), number)
	}
}

func TestNextScopesByDocType(t *testing.T) {
	db := testDB(t)
	p := tenant.ForTenant(db, 1)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	inv, err := Next(p, DocTypeInvoice, now)
	require.NoError(t, err)
	quo, err := Next(p, DocTypeQuotation, now)
	require.NoError(t, err)

	assert.Equal(t, "INV-2026-0001", inv)
	assert.Equal(t, "QUO-2026-0001", quo)
}

func TestNextScopesByYear(t *testing.T) {
	db := testDB(t)
	p := tenant.ForTenant(db, 1)

	dec := time.Date(2026, 12, 31, 23, 0, 0, 0, time.UTC)
	jan := time.Date(2027, 1, 1, 1, 0, 0, 0, time.UTC)

	_, err := Next(p, DocTypeInvoice, dec)
	require.NoError(t, err)
	_, err = Next(p, DocTypeInvoice, dec)
	require.NoError(t, err)

	// A new year starts its own counter
	number, err := Next(p, DocTypeInvoice, jan)
	require.NoError(t, err)
	assert.Equal(t, "INV-2027-0001", number)

	// The old year's counter keeps its position
	number, err = Next(p, DocTypeInvoice, dec)
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-0003", number)
}

func TestNextScopesByTenant(t *testing.T) {
	db := testDB(t)
	pA := tenant.ForTenant(db, 1)
	pB := tenant.ForTenant(db, 2)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	_, err := Next(pA, DocTypeInvoice, now)
	require.NoError(t, err)
	_, err = Next(pA, DocTypeInvoice, now)
	require.NoError(t, err)

	number, err := Next(pB, DocTypeInvoice, now)
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-0001", number, "counters do not leak across tenants")
}
