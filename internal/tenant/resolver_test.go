package tenant

import (
	"testing"

	"buildcrm/internal/model"
	"buildcrm/pkg/jwtutil"

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
	require.NoError(t, db.AutoMigrate(&model.Tenant{}, &model.Lead{}))
	return db
}

func seedTenant(t *testing.T, db *gorm.DB, slug string) *model.Tenant {
	t.Helper()
	tn := model.Tenant{
		Name:   slug,
		Slug:   slug,
		Status: model.TenantStatusActive,
	}
	require.NoError(t, db.Create(&tn).Error)
	return &tn
}

func TestFromClaims(t *testing.T) {
	db := testDB(t)
	id := uint(42)

	p := FromClaims(db, &jwtutil.UserClaims{TenantID: &id})
	assert.Equal(t, uint(42), p.TenantID())

	// No tenant on the token resolves to the empty partition
	p = FromClaims(db, &jwtutil.UserClaims{})
	assert.Equal(t, uint(0), p.TenantID())

	p = FromClaims(db, nil)
	assert.Equal(t, uint(0), p.TenantID())
}

func TestByIdentifierAcceptsSlugAndID(t *testing.T) {
	db := testDB(t)
	tn := seedTenant(t, db, "acme-builders")

	bySlug := ByIdentifier(db, "acme-builders")
	assert.Equal(t, tn.ID, bySlug.TenantID())

	byID := ByIdentifier(db, "1")
	assert.Equal(t, tn.ID, byID.TenantID())
}

// A numeric-looking slug must not be shadowed by an id match
func TestByIdentifierNumericSlug(t *testing.T) {
	db := testDB(t)
	seedTenant(t, db, "acme-builders")
	numeric := seedTenant(t, db, "7")

	p := ByIdentifier(db, "7")
	assert.Equal(t, numeric.ID, p.TenantID())
}

// An unresolvable identifier yields the empty partition, and the
// empty partition matches no rows
func TestByIdentifierUnknownIsEmpty(t *testing.T) {
	db := testDB(t)
	tn := seedTenant(t, db, "acme-builders")
	require.NoError(t, db.Create(&model.Lead{TenantID: tn.ID, Name: "Jordan"}).Error)

	p := ByIdentifier(db, "no-such-tenant")
	assert.Equal(t, uint(0), p.TenantID())

	var leads []model.Lead
	require.NoError(t, p.DB().Find(&leads).Error)
	assert.Empty(t, leads)
}

// Rows written within one partition are invisible from another
func TestPartitionIsolation(t *testing.T) {
	db := testDB(t)
	a := seedTenant(t, db, "acme-builders")
	b := seedTenant(t, db, "bolt-interiors")

	pA := ForTenant(db, a.ID)
	pB := ForTenant(db, b.ID)

	lead := model.Lead{TenantID: pA.TenantID(), Name: "Jordan", Email: "jordan@example.com"}
	require.NoError(t, pA.Raw().Create(&lead).Error)

	var fromA []model.Lead
	require.NoError(t, pA.DB().Find(&fromA).Error)
	assert.Len(t, fromA, 1)

	var fromB []model.Lead
	require.NoError(t, pB.DB().Find(&fromB).Error)
	assert.Empty(t, fromB)

	// Scoped updates from the wrong partition touch nothing
	result := pB.Model(&model.Lead{}).Where("id = ?", lead.ID).Update("name", "Hijacked")
	require.NoError(t, result.Error)
	assert.Equal(t, int64(0), result.RowsAffected)
}

func TestTransactionRollsBackBothWrites(t *testing.T) {
	db := testDB(t)
	a := seedTenant(t, db, "acme-builders")
	p := ForTenant(db, a.ID)

	sentinel := assert.AnError
	err := p.Transaction(func(tx *Partition) error {
		lead := model.Lead{TenantID: tx.TenantID(), Name: "Jordan"}
		if err := tx.Raw().Create(&lead).Error; err != nil {
			return err
		}
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)

	var count int64
	require.NoError(t, p.DB().Model(&model.Lead{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}
