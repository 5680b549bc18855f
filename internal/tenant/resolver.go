// Package tenant resolves an authenticated caller to the tenant data
// partition their requests operate on. Every scoped query goes through
// a Partition so the tenant filter cannot be forgotten at a call site.
package tenant

import (
	"strconv"

	"buildcrm/internal/model"
	"buildcrm/pkg/jwtutil"

	"gorm.io/gorm"
)

// Partition is a tenant-scoped handle over the shared database. Reads
// through DB() are filtered by tenant id; creates must stamp TenantID()
// server-side, never trusting client input.
type Partition struct {
	tenantID uint
	db       *gorm.DB
}

// TenantID returns the resolved tenant identifier. Zero means no
// partition could be resolved; queries then match nothing.
func (p *Partition) TenantID() uint {
	return p.tenantID
}

// DB returns a query handle filtered to this partition
func (p *Partition) DB() *gorm.DB {
	return p.db.Where("tenant_id = ?", p.tenantID)
}

// Model returns a filtered handle for updates against the given model
func (p *Partition) Model(value interface{}) *gorm.DB {
	return p.db.Model(value).Where("tenant_id = ?", p.tenantID)
}

// Raw returns the unscoped handle for inserts, which carry the tenant
// id on the record itself
func (p *Partition) Raw() *gorm.DB {
	return p.db
}

// Transaction runs fn against a partition bound to a database
// transaction. Multi-record updates (reservation plus counter) go
// through here so a failure rolls both back.
func (p *Partition) Transaction(fn func(tx *Partition) error) error {
	return p.db.Transaction(func(tx *gorm.DB) error {
		return fn(&Partition{tenantID: p.tenantID, db: tx})
	})
}

// FromClaims resolves the partition for a client-scoped user. Users
// without a tenant resolve to the empty partition.
func FromClaims(db *gorm.DB, claims *jwtutil.UserClaims) *Partition {
	if claims == nil || claims.TenantID == nil {
		return &Partition{tenantID: 0, db: db}
	}
	return &Partition{tenantID: *claims.TenantID, db: db}
}

// ForTenant builds a partition for a known tenant id
func ForTenant(db *gorm.DB, tenantID uint) *Partition {
	return &Partition{tenantID: tenantID, db: db}
}

// ByIdentifier resolves a partition from a supplied tenant identifier,
// used on super-admin paths. The identifier is matched against the
// legacy slug or the numeric tenant id; both are still accepted.
// An unknown identifier resolves to the empty partition rather than an
// error, so downstream queries return empty sets. Callers that need to
// distinguish "tenant not found" must check TenantID() == 0.
func ByIdentifier(db *gorm.DB, identifier string) *Partition {
	var t model.Tenant

	query := db.Where("slug = ?", identifier)
	if id, err := strconv.ParseUint(identifier, 10, 32); err == nil {
		query = db.Where("slug = ? OR id = ?", identifier, uint(id))
	}

	if err := query.First(&t).Error; err != nil {
		return &Partition{tenantID: 0, db: db}
	}
	return &Partition{tenantID: t.ID, db: db}
}
