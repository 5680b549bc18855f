package model

// SequenceCounter backs per-tenant per-year document numbering.
// One row per (tenant, doc type, year), incremented under a transaction.
type SequenceCounter struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	TenantID uint   `json:"tenant_id" gorm:"index:idx_seq_scope,unique;not null"`
	DocType  string `json:"doc_type" gorm:"type:varchar(10);index:idx_seq_scope,unique;not null"`
	Year     int    `json:"year" gorm:"index:idx_seq_scope,unique;not null"`
	Value    int    `json:"value" gorm:"not null;default:0"`
}
