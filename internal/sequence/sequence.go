// Package sequence issues per-tenant sequential document numbers like
// INV-2026-0007. Counters are scoped by tenant, document type and year,
// and incremented inside a transaction so sequential calls never skip
// or repeat a value.
package sequence

import (
	"fmt"
	"time"

	"buildcrm/internal/model"
	"buildcrm/internal/tenant"

	"gorm.io/gorm"
)

// Document type prefixes
const (
	DocTypeInvoice       = "INV"
	DocTypeQuotation     = "QUO"
	DocTypeWorkOrder     = "WO"
	DocTypePurchaseOrder = "PO"
)

// Next allocates the next number for the document type within the
// partition's tenant, formatted as PREFIX-YYYY-NNNN.
func Next(p *tenant.Partition, docType string, now time.Time) (string, error) {
	year := now.Year()
	var value int

	err := p.Transaction(func(tx *tenant.Partition) error {
		var counter model.SequenceCounter
		err := tx.DB().Where("doc_type = ? AND year = ?", docType, year).First(&counter).Error
		if err == gorm.ErrRecordNotFound {
			counter = model.SequenceCounter{
				TenantID: tx.TenantID(),
				DocType:  docType,
				Year:     year,
				Value:    0,
			}
			if err := tx.Raw().Create(&counter).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		counter.Value++
		value = counter.Value
		return tx.Raw().Model(&model.SequenceCounter{}).
			Where("id = ?", counter.ID).
			Update("value", counter.Value).Error
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s-%d-%04d", docType, year, value), nil
}
