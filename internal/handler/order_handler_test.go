package handler

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"buildcrm/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkOrderNumbersAreSequential(t *testing.T) {
	e, db := testServer(t)
	tn := seedTenantWithModule(t, db, "acme-builders")
	token := clientToken(t, tn)

	project := model.Project{TenantID: tn.ID, Name: "Riverside Duplex"}
	require.NoError(t, db.Create(&project).Error)

	year := time.Now().Year()
	for i := 1; i <= 3; i++ {
		rec := call(e, http.MethodPost, "/api/work-orders", token,
			fmt.Sprintf(`{"project_id":%d,"description":"Install subfloor, phase %d"}`, project.ID, i))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		data := decodeData(t, rec)
		assert.Equal(t, fmt.Sprintf("WO-%d-%04d", year, i), data["number"])
		assert.Equal(t, model.WorkOrderStatusOpen, data["status"])
	}
}

func TestWorkOrderRequiresExistingProject(t *testing.T) {
	e, db := testServer(t)
	tn := seedTenantWithModule(t, db, "acme-builders")
	token := clientToken(t, tn)

	rec := call(e, http.MethodPost, "/api/work-orders", token,
		`{"project_id":999,"description":"Phantom job"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeErrorCode(t, rec))

	rec = call(e, http.MethodPost, "/api/work-orders", token, `{"description":"No project"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeErrorCode(t, rec))
}

func TestWorkOrderStatusTransitions(t *testing.T) {
	e, db := testServer(t)
	tn := seedTenantWithModule(t, db, "acme-builders")
	token := clientToken(t, tn)

	project := model.Project{TenantID: tn.ID, Name: "Riverside Duplex"}
	require.NoError(t, db.Create(&project).Error)

	rec := call(e, http.MethodPost, "/api/work-orders", token,
		fmt.Sprintf(`{"project_id":%d,"description":"Install subfloor"}`, project.ID))
	require.Equal(t, http.StatusCreated, rec.Code)
	id := uint(decodeData(t, rec)["id"].(float64))

	rec = call(e, http.MethodPut, fmt.Sprintf("/api/work-orders/%d", id), token,
		`{"status":"in_progress"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.WorkOrderStatusInProgress, decodeData(t, rec)["status"])

	rec = call(e, http.MethodPut, fmt.Sprintf("/api/work-orders/%d", id), token,
		`{"status":"shipped"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeErrorCode(t, rec))

	var order model.WorkOrder
	require.NoError(t, db.First(&order, id).Error)
	assert.Equal(t, model.WorkOrderStatusInProgress, order.Status)
}

func TestPurchaseOrderNumbersAndStatus(t *testing.T) {
	e, db := testServer(t)
	tn := seedTenantWithModule(t, db, "acme-builders")
	token := clientToken(t, tn)

	year := time.Now().Year()
	rec := call(e, http.MethodPost, "/api/purchase-orders", token,
		`{"supplier_name":"Nordic Timber Co","total":4800.50}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	data := decodeData(t, rec)
	assert.Equal(t, fmt.Sprintf("PO-%d-0001", year), data["number"])
	assert.Equal(t, model.PurchaseOrderStatusDraft, data["status"])
	id := uint(data["id"].(float64))

	rec = call(e, http.MethodPost, "/api/purchase-orders", token, `{"total":100}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeErrorCode(t, rec))

	rec = call(e, http.MethodPut, fmt.Sprintf("/api/purchase-orders/%d", id), token,
		`{"status":"ordered"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.PurchaseOrderStatusOrdered, decodeData(t, rec)["status"])
}

func TestOrderNumberSequencesAreIndependent(t *testing.T) {
	e, db := testServer(t)
	tn := seedTenantWithModule(t, db, "acme-builders")
	token := clientToken(t, tn)

	project := model.Project{TenantID: tn.ID, Name: "Riverside Duplex"}
	require.NoError(t, db.Create(&project).Error)

	year := time.Now().Year()
	rec := call(e, http.MethodPost, "/api/invoices", token,
		`{"items":[{"description":"Deposit","quantity":1,"unit_price":1000}]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, fmt.Sprintf("INV-%d-0001", year), decodeData(t, rec)["number"])

	rec = call(e, http.MethodPost, "/api/work-orders", token,
		fmt.Sprintf(`{"project_id":%d,"description":"Demolition"}`, project.ID))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, fmt.Sprintf("WO-%d-0001", year), decodeData(t, rec)["number"])

	rec = call(e, http.MethodPost, "/api/purchase-orders", token,
		`{"supplier_name":"Nordic Timber Co","total":250}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, fmt.Sprintf("PO-%d-0001", year), decodeData(t, rec)["number"])
}

func TestWorkOrdersAreTenantScoped(t *testing.T) {
	e, db := testServer(t)
	acme := seedTenantWithModule(t, db, "acme-builders")
	bolt := seedTenantWithModule(t, db, "bolt-interiors")

	project := model.Project{TenantID: acme.ID, Name: "Riverside Duplex"}
	require.NoError(t, db.Create(&project).Error)

	rec := call(e, http.MethodPost, "/api/work-orders", clientToken(t, acme),
		fmt.Sprintf(`{"project_id":%d,"description":"Framing"}`, project.ID))
	require.Equal(t, http.StatusCreated, rec.Code)
	id := uint(decodeData(t, rec)["id"].(float64))

	rec = call(e, http.MethodGet, "/api/work-orders", clientToken(t, bolt), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":null`)

	rec = call(e, http.MethodPut, fmt.Sprintf("/api/work-orders/%d", id), clientToken(t, bolt),
		`{"status":"cancelled"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = call(e, http.MethodPost, "/api/work-orders", clientToken(t, bolt),
		fmt.Sprintf(`{"project_id":%d,"description":"Cross-tenant grab"}`, project.ID))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
