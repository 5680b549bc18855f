package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"buildcrm/internal/middleware"
	"buildcrm/internal/model"
	"buildcrm/pkg/config"
	"buildcrm/pkg/database"
	"buildcrm/pkg/jwtutil"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	jwtutil.Initialize(&config.JWTConfig{
		SigningKey:      "test-signing-key",
		ExpirationHours: 1,
	})
}

// testServer wires the flooring module routes the way the server does,
// backed by an isolated in-memory database.
func testServer(t *testing.T) (*echo.Echo, *gorm.DB) {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Tenant{},
		&model.User{},
		&model.Contact{},
		&model.Project{},
		&model.WorkOrder{},
		&model.PurchaseOrder{},
		&model.Quotation{},
		&model.QuotationItem{},
		&model.Invoice{},
		&model.InvoiceItem{},
		&model.InventoryItem{},
		&model.Reservation{},
		&model.SequenceCounter{},
	))

	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })

	e := echo.New()
	api := e.Group("/api", middleware.RequireAuth)

	admin := api.Group("/admin", middleware.RequireSuperAdmin)
	admin.GET("/reservations", ListReservations)

	client := api.Group("", middleware.RequireClientAccess)

	contacts := client.Group("/contacts")
	contacts.POST("", CreateContact)

	quotations := client.Group("/quotations")
	quotations.POST("", CreateQuotation)
	quotations.PUT("/:id", UpdateQuotation)

	invoices := client.Group("/invoices")
	invoices.POST("", CreateInvoice)

	workOrders := client.Group("/work-orders")
	workOrders.GET("", ListWorkOrders)
	workOrders.POST("", CreateWorkOrder)
	workOrders.PUT("/:id", UpdateWorkOrder)

	purchaseOrders := client.Group("/purchase-orders")
	purchaseOrders.GET("", ListPurchaseOrders)
	purchaseOrders.POST("", CreatePurchaseOrder)
	purchaseOrders.PUT("/:id", UpdatePurchaseOrder)

	flooring := client.Group("/flooring", middleware.RequireModule(model.ModuleFlooring))
	flooring.GET("/inventory", ListInventoryItems)
	flooring.POST("/inventory", CreateInventoryItem)
	flooring.GET("/inventory/reservations", ListReservations)
	flooring.POST("/inventory/reservations", CreateReservation)
	flooring.PUT("/inventory/reservations", UpdateReservation)
	flooring.GET("/inventory/:id", GetInventoryItem)
	flooring.PUT("/inventory/:id", UpdateInventoryItem)

	return e, db
}

func seedTenantWithModule(t *testing.T, db *gorm.DB, slug string) *model.Tenant {
	t.Helper()
	tn := model.Tenant{Name: slug, Slug: slug, Status: model.TenantStatusActive}
	require.NoError(t, tn.SetModules([]string{model.ModuleFlooring}))
	require.NoError(t, db.Create(&tn).Error)
	return &tn
}

func seedFlooringItem(t *testing.T, db *gorm.DB, tenantID uint, sku string, quantity int) *model.InventoryItem {
	t.Helper()
	item := model.InventoryItem{
		TenantID: tenantID,
		SKU:      sku,
		Name:     "Oak Plank " + sku,
		Category: model.ModuleFlooring,
		Quantity: quantity,
		IsActive: true,
	}
	require.NoError(t, db.Create(&item).Error)
	return &item
}

func clientToken(t *testing.T, tn *model.Tenant) string {
	t.Helper()
	token, err := jwtutil.GenerateToken("admin@"+tn.Slug+".example.com", 1, jwtutil.RoleClientAdmin, &tn.ID, tn.Slug)
	require.NoError(t, err)
	return "Bearer " + token
}

func call(e *echo.Echo, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Data
}

func decodeErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

func TestReservationRoutesRequireAuth(t *testing.T) {
	e, _ := testServer(t)

	rec := call(e, http.MethodGet, "/api/flooring/inventory/reservations", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", decodeErrorCode(t, rec))
}

func TestCreateAndListReservations(t *testing.T) {
	e, db := testServer(t)
	tn := seedTenantWithModule(t, db, "acme-builders")
	seedFlooringItem(t, db, tn.ID, "OAK-20", 100)
	token := clientToken(t, tn)

	rec := call(e, http.MethodPost, "/api/flooring/inventory/reservations", token,
		`{"productId":1,"quantity":40,"quoteNumber":"QUO-2026-0001"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	created := decodeData(t, rec)
	assert.Equal(t, "active", created["status"])
	assert.Equal(t, float64(40), created["quantity"])
	assert.NotEmpty(t, created["reference"])

	rec = call(e, http.MethodGet, "/api/flooring/inventory/reservations", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeData(t, rec)
	reservations, ok := data["reservations"].([]any)
	require.True(t, ok)
	assert.Len(t, reservations, 1)

	stats, ok := data["stats"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), stats["active"])
	assert.Equal(t, float64(40), stats["total_reserved_qty"])

	byProduct, ok := data["byProduct"].([]any)
	require.True(t, ok)
	require.Len(t, byProduct, 1)
	rollup := byProduct[0].(map[string]any)
	assert.Equal(t, "OAK-20", rollup["sku"])

	// The hold is visible on the item itself
	rec = call(e, http.MethodGet, "/api/flooring/inventory/1", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	itemData := decodeData(t, rec)
	assert.Equal(t, float64(60), itemData["available"])
}

func TestCreateReservationInsufficientStock(t *testing.T) {
	e, db := testServer(t)
	tn := seedTenantWithModule(t, db, "acme-builders")
	seedFlooringItem(t, db, tn.ID, "OAK-20", 10)
	token := clientToken(t, tn)

	rec := call(e, http.MethodPost, "/api/flooring/inventory/reservations", token,
		`{"productId":1,"quantity":11}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "INSUFFICIENT_STOCK", decodeErrorCode(t, rec))
}

func TestReleaseActionIsIdempotent(t *testing.T) {
	e, db := testServer(t)
	tn := seedTenantWithModule(t, db, "acme-builders")
	seedFlooringItem(t, db, tn.ID, "OAK-20", 100)
	token := clientToken(t, tn)

	rec := call(e, http.MethodPost, "/api/flooring/inventory/reservations", token,
		`{"productId":1,"quantity":30}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	body := `{"id":1,"action":"release","reason":"customer cancelled"}`
	rec = call(e, http.MethodPut, "/api/flooring/inventory/reservations", token, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "released", decodeData(t, rec)["status"])

	// A repeated release succeeds and changes nothing
	rec = call(e, http.MethodPut, "/api/flooring/inventory/reservations", token, body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "released", decodeData(t, rec)["status"])

	var item model.InventoryItem
	require.NoError(t, db.First(&item, 1).Error)
	assert.Equal(t, 0, item.ReservedQuantity)
}

func TestCommitActionConsumesStock(t *testing.T) {
	e, db := testServer(t)
	tn := seedTenantWithModule(t, db, "acme-builders")
	seedFlooringItem(t, db, tn.ID, "OAK-20", 100)
	token := clientToken(t, tn)

	rec := call(e, http.MethodPost, "/api/flooring/inventory/reservations", token,
		`{"productId":1,"quantity":25}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = call(e, http.MethodPut, "/api/flooring/inventory/reservations", token,
		`{"id":1,"action":"commit"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "committed", decodeData(t, rec)["status"])

	var item model.InventoryItem
	require.NoError(t, db.First(&item, 1).Error)
	assert.Equal(t, 75, item.Quantity)
	assert.Equal(t, 0, item.ReservedQuantity)

	// Terminal state: a later release is refused
	rec = call(e, http.MethodPut, "/api/flooring/inventory/reservations", token,
		`{"id":1,"action":"release"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "ALREADY_TERMINAL", decodeErrorCode(t, rec))
}

func TestReserveActionOnInventoryEndpoint(t *testing.T) {
	e, db := testServer(t)
	tn := seedTenantWithModule(t, db, "acme-builders")
	seedFlooringItem(t, db, tn.ID, "OAK-20", 10)
	token := clientToken(t, tn)

	// The inventory endpoint applies the same availability rule as the
	// reservations endpoint
	rec := call(e, http.MethodPut, "/api/flooring/inventory/1", token,
		`{"action":"reserve","reserve_qty":8}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = call(e, http.MethodPut, "/api/flooring/inventory/1", token,
		`{"action":"reserve","reserve_qty":3}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "INSUFFICIENT_STOCK", decodeErrorCode(t, rec))

	var item model.InventoryItem
	require.NoError(t, db.First(&item, 1).Error)
	assert.Equal(t, 8, item.ReservedQuantity)
}

func TestSweepAction(t *testing.T) {
	e, db := testServer(t)
	tn := seedTenantWithModule(t, db, "acme-builders")
	seedFlooringItem(t, db, tn.ID, "OAK-20", 100)
	token := clientToken(t, tn)

	rec := call(e, http.MethodPost, "/api/flooring/inventory/reservations", token,
		`{"productId":1,"quantity":40}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Force the hold past its expiry
	require.NoError(t, db.Model(&model.Reservation{}).Where("id = ?", 1).
		Update("expires_at", time.Now().Add(-time.Hour)).Error)

	// Lapsed holds disappear from the default listing
	rec = call(e, http.MethodGet, "/api/flooring/inventory/reservations", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeData(t, rec)
	assert.Nil(t, data["reservations"])

	rec = call(e, http.MethodPut, "/api/flooring/inventory/reservations", token,
		`{"action":"sweep"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decodeData(t, rec)["released"])

	var item model.InventoryItem
	require.NoError(t, db.First(&item, 1).Error)
	assert.Equal(t, 0, item.ReservedQuantity)

	// The swept record stays hidden from the default listing and only
	// shows up when expired holds are asked for
	rec = call(e, http.MethodGet, "/api/flooring/inventory/reservations", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decodeData(t, rec)["reservations"])

	rec = call(e, http.MethodGet, "/api/flooring/inventory/reservations?includeExpired=true", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	reservations := decodeData(t, rec)["reservations"].([]any)
	require.Len(t, reservations, 1)
	assert.Equal(t, "expired", reservations[0].(map[string]any)["status"])
}

func TestReservationsAreTenantIsolated(t *testing.T) {
	e, db := testServer(t)
	acme := seedTenantWithModule(t, db, "acme-builders")
	bolt := seedTenantWithModule(t, db, "bolt-interiors")
	seedFlooringItem(t, db, acme.ID, "OAK-20", 100)

	acmeToken := clientToken(t, acme)
	boltToken := clientToken(t, bolt)

	rec := call(e, http.MethodPost, "/api/flooring/inventory/reservations", acmeToken,
		`{"productId":1,"quantity":40}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	// The other tenant sees nothing
	rec = call(e, http.MethodGet, "/api/flooring/inventory/reservations", boltToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeData(t, rec)
	assert.Nil(t, data["reservations"])

	// And cannot act on the reservation by id
	rec = call(e, http.MethodPut, "/api/flooring/inventory/reservations", boltToken,
		`{"id":1,"action":"release"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeErrorCode(t, rec))

	// Nor reserve against the other tenant's item
	rec = call(e, http.MethodPost, "/api/flooring/inventory/reservations", boltToken,
		`{"productId":1,"quantity":1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestModuleGateOnReservationRoutes(t *testing.T) {
	e, db := testServer(t)
	tn := model.Tenant{Name: "No Modules", Slug: "no-modules", Status: model.TenantStatusActive}
	require.NoError(t, db.Create(&tn).Error)
	token := clientToken(t, &tn)

	rec := call(e, http.MethodGet, "/api/flooring/inventory/reservations", token, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "MODULE_DISABLED", decodeErrorCode(t, rec))
}

func TestSuperAdminAddressesTenantByIdentifier(t *testing.T) {
	e, db := testServer(t)
	tn := seedTenantWithModule(t, db, "acme-builders")
	seedFlooringItem(t, db, tn.ID, "OAK-20", 100)

	rec := call(e, http.MethodPost, "/api/flooring/inventory/reservations", clientToken(t, tn),
		`{"productId":1,"quantity":40}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	adminToken, err := jwtutil.GenerateToken("root@example.com", 99, jwtutil.RoleSuperAdmin, nil, "")
	require.NoError(t, err)

	// Super admins carry no tenant of their own; client routes refuse them
	rec = call(e, http.MethodGet, "/api/flooring/inventory/reservations", "Bearer "+adminToken, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// The oversight route resolves the partition from ?tenant=, by slug or id
	for _, identifier := range []string{"acme-builders", "1"} {
		rec = call(e, http.MethodGet, "/api/admin/reservations?tenant="+identifier, "Bearer "+adminToken, "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		data := decodeData(t, rec)
		assert.Len(t, data["reservations"].([]any), 1, "identifier %q", identifier)
	}

	// An unknown identifier resolves to the empty partition: empty
	// results, not an error
	rec = call(e, http.MethodGet, "/api/admin/reservations?tenant=no-such-tenant", "Bearer "+adminToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decodeData(t, rec)["reservations"])

	// A client admin cannot reach the oversight route at all
	rec = call(e, http.MethodGet, "/api/admin/reservations?tenant=acme-builders", clientToken(t, tn), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
