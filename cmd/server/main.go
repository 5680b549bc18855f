package main

import (
	"buildcrm/internal/handler"
	"buildcrm/internal/inventory"
	"buildcrm/internal/middleware"
	"buildcrm/internal/model"
	"buildcrm/internal/notify"
	"buildcrm/pkg/config"
	"buildcrm/pkg/database"
	"buildcrm/pkg/jwtutil"
	"buildcrm/pkg/logger"
	"buildcrm/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting BuildCRM...", cfg.LogFields()...)

	// Initialize database
	if _, err := database.InitDB(&cfg.DB); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	if err := database.MigrateModels(
		&model.Tenant{},
		&model.Plan{},
		&model.User{},
		&model.Lead{},
		&model.Contact{},
		&model.Project{},
		&model.ProjectMember{},
		&model.Task{},
		&model.Quotation{},
		&model.QuotationItem{},
		&model.Invoice{},
		&model.InvoiceItem{},
		&model.WorkOrder{},
		&model.PurchaseOrder{},
		&model.InventoryItem{},
		&model.Reservation{},
		&model.SequenceCounter{},
	); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize JWT utility
	jwtutil.Initialize(&cfg.JWT)

	// Initialize notification client
	notify.Initialize(&cfg.Notify)

	// Apply inventory reservation settings
	inventory.Initialize(&cfg.Inventory)

	// Initialize Prometheus metrics
	prometheus.InitMetrics()

	// Initialize Echo framework
	e := echo.New()
	e.HideBanner = true

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", prometheus.Handler())

	// Authentication routes
	auth := e.Group("/auth")
	auth.POST("/register", handler.Register)
	auth.POST("/login", handler.Login)

	// API routes - all require authentication
	api := e.Group("/api")
	api.Use(middleware.RequireAuth)

	// Platform administration - super admin only
	admin := api.Group("/admin")
	admin.Use(middleware.RequireSuperAdmin)
	admin.GET("/tenants", handler.ListTenants)
	admin.POST("/tenants", handler.CreateTenant)
	admin.GET("/tenants/:id", handler.GetTenant)
	admin.PATCH("/tenants/:id", handler.UpdateTenant)
	admin.GET("/plans", handler.ListPlans)
	admin.POST("/plans", handler.CreatePlan)
	admin.DELETE("/plans/:id", handler.DeletePlan)

	// Cross-tenant oversight: super admins address a tenant partition
	// with ?tenant=<slug or id>
	admin.GET("/reservations", handler.ListReservations)

	// Tenant-scoped resources - require a tenant-bound token
	client := api.Group("")
	client.Use(middleware.RequireClientAccess)

	leads := client.Group("/leads")
	leads.GET("", handler.ListLeads)
	leads.POST("", handler.CreateLead)
	leads.GET("/:id", handler.GetLead)
	leads.PUT("/:id", handler.UpdateLead)
	leads.DELETE("/:id", handler.DeleteLead)

	contacts := client.Group("/contacts")
	contacts.GET("", handler.ListContacts)
	contacts.POST("", handler.CreateContact)
	contacts.GET("/:id", handler.GetContact)
	contacts.PUT("/:id", handler.UpdateContact)
	contacts.DELETE("/:id", handler.DeleteContact)

	projects := client.Group("/projects")
	projects.GET("", handler.ListProjects)
	projects.POST("", handler.CreateProject)
	projects.GET("/:id", handler.GetProject)
	projects.PUT("/:id", handler.UpdateProject)
	projects.DELETE("/:id", handler.DeleteProject)
	projects.POST("/:id/members", handler.AddProjectMember)

	tasks := client.Group("/tasks")
	tasks.GET("", handler.ListTasks)
	tasks.POST("", handler.CreateTask)
	tasks.PUT("/:id", handler.UpdateTask)
	tasks.DELETE("/:id", handler.DeleteTask)

	quotations := client.Group("/quotations")
	quotations.GET("", handler.ListQuotations)
	quotations.POST("", handler.CreateQuotation)
	quotations.GET("/:id", handler.GetQuotation)
	quotations.PUT("/:id", handler.UpdateQuotation)

	invoices := client.Group("/invoices")
	invoices.GET("", handler.ListInvoices)
	invoices.POST("", handler.CreateInvoice)
	invoices.GET("/:id", handler.GetInvoice)
	invoices.PUT("/:id", handler.UpdateInvoice)

	workOrders := client.Group("/work-orders")
	workOrders.GET("", handler.ListWorkOrders)
	workOrders.POST("", handler.CreateWorkOrder)
	workOrders.PUT("/:id", handler.UpdateWorkOrder)
	workOrders.DELETE("/:id", handler.DeleteWorkOrder)

	purchaseOrders := client.Group("/purchase-orders")
	purchaseOrders.GET("", handler.ListPurchaseOrders)
	purchaseOrders.POST("", handler.CreatePurchaseOrder)
	purchaseOrders.PUT("/:id", handler.UpdatePurchaseOrder)

	// Vertical module groups. Both expose the same inventory and
	// reservation endpoints backed by one service, so the availability
	// rule is identical regardless of entry point.
	for _, moduleName := range []string{model.ModuleFlooring, model.ModuleDoorsWindows} {
		group := client.Group("/" + moduleName)
		group.Use(middleware.RequireModule(moduleName))

		group.GET("/inventory", handler.ListInventoryItems)
		group.POST("/inventory", handler.CreateInventoryItem)
		group.GET("/inventory/:id", handler.GetInventoryItem)
		group.PUT("/inventory/:id", handler.UpdateInventoryItem)
		group.DELETE("/inventory/:id", handler.DeleteInventoryItem)

		group.GET("/inventory/reservations", handler.ListReservations)
		group.POST("/inventory/reservations", handler.CreateReservation)
		group.PUT("/inventory/reservations", handler.UpdateReservation)
	}

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
