package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/farmaplus/farmacia-api/internal/application/auth"
	"github.com/farmaplus/farmacia-api/internal/application/catalog"
	"github.com/farmaplus/farmacia-api/internal/application/ledger"
	"github.com/farmaplus/farmacia-api/internal/application/pos"
	"github.com/farmaplus/farmacia-api/internal/application/reception"
	"github.com/farmaplus/farmacia-api/internal/application/writeoff"
	"github.com/farmaplus/farmacia-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	ProductUC   *catalog.ProductUseCase
	SupplierUC  *catalog.SupplierUseCase
	SaleUC      *pos.SaleUseCase
	ReceptionUC *reception.ReceptionUseCase
	WriteOffUC  *writeoff.BajaUseCase
	ReportUC    *ledger.ReportUseCase
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Catálogo de productos (protegido; escritura solo admin/farmaceutico)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/", RequireRole(entity.RoleAdmin, entity.RoleFarmaceutico), productHandler.Create)
	products.Put("/:id", RequireRole(entity.RoleAdmin, entity.RoleFarmaceutico), productHandler.Update)

	// Proveedores (protegido)
	suppliers := protected.Group("/suppliers")
	supplierHandler := NewSupplierHandler(deps.SupplierUC)
	suppliers.Get("/", supplierHandler.List)
	suppliers.Post("/", RequireRole(entity.RoleAdmin, entity.RoleFarmaceutico), supplierHandler.Create)

	// Punto de venta (protegido; cualquier rol autenticado vende)
	sales := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.SaleUC)
	sales.Post("/", saleHandler.Create)
	sales.Get("/", saleHandler.List)
	sales.Get("/:id", saleHandler.GetByID)
	sales.Post("/:id/cancel", RequireRole(entity.RoleAdmin, entity.RoleFarmaceutico), saleHandler.Cancel)

	// Recepciones (protegido; las capacidades exactas las valida el caso de uso)
	receptions := protected.Group("/receptions")
	receptionHandler := NewReceptionHandler(deps.ReceptionUC)
	receptions.Post("/", receptionHandler.Submit)
	receptions.Get("/", receptionHandler.List)
	receptions.Get("/:id", receptionHandler.GetByID)
	receptions.Post("/:id/approve", receptionHandler.Approve)
	receptions.Post("/:id/reject", receptionHandler.Reject)

	// Bajas de inventario (protegido)
	writeoffs := protected.Group("/writeoffs")
	writeOffHandler := NewWriteOffHandler(deps.WriteOffUC)
	writeoffs.Post("/", writeOffHandler.Submit)
	writeoffs.Get("/", writeOffHandler.List)
	writeoffs.Get("/:id", writeOffHandler.GetByID)
	writeoffs.Post("/:id/approve", writeOffHandler.Approve)
	writeoffs.Post("/:id/reject", writeOffHandler.Reject)

	// Reportes (protegido)
	reports := protected.Group("/reports")
	reportHandler := NewReportHandler(deps.ReportUC)
	reports.Get("/expiring-lots", reportHandler.ExpiringLots)
	reports.Get("/low-stock", reportHandler.LowStock)
}
