package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/retail-ledger-api/internal/application/auth"
	"github.com/jhoicas/retail-ledger-api/internal/application/catalog"
	"github.com/jhoicas/retail-ledger-api/internal/application/checkout"
	"github.com/jhoicas/retail-ledger-api/internal/application/ledger"
	"github.com/jhoicas/retail-ledger-api/internal/application/pricing"
	"github.com/jhoicas/retail-ledger-api/internal/application/purchasing"
	"github.com/jhoicas/retail-ledger-api/internal/application/returns"
	"github.com/jhoicas/retail-ledger-api/internal/application/shift"
	"github.com/jhoicas/retail-ledger-api/internal/application/transfer"
	"github.com/jhoicas/retail-ledger-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC    *auth.AuthUseCase
	StoreUC   *catalog.StoreUseCase
	VariantUC *catalog.VariantUseCase
	Ledger    *ledger.Service
	Prices    *pricing.Resolver
	Shifts    *shift.Service
	Checkout  *checkout.Engine
	Receipts  *checkout.ReceiptUseCase
	Returns   *returns.Engine
	Purchases *purchasing.Engine
	Transfers *transfer.Engine
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	requireAuth := AuthMiddleware(deps.JWTSecret)

	managers := RequireRole(entity.RoleAdmin, entity.RoleManager, entity.RoleStoreManager)
	stockRoles := RequireRole(entity.RoleAdmin, entity.RoleManager, entity.RoleStoreManager, entity.RoleStockClerk)

	// Auth: login público; alta de usuarios solo admin
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/users", requireAuth, RequireRole(entity.RoleAdmin), authHandler.Register)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", requireAuth)

	catalogHandler := NewCatalogHandler(deps.StoreUC, deps.VariantUC)
	protected.Post("/stores", RequireRole(entity.RoleAdmin), catalogHandler.CreateStore)
	protected.Get("/stores", catalogHandler.ListStores)
	protected.Post("/variants", RequireRole(entity.RoleAdmin, entity.RoleManager), catalogHandler.CreateVariant)
	protected.Get("/variants", catalogHandler.ListVariants)
	protected.Get("/variants/:id", catalogHandler.GetVariant)

	stockHandler := NewStockHandler(deps.Ledger)
	stock := protected.Group("/stock")
	stock.Get("/", stockHandler.ListPositions)
	stock.Get("/:variantId", stockHandler.GetPosition)
	stock.Post("/:variantId/ensure", stockRoles, stockHandler.EnsurePosition)
	stock.Get("/:variantId/movements", stockHandler.ListMovements)
	stock.Get("/:variantId/reconcile", stockHandler.Reconcile)
	stock.Get("/:variantId/available", stockHandler.CheckAvailable)
	protected.Get("/movements", stockHandler.ListByReference)

	priceHandler := NewPriceHandler(deps.Prices)
	prices := protected.Group("/prices")
	prices.Post("/", managers, priceHandler.Open)
	prices.Post("/close", managers, priceHandler.Close)
	prices.Get("/:variantId", priceHandler.List)
	prices.Get("/:variantId/effective", priceHandler.Effective)

	shiftHandler := NewShiftHandler(deps.Shifts)
	shifts := protected.Group("/shifts")
	shifts.Post("/open", shiftHandler.Open)
	shifts.Get("/active", shiftHandler.Active)
	shifts.Post("/:id/close", shiftHandler.Close)

	saleHandler := NewSaleHandler(deps.Checkout, deps.Receipts)
	protected.Post("/checkout", saleHandler.Checkout)
	held := protected.Group("/held-carts")
	held.Post("/", saleHandler.Hold)
	held.Get("/", saleHandler.ListHeld)
	held.Post("/:id/resume", saleHandler.Resume)
	held.Post("/:id/cancel", saleHandler.CancelHeld)

	returnHandler := NewReturnHandler(deps.Returns)
	invoices := protected.Group("/invoices")
	invoices.Get("/:id", saleHandler.GetInvoice)
	invoices.Get("/:id/receipt.pdf", saleHandler.ReceiptPDF)
	invoices.Get("/:id/returns", returnHandler.ListByInvoice)
	invoices.Post("/:id/refund", returnHandler.Refund)
	protected.Post("/returns", returnHandler.Create)

	purchaseHandler := NewPurchaseHandler(deps.Purchases)
	po := protected.Group("/purchase-orders", stockRoles)
	po.Post("/", purchaseHandler.Create)
	po.Get("/:id", purchaseHandler.Get)
	po.Post("/:id/submit", purchaseHandler.Submit)
	po.Post("/:id/approve", managers, purchaseHandler.Approve)
	po.Post("/:id/cancel", managers, purchaseHandler.Cancel)
	po.Post("/:id/receive", purchaseHandler.Receive)
	protected.Get("/lots/:variantId", purchaseHandler.ListLots)

	transferHandler := NewTransferHandler(deps.Transfers)
	transfers := protected.Group("/transfers")
	transfers.Post("/", stockRoles, transferHandler.Create)
	transfers.Get("/", transferHandler.List)
	transfers.Get("/:id", transferHandler.Get)
	transfers.Post("/:id/dispatch", stockRoles, transferHandler.Dispatch)
	transfers.Post("/:id/receive", stockRoles, transferHandler.Receive)
	transfers.Post("/:id/cancel", stockRoles, transferHandler.Cancel)
}
