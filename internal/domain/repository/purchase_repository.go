package repository

import (
	"context"

	"github.com/jhoicas/retail-ledger-api/internal/domain/entity"
)

// PurchaseRepository define el puerto de persistencia para órdenes de compra, recepciones y lotes.
type PurchaseRepository interface {
	CreateOrder(ctx context.Context, order *entity.PurchaseOrder) error
	CreateItem(ctx context.Context, item *entity.PurchaseItem) error
	GetOrder(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	GetOrderForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	GetItems(ctx context.Context, orderID string) ([]*entity.PurchaseItem, error)
	UpdateOrder(ctx context.Context, order *entity.PurchaseOrder) error
	UpdateItem(ctx context.Context, item *entity.PurchaseItem) error

	// GetReceiptByNumber devuelve nil, nil si el número no existe.
	GetReceiptByNumber(ctx context.Context, receiptNumber string) (*entity.Receipt, error)
	// CreateReceipt devuelve domain.ErrDuplicate si el número ya existe.
	CreateReceipt(ctx context.Context, receipt *entity.Receipt) error
	CreateReceiptItem(ctx context.Context, item *entity.ReceiptItem) error
	GetReceiptItems(ctx context.Context, receiptID string) ([]*entity.ReceiptItem, error)
	ListReceipts(ctx context.Context, orderID string) ([]*entity.Receipt, error)

	CreateLot(ctx context.Context, lot *entity.StockLot) error
	ListLots(ctx context.Context, storeID, variantID string) ([]*entity.StockLot, error)
}
