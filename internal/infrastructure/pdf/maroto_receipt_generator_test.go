package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-ledger-api/internal/application/checkout"
	"github.com/jhoicas/retail-ledger-api/internal/domain/entity"
)

func TestFormatMoney(t *testing.T) {
	cases := map[string]string{
		"0":          "0",
		"950":        "950",
		"25000":      "25.000",
		"1000000.4":  "1.000.000",
		"-4000":      "-4.000",
		"1234567.50": "1.234.568",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatMoney(decimal.RequireFromString(in)), in)
	}
}

func TestRenderReceipt_ProducesPDF(t *testing.T) {
	method := entity.PaymentMethodCash
	now := time.Date(2026, 5, 2, 15, 30, 0, 0, time.UTC)
	inv := &entity.Invoice{
		ID:            "0b9c6a8e-5f43-4f15-9f0c-1f5e2a9d8c11",
		StoreID:       "s1",
		CashierID:     "cajero1",
		PaymentMethod: &method,
		Status:        entity.InvoiceStatusCompleted,
		Subtotal:      decimal.NewFromInt(4000),
		Total:         decimal.NewFromInt(4000),
		CreatedAt:     now,
		CompletedAt:   &now,
	}
	store := &entity.Store{ID: "s1", Code: "C01", Name: "Centro"}
	lines := []checkout.ReceiptLine{
		{SKU: "SKU-1", Name: "Camiseta M", Quantity: decimal.NewFromInt(4), UnitPrice: decimal.NewFromInt(1000), LineTotal: decimal.NewFromInt(4000)},
	}

	doc, err := NewMarotoReceiptGenerator().RenderReceipt(context.Background(), inv, store, lines)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))
}
