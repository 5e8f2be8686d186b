package http

import (
	"github.com/jhoicas/retail-ledger-api/internal/application/checkout"
	"github.com/jhoicas/retail-ledger-api/internal/application/dto"
	"github.com/jhoicas/retail-ledger-api/internal/application/purchasing"
	"github.com/jhoicas/retail-ledger-api/internal/application/returns"
	"github.com/jhoicas/retail-ledger-api/internal/application/transfer"
	"github.com/jhoicas/retail-ledger-api/internal/domain/entity"
)

func toPositionResponse(p *entity.StockPosition) dto.PositionResponse {
	return dto.PositionResponse{
		StoreID:   p.StoreID,
		VariantID: p.VariantID,
		Quantity:  p.Quantity,
		Reserved:  p.Reserved,
		Available: p.Available(),
		LastCost:  p.LastCost,
		AvgCost:   p.AvgCost,
		UpdatedAt: p.UpdatedAt,
	}
}

func toMovementResponses(ms []*entity.StockMovement) []dto.MovementResponse {
	out := make([]dto.MovementResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, dto.MovementResponse{
			ID:           m.ID,
			StoreID:      m.StoreID,
			VariantID:    m.VariantID,
			Change:       m.Change,
			MovementType: m.MovementType,
			ReferenceID:  m.ReferenceID,
			Reason:       m.Reason,
			ActorID:      m.ActorID,
			UnitCost:     m.UnitCost,
			CreatedAt:    m.CreatedAt,
		})
	}
	return out
}

func toInvoiceResponse(inv *entity.Invoice, items []*entity.InvoiceItem) dto.InvoiceResponse {
	out := dto.InvoiceResponse{
		ID:            inv.ID,
		StoreID:       inv.StoreID,
		CashierID:     inv.CashierID,
		ShiftID:       inv.ShiftID,
		CustomerID:    inv.CustomerID,
		PaymentMethod: inv.PaymentMethod,
		Status:        inv.Status,
		Subtotal:      inv.Subtotal,
		TaxTotal:      inv.TaxTotal,
		Discount:      inv.Discount,
		Total:         inv.Total,
		CreatedAt:     inv.CreatedAt,
		CompletedAt:   inv.CompletedAt,
	}
	for _, it := range items {
		out.Items = append(out.Items, dto.InvoiceItemResponse{
			ID:        it.ID,
			VariantID: it.VariantID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			UnitCost:  it.UnitCost,
			LineTotal: it.LineTotal,
		})
	}
	return out
}

func toCheckoutResponse(res *checkout.Result) dto.InvoiceResponse {
	return toInvoiceResponse(res.Invoice, res.Items)
}

func toReturnResponse(res *returns.Result) dto.ReturnResponse {
	r := res.Return
	out := dto.ReturnResponse{
		ID:           r.ID,
		InvoiceID:    r.InvoiceID,
		StoreID:      r.StoreID,
		RefundMethod: r.RefundMethod,
		Restock:      r.Restock,
		TotalRefund:  r.TotalRefund,
		Status:       r.Status,
		Reason:       r.Reason,
		CreatedBy:    r.CreatedBy,
		ApprovedBy:   r.ApprovedBy,
		CashRecorded: res.CashMovement != nil,
		CreatedAt:    r.CreatedAt,
		Items:        make([]dto.ReturnItemResponse, 0, len(res.Items)),
	}
	for _, it := range res.Items {
		out.Items = append(out.Items, dto.ReturnItemResponse{
			ID:            it.ID,
			InvoiceItemID: it.InvoiceItemID,
			VariantID:     it.VariantID,
			Quantity:      it.Quantity,
			UnitPrice:     it.UnitPrice,
			RefundAmount:  it.RefundAmount,
		})
	}
	return out
}

func toOrderResponse(o *entity.PurchaseOrder, items []*entity.PurchaseItem, receipts []*entity.Receipt) dto.PurchaseOrderResponse {
	out := dto.PurchaseOrderResponse{
		ID:         o.ID,
		StoreID:    o.StoreID,
		SupplierID: o.SupplierID,
		Status:     o.Status,
		Total:      o.Total,
		Notes:      o.Notes,
		CreatedAt:  o.CreatedAt,
	}
	for _, it := range items {
		out.Items = append(out.Items, dto.PurchaseItemResponse{
			ID:               it.ID,
			VariantID:        it.VariantID,
			Quantity:         it.Quantity,
			ReceivedQuantity: it.ReceivedQuantity,
			UnitCost:         it.UnitCost,
			OrderedUnitCost:  it.OrderedUnitCost,
		})
	}
	for _, rc := range receipts {
		out.Receipts = append(out.Receipts, toReceiptResponse(rc, nil))
	}
	return out
}

func toOrderViewResponse(v *purchasing.OrderView) dto.PurchaseOrderResponse {
	return toOrderResponse(v.Order, v.Items, v.Receipts)
}

func toReceiptResponse(rc *entity.Receipt, items []*entity.ReceiptItem) dto.ReceiptResponse {
	out := dto.ReceiptResponse{
		ID:            rc.ID,
		OrderID:       rc.OrderID,
		ReceiptNumber: rc.ReceiptNumber,
		Total:         rc.Total,
		ReceivedBy:    rc.ReceivedBy,
		ReceivedAt:    rc.ReceivedAt,
	}
	for _, it := range items {
		out.Items = append(out.Items, dto.ReceiptItemResponse{
			ID:             it.ID,
			PurchaseItemID: it.PurchaseItemID,
			VariantID:      it.VariantID,
			LotID:          it.LotID,
			Quantity:       it.Quantity,
			UnitCost:       it.UnitCost,
			LineTotal:      it.LineTotal,
		})
	}
	return out
}

func toReceiveResponse(res *purchasing.ReceiveResult) dto.ReceiveResponse {
	return dto.ReceiveResponse{
		Order:    toOrderResponse(res.Order, nil, nil),
		Receipt:  toReceiptResponse(res.Receipt, res.Items),
		Replayed: res.Replayed,
	}
}

func toLotResponses(lots []*entity.StockLot) []dto.LotResponse {
	out := make([]dto.LotResponse, 0, len(lots))
	for _, l := range lots {
		out = append(out, dto.LotResponse{
			ID:        l.ID,
			StoreID:   l.StoreID,
			VariantID: l.VariantID,
			ReceiptID: l.ReceiptID,
			LotNumber: l.LotNumber,
			ExpiresAt: l.ExpiresAt,
			Quantity:  l.Quantity,
			UnitCost:  l.UnitCost,
			CreatedAt: l.CreatedAt,
		})
	}
	return out
}

func toTransferResponse(t *entity.Transfer, items []*entity.TransferItem) dto.TransferResponse {
	out := dto.TransferResponse{
		ID:           t.ID,
		FromStoreID:  t.FromStoreID,
		ToStoreID:    t.ToStoreID,
		Status:       t.Status,
		Notes:        t.Notes,
		CreatedBy:    t.CreatedBy,
		CreatedAt:    t.CreatedAt,
		DispatchedAt: t.DispatchedAt,
		CompletedAt:  t.CompletedAt,
		CancelledAt:  t.CancelledAt,
	}
	for _, it := range items {
		out.Items = append(out.Items, dto.TransferItemResponse{
			ID:               it.ID,
			VariantID:        it.VariantID,
			Quantity:         it.Quantity,
			ReceivedQuantity: it.ReceivedQuantity,
		})
	}
	return out
}

func toTransferViewResponse(v *transfer.View) dto.TransferResponse {
	return toTransferResponse(v.Transfer, v.Items)
}

func toPriceWindowResponse(p *entity.VariantPrice) dto.PriceWindowResponse {
	return dto.PriceWindowResponse{
		ID:        p.ID,
		StoreID:   p.StoreID,
		VariantID: p.VariantID,
		Price:     p.Price,
		StartAt:   p.StartAt,
		EndAt:     p.EndAt,
	}
}

func toShiftResponse(sh *entity.Shift, movements []*entity.CashMovement) dto.ShiftResponse {
	out := dto.ShiftResponse{
		ID:           sh.ID,
		StoreID:      sh.StoreID,
		CashierID:    sh.CashierID,
		OpeningCash:  sh.OpeningCash,
		ExpectedCash: sh.ExpectedCash,
		DeclaredCash: sh.DeclaredCash,
		Difference:   sh.Difference,
		Status:       sh.Status,
		OpenedAt:     sh.OpenedAt,
		ClosedAt:     sh.ClosedAt,
	}
	for _, m := range movements {
		out.CashMovements = append(out.CashMovements, dto.CashMovementResponse{
			ID:          m.ID,
			Type:        m.Type,
			Amount:      m.Amount,
			ReferenceID: m.ReferenceID,
			CreatedAt:   m.CreatedAt,
		})
	}
	return out
}
