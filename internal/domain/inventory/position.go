package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger-api/internal/domain"
	"github.com/jhoicas/retail-ledger-api/internal/domain/entity"
)

// Reglas de mutación de una StockPosition. No tocan persistencia: el ledger bloquea la fila,
// aplica una de estas funciones y persiste el resultado.

func requirePositive(p *entity.StockPosition, qty decimal.Decimal) error {
	if !qty.GreaterThan(decimal.Zero) {
		return domain.NewLineError(domain.ErrValidation, -1, p.VariantID, "la cantidad debe ser mayor que cero")
	}
	return nil
}

// CheckAvailable falla con ErrInsufficientStock si Quantity - Reserved < qty.
func CheckAvailable(p *entity.StockPosition, qty decimal.Decimal) error {
	if p.Available().LessThan(qty) {
		return insufficient(p, qty)
	}
	return nil
}

// Decrease resta qty de la existencia tras revalidar disponibilidad.
func Decrease(p *entity.StockPosition, qty decimal.Decimal) error {
	if err := requirePositive(p, qty); err != nil {
		return err
	}
	if err := CheckAvailable(p, qty); err != nil {
		return err
	}
	p.Quantity = p.Quantity.Sub(qty)
	return nil
}

// Increase suma qty a la existencia. Si cost no es nil sobrescribe LastCost y recalcula AvgCost.
func Increase(p *entity.StockPosition, qty decimal.Decimal, cost *decimal.Decimal) error {
	if err := requirePositive(p, qty); err != nil {
		return err
	}
	if cost != nil {
		if cost.LessThan(decimal.Zero) {
			return domain.NewLineError(domain.ErrValidation, -1, p.VariantID, "el costo no puede ser negativo")
		}
		p.AvgCost = CostCalculator(p.Quantity, p.AvgCost, qty, *cost)
		p.LastCost = *cost
	}
	p.Quantity = p.Quantity.Add(qty)
	return nil
}

// Reserve aparta qty sin mover existencia. Falla si Reserved superaría Quantity.
func Reserve(p *entity.StockPosition, qty decimal.Decimal) error {
	if err := requirePositive(p, qty); err != nil {
		return err
	}
	if err := CheckAvailable(p, qty); err != nil {
		return err
	}
	p.Reserved = p.Reserved.Add(qty)
	return nil
}

// Release libera qty de lo apartado.
func Release(p *entity.StockPosition, qty decimal.Decimal) error {
	if err := requirePositive(p, qty); err != nil {
		return err
	}
	if p.Reserved.LessThan(qty) {
		return domain.NewLineError(domain.ErrValidation, -1, p.VariantID,
			fmt.Sprintf("se intenta liberar %s pero solo hay %s apartado", qty, p.Reserved))
	}
	p.Reserved = p.Reserved.Sub(qty)
	return nil
}

// CheckInvariant verifica 0 <= Reserved <= Quantity.
func CheckInvariant(p *entity.StockPosition) error {
	if p.Quantity.LessThan(decimal.Zero) || p.Reserved.LessThan(decimal.Zero) || p.Reserved.GreaterThan(p.Quantity) {
		return fmt.Errorf("invariante de stock violada en %s/%s: quantity=%s reserved=%s",
			p.StoreID, p.VariantID, p.Quantity, p.Reserved)
	}
	return nil
}

func insufficient(p *entity.StockPosition, qty decimal.Decimal) error {
	return domain.NewLineError(domain.ErrInsufficientStock, -1, p.VariantID,
		fmt.Sprintf("disponible %s, solicitado %s", p.Available(), qty))
}
