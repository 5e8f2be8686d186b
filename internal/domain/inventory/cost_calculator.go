package inventory

import "github.com/shopspring/decimal"

// CostCalculator implementa la lógica de costo promedio ponderado (servicio de dominio).
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
func CostCalculator(stockQty, currentCost, inQty, inCost decimal.Decimal) decimal.Decimal {
	if stockQty.LessThan(decimal.Zero) {
		stockQty = decimal.Zero
	}
	sum := stockQty.Add(inQty)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := stockQty.Mul(currentCost).Add(inQty.Mul(inCost))
	return num.Div(sum).Round(4)
}
