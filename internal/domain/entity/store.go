package entity

import "time"

// Store representa una tienda (sucursal) con su propio stock.
type Store struct {
	ID        string
	Code      string // código único
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
