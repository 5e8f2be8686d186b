package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/retail-ledger-api/internal/application/ports"
)

var _ ports.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción (Read Committed), ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Si el contexto vence a mitad de camino el Rollback diferido descarta todo.
func (r *TxRunner) Run(ctx context.Context, fn func(repos ports.Repos) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// NewRepos construye todos los repositorios sobre q (pool para lecturas, tx dentro de Run).
func NewRepos(q Querier) ports.Repos {
	return ports.Repos{
		Stock:     NewStockRepository(q),
		Movements: NewMovementRepository(q),
		Stores:    NewStoreRepository(q),
		Variants:  NewVariantRepository(q),
		Prices:    NewPriceRepository(q),
		Shifts:    NewShiftRepository(q),
		Invoices:  NewInvoiceRepository(q),
		Purchases: NewPurchaseRepository(q),
		Transfers: NewTransferRepository(q),
		Returns:   NewReturnRepository(q),
	}
}
