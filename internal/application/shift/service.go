// Package shift administra los turnos de caja: apertura, cierre con arqueo y consulta del turno activo.
package shift

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger-api/internal/application/ports"
	"github.com/jhoicas/retail-ledger-api/internal/domain"
	"github.com/jhoicas/retail-ledger-api/internal/domain/entity"
	"github.com/jhoicas/retail-ledger-api/internal/domain/repository"
	"github.com/jhoicas/retail-ledger-api/pkg/logger"
)

// Service casos de uso de turnos.
type Service struct {
	tx     ports.TxRunner
	shifts repository.ShiftRepository
	log    *logger.Logger
	now    func() time.Time
}

// NewService construye el servicio. shifts es de lectura (pool).
func NewService(tx ports.TxRunner, shifts repository.ShiftRepository, log *logger.Logger) *Service {
	return &Service{tx: tx, shifts: shifts, log: log, now: time.Now}
}

// OpenInput entrada para abrir turno.
type OpenInput struct {
	StoreID     string
	CashierID   string
	OpeningCash decimal.Decimal
}

// Open abre un turno. Falla si la tienda ya tiene uno abierto.
func (s *Service) Open(ctx context.Context, in OpenInput) (*entity.Shift, error) {
	if in.StoreID == "" || in.CashierID == "" {
		return nil, domain.Invalid("tienda y cajero son obligatorios")
	}
	if in.OpeningCash.LessThan(decimal.Zero) {
		return nil, domain.Invalid("el efectivo inicial no puede ser negativo")
	}
	sh := &entity.Shift{
		ID:          uuid.New().String(),
		StoreID:     in.StoreID,
		CashierID:   in.CashierID,
		OpeningCash: in.OpeningCash,
		Status:      entity.ShiftStatusOpen,
		OpenedAt:    s.now(),
	}
	err := s.tx.Run(ctx, func(r ports.Repos) error {
		store, err := r.Stores.GetByID(ctx, in.StoreID)
		if err != nil {
			return err
		}
		if store == nil {
			return domain.Invalid("tienda inexistente")
		}
		open, err := r.Shifts.GetOpenByStore(ctx, in.StoreID)
		if err != nil {
			return err
		}
		if open != nil {
			return domain.Invalid("la tienda ya tiene un turno abierto")
		}
		if err := r.Shifts.Create(ctx, sh); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				return domain.Invalid("la tienda ya tiene un turno abierto")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("store_id", sh.StoreID).Str("shift_id", sh.ID).Msg("turno abierto")
	return sh, nil
}

// Close cierra el turno con el efectivo declarado y calcula esperado y diferencia.
func (s *Service) Close(ctx context.Context, shiftID string, declared decimal.Decimal) (*entity.Shift, error) {
	if declared.LessThan(decimal.Zero) {
		return nil, domain.Invalid("el efectivo declarado no puede ser negativo")
	}
	var out *entity.Shift
	err := s.tx.Run(ctx, func(r ports.Repos) error {
		sh, err := r.Shifts.GetForUpdate(ctx, shiftID)
		if err != nil {
			return err
		}
		if sh == nil {
			return domain.ErrNotFound
		}
		if sh.Status != entity.ShiftStatusOpen {
			return domain.Invalid("el turno ya está cerrado")
		}
		sum, err := r.Shifts.SumCashMovements(ctx, shiftID)
		if err != nil {
			return err
		}
		expected := sh.OpeningCash.Add(sum)
		diff := declared.Sub(expected)
		closedAt := s.now()
		sh.ExpectedCash = &expected
		sh.DeclaredCash = &declared
		sh.Difference = &diff
		sh.Status = entity.ShiftStatusClosed
		sh.ClosedAt = &closedAt
		if err := r.Shifts.Update(ctx, sh); err != nil {
			return err
		}
		out = sh
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("shift_id", out.ID).Str("difference", out.Difference.String()).Msg("turno cerrado")
	return out, nil
}

// Active devuelve el turno abierto de la tienda o ErrNotFound.
func (s *Service) Active(ctx context.Context, storeID string) (*entity.Shift, error) {
	sh, err := s.shifts.GetOpenByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if sh == nil {
		return nil, domain.ErrNotFound
	}
	return sh, nil
}

// HasOpenShift indica si la tienda tiene turno abierto.
func (s *Service) HasOpenShift(ctx context.Context, storeID string) (bool, error) {
	sh, err := s.shifts.GetOpenByStore(ctx, storeID)
	if err != nil {
		return false, err
	}
	return sh != nil, nil
}

// CashMovements lista los movimientos de caja de un turno.
func (s *Service) CashMovements(ctx context.Context, shiftID string) ([]*entity.CashMovement, error) {
	return s.shifts.ListCashMovements(ctx, shiftID)
}

// CashMovementInput movimiento de caja a registrar en el turno abierto.
type CashMovementInput struct {
	Type        string
	Amount      decimal.Decimal // con signo: las salidas son negativas
	ReferenceID string
	Reason      string
	ActorID     string
	At          time.Time
}

// RecordCashMovement registra el movimiento en el turno abierto de la tienda usando el repositorio
// de la transacción del llamador. Sin turno abierto no registra nada y devuelve nil.
func RecordCashMovement(ctx context.Context, shifts repository.ShiftRepository, storeID string, in CashMovementInput) (*entity.CashMovement, error) {
	sh, err := shifts.GetOpenByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if sh == nil {
		return nil, nil
	}
	at := in.At
	if at.IsZero() {
		at = time.Now()
	}
	cm := &entity.CashMovement{
		ID:          uuid.New().String(),
		ShiftID:     sh.ID,
		Type:        in.Type,
		Amount:      in.Amount,
		ReferenceID: in.ReferenceID,
		Reason:      in.Reason,
		CreatedBy:   in.ActorID,
		CreatedAt:   at,
	}
	if err := shifts.CreateCashMovement(ctx, cm); err != nil {
		return nil, err
	}
	return cm, nil
}
