package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger-api/internal/application/dto"
	"github.com/jhoicas/retail-ledger-api/internal/domain"
	"github.com/jhoicas/retail-ledger-api/internal/domain/entity"
	"github.com/jhoicas/retail-ledger-api/internal/domain/repository"
)

// VariantUseCase casos de uso para variantes. El stock se maneja vía el ledger, nunca aquí.
type VariantUseCase struct {
	repo repository.VariantRepository
}

// NewVariantUseCase construye el caso de uso.
func NewVariantUseCase(repo repository.VariantRepository) *VariantUseCase {
	return &VariantUseCase{repo: repo}
}

// Create crea una variante activa. El SKU es único.
func (uc *VariantUseCase) Create(ctx context.Context, in dto.CreateVariantRequest) (*dto.VariantResponse, error) {
	sku := strings.TrimSpace(in.SKU)
	if sku == "" || strings.TrimSpace(in.Name) == "" {
		return nil, domain.Invalid("sku y nombre son obligatorios")
	}
	if in.BasePrice.LessThan(decimal.Zero) {
		return nil, domain.Invalid("el precio base no puede ser negativo")
	}
	now := time.Now()
	v := &entity.Variant{
		ID:        uuid.New().String(),
		SKU:       sku,
		Name:      in.Name,
		BasePrice: in.BasePrice,
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, v); err != nil {
		return nil, err
	}
	return toVariantResponse(v), nil
}

// GetByID obtiene una variante por ID.
func (uc *VariantUseCase) GetByID(ctx context.Context, id string) (*dto.VariantResponse, error) {
	v, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, domain.ErrNotFound
	}
	return toVariantResponse(v), nil
}

// List lista variantes con paginación.
func (uc *VariantUseCase) List(ctx context.Context, limit, offset int) (*dto.VariantListResponse, error) {
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.VariantResponse, 0, len(list))
	for _, v := range list {
		items = append(items, *toVariantResponse(v))
	}
	return &dto.VariantListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func toVariantResponse(v *entity.Variant) *dto.VariantResponse {
	if v == nil {
		return nil
	}
	return &dto.VariantResponse{
		ID:        v.ID,
		SKU:       v.SKU,
		Name:      v.Name,
		BasePrice: v.BasePrice,
		Status:    v.Status,
		CreatedAt: v.CreatedAt,
	}
}
