// Package catalog casos de uso CRUD de productos y proveedores. El stock y el
// costo por partida viven en los lotes; aquí solo se administra el catálogo.
package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/farmaplus/farmacia-api/internal/application/dto"
	"github.com/farmaplus/farmacia-api/internal/domain"
	"github.com/farmaplus/farmacia-api/internal/domain/entity"
	"github.com/farmaplus/farmacia-api/internal/domain/repository"
)

// ProductUseCase casos de uso de productos. StockTotal nunca se toca aquí:
// solo el ledger lo mueve.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// Create crea un producto con stock 0.
func (uc *ProductUseCase) Create(in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	sku := strings.ToUpper(strings.TrimSpace(in.SKU))
	name := strings.TrimSpace(in.Name)
	if sku == "" || name == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.PurchasePrice.LessThan(decimal.Zero) || in.SalePrice.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	if in.StockMinimo < 0 || in.StockMaximo < 0 {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	product := &entity.Product{
		ID:            uuid.New().String(),
		SKU:           sku,
		Name:          name,
		Description:   in.Description,
		PurchasePrice: in.PurchasePrice,
		SalePrice:     in.SalePrice,
		StockTotal:    0,
		StockMinimo:   in.StockMinimo,
		StockMaximo:   in.StockMaximo,
		Controlled:    in.Controlled,
		Refrigerated:  in.Refrigerated,
		Taxed:         in.Taxed,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.repo.Create(product); err != nil {
		return nil, err
	}
	return ToProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return ToProductResponse(product), nil
}

// List lista productos paginados.
func (uc *ProductUseCase) List(limit, offset int) ([]dto.ProductResponse, error) {
	products, err := uc.repo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, *ToProductResponse(p))
	}
	return out, nil
}

// Update actualiza un producto. No permite modificar StockTotal.
func (uc *ProductUseCase) Update(id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.PurchasePrice != nil {
		product.PurchasePrice = *in.PurchasePrice
	}
	if in.SalePrice != nil {
		product.SalePrice = *in.SalePrice
	}
	if in.StockMinimo != nil {
		product.StockMinimo = *in.StockMinimo
	}
	if in.StockMaximo != nil {
		product.StockMaximo = *in.StockMaximo
	}
	if in.Controlled != nil {
		product.Controlled = *in.Controlled
	}
	if in.Refrigerated != nil {
		product.Refrigerated = *in.Refrigerated
	}
	if in.Taxed != nil {
		product.Taxed = *in.Taxed
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(product); err != nil {
		return nil, err
	}
	return ToProductResponse(product), nil
}

// ToProductResponse mapea la entidad al DTO de salida.
func ToProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:            p.ID,
		SKU:           p.SKU,
		Name:          p.Name,
		Description:   p.Description,
		PurchasePrice: p.PurchasePrice,
		SalePrice:     p.SalePrice,
		StockTotal:    p.StockTotal,
		StockMinimo:   p.StockMinimo,
		StockMaximo:   p.StockMaximo,
		Controlled:    p.Controlled,
		Refrigerated:  p.Refrigerated,
		Taxed:         p.Taxed,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
