package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
)

// SearchLimit caps the storefront search index.
const SearchLimit = 1000

// CreateProductInput is the create payload. Seller scopes override SellerID.
type CreateProductInput struct {
	SellerID    uuid.UUID       `json:"sellerId"`
	Name        string          `json:"name" validate:"required,max=200"`
	Category    string          `json:"category" validate:"max=120"`
	Brand       *string         `json:"brand,omitempty" validate:"omitempty,max=120"`
	Description *string         `json:"description,omitempty" validate:"omitempty,max=5000"`
	Images      []string        `json:"images,omitempty" validate:"omitempty,dive,url"`
	Sizes       []string        `json:"sizes,omitempty" validate:"omitempty,dive,max=32"`
	Tags        []string        `json:"tags,omitempty" validate:"omitempty,dive,max=64"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"min=0"`
}

// UpdateProductInput replaces a product's fields. A nil brand or description
// keeps the stored value.
type UpdateProductInput struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Category    string          `json:"category" validate:"max=120"`
	Brand       *string         `json:"brand" validate:"omitempty,max=120"`
	Description *string         `json:"description" validate:"omitempty,max=5000"`
	Images      []string        `json:"images" validate:"omitempty,dive,url"`
	Sizes       []string        `json:"sizes" validate:"omitempty,dive,max=32"`
	Tags        []string        `json:"tags" validate:"omitempty,dive,max=64"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"min=0"`
}

// PatchProductInput applies only the fields that are set.
type PatchProductInput struct {
	Name        *string          `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Category    *string          `json:"category,omitempty" validate:"omitempty,max=120"`
	Brand       *string          `json:"brand,omitempty" validate:"omitempty,max=120"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=5000"`
	Images      *[]string        `json:"images,omitempty" validate:"omitempty,dive,url"`
	Sizes       *[]string        `json:"sizes,omitempty" validate:"omitempty,dive,max=32"`
	Tags        *[]string        `json:"tags,omitempty" validate:"omitempty,dive,max=64"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Stock       *int             `json:"stock,omitempty" validate:"omitempty,min=0"`
}

func (p PatchProductInput) empty() bool {
	return p.Name == nil && p.Category == nil && p.Brand == nil && p.Description == nil &&
		p.Images == nil && p.Sizes == nil && p.Tags == nil && p.Price == nil && p.Stock == nil
}

// ListFilters are the optional list/count filters.
type ListFilters struct {
	Category       string
	SellerID       *uuid.UUID
	IncludeDeleted bool
}

// BulkUpdateFilter selects the products a bulk update touches. At least one
// field must be set.
type BulkUpdateFilter struct {
	IDs      []uuid.UUID `json:"ids,omitempty"`
	SellerID *uuid.UUID  `json:"sellerId,omitempty"`
	Category *string     `json:"category,omitempty"`
}

func (f BulkUpdateFilter) empty() bool {
	return len(f.IDs) == 0 && f.SellerID == nil && f.Category == nil
}

// BulkUpdateRequest is the body of the bulk update endpoint.
type BulkUpdateRequest struct {
	Filter BulkUpdateFilter  `json:"filter"`
	Patch  PatchProductInput `json:"patch"`
}

// IDsInput is the body of the many-id soft and hard delete endpoints.
type IDsInput struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1"`
}

// Criteria is the resolved WHERE clause the repository applies.
type Criteria struct {
	IDs            []uuid.UUID
	SellerID       *uuid.UUID
	Category       string
	IncludeDeleted bool
}

// CountResult is returned by bulk and many-id operations.
type CountResult struct {
	Count int64 `json:"count"`
}

// ProductDTO is the wire shape of a product.
type ProductDTO struct {
	ID          uuid.UUID       `json:"id"`
	SellerID    uuid.UUID       `json:"sellerId"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Brand       *string         `json:"brand,omitempty"`
	Description *string         `json:"description,omitempty"`
	Images      []string        `json:"images"`
	Sizes       []string        `json:"sizes"`
	Tags        []string        `json:"tags"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	IsDeleted   bool            `json:"isDeleted"`
	AddedBy     *uuid.UUID      `json:"addedBy,omitempty"`
	UpdatedBy   *uuid.UUID      `json:"updatedBy,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// SearchItem is one entry of a storefront's search index.
type SearchItem struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Brand *string   `json:"brand,omitempty"`
}

func ToDTO(p models.Product) ProductDTO {
	return ProductDTO{
		ID:          p.ID,
		SellerID:    p.SellerID,
		Name:        p.Name,
		Category:    p.Category,
		Brand:       p.Brand,
		Description: p.Description,
		Images:      nonNil(p.Images),
		Sizes:       nonNil(p.Sizes),
		Tags:        nonNil(p.Tags),
		Price:       p.Price,
		Stock:       p.Stock,
		IsDeleted:   p.IsDeleted,
		AddedBy:     p.AddedBy,
		UpdatedBy:   p.UpdatedBy,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toSearchItem(p models.Product) SearchItem {
	return SearchItem{ID: p.ID, Name: p.Name, Brand: p.Brand}
}

func nonNil(list models.StringList) []string {
	if list == nil {
		return []string{}
	}
	return []string(list)
}
