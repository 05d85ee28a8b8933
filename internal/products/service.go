package products

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/internal/scope"
	"github.com/angelmondragon/marketplace-backend/pkg/db"
	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/pagination"
)

const sellerNotFound = "Seller not found with the provided username."

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type sellerLookup interface {
	FindByUsername(ctx context.Context, username string) (*models.Seller, error)
}

// Service manages the catalog for the admin and seller surfaces and serves
// the public storefront reads.
type Service interface {
	Create(ctx context.Context, sc scope.Scope, input CreateProductInput) (*ProductDTO, error)
	BulkInsert(ctx context.Context, sc scope.Scope, inputs []CreateProductInput) (CountResult, error)
	List(ctx context.Context, sc scope.Scope, filters ListFilters, params pagination.Params) (*pagination.Page[ProductDTO], error)
	Count(ctx context.Context, sc scope.Scope, filters ListFilters) (int64, error)
	Get(ctx context.Context, sc scope.Scope, id uuid.UUID) (*ProductDTO, error)
	Update(ctx context.Context, sc scope.Scope, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	PartialUpdate(ctx context.Context, sc scope.Scope, id uuid.UUID, input PatchProductInput) (*ProductDTO, error)
	BulkUpdate(ctx context.Context, sc scope.Scope, filter BulkUpdateFilter, patch PatchProductInput) (CountResult, error)
	SoftDelete(ctx context.Context, sc scope.Scope, id uuid.UUID) (*ProductDTO, error)
	SoftDeleteMany(ctx context.Context, sc scope.Scope, ids []uuid.UUID) (CountResult, error)
	Delete(ctx context.Context, sc scope.Scope, id uuid.UUID) error
	DeleteMany(ctx context.Context, sc scope.Scope, ids []uuid.UUID) (CountResult, error)

	ListBySellerUsername(ctx context.Context, username, category string, params pagination.Params) (*pagination.Page[ProductDTO], error)
	Related(ctx context.Context, username, category string, params pagination.Params) (*pagination.Page[ProductDTO], error)
	Search(ctx context.Context, username string) ([]SearchItem, error)
	GetForSeller(ctx context.Context, id uuid.UUID, username string) (*ProductDTO, error)
}

type service struct {
	repo    Repository
	sellers sellerLookup
	tx      txRunner
	now     func() time.Time
}

// NewService builds a product service with the required dependencies.
func NewService(repo Repository, sellers sellerLookup, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if sellers == nil {
		return nil, fmt.Errorf("seller lookup required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:    repo,
		sellers: sellers,
		tx:      tx,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Create(ctx context.Context, sc scope.Scope, input CreateProductInput) (*ProductDTO, error) {
	if err := checkScope(sc); err != nil {
		return nil, err
	}
	product, err := buildProduct(sc, input)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	dto := ToDTO(*product)
	return &dto, nil
}

func (s *service) BulkInsert(ctx context.Context, sc scope.Scope, inputs []CreateProductInput) (CountResult, error) {
	if err := checkScope(sc); err != nil {
		return CountResult{}, err
	}
	if len(inputs) == 0 {
		return CountResult{}, pkgerrors.New(pkgerrors.CodeBadRequest, "products must be a non-empty array")
	}

	rows := make([]models.Product, 0, len(inputs))
	for i, input := range inputs {
		product, err := buildProduct(sc, input)
		if err != nil {
			if typed := pkgerrors.As(err); typed != nil {
				return CountResult{}, pkgerrors.New(typed.Code(), "product "+strconv.Itoa(i)+": "+typed.Message()).WithDetails(typed.Details())
			}
			return CountResult{}, err
		}
		rows = append(rows, *product)
	}

	created, err := s.repo.CreateMany(ctx, rows)
	if err != nil {
		return CountResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "bulk insert products")
	}
	return CountResult{Count: created}, nil
}

func (s *service) List(ctx context.Context, sc scope.Scope, filters ListFilters, params pagination.Params) (*pagination.Page[ProductDTO], error) {
	criteria, err := listCriteria(sc, filters)
	if err != nil {
		return nil, err
	}
	return s.page(ctx, criteria, params)
}

func (s *service) Count(ctx context.Context, sc scope.Scope, filters ListFilters) (int64, error) {
	criteria, err := listCriteria(sc, filters)
	if err != nil {
		return 0, err
	}
	total, err := s.repo.Count(ctx, criteria)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count products")
	}
	return total, nil
}

func (s *service) Get(ctx context.Context, sc scope.Scope, id uuid.UUID) (*ProductDTO, error) {
	if err := checkScope(sc); err != nil {
		return nil, err
	}
	product, err := loadOwned(ctx, s.repo, sc, id)
	if err != nil {
		return nil, err
	}
	dto := ToDTO(*product)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, sc scope.Scope, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	images, sizes, tags := input.Images, input.Sizes, input.Tags
	patch := PatchProductInput{
		Name:        &input.Name,
		Category:    &input.Category,
		Brand:       input.Brand,
		Description: input.Description,
		Images:      &images,
		Sizes:       &sizes,
		Tags:        &tags,
		Price:       &input.Price,
		Stock:       &input.Stock,
	}
	return s.PartialUpdate(ctx, sc, id, patch)
}

func (s *service) PartialUpdate(ctx context.Context, sc scope.Scope, id uuid.UUID, input PatchProductInput) (*ProductDTO, error) {
	if err := checkScope(sc); err != nil {
		return nil, err
	}
	if input.empty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}
	updates, err := s.patchUpdates(sc, input)
	if err != nil {
		return nil, err
	}

	var updated *models.Product
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := loadOwned(ctx, repo, sc, id); err != nil {
			return err
		}
		if _, err := repo.UpdateFields(ctx, []uuid.UUID{id}, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
		}
		updated, err = repo.FindByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload product")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	dto := ToDTO(*updated)
	return &dto, nil
}

func (s *service) BulkUpdate(ctx context.Context, sc scope.Scope, filter BulkUpdateFilter, patch PatchProductInput) (CountResult, error) {
	if err := checkScope(sc); err != nil {
		return CountResult{}, err
	}
	if filter.empty() {
		return CountResult{}, pkgerrors.New(pkgerrors.CodeBadRequest, "bulk update requires a filter")
	}
	if patch.empty() {
		return CountResult{}, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}
	updates, err := s.patchUpdates(sc, patch)
	if err != nil {
		return CountResult{}, err
	}

	criteria := ownedCriteria(sc, filter.IDs)
	if sc.IsAdmin() {
		criteria.SellerID = filter.SellerID
	}
	if filter.Category != nil {
		criteria.Category = strings.TrimSpace(*filter.Category)
	}

	var affected int64
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		matched, err := repo.FindMatching(ctx, criteria)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "match products")
		}
		if len(matched) == 0 {
			return nil
		}
		affected, err = repo.UpdateFields(ctx, productIDs(matched), updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "bulk update products")
		}
		return nil
	})
	if err != nil {
		return CountResult{}, err
	}
	return CountResult{Count: affected}, nil
}

func (s *service) SoftDelete(ctx context.Context, sc scope.Scope, id uuid.UUID) (*ProductDTO, error) {
	if err := checkScope(sc); err != nil {
		return nil, err
	}
	var product *models.Product
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := loadOwned(ctx, repo, sc, id); err != nil {
			return err
		}
		if _, err := repo.UpdateFields(ctx, []uuid.UUID{id}, s.softDeleteUpdates(sc)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "soft delete product")
		}
		var err error
		product, err = repo.FindByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload product")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	dto := ToDTO(*product)
	return &dto, nil
}

func (s *service) SoftDeleteMany(ctx context.Context, sc scope.Scope, ids []uuid.UUID) (CountResult, error) {
	if err := checkScope(sc); err != nil {
		return CountResult{}, err
	}
	if err := checkIDs(ids); err != nil {
		return CountResult{}, err
	}
	var affected int64
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		matched, err := repo.FindMatching(ctx, ownedCriteria(sc, ids))
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "match products")
		}
		if len(matched) == 0 {
			return nil
		}
		affected, err = repo.UpdateFields(ctx, productIDs(matched), s.softDeleteUpdates(sc))
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "soft delete products")
		}
		return nil
	})
	if err != nil {
		return CountResult{}, err
	}
	return CountResult{Count: affected}, nil
}

func (s *service) Delete(ctx context.Context, sc scope.Scope, id uuid.UUID) error {
	if err := checkScope(sc); err != nil {
		return err
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := loadOwned(ctx, repo, sc, id); err != nil {
			return err
		}
		affected, err := repo.Delete(ctx, []uuid.UUID{id})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil
	})
}

func (s *service) DeleteMany(ctx context.Context, sc scope.Scope, ids []uuid.UUID) (CountResult, error) {
	if err := checkScope(sc); err != nil {
		return CountResult{}, err
	}
	if err := checkIDs(ids); err != nil {
		return CountResult{}, err
	}
	var affected int64
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		criteria := ownedCriteria(sc, ids)
		criteria.IncludeDeleted = true
		matched, err := repo.FindMatching(ctx, criteria)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "match products")
		}
		if len(matched) == 0 {
			return nil
		}
		affected, err = repo.Delete(ctx, productIDs(matched))
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete products")
		}
		return nil
	})
	if err != nil {
		return CountResult{}, err
	}
	return CountResult{Count: affected}, nil
}

// ListBySellerUsername is the storefront listing. An empty page is NotFound.
func (s *service) ListBySellerUsername(ctx context.Context, username, category string, params pagination.Params) (*pagination.Page[ProductDTO], error) {
	seller, err := s.findSeller(ctx, username)
	if err != nil {
		return nil, err
	}
	sellerID := seller.ID
	return s.page(ctx, Criteria{SellerID: &sellerID, Category: strings.TrimSpace(category)}, params)
}

// Related lists a storefront's products in category. When that matches
// nothing it falls back to the whole live catalog, so it never reports
// NotFound for an existing seller.
func (s *service) Related(ctx context.Context, username, category string, params pagination.Params) (*pagination.Page[ProductDTO], error) {
	seller, err := s.findSeller(ctx, username)
	if err != nil {
		return nil, err
	}
	params = params.Normalize()
	sellerID := seller.ID

	if category = strings.TrimSpace(category); category != "" {
		rows, total, err := s.repo.List(ctx, Criteria{SellerID: &sellerID, Category: category}, params)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list related products")
		}
		if len(rows) > 0 {
			page := pagination.Map(pagination.NewPage(rows, total, params), ToDTO)
			return &page, nil
		}
	}

	rows, total, err := s.repo.List(ctx, Criteria{}, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	page := pagination.Map(pagination.NewPage(rows, total, params), ToDTO)
	return &page, nil
}

// Search returns the storefront search index, capped at SearchLimit entries.
func (s *service) Search(ctx context.Context, username string) ([]SearchItem, error) {
	seller, err := s.findSeller(ctx, username)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.Search(ctx, seller.ID, SearchLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search products")
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no products found")
	}
	out := make([]SearchItem, 0, len(rows))
	for _, row := range rows {
		out = append(out, toSearchItem(row))
	}
	return out, nil
}

// GetForSeller resolves a storefront product link. The product must be live
// and listed by the seller with the given username.
func (s *service) GetForSeller(ctx context.Context, id uuid.UUID, username string) (*ProductDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.IsDeleted {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
	}
	seller, err := s.sellers.FindByUsername(ctx, username)
	if err != nil && !db.IsNotFound(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find seller by username")
	}
	if seller == nil || seller.ID != product.SellerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "This Product is not found from this seller")
	}
	dto := ToDTO(*product)
	return &dto, nil
}

func (s *service) page(ctx context.Context, criteria Criteria, params pagination.Params) (*pagination.Page[ProductDTO], error) {
	params = params.Normalize()
	rows, total, err := s.repo.List(ctx, criteria, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no products found")
	}
	page := pagination.Map(pagination.NewPage(rows, total, params), ToDTO)
	return &page, nil
}

func (s *service) findSeller(ctx context.Context, username string) (*models.Seller, error) {
	if strings.TrimSpace(username) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeBadRequest, "username is required")
	}
	seller, err := s.sellers.FindByUsername(ctx, username)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, sellerNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find seller by username")
	}
	return seller, nil
}

func buildProduct(sc scope.Scope, input CreateProductInput) (*models.Product, error) {
	if sc.IsSeller() {
		input.SellerID = sc.OwnerID
	}

	details := map[string]string{}
	if input.SellerID == uuid.Nil {
		details["sellerId"] = "is required"
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		details["name"] = "is required"
	}
	if input.Price.IsNegative() {
		details["price"] = "must not be negative"
	}
	if input.Stock < 0 {
		details["stock"] = "must not be negative"
	}
	if len(details) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}

	return &models.Product{
		SellerID:    input.SellerID,
		Name:        name,
		Category:    strings.TrimSpace(input.Category),
		Brand:       trimmed(input.Brand),
		Description: input.Description,
		Images:      models.StringList(input.Images),
		Sizes:       models.StringList(input.Sizes),
		Tags:        models.StringList(input.Tags),
		Price:       input.Price,
		Stock:       input.Stock,
		AddedBy:     sc.ActorPtr(),
		UpdatedBy:   sc.ActorPtr(),
	}, nil
}

// patchUpdates turns a patch into a column map. seller_id and added_by are
// never part of it.
func (s *service) patchUpdates(sc scope.Scope, p PatchProductInput) (map[string]any, error) {
	details := map[string]string{}
	updates := map[string]any{}

	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			details["name"] = "must not be empty"
		}
		updates["name"] = name
	}
	if p.Category != nil {
		updates["category"] = strings.TrimSpace(*p.Category)
	}
	if p.Brand != nil {
		updates["brand"] = trimmed(p.Brand)
	}
	if p.Description != nil {
		updates["description"] = *p.Description
	}
	if p.Images != nil {
		updates["images"] = models.StringList(*p.Images)
	}
	if p.Sizes != nil {
		updates["sizes"] = models.StringList(*p.Sizes)
	}
	if p.Tags != nil {
		updates["tags"] = models.StringList(*p.Tags)
	}
	if p.Price != nil {
		if p.Price.IsNegative() {
			details["price"] = "must not be negative"
		}
		updates["price"] = *p.Price
	}
	if p.Stock != nil {
		if *p.Stock < 0 {
			details["stock"] = "must not be negative"
		}
		updates["stock"] = *p.Stock
	}
	if len(details) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}

	updates["updated_by"] = sc.ActorPtr()
	updates["updated_at"] = s.now()
	return updates, nil
}

func (s *service) softDeleteUpdates(sc scope.Scope) map[string]any {
	return map[string]any{
		"is_deleted": true,
		"updated_by": sc.ActorPtr(),
		"updated_at": s.now(),
	}
}

func loadOwned(ctx context.Context, repo Repository, sc scope.Scope, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if sc.IsSeller() && product.SellerID != sc.OwnerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func listCriteria(sc scope.Scope, filters ListFilters) (Criteria, error) {
	if err := checkScope(sc); err != nil {
		return Criteria{}, err
	}
	criteria := ownedCriteria(sc, nil)
	if sc.IsAdmin() {
		criteria.SellerID = filters.SellerID
	}
	criteria.Category = strings.TrimSpace(filters.Category)
	criteria.IncludeDeleted = filters.IncludeDeleted
	return criteria, nil
}

// ownedCriteria pins a query to the seller a seller scope acts for.
func ownedCriteria(sc scope.Scope, ids []uuid.UUID) Criteria {
	return Criteria{IDs: ids, SellerID: sc.SellerFilter()}
}

// checkScope admits admins and sellers. Customers browse through the public
// storefront reads only.
func checkScope(sc scope.Scope) error {
	if !sc.Valid() || !(sc.IsAdmin() || sc.IsSeller()) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "seller or admin access required")
	}
	return nil
}

func checkIDs(ids []uuid.UUID) error {
	if len(ids) == 0 {
		return pkgerrors.New(pkgerrors.CodeBadRequest, "ids must be a non-empty array")
	}
	for _, id := range ids {
		if id == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeBadRequest, "ids must not contain empty values")
		}
	}
	return nil
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

func productIDs(rows []models.Product) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids
}
