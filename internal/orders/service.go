package orders

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/internal/scope"
	"github.com/angelmondragon/marketplace-backend/pkg/db"
	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/outbox"
	"github.com/angelmondragon/marketplace-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/marketplace-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service is the single order implementation behind the admin, seller and
// client surfaces. Every call is filtered through the caller's scope.
type Service interface {
	Create(ctx context.Context, sc scope.Scope, input CreateOrderInput) (*OrderDTO, error)
	List(ctx context.Context, sc scope.Scope, filters ListFilters, params pagination.Params) (*pagination.Page[OrderDTO], error)
	Count(ctx context.Context, sc scope.Scope, filters ListFilters) (int64, error)
	Get(ctx context.Context, sc scope.Scope, id uuid.UUID) (*OrderDTO, error)
	Update(ctx context.Context, sc scope.Scope, id uuid.UUID, input UpdateOrderInput) (*OrderDTO, error)
	PartialUpdate(ctx context.Context, sc scope.Scope, id uuid.UUID, input PatchOrderInput) (*OrderDTO, error)
	SoftDelete(ctx context.Context, sc scope.Scope, id uuid.UUID) (*OrderDTO, error)
	SoftDeleteMany(ctx context.Context, sc scope.Scope, ids []uuid.UUID) (CountResult, error)
	Delete(ctx context.Context, sc scope.Scope, id uuid.UUID) error
	DeleteMany(ctx context.Context, sc scope.Scope, ids []uuid.UUID) (CountResult, error)
	BulkInsert(ctx context.Context, sc scope.Scope, inputs []CreateOrderInput) (CountResult, error)
	BulkUpdate(ctx context.Context, sc scope.Scope, filter BulkUpdateFilter, patch PatchOrderInput) (CountResult, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, filters ListFilters, params pagination.Params) (*pagination.Page[OrderDTO], error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	now    func() time.Time
}

// NewService builds an order service with the required dependencies.
func NewService(repo Repository, tx txRunner, outbox outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:   repo,
		tx:     tx,
		outbox: outbox,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Create(ctx context.Context, sc scope.Scope, input CreateOrderInput) (*OrderDTO, error) {
	if err := checkScope(sc); err != nil {
		return nil, err
	}
	order, err := s.buildOrder(sc, input)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		return s.outbox.Emit(ctx, tx, createdEvent(sc, *order))
	})
	if err != nil {
		return nil, err
	}
	dto := ToDTO(*order)
	return &dto, nil
}

func (s *service) BulkInsert(ctx context.Context, sc scope.Scope, inputs []CreateOrderInput) (CountResult, error) {
	if err := checkScope(sc); err != nil {
		return CountResult{}, err
	}
	if len(inputs) == 0 {
		return CountResult{}, pkgerrors.New(pkgerrors.CodeBadRequest, "orders must be a non-empty array")
	}

	rows := make([]models.Order, 0, len(inputs))
	for i, input := range inputs {
		order, err := s.buildOrder(sc, input)
		if err != nil {
			if typed := pkgerrors.As(err); typed != nil {
				return CountResult{}, pkgerrors.New(typed.Code(), "order "+strconv.Itoa(i)+": "+typed.Message()).WithDetails(typed.Details())
			}
			return CountResult{}, err
		}
		rows = append(rows, *order)
	}

	var created int64
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		count, err := s.repo.WithTx(tx).CreateMany(ctx, rows)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "bulk insert orders")
		}
		created = count
		for _, row := range rows {
			if err := s.outbox.Emit(ctx, tx, createdEvent(sc, row)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return CountResult{}, err
	}
	return CountResult{Count: created}, nil
}

func (s *service) List(ctx context.Context, sc scope.Scope, filters ListFilters, params pagination.Params) (*pagination.Page[OrderDTO], error) {
	criteria, err := listCriteria(sc, filters)
	if err != nil {
		return nil, err
	}
	params = params.Normalize()
	rows, total, err := s.repo.List(ctx, criteria, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no orders found")
	}
	page := pagination.Map(pagination.NewPage(rows, total, params), ToDTO)
	return &page, nil
}

func (s *service) ListByCustomer(ctx context.Context, customerID uuid.UUID, filters ListFilters, params pagination.Params) (*pagination.Page[OrderDTO], error) {
	return s.List(ctx, scope.Customer(customerID), filters, params)
}

func (s *service) Count(ctx context.Context, sc scope.Scope, filters ListFilters) (int64, error) {
	criteria, err := listCriteria(sc, filters)
	if err != nil {
		return 0, err
	}
	total, err := s.repo.Count(ctx, criteria)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders")
	}
	return total, nil
}

func (s *service) Get(ctx context.Context, sc scope.Scope, id uuid.UUID) (*OrderDTO, error) {
	if err := checkScope(sc); err != nil {
		return nil, err
	}
	order, err := loadOwned(ctx, s.repo, sc, id)
	if err != nil {
		return nil, err
	}
	dto := ToDTO(*order)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, sc scope.Scope, id uuid.UUID, input UpdateOrderInput) (*OrderDTO, error) {
	items := input.OrderItems
	patch := PatchOrderInput{
		OrderItems:  &items,
		TotalAmount: &input.TotalAmount,
		Charge:      &input.Charge,
		Status:      &input.Status,
		Courier:     &input.Courier,
		Date:        &input.Date,
	}
	return s.PartialUpdate(ctx, sc, id, patch)
}

func (s *service) PartialUpdate(ctx context.Context, sc scope.Scope, id uuid.UUID, input PatchOrderInput) (*OrderDTO, error) {
	if err := checkScope(sc); err != nil {
		return nil, err
	}
	if input.empty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}
	updates, fields, err := s.patchUpdates(sc, input)
	if err != nil {
		return nil, err
	}

	var updated *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := loadOwned(ctx, repo, sc, id)
		if err != nil {
			return err
		}
		if _, err := repo.UpdateFields(ctx, []uuid.UUID{id}, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
		}
		updated, err = repo.FindByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
		return s.emitUpdate(ctx, tx, sc, *current, *updated, fields)
	})
	if err != nil {
		return nil, err
	}
	dto := ToDTO(*updated)
	return &dto, nil
}

func (s *service) BulkUpdate(ctx context.Context, sc scope.Scope, filter BulkUpdateFilter, patch PatchOrderInput) (CountResult, error) {
	if err := checkScope(sc); err != nil {
		return CountResult{}, err
	}
	if filter.empty() {
		return CountResult{}, pkgerrors.New(pkgerrors.CodeBadRequest, "bulk update requires a filter")
	}
	if patch.empty() {
		return CountResult{}, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}
	criteria, err := bulkCriteria(sc, filter)
	if err != nil {
		return CountResult{}, err
	}
	updates, fields, err := s.patchUpdates(sc, patch)
	if err != nil {
		return CountResult{}, err
	}

	var affected int64
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		matched, err := repo.FindMatching(ctx, criteria)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "match orders")
		}
		if len(matched) == 0 {
			return nil
		}
		affected, err = repo.UpdateFields(ctx, orderIDs(matched), updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "bulk update orders")
		}
		for _, before := range matched {
			after := before
			if status, ok := updates["status"].(enums.OrderStatus); ok {
				after.Status = status
			}
			if err := s.emitUpdate(ctx, tx, sc, before, after, fields); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return CountResult{}, err
	}
	return CountResult{Count: affected}, nil
}

func (s *service) SoftDelete(ctx context.Context, sc scope.Scope, id uuid.UUID) (*OrderDTO, error) {
	if err := checkScope(sc); err != nil {
		return nil, err
	}
	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := loadOwned(ctx, repo, sc, id)
		if err != nil {
			return err
		}
		if _, err := repo.UpdateFields(ctx, []uuid.UUID{id}, s.softDeleteUpdates(sc)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "soft delete order")
		}
		order, err = repo.FindByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
		return s.outbox.Emit(ctx, tx, removedEvent(sc, *current, false))
	})
	if err != nil {
		return nil, err
	}
	dto := ToDTO(*order)
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
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "match orders")
		}
		if len(matched) == 0 {
			return nil
		}
		affected, err = repo.UpdateFields(ctx, orderIDs(matched), s.softDeleteUpdates(sc))
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "soft delete orders")
		}
		for _, order := range matched {
			if err := s.outbox.Emit(ctx, tx, removedEvent(sc, order, false)); err != nil {
				return err
			}
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
		current, err := loadOwned(ctx, repo, sc, id)
		if err != nil {
			return err
		}
		affected, err := repo.Delete(ctx, []uuid.UUID{id})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return s.outbox.Emit(ctx, tx, removedEvent(sc, *current, true))
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
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "match orders")
		}
		if len(matched) == 0 {
			return nil
		}
		affected, err = repo.Delete(ctx, orderIDs(matched))
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete orders")
		}
		for _, order := range matched {
			if err := s.outbox.Emit(ctx, tx, removedEvent(sc, order, true)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return CountResult{}, err
	}
	return CountResult{Count: affected}, nil
}

func (s *service) buildOrder(sc scope.Scope, input CreateOrderInput) (*models.Order, error) {
	switch {
	case sc.IsSeller():
		input.SellerID = sc.OwnerID
	case sc.IsCustomer():
		input.CustomerID = sc.OwnerID
	}

	details := map[string]string{}
	if input.CustomerID == uuid.Nil {
		details["customerId"] = "is required"
	}
	if input.SellerID == uuid.Nil {
		details["sellerId"] = "is required"
	}
	if len(input.OrderItems) == 0 {
		details["orderItems"] = "must contain at least one item"
	}
	for i, item := range input.OrderItems {
		key := "orderItems[" + strconv.Itoa(i) + "]"
		if item.ProductID == uuid.Nil {
			details[key+".productId"] = "is required"
		}
		if item.Quantity < 1 {
			details[key+".quantity"] = "must be at least 1"
		}
		if item.Price.IsNegative() {
			details[key+".price"] = "must not be negative"
		}
	}
	checkMoney(details, "totalAmount", input.TotalAmount)
	checkMoney(details, "charge", input.Charge)

	status := input.Status
	if status == "" {
		status = enums.OrderStatusPlaced
	} else if parsed, err := enums.ParseOrderStatus(string(status)); err == nil {
		status = parsed
	} else {
		details["status"] = "is invalid"
	}

	date := FormatDate(s.now())
	if strings.TrimSpace(input.Date) != "" {
		normalized, err := NormalizeDate(input.Date)
		if err != nil {
			details["date"] = "must be YYYY-MM-DD or MM/DD/YYYY"
		}
		date = normalized
	}

	if len(details) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}

	return &models.Order{
		CustomerID:  input.CustomerID,
		SellerID:    input.SellerID,
		OrderItems:  toItems(input.OrderItems),
		TotalAmount: input.TotalAmount,
		Charge:      input.Charge,
		Status:      status,
		Courier:     strings.TrimSpace(input.Courier),
		Date:        date,
		IsDeleted:   false,
		AddedBy:     sc.ActorPtr(),
		UpdatedBy:   sc.ActorPtr(),
	}, nil
}

// patchUpdates turns a patch into a column map. added_by is never part of it.
func (s *service) patchUpdates(sc scope.Scope, p PatchOrderInput) (map[string]any, []string, error) {
	details := map[string]string{}
	updates := map[string]any{}
	var fields []string

	if p.OrderItems != nil {
		items := *p.OrderItems
		if len(items) == 0 {
			details["orderItems"] = "must contain at least one item"
		}
		for i, item := range items {
			key := "orderItems[" + strconv.Itoa(i) + "]"
			if item.ProductID == uuid.Nil {
				details[key+".productId"] = "is required"
			}
			if item.Quantity < 1 {
				details[key+".quantity"] = "must be at least 1"
			}
			if item.Price.IsNegative() {
				details[key+".price"] = "must not be negative"
			}
		}
		updates["order_items"] = models.OrderItems(toItems(items))
		fields = append(fields, "orderItems")
	}
	if p.TotalAmount != nil {
		checkMoney(details, "totalAmount", *p.TotalAmount)
		updates["total_amount"] = *p.TotalAmount
		fields = append(fields, "totalAmount")
	}
	if p.Charge != nil {
		checkMoney(details, "charge", *p.Charge)
		updates["charge"] = *p.Charge
		fields = append(fields, "charge")
	}
	if p.Status != nil {
		status, err := enums.ParseOrderStatus(string(*p.Status))
		if err != nil {
			details["status"] = "is invalid"
		}
		updates["status"] = status
		fields = append(fields, "status")
	}
	if p.Courier != nil {
		updates["courier"] = strings.TrimSpace(*p.Courier)
		fields = append(fields, "courier")
	}
	if p.Date != nil {
		date, err := NormalizeDate(*p.Date)
		if err != nil {
			details["date"] = "must be YYYY-MM-DD or MM/DD/YYYY"
		}
		updates["date"] = date
		fields = append(fields, "date")
	}
	if len(details) > 0 {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}

	updates["updated_by"] = sc.ActorPtr()
	updates["updated_at"] = s.now()
	return updates, fields, nil
}

func (s *service) softDeleteUpdates(sc scope.Scope) map[string]any {
	return map[string]any{
		"is_deleted": true,
		"updated_by": sc.ActorPtr(),
		"updated_at": s.now(),
	}
}

func (s *service) emitUpdate(ctx context.Context, tx *gorm.DB, sc scope.Scope, before, after models.Order, fields []string) error {
	event := outbox.DomainEvent{
		EventType:     enums.EventOrderUpdated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   before.ID,
		Actor:         actorRef(sc),
		Data: payloads.OrderUpdatedEvent{
			OrderID:  before.ID,
			SellerID: before.SellerID,
			Fields:   fields,
		},
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		return err
	}
	if before.Status == after.Status {
		return nil
	}
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventOrderStatusChanged,
		AggregateType: enums.AggregateOrder,
		AggregateID:   before.ID,
		Actor:         actorRef(sc),
		Data: payloads.OrderStatusChangedEvent{
			OrderID:    before.ID,
			SellerID:   before.SellerID,
			CustomerID: before.CustomerID,
			From:       before.Status,
			To:         after.Status,
		},
	})
}

func loadOwned(ctx context.Context, repo Repository, sc scope.Scope, id uuid.UUID) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if !sc.Owns(order.SellerID, order.CustomerID) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func listCriteria(sc scope.Scope, filters ListFilters) (Criteria, error) {
	if err := checkScope(sc); err != nil {
		return Criteria{}, err
	}
	criteria := ownedCriteria(sc, nil)
	criteria.IncludeDeleted = filters.IncludeDeleted

	if status := strings.TrimSpace(filters.Status); status != "" && !strings.EqualFold(status, StatusAll) {
		parsed, err := enums.ParseOrderStatus(status)
		if err != nil {
			return Criteria{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter").
				WithDetails(map[string]string{"status": status})
		}
		criteria.Status = &parsed
	}
	criteria.CourierMode, criteria.Courier = courierFilter(filters.Courier)

	if strings.TrimSpace(filters.Date) != "" {
		date, err := NormalizeDate(filters.Date)
		if err != nil {
			return Criteria{}, err
		}
		criteria.Date = date
	}
	if filters.CustomerID != nil && sc.IsAdmin() {
		criteria.CustomerID = filters.CustomerID
	}
	return criteria, nil
}

func bulkCriteria(sc scope.Scope, filter BulkUpdateFilter) (Criteria, error) {
	criteria := ownedCriteria(sc, filter.IDs)
	if sc.IsAdmin() {
		criteria.SellerID = filter.SellerID
		criteria.CustomerID = filter.CustomerID
	} else if sc.IsSeller() && filter.CustomerID != nil {
		criteria.CustomerID = filter.CustomerID
	}
	if filter.Status != nil {
		status, err := enums.ParseOrderStatus(string(*filter.Status))
		if err != nil {
			return Criteria{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
		}
		criteria.Status = &status
	}
	if filter.Courier != nil {
		criteria.CourierMode, criteria.Courier = courierFilter(*filter.Courier)
	}
	if filter.Date != nil {
		date, err := NormalizeDate(*filter.Date)
		if err != nil {
			return Criteria{}, err
		}
		criteria.Date = date
	}
	return criteria, nil
}

// ownedCriteria pins a query to the scope owner.
func ownedCriteria(sc scope.Scope, ids []uuid.UUID) Criteria {
	criteria := Criteria{IDs: ids}
	owner := sc.OwnerID
	switch sc.OrderColumn() {
	case "seller_id":
		criteria.SellerID = &owner
	case "customer_id":
		criteria.CustomerID = &owner
	}
	return criteria
}

func courierFilter(raw string) (CourierMode, string) {
	value := strings.TrimSpace(raw)
	switch {
	case value == "":
		return CourierAny, ""
	case strings.EqualFold(value, CourierLocal):
		return CourierEquals, CourierLocal
	case strings.EqualFold(value, CourierServiceable):
		return CourierNotLocal, ""
	}
	return CourierEquals, value
}

func checkScope(sc scope.Scope) error {
	if !sc.Valid() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "scope missing owner")
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

func checkMoney(details map[string]string, field string, value decimal.Decimal) {
	if value.IsNegative() {
		details[field] = "must not be negative"
	}
}

func orderIDs(rows []models.Order) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids
}

func actorRef(sc scope.Scope) *outbox.ActorRef {
	return &outbox.ActorRef{
		UserID:   sc.Actor,
		SellerID: sc.SellerFilter(),
		Role:     string(sc.Role),
	}
}

func createdEvent(sc scope.Scope, order models.Order) outbox.DomainEvent {
	return outbox.DomainEvent{
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         actorRef(sc),
		Data: payloads.OrderCreatedEvent{
			OrderID:     order.ID,
			SellerID:    order.SellerID,
			CustomerID:  order.CustomerID,
			TotalAmount: order.TotalAmount,
			Charge:      order.Charge,
			Status:      order.Status,
			Courier:     order.Courier,
			Date:        order.Date,
			ItemCount:   len(order.OrderItems),
		},
	}
}

func removedEvent(sc scope.Scope, order models.Order, hard bool) outbox.DomainEvent {
	eventType := enums.EventOrderSoftDeleted
	if hard {
		eventType = enums.EventOrderDeleted
	}
	return outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         actorRef(sc),
		Data:          payloads.OrderRemovedEvent{OrderID: order.ID, Hard: hard},
	}
}
