package tickets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/marketplace-backend/internal/scope"
	"github.com/angelmondragon/marketplace-backend/pkg/db"
	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/pagination"
	"github.com/angelmondragon/marketplace-backend/pkg/types"
)

// Service runs the seller support workflow: sellers open tickets, both sides
// reply, admins resolve.
type Service interface {
	Create(ctx context.Context, sc scope.Scope, input CreateTicketInput) (*TicketDTO, error)
	Update(ctx context.Context, sc scope.Scope, id uuid.UUID, input UpdateTicketInput) (*TicketDTO, error)
	Reply(ctx context.Context, sc scope.Scope, id uuid.UUID, input ReplyInput) (*TicketDTO, error)
	Resolve(ctx context.Context, sc scope.Scope, id uuid.UUID) (*TicketDTO, error)
	Get(ctx context.Context, sc scope.Scope, id uuid.UUID) (*TicketDTO, error)
	Delete(ctx context.Context, sc scope.Scope, id uuid.UUID) error
	List(ctx context.Context, sc scope.Scope, filters ListFilters, params pagination.Params) (*pagination.Page[TicketDTO], error)
	Count(ctx context.Context, sellerID uuid.UUID) (int64, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("tickets repository required")
	}
	return &service{repo: repo, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *service) Create(ctx context.Context, sc scope.Scope, input CreateTicketInput) (*TicketDTO, error) {
	var sellerID uuid.UUID
	switch {
	case sc.IsSeller() && sc.Valid():
		sellerID = sc.OwnerID
	case sc.IsAdmin() && input.SellerID != nil && *input.SellerID != uuid.Nil:
		sellerID = *input.SellerID
	case sc.IsAdmin():
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller is required").
			WithDetails(map[string]any{"sellerId": "required"})
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "tickets can only be opened by sellers")
	}

	details := map[string]any{}
	if strings.TrimSpace(input.Type) == "" {
		details["type"] = "required"
	}
	if strings.TrimSpace(input.Subject) == "" {
		details["subject"] = "required"
	}
	if strings.TrimSpace(input.Description) == "" {
		details["description"] = "required"
	}
	if len(details) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid ticket").WithDetails(details)
	}

	ticket := &models.Ticket{
		SellerID:    sellerID,
		Type:        strings.TrimSpace(input.Type),
		Subject:     strings.TrimSpace(input.Subject),
		Description: strings.TrimSpace(input.Description),
		Replies:     []types.TicketReply{},
		AddedBy:     sc.ActorPtr(),
		UpdatedBy:   sc.ActorPtr(),
	}
	if err := s.repo.Create(ctx, ticket); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create ticket")
	}
	dto := ToDTO(*ticket)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, sc scope.Scope, id uuid.UUID, input UpdateTicketInput) (*TicketDTO, error) {
	if input.empty() {
		return nil, pkgerrors.New(pkgerrors.CodeBadRequest, "no fields to update")
	}
	ticket, err := s.loadOwned(ctx, sc, id)
	if err != nil {
		return nil, err
	}
	if input.Type != nil {
		ticket.Type = strings.TrimSpace(*input.Type)
	}
	if input.Subject != nil {
		ticket.Subject = strings.TrimSpace(*input.Subject)
	}
	if input.Description != nil {
		ticket.Description = strings.TrimSpace(*input.Description)
	}
	if input.Closed != nil {
		ticket.Closed = *input.Closed
	}
	if input.IsDeleted != nil {
		ticket.IsDeleted = *input.IsDeleted
	}
	return s.save(ctx, sc, ticket, "update ticket")
}

func (s *service) Reply(ctx context.Context, sc scope.Scope, id uuid.UUID, input ReplyInput) (*TicketDTO, error) {
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message is required").
			WithDetails(map[string]any{"message": "required"})
	}
	ticket, err := s.loadOwned(ctx, sc, id)
	if err != nil {
		return nil, err
	}
	if ticket.Closed {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "ticket is closed")
	}
	from := FromSeller
	if sc.IsAdmin() {
		from = FromAdmin
	}
	ticket.Replies = append(ticket.Replies, types.TicketReply{
		From:    from,
		Message: message,
		Time:    s.now(),
	})
	return s.save(ctx, sc, ticket, "reply to ticket")
}

func (s *service) Resolve(ctx context.Context, sc scope.Scope, id uuid.UUID) (*TicketDTO, error) {
	ticket, err := s.loadOwned(ctx, sc, id)
	if err != nil {
		return nil, err
	}
	if ticket.Closed {
		dto := ToDTO(*ticket)
		return &dto, nil
	}
	ticket.Closed = true
	return s.save(ctx, sc, ticket, "resolve ticket")
}

func (s *service) Get(ctx context.Context, sc scope.Scope, id uuid.UUID) (*TicketDTO, error) {
	ticket, err := s.loadOwned(ctx, sc, id)
	if err != nil {
		return nil, err
	}
	dto := ToDTO(*ticket)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, sc scope.Scope, id uuid.UUID) error {
	if _, err := s.loadOwned(ctx, sc, id); err != nil {
		return err
	}
	if _, err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete ticket")
	}
	return nil
}

func (s *service) List(ctx context.Context, sc scope.Scope, filters ListFilters, params pagination.Params) (*pagination.Page[TicketDTO], error) {
	if !sc.IsAdmin() && !(sc.IsSeller() && sc.Valid()) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "tickets are not visible to this role")
	}
	params = params.Normalize()
	rows, total, err := s.repo.List(ctx, sc.SellerFilter(), filters, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tickets")
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no tickets found")
	}
	page := pagination.Map(pagination.NewPage(rows, total, params), ToDTO)
	return &page, nil
}

func (s *service) Count(ctx context.Context, sellerID uuid.UUID) (int64, error) {
	total, err := s.repo.CountBySeller(ctx, sellerID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count tickets")
	}
	return total, nil
}

func (s *service) loadOwned(ctx context.Context, sc scope.Scope, id uuid.UUID) (*models.Ticket, error) {
	if !sc.IsAdmin() && !(sc.IsSeller() && sc.Valid()) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "tickets are not visible to this role")
	}
	ticket, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ticket not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find ticket")
	}
	if sc.IsSeller() && ticket.SellerID != sc.OwnerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ticket not found")
	}
	return ticket, nil
}

func (s *service) save(ctx context.Context, sc scope.Scope, ticket *models.Ticket, op string) (*TicketDTO, error) {
	ticket.UpdatedBy = sc.ActorPtr()
	ticket.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, ticket); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
	}
	dto := ToDTO(*ticket)
	return &dto, nil
}
