package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	catalogdomain "github.com/sahajbiz/voucherd/internal/catalog/domain"
	"github.com/sahajbiz/voucherd/internal/clock"
	"go.uber.org/fx"
	"gorm.io/datatypes"
)

type serviceParam struct {
	fx.In

	Repository catalogdomain.Repository
	Clock      clock.Clock
	GenID      *snowflake.Node
}

type service struct {
	repo  catalogdomain.Repository
	clock clock.Clock
	genID *snowflake.Node
}

func NewService(p serviceParam) catalogdomain.Service {
	return &service{repo: p.Repository, clock: p.Clock, genID: p.GenID}
}

func (s *service) Create(ctx context.Context, req catalogdomain.CreateRequest) (*catalogdomain.Response, error) {
	if req.OrgID == 0 {
		return nil, catalogdomain.ErrInvalidOrganization
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		code = req.Name
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	unit := strings.TrimSpace(req.Unit)
	if unit == "" {
		unit = "pcs"
	}

	now := s.clock.Now()
	product := &catalogdomain.Product{
		ID:           s.genID.Generate(),
		OrgID:        req.OrgID,
		Code:         slug.Make(code),
		Name:         strings.TrimSpace(req.Name),
		Unit:         unit,
		UnitPrice:    req.UnitPrice,
		GSTRate:      req.GSTRate,
		ReorderLevel: req.ReorderLevel,
		HSNCode:      strings.TrimSpace(req.HSNCode),
		Active:       active,
		Metadata:     datatypes.JSONMap(req.Metadata),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toResponse(product), nil
}

func (s *service) List(ctx context.Context, req catalogdomain.ListRequest) ([]catalogdomain.Response, error) {
	if req.OrgID == 0 {
		return nil, catalogdomain.ErrInvalidOrganization
	}
	items, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, err
	}
	out := make([]catalogdomain.Response, 0, len(items))
	for i := range items {
		out = append(out, *toResponse(&items[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, orgID snowflake.ID, id string) (*catalogdomain.Response, error) {
	productID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, catalogdomain.ErrInvalidID
	}
	product, err := s.repo.FindByID(ctx, orgID, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, catalogdomain.ErrNotFound
	}
	return toResponse(product), nil
}

func (s *service) Update(ctx context.Context, req catalogdomain.UpdateRequest) (*catalogdomain.Response, error) {
	productID, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, catalogdomain.ErrInvalidID
	}
	product, err := s.repo.FindByID(ctx, req.OrgID, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, catalogdomain.ErrNotFound
	}

	if req.Name != nil {
		product.Name = strings.TrimSpace(*req.Name)
	}
	if req.Unit != nil {
		product.Unit = strings.TrimSpace(*req.Unit)
	}
	if req.UnitPrice != nil {
		product.UnitPrice = *req.UnitPrice
	}
	if req.GSTRate != nil {
		product.GSTRate = req.GSTRate
	}
	if req.ReorderLevel != nil {
		product.ReorderLevel = *req.ReorderLevel
	}
	if req.HSNCode != nil {
		product.HSNCode = strings.TrimSpace(*req.HSNCode)
	}
	if req.Active != nil {
		product.Active = *req.Active
	}
	product.UpdatedAt = s.clock.Now()

	if err := product.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toResponse(product), nil
}

func toResponse(p *catalogdomain.Product) *catalogdomain.Response {
	return &catalogdomain.Response{
		ID:           p.ID.String(),
		OrgID:        p.OrgID.String(),
		Code:         p.Code,
		Name:         p.Name,
		Unit:         p.Unit,
		UnitPrice:    p.UnitPrice,
		GSTRate:      p.GSTRate,
		ReorderLevel: p.ReorderLevel,
		HSNCode:      p.HSNCode,
		Active:       p.Active,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
