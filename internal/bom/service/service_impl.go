package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	bomdomain "github.com/sahajbiz/voucherd/internal/bom/domain"
	catalogdomain "github.com/sahajbiz/voucherd/internal/catalog/domain"
	"github.com/sahajbiz/voucherd/internal/clock"
	"github.com/sahajbiz/voucherd/internal/config"
)

type serviceParam struct {
	fx.In

	Repository bomdomain.Repository
	Products   catalogdomain.Repository
	Config     config.Config
	Clock      clock.Clock
	GenID      *snowflake.Node
}

type service struct {
	repo     bomdomain.Repository
	products catalogdomain.Repository
	cfg      config.Config
	clock    clock.Clock
	genID    *snowflake.Node
}

func NewService(p serviceParam) bomdomain.Service {
	return &service{
		repo:     p.Repository,
		products: p.Products,
		cfg:      p.Config,
		clock:    p.Clock,
		genID:    p.GenID,
	}
}

func (s *service) Create(ctx context.Context, req bomdomain.CreateRequest) (*bomdomain.Response, error) {
	if req.OrgID == 0 {
		return nil, bomdomain.ErrInvalidOrganization
	}
	outputID, err := snowflake.ParseString(strings.TrimSpace(req.OutputProductID))
	if err != nil {
		return nil, bomdomain.ErrInvalidProduct
	}
	product, err := s.products.FindByID(ctx, req.OrgID, outputID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, bomdomain.ErrInvalidProduct
	}

	now := s.clock.Now()
	bom := bomdomain.BOM{
		ID:              s.genID.Generate(),
		OrgID:           req.OrgID,
		OutputProductID: outputID,
		Name:            strings.TrimSpace(req.Name),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if bom.Name == "" {
		bom.Name = product.Name
	}

	components, err := s.buildComponents(ctx, req.OrgID, bom.ID, req.Components)
	if err != nil {
		return nil, err
	}
	bom.Components = components

	if err := s.repo.Create(ctx, &bom); err != nil {
		return nil, err
	}
	return toResponse(&bom), nil
}

func (s *service) List(ctx context.Context, orgID snowflake.ID) ([]bomdomain.Response, error) {
	if orgID == 0 {
		return nil, bomdomain.ErrInvalidOrganization
	}
	boms, err := s.repo.List(ctx, orgID)
	if err != nil {
		return nil, err
	}
	out := make([]bomdomain.Response, 0, len(boms))
	for i := range boms {
		out = append(out, *toResponse(&boms[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, orgID snowflake.ID, id string) (*bomdomain.Response, error) {
	bom, err := s.load(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	return toResponse(bom), nil
}

func (s *service) Update(ctx context.Context, req bomdomain.UpdateRequest) (*bomdomain.Response, error) {
	bom, err := s.load(ctx, req.OrgID, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, bomdomain.ErrInvalidComponent
		}
		bom.Name = name
	}
	if req.Components != nil {
		components, err := s.buildComponents(ctx, bom.OrgID, bom.ID, req.Components)
		if err != nil {
			return nil, err
		}
		bom.Components = components
	}
	bom.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, bom); err != nil {
		return nil, err
	}
	return toResponse(bom), nil
}

func (s *service) Delete(ctx context.Context, orgID snowflake.ID, id string) error {
	bom, err := s.load(ctx, orgID, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, orgID, bom.ID)
}

// Cost rolls up component costs with wastage applied per component.
func (s *service) Cost(ctx context.Context, orgID snowflake.ID, id string) (*bomdomain.CostResponse, error) {
	bom, err := s.load(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	return &bomdomain.CostResponse{
		BOMID:      bom.ID.String(),
		Components: toComponentResponses(bom.Components),
		TotalCost:  bom.TotalCost(),
		Currency:   s.cfg.Currency,
	}, nil
}

func (s *service) load(ctx context.Context, orgID snowflake.ID, id string) (*bomdomain.BOM, error) {
	if orgID == 0 {
		return nil, bomdomain.ErrInvalidOrganization
	}
	bomID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, bomdomain.ErrNotFound
	}
	bom, err := s.repo.FindByID(ctx, orgID, bomID)
	if err != nil {
		return nil, err
	}
	if bom == nil {
		return nil, bomdomain.ErrNotFound
	}
	return bom, nil
}

func (s *service) buildComponents(ctx context.Context, orgID, bomID snowflake.ID, inputs []bomdomain.ComponentInput) ([]bomdomain.BOMComponent, error) {
	now := s.clock.Now()
	components := make([]bomdomain.BOMComponent, 0, len(inputs))
	for i, in := range inputs {
		componentID, err := snowflake.ParseString(strings.TrimSpace(in.ComponentProductID))
		if err != nil {
			return nil, bomdomain.ErrInvalidComponent
		}
		product, err := s.products.FindByID(ctx, orgID, componentID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, bomdomain.ErrInvalidComponent
		}
		if in.Quantity <= 0 {
			return nil, bomdomain.ErrInvalidQuantity
		}
		if in.WastagePct < 0 || in.WastagePct > 100 {
			return nil, bomdomain.ErrInvalidWastage
		}

		unitCost := in.UnitCost
		if unitCost == 0 {
			unitCost = product.UnitPrice
		}
		components = append(components, bomdomain.BOMComponent{
			ID:                 s.genID.Generate(),
			OrgID:              orgID,
			BOMID:              bomID,
			Position:           i,
			ComponentProductID: componentID,
			Quantity:           in.Quantity,
			WastagePct:         in.WastagePct,
			UnitCost:           unitCost,
			CreatedAt:          now,
			UpdatedAt:          now,
		})
	}
	return components, nil
}

func toComponentResponses(components []bomdomain.BOMComponent) []bomdomain.ComponentResponse {
	out := make([]bomdomain.ComponentResponse, 0, len(components))
	for _, c := range components {
		out = append(out, bomdomain.ComponentResponse{
			ID:                 c.ID.String(),
			ComponentProductID: c.ComponentProductID.String(),
			Quantity:           c.Quantity,
			WastagePct:         c.WastagePct,
			UnitCost:           c.UnitCost,
			TotalQuantity:      c.TotalQuantity(),
			Cost:               c.Cost(),
		})
	}
	return out
}

func toResponse(bom *bomdomain.BOM) *bomdomain.Response {
	return &bomdomain.Response{
		ID:              bom.ID.String(),
		OrgID:           bom.OrgID.String(),
		OutputProductID: bom.OutputProductID.String(),
		Name:            bom.Name,
		Components:      toComponentResponses(bom.Components),
		CreatedAt:       bom.CreatedAt,
		UpdatedAt:       bom.UpdatedAt,
	}
}
