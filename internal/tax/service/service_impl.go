package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/sahajbiz/voucherd/internal/clock"
	"github.com/sahajbiz/voucherd/internal/config"
	taxdomain "github.com/sahajbiz/voucherd/internal/tax/domain"
	"go.uber.org/fx"
)

type serviceParam struct {
	fx.In

	Repository taxdomain.Repository
	Config     config.Config
	Clock      clock.Clock
	GenID      *snowflake.Node
}

type service struct {
	repo  taxdomain.Repository
	cfg   config.Config
	clock clock.Clock
	genID *snowflake.Node
}

func NewService(p serviceParam) taxdomain.Service {
	return &service{repo: p.Repository, cfg: p.Config, clock: p.Clock, genID: p.GenID}
}

func (s *service) Get(ctx context.Context, orgID snowflake.ID) (*taxdomain.Response, error) {
	if orgID == 0 {
		return nil, taxdomain.ErrInvalidOrganization
	}
	profile, err := s.repo.FindByOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, taxdomain.ErrNotFound
	}
	return toResponse(profile), nil
}

func (s *service) Upsert(ctx context.Context, req taxdomain.UpsertRequest) (*taxdomain.Response, error) {
	if req.OrgID == 0 {
		return nil, taxdomain.ErrInvalidOrganization
	}

	now := s.clock.Now()
	enabled := true
	if req.IsEnabled != nil {
		enabled = *req.IsEnabled
	}
	profile := &taxdomain.TaxProfile{
		ID:            s.genID.Generate(),
		OrgID:         req.OrgID,
		GSTIN:         strings.ToUpper(strings.TrimSpace(req.GSTIN)),
		HomeStateCode: strings.TrimSpace(req.HomeStateCode),
		DefaultSlab:   req.DefaultSlab,
		IsEnabled:     enabled,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Upsert(ctx, profile); err != nil {
		return nil, err
	}
	return toResponse(profile), nil
}

func toResponse(p *taxdomain.TaxProfile) *taxdomain.Response {
	return &taxdomain.Response{
		ID:            p.ID.String(),
		OrgID:         p.OrgID.String(),
		GSTIN:         p.GSTIN,
		HomeStateCode: p.HomeStateCode,
		DefaultSlab:   p.DefaultSlab,
		IsEnabled:     p.IsEnabled,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
