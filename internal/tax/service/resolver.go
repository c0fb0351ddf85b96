package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/sahajbiz/voucherd/internal/config"
	taxdomain "github.com/sahajbiz/voucherd/internal/tax/domain"
	"go.uber.org/fx"
)

type resolverParam struct {
	fx.In

	Repository taxdomain.Repository
	Config     config.Config
}

type resolver struct {
	repo taxdomain.Repository
	cfg  config.Config
}

func NewResolver(p resolverParam) taxdomain.Resolver {
	return &resolver{repo: p.Repository, cfg: p.Config}
}

func (r *resolver) ResolveSupplyType(ctx context.Context, orgID snowflake.ID, placeOfSupply string) (taxdomain.SupplyType, error) {
	homeState := r.cfg.HomeStateCode
	profile, err := r.repo.FindByOrg(ctx, orgID)
	if err != nil {
		return "", err
	}
	if profile != nil && profile.IsEnabled && profile.HomeStateCode != "" {
		homeState = profile.HomeStateCode
	}
	return taxdomain.SupplyTypeFor(homeState, placeOfSupply), nil
}

func (r *resolver) ResolveSlab(ctx context.Context, orgID snowflake.ID, raw *float64) (float64, error) {
	if raw != nil {
		return taxdomain.NearestSlab(*raw), nil
	}
	profile, err := r.repo.FindByOrg(ctx, orgID)
	if err != nil {
		return 0, err
	}
	if profile != nil && profile.IsEnabled && profile.DefaultSlab != nil {
		return *profile.DefaultSlab, nil
	}
	return taxdomain.DefaultSlab, nil
}
