package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	FindByOrg(ctx context.Context, orgID snowflake.ID) (*TaxProfile, error)
	Upsert(ctx context.Context, profile *TaxProfile) error
}
