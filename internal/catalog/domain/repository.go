package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Create(ctx context.Context, product *Product) error
	FindByID(ctx context.Context, orgID, id snowflake.ID) (*Product, error)
	List(ctx context.Context, filter ListRequest) ([]Product, error)
	Update(ctx context.Context, product *Product) error
}
