package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Create(ctx context.Context, bom *BOM) error
	FindByID(ctx context.Context, orgID, id snowflake.ID) (*BOM, error)
	FindByOutputProduct(ctx context.Context, orgID, productID snowflake.ID) (*BOM, error)
	List(ctx context.Context, orgID snowflake.ID) ([]BOM, error)
	Update(ctx context.Context, bom *BOM) error
	Delete(ctx context.Context, orgID, id snowflake.ID) error
}
