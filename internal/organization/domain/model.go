// Package domain holds the organization model. Every other table is
// scoped by org_id; a default org is seeded on startup.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Organization struct {
	ID snowflake.ID `gorm:"primaryKey"`

	Name string `gorm:"type:text;not null"`
	Slug string `gorm:"type:text;not null;uniqueIndex"`

	IsDefault bool `gorm:"column:is_default;not null;default:false"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Organization) TableName() string { return "organizations" }
