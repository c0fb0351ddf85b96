package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"

	bomdomain "github.com/sahajbiz/voucherd/internal/bom/domain"
	catalogdomain "github.com/sahajbiz/voucherd/internal/catalog/domain"
	organizationdomain "github.com/sahajbiz/voucherd/internal/organization/domain"
	stockdomain "github.com/sahajbiz/voucherd/internal/stock/domain"
	taxdomain "github.com/sahajbiz/voucherd/internal/tax/domain"
	voucherdomain "github.com/sahajbiz/voucherd/internal/voucher/domain"
)

// RunMigrations applies the embedded SQL migrations on postgres.
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Do not call migrator.Close here because it would close the shared *sql.DB.

	return nil
}

// AutoMigrate keeps sqlite and mysql usable without the SQL migration path.
func AutoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&organizationdomain.Organization{},
		&stockdomain.Warehouse{},
		&catalogdomain.Product{},
		&stockdomain.StockLevel{},
		&taxdomain.TaxProfile{},
		&voucherdomain.Voucher{},
		&voucherdomain.Line{},
		&bomdomain.BOM{},
		&bomdomain.BOMComponent{},
	)
}
