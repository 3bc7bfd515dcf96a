package db

import (
	"fmt"
	"log"

	"github.com/jinzhu/gorm"
	"gopkg.in/gormigrate.v1"
)

func (db *DB) Migrate() error {
	options := &gormigrate.Options{
		TableName:      "migrations",
		IDColumnName:   "id",
		IDColumnSize:   255,
		UseTransaction: false,
	}

	// $ date '+%Y%m%d%H%M'
	migrations := []*gormigrate.Migration{
		construct("202410180900", migrateInitCatalog),
		construct("202410180915", migrateSettings),
		construct("202410181030", migrateCarts),
		construct("202410181200", migrateOrders),
		construct("202410211745", migrateOrderCustomerIDX),
	}

	return gormigrate.
		New(db.DB, options, migrations).
		Migrate()
}

func construct(id string, f func(*gorm.DB) error) *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: id,
		Migrate: func(db *gorm.DB) error {
			tx := db.Begin()
			defer tx.Commit()
			if err := f(tx); err != nil {
				return fmt.Errorf("%q: %w", id, err)
			}
			log.Printf("migration '%s' finished", id)
			return nil
		},
		Rollback: func(*gorm.DB) error {
			return nil
		},
	}
}

func migrateInitCatalog(tx *gorm.DB) error {
	return tx.AutoMigrate(
		Artist{},
		Genre{},
		Album{},
		Track{},
	).
		Error
}

func migrateSettings(tx *gorm.DB) error {
	return tx.AutoMigrate(
		Setting{},
	).
		Error
}

func migrateCarts(tx *gorm.DB) error {
	return tx.AutoMigrate(
		Cart{},
		CartItem{},
	).
		Error
}

func migrateOrders(tx *gorm.DB) error {
	return tx.AutoMigrate(
		Order{},
		OrderDetail{},
	).
		Error
}

// the dashboard counts distinct customer emails
func migrateOrderCustomerIDX(tx *gorm.DB) error {
	return tx.
		Model(Order{}).
		AddIndex("idx_orders_customer_email", "customer_email").
		Error
}
