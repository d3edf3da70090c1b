package Models

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

func init() {
	// Monetary values go over the wire as plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

func Connect() {
	path := os.Getenv("DB_PATH")
	if path == "" {
		path = "database.db"
	}

	connection, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed to connect to database")
	}
	DB = connection

	if err := Migrate(DB); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}
	log.Info().Str("path", path).Msg("Database connected")
}

// Migrate runs the schema migrations in dependency order.
func Migrate(db *gorm.DB) error {
	// 1. Models with no dependencies
	if err := db.AutoMigrate(
		&User{},
		&Product{},
	); err != nil {
		return err
	}

	// 2. Models referencing users
	if err := db.AutoMigrate(
		&Customer{},
		&Expense{},
	); err != nil {
		return err
	}

	// 3. Sales last: they reference customers, products and users
	return db.AutoMigrate(
		&Sale{},
		&SaleItem{},
	)
}
