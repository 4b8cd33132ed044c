package store

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// runMigrations runs all schema migrations using gormigrate, modeled on
// the teacher's gormigrate migration list shape (one ID per schema
// change, AutoMigrate-driven). Unlike the teacher's store, this schema
// has no full-text-search surface, so the Postgres-only tsvector/GIN
// migrations it used for user_prompts/observations have no equivalent
// here.
func runMigrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "001_jobs_table",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&jobRow{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("jobs")
			},
		},
		{
			ID: "002_job_results_table",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&resultRow{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("job_results")
			},
		},
	})
	return m.Migrate()
}
