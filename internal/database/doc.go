// Package database provides the data access layer for the application.
//
// The layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── cases/           # Atomic save of a fetched case bundle
//	└── audit/           # Fetch and commit audit trail
//
// Each sub-package provides a Repository type built on the shared *gorm.DB:
//
//	db, err := database.NewDatabase("./sei-import.db")
//	casesRepo := cases.NewRepository(db.DB)
//	result, err := casesRepo.SaveComplete(ctx, req)
package database
