// Package database provides the data access layer for the application.
//
// # Architecture
//
//	database/
//	├── database.go      # Connection setup, migrations, settings
//	├── runs/            # Notebook run history and rendered notes
//	├── settings/        # Application settings
//	└── sync/            # Sync progress tracking
//
// Encrypted Amazon sessions live in the kindle_sessions table and are
// managed by the session package, which takes the same *gorm.DB.
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase("./kindle-notebook.db")
//
//	runsRepo := runs.NewRepository(db.DB)
//	progressRepo := sync.NewRepository(db.DB)
//
// # Interface Implementations
//
//   - sync.Reporter: implements kindle.ProgressReporter
//   - runs.Repository: implements http.RunStore
package database
