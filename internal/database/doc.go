// Package database opens the gorm connection, migrates the schema and seeds
// the built-in roles.
//
//	database/
//	├── database.go      # Connection setup, migrations, role seeding
//	├── users/           # Users with roles and permissions
//	├── loginsessions/   # Login sessions (gorm table or scs store)
//	└── sampleitems/     # Sample item CRUD and filtering
//
// Each sub-package provides a Repository over *gorm.DB and reports missing
// rows as apperr EntityNotFound errors:
//
//	db, err := database.NewDatabase(cfg.Database, log)
//	usersRepo := users.NewRepository(db.DB, log)
//	user, err := usersRepo.GetByEmail(ctx, "admin@fawapp.com")
package database
