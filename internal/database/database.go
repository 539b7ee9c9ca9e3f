package database

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mrlokans/crudgate/internal/config"
	"github.com/mrlokans/crudgate/internal/entities"
	"github.com/mrlokans/crudgate/internal/logging"
)

// rolePermissions lists the roles seeded on startup and what they grant.
var rolePermissions = map[string][]string{
	entities.RoleAdmin: {
		entities.PermissionAdminRead,
		entities.PermissionAdminWrite,
		entities.PermissionAdminUpdate,
		entities.PermissionAdminDelete,
	},
	entities.RoleUser: {},
}

type Database struct {
	DB     *gorm.DB
	Driver config.DatabaseDriver
	log    *zap.Logger
}

// NewDatabase opens the configured database, migrates the schema and seeds
// roles and permissions.
func NewDatabase(cfg config.Database, log *zap.Logger) (*Database, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DatabaseDriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	case config.DatabaseDriverSQLite, "":
		dialector = sqlite.Open(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logging.NewGormLogger(log, gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	database := &Database{DB: db, Driver: cfg.Driver, log: log.Named("database")}
	if database.Driver == "" {
		database.Driver = config.DatabaseDriverSQLite
	}

	if err := database.migrate(); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := database.seedRoles(); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to seed roles: %w", err)
	}

	database.log.Info("database initialized", zap.String("driver", string(database.Driver)))
	return database, nil
}

func (d *Database) migrate() error {
	return d.DB.AutoMigrate(
		&entities.Permission{},
		&entities.Role{},
		&entities.User{},
		&entities.LoginSession{},
		&entities.SampleItem{},
	)
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks the connection is alive.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d *Database) seedRoles() error {
	return d.DB.Transaction(func(tx *gorm.DB) error {
		for roleName, permNames := range rolePermissions {
			perms := make([]entities.Permission, 0, len(permNames))
			for _, name := range permNames {
				perm := entities.Permission{Name: name}
				if err := tx.Where(entities.Permission{Name: name}).FirstOrCreate(&perm).Error; err != nil {
					return fmt.Errorf("failed to seed permission %s: %w", name, err)
				}
				perms = append(perms, perm)
			}

			var role entities.Role
			err := tx.Where("name = ?", roleName).First(&role).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				role = entities.Role{Name: roleName}
				if err := tx.Create(&role).Error; err != nil {
					return fmt.Errorf("failed to create role %s: %w", roleName, err)
				}
				d.log.Info("created role", zap.String("role", roleName))
			case err != nil:
				return err
			}

			if len(perms) > 0 {
				if err := tx.Model(&role).Association("Permissions").Append(perms); err != nil {
					return fmt.Errorf("failed to grant permissions to %s: %w", roleName, err)
				}
			}
		}
		return nil
	})
}
