package cli

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/lehmann314159/rango/internal/catalog"
	"github.com/lehmann314159/rango/internal/config"
	"github.com/lehmann314159/rango/internal/database"
	"github.com/lehmann314159/rango/internal/gormstore"
	"github.com/lehmann314159/rango/internal/repository"
)

// openStore connects the catalog store selected by database.driver. The
// returned func closes it.
func openStore(cfg *config.Config, logger *zap.Logger) (catalog.Store, func() error, error) {
	switch cfg.Database.Driver {
	case config.DriverSQL:
		db, err := database.New(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using SQLite catalog", zap.String("data_dir", cfg.DataDir))
		return repository.New(db), db.Close, nil
	case config.DriverGORM:
		s, err := gormstore.Open(cfg.Database.URL, logger)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using GORM catalog")
		return s, s.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
}
