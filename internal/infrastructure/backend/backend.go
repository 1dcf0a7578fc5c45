// Package backend elige la persistencia según DB_DRIVER y expone los repositorios
// que necesitan los casos de uso.
package backend

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// Backend repositorios de lectura más el ejecutor de transacciones.
type Backend struct {
	TxRunner   inventory.TxRunner
	Warehouses repository.WarehouseRepository
	ExitOrders repository.ExitOrderRepository
	Reports    repository.ReportRepository
	Users      repository.UserRepository

	close func()
}

// Close libera las conexiones. Seguro de llamar más de una vez.
func (b *Backend) Close() {
	if b.close != nil {
		b.close()
		b.close = nil
	}
}

// Open conecta con PostgreSQL (aplicando el esquema si DB_AUTO_MIGRATE) o crea
// el store en memoria con datos de demostración.
func Open(ctx context.Context, cfg config.DBConfig, log *logger.Logger) (*Backend, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		s := memory.NewDemoStore()
		log.Warn().Msg("DB_DRIVER=memory: los datos se pierden al reiniciar")
		return &Backend{
			TxRunner:   s,
			Warehouses: s.Warehouses(),
			ExitOrders: s.ExitOrders(),
			Reports:    s.Reports(),
			Users:      s.Users(),
		}, nil
	case config.DriverPostgres, "":
		pool, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if cfg.AutoMigrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
			log.Info().Msg("esquema aplicado")
		}
		return &Backend{
			TxRunner:   postgres.NewTxRunner(pool),
			Warehouses: postgres.NewWarehouseRepository(pool),
			ExitOrders: postgres.NewExitOrderRepository(pool),
			Reports:    postgres.NewReportRepository(pool),
			Users:      postgres.NewUserRepository(pool),
			close:      pool.Close,
		}, nil
	default:
		return nil, fmt.Errorf("backend: driver desconocido %q", cfg.Driver)
	}
}
