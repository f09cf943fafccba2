package app

import (
	"fmt"

	"foundersbook-backend/internal/application/categories"
	"foundersbook-backend/internal/application/dashboard"
	"foundersbook-backend/internal/application/equity"
	"foundersbook-backend/internal/application/expenses"
	"foundersbook-backend/internal/application/notifications"
	"foundersbook-backend/internal/application/parity"
	"foundersbook-backend/internal/application/projections"
	"foundersbook-backend/internal/application/tasks"
	"foundersbook-backend/internal/application/users"
	"foundersbook-backend/internal/config"
	"foundersbook-backend/internal/infrastructure/database"
	"foundersbook-backend/internal/infrastructure/messaging"
	"foundersbook-backend/internal/middleware"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Resources are the external connections shared by the HTTP server, the
// scheduler and the CLI. Rdb and AMQP are optional.
type Resources struct {
	DB   *gorm.DB
	Rdb  *redis.Client
	AMQP *messaging.Client
}

// Connect opens the database (migrating SQLite or when AUTO_MIGRATE is set),
// Redis and the AMQP broker. A broker that cannot be reached is logged and
// notifications are then stored without being dispatched.
func Connect(cfg *config.Config) (*Resources, error) {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if cfg.IsSQLite() || cfg.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
	}
	res := &Resources{DB: db}

	if res.Rdb, err = middleware.ConnectRedis(cfg.RedisURL); err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	if cfg.AMQPURL != "" {
		client, err := messaging.Dial(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			log.Warn().Err(err).Msg("AMQP unavailable, notifications will not be dispatched")
		} else {
			res.AMQP = client
		}
	}
	return res, nil
}

// Dispatcher returns the AMQP dispatcher, or a no-op one without a broker.
func (r *Resources) Dispatcher() notifications.Dispatcher {
	if r.AMQP == nil {
		return notifications.NopDispatcher{}
	}
	return r.AMQP
}

func (r *Resources) Close() {
	if r.AMQP != nil {
		_ = r.AMQP.Close()
	}
	if r.Rdb != nil {
		_ = r.Rdb.Close()
	}
	if r.DB != nil {
		if sqlDB, err := r.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

type Services struct {
	Equity        *equity.Service
	Parity        *parity.Service
	Notifications *notifications.Service
	Expenses      *expenses.Service
	Projections   *projections.Service
	Categories    *categories.Service
	Users         *users.Service
	Tasks         *tasks.Service
	Dashboard     *dashboard.Service
}

// NewServices wires every application service onto db.
func NewServices(cfg *config.Config, db *gorm.DB, dispatcher notifications.Dispatcher) (*Services, error) {
	policy, err := parity.ParsePolicy(cfg.ParitySettledPolicy)
	if err != nil {
		return nil, err
	}
	s := &Services{
		Equity:      &equity.Service{DB: db},
		Categories:  &categories.Service{DB: db},
		Users:       &users.Service{DB: db},
		Tasks:       &tasks.Service{DB: db},
		Projections: &projections.Service{DB: db},
	}
	s.Parity = &parity.Service{DB: db, Equity: s.Equity, Policy: policy}
	s.Notifications = &notifications.Service{DB: db, Dispatcher: dispatcher}
	s.Expenses = &expenses.Service{DB: db, Parity: s.Parity, Notifier: s.Notifications}
	s.Projections.Equity = s.Equity
	s.Dashboard = &dashboard.Service{DB: db, Equity: s.Equity, Tasks: s.Tasks, Parity: s.Parity}
	return s, nil
}
