// Package pgstore keeps the taxon graph in PostgreSQL. The connection
// pool comes from pgx, tables are created by GORM and queries run through
// sqlstore.
package pgstore

import (
	"context"
	"fmt"

	"github.com/gnames/gntaxon/internal/iostore/sqlstore"
	"github.com/gnames/gntaxon/pkg/config"
	"github.com/gnames/gntaxon/pkg/graph"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to PostgreSQL and makes sure the tables exist.
func Open(ctx context.Context, cfg config.DatabaseConfig) (graph.Store, error) {
	pool, err := connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	db := stdlib.OpenDBFromPool(pool)
	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{Conn: db}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	if err != nil {
		db.Close()
		pool.Close()
		return nil, sqlstore.SchemaError(sqlstore.Postgres.Name, err)
	}
	if err = Migrate(gormDB); err != nil {
		db.Close()
		pool.Close()
		return nil, sqlstore.SchemaError(sqlstore.Postgres.Name, err)
	}

	return &store{Store: sqlstore.New(db, sqlstore.Postgres), pool: pool}, nil
}

// store closes the pool after the database handle built on top of it.
type store struct {
	graph.Store
	pool *pgxpool.Pool
}

func (s *store) Close() error {
	err := s.Store.Close()
	s.pool.Close()
	return err
}

func connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
		cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, NewConnectionError(cfg, err)
	}
	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, NewConnectionError(cfg, err)
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, NewConnectionError(cfg, err)
	}
	return pool, nil
}
