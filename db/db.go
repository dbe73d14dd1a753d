package db

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"tender-scout/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type TenderDBOut struct {
	fx.Out

	DB *sqlx.DB `name:"tenders"`
}

type NewSQLXTenderDBParams struct {
	fx.In

	Lc     fx.Lifecycle
	Cfg    *config.Config
	Logger *zap.SugaredLogger
}

// NewSQLXTenderDB opens the tender store and applies pending migrations on
// start. Postgres is used when DB_HOST and DB_NAME are set; the default is a
// local sqlite file, where the single open connection serializes writers,
// which sqlite wants anyway.
func NewSQLXTenderDB(p NewSQLXTenderDBParams) (TenderDBOut, error) {
	driver, dsn, err := DSNFromConfig(p.Cfg)
	if err != nil {
		return TenderDBOut{}, err
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return TenderDBOut{}, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == "sqlite" {
		db.SetMaxOpenConns(1)
	}

	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			if err := db.PingContext(pingCtx); err != nil {
				_ = db.Close()
				return fmt.Errorf("ping %s: %w", driver, err)
			}
			if err := Migrate(ctx, db); err != nil {
				_ = db.Close()
				return err
			}
			p.Logger.Infow("tender_db_ready", "driver", driver)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return db.Close()
		},
	})

	return TenderDBOut{DB: db}, nil
}

// DSNFromConfig resolves the tender store backend: postgres when DB_HOST and
// DB_NAME are set, otherwise the sqlite file at SQLITE_PATH.
func DSNFromConfig(cfg *config.Config) (driver, dsn string, err error) {
	if strings.TrimSpace(cfg.DBHost) != "" && strings.TrimSpace(cfg.DBName) != "" {
		return "pgx", postgresDSN(cfg), nil
	}
	path := strings.TrimSpace(cfg.SQLitePath)
	if path == "" {
		return "", "", fmt.Errorf("neither DB_HOST/DB_NAME nor SQLITE_PATH is set")
	}
	return "sqlite", SQLiteDSN(path), nil
}

func postgresDSN(cfg *config.Config) string {
	u := &url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", cfg.DBHost, cfg.DBPort),
		Path:   cfg.DBName,
	}
	if strings.TrimSpace(cfg.DBUser) != "" {
		if cfg.DBPassword == "" {
			u.User = url.User(cfg.DBUser)
		} else {
			u.User = url.UserPassword(cfg.DBUser, cfg.DBPassword)
		}
	}
	return u.String()
}
