package main

import (
	"errors"
	"flag"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jt828/functrace/internal/config"
	"github.com/jt828/functrace/pkg/observability"
	"github.com/jt828/functrace/pkg/observability/implementation"
)

func main() {
	direction := flag.String("direction", "up", "migration direction: up or down")
	steps := flag.Int("steps", 0, "number of steps to migrate (0 = all)")
	source := flag.String("source", "file://migrations", "migration source url")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := implementation.NewZapLogger(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		panic(err)
	}

	if cfg.Database.DSN == "" {
		log.Fatal("DATABASE_DSN is required")
	}

	m, err := migrate.New(*source, cfg.Database.DSN)
	if err != nil {
		log.Fatal("failed to create migrate instance", observability.Err(err))
	}
	defer m.Close()

	switch *direction {
	case "up":
		if *steps > 0 {
			err = m.Steps(*steps)
		} else {
			err = m.Up()
		}
	case "down":
		if *steps > 0 {
			err = m.Steps(-*steps)
		} else {
			err = m.Down()
		}
	default:
		log.Fatal("unknown direction", observability.String("direction", *direction))
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatal("migration failed", observability.Err(err))
	}

	version, dirty, _ := m.Version()
	log.Info("migration completed",
		observability.String("direction", *direction),
		observability.Any("version", version),
		observability.Any("dirty", dirty),
	)
}
