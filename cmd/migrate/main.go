package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/kirillkom/wardrobe-assistant/internal/config"
	"github.com/kirillkom/wardrobe-assistant/internal/infrastructure/repository/sqldb"
	"github.com/kirillkom/wardrobe-assistant/internal/observability/logging"
)

func main() {
	down := flag.Bool("down", false, "roll back the latest migration instead of applying pending ones")
	flag.Parse()

	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("wardrobe-migrate", cfg.LogLevel))

	db, err := sqldb.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		slog.Error("migrate_open_failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if *down {
		err = sqldb.MigrateDown(db, cfg.DBDriver)
	} else {
		err = sqldb.Migrate(db, cfg.DBDriver)
	}
	if err != nil {
		slog.Error("migrate_failed", "error", err)
		os.Exit(1)
	}
}
