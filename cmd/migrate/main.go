// Command migrate applies the embedded PostgreSQL migrations.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/Lalman888/ai-social-backend/internal/config"
	"github.com/Lalman888/ai-social-backend/internal/store/pg"
	migrations "github.com/Lalman888/ai-social-backend/migrations/postgres"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	dsn := flag.String("dsn", "", "override the storage DSN")
	flag.Parse()

	_ = godotenv.Load()

	target := *dsn
	if target == "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		if cfg.Storage.Driver != "postgres" {
			return fmt.Errorf("storage driver is %q, nothing to migrate", cfg.Storage.Driver)
		}
		target = cfg.Storage.DSN
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := pg.New(ctx, target, pg.Tuning{MaxConns: 2})
	if err != nil {
		return err
	}
	defer db.Close()

	applied, err := db.Migrate(ctx, migrations.FS)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		fmt.Println("up to date")
		return nil
	}
	fmt.Printf("applied %d migration(s): %v\n", len(applied), applied)
	return nil
}
