// Command migrate applies the storage schema for the configured store driver.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"devconnector/internal/config"
	"devconnector/internal/database"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return fmt.Errorf("usage: go run ./cmd/migrate/main.go <up|status|reset>")
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cmd := strings.ToLower(strings.TrimSpace(flag.Arg(0)))
	switch cmd {
	case "up":
		if cfg.StoreDriver == config.DriverMongo {
			// ConnectMongo ensures indexes as part of connecting.
			client, _, err := database.ConnectMongo(ctx, cfg)
			if err != nil {
				return fmt.Errorf("connect mongo: %w", err)
			}
			defer func() { _ = client.Disconnect(context.Background()) }()
			log.Println("mongo indexes ensured")
			return nil
		}

		db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: false})
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		if err := database.Migrate(db); err != nil {
			return err
		}
		log.Println("automigrations applied")
	case "status":
		if cfg.StoreDriver == config.DriverMongo {
			log.Printf("driver=%s database=%s", cfg.StoreDriver, cfg.MongoDatabase)
			return nil
		}
		db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: false})
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		for _, m := range database.PersistentModels() {
			log.Printf("%T table_exists=%t", m, db.Migrator().HasTable(m))
		}
	case "reset":
		if cfg.IsProduction() {
			return fmt.Errorf("refusing to reset a production store")
		}
		if cfg.StoreDriver == config.DriverMongo {
			client, db, err := database.ConnectMongo(ctx, cfg)
			if err != nil {
				return fmt.Errorf("connect mongo: %w", err)
			}
			defer func() { _ = client.Disconnect(context.Background()) }()
			if err := db.Drop(ctx); err != nil {
				return fmt.Errorf("drop database: %w", err)
			}
			log.Printf("dropped mongo database %s", cfg.MongoDatabase)
			return nil
		}
		db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: false})
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		if err := db.Migrator().DropTable(database.PersistentModels()...); err != nil {
			return fmt.Errorf("drop tables: %w", err)
		}
		if err := database.Migrate(db); err != nil {
			return err
		}
		log.Println("tables dropped and recreated")
	default:
		return usage()
	}

	return nil
}
