package main

import (
	"fmt"
	"log"
	"os"

	"platform-service/config"
	"platform-service/internal/store"
	"platform-service/internal/util"

	"go.uber.org/zap"
)

const usage = "usage: migrate up|down|reset|version"

type schema interface {
	Up() error
	Down() error
	Reset() error
	Version() (uint, bool, error)
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	command := os.Args[1]

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()
	logger := util.GetLogger()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// closes db as well
	migrator, err := db.NewMigrator()
	if err != nil {
		db.Close()
		logger.Fatal("Failed to prepare migrations", zap.Error(err))
	}
	defer migrator.Close()

	if err := run(migrator, command, logger); err != nil {
		logger.Error("Migration failed", zap.String("command", command), zap.Error(err))
		migrator.Close()
		util.SyncLogger()
		os.Exit(1)
	}
}

func run(migrator schema, command string, logger *zap.Logger) error {
	switch command {
	case "up":
		if err := migrator.Up(); err != nil {
			return err
		}
	case "down":
		if err := migrator.Down(); err != nil {
			return err
		}
	case "reset":
		if err := migrator.Reset(); err != nil {
			return err
		}
	case "version":
	default:
		return fmt.Errorf("unknown command %q, %s", command, usage)
	}

	version, dirty, err := migrator.Version()
	if err != nil {
		return err
	}
	logger.Info("Schema version", zap.String("command", command), zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}
