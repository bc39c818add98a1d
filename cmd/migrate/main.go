// Command migrate applies or rolls back the database schema using the
// same configuration sources as the server.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/JaimeStill/docpages/internal/config"
	"github.com/JaimeStill/docpages/internal/migrations"
	"github.com/JaimeStill/docpages/pkg/logging"
	"github.com/joho/godotenv"
)

func main() {
	steps := flag.Int("steps", 0, "Migrations to roll back with down; 0 rolls back all")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Fatal("env file load failed:", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed:", err)
	}
	logger := logging.New(&cfg.Logging)

	switch flag.Arg(0) {
	case "up":
		err = migrations.Up(cfg.Database.URL(), logger)
	case "down":
		err = migrations.Down(cfg.Database.URL(), *steps, logger)
	default:
		fmt.Println("usage: migrate [-steps n] up|down")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err != nil {
		log.Fatal(err)
	}
}
