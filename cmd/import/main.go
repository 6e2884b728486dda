package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"reviewhub/database"
	"reviewhub/internal/config"
	"reviewhub/internal/importer"
)

func main() {
	folder := flag.String("folder", "", "folder containing the CSV files")
	flag.Parse()

	if *folder == "" {
		fmt.Fprintln(os.Stderr, "usage: import -folder <path to csv folder>")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	db, err := database.Connect(cfg, logger)
	if err != nil {
		logger.Error("could not connect to database", "error", err)
		os.Exit(1)
	}

	if err := importer.New(db, logger).LoadFolder(*folder); err != nil {
		logger.Error("import failed, all changes rolled back", "error", err)
		os.Exit(1)
	}
	logger.Info("data imported successfully")
}
