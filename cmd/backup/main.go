package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"cogniplay/internal/config"
	"cogniplay/internal/database"
	"cogniplay/internal/localstore"
	"cogniplay/internal/repository"
	"cogniplay/internal/service"
	"cogniplay/internal/storage"
)

func main() {
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)

	exportOutput := exportCmd.String("output", "", "Output file path (default: backup_YYYYMMDD_HHMMSS.json)")
	importInput := importCmd.String("input", "", "Input file path (required)")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	store, closeStore, err := openStorage(cfg)
	if err != nil {
		logger.Fatal("failed to open storage", zap.Error(err))
	}
	defer closeStore()

	backupService := service.NewBackupService(store, logger)

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		handleExport(backupService, logger, *exportOutput)

	case "import":
		importCmd.Parse(os.Args[2:])
		if *importInput == "" {
			fmt.Println("Error: -input flag is required")
			importCmd.PrintDefaults()
			os.Exit(1)
		}
		if err := backupService.Import(*importInput); err != nil {
			logger.Fatal("import failed", zap.Error(err))
		}

	default:
		printUsage()
		os.Exit(1)
	}
}

func handleExport(backupService *service.BackupService, logger *zap.Logger, outputPath string) {
	if outputPath == "" {
		outputPath = fmt.Sprintf("backup_%s.json", time.Now().Format("20060102_150405"))
	}

	if dir := filepath.Dir(outputPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Fatal("failed to create output directory", zap.Error(err))
		}
	}

	if err := backupService.Export(outputPath); err != nil {
		logger.Fatal("export failed", zap.Error(err))
	}
}

func openStorage(cfg *config.Config) (storage.Backend, func() error, error) {
	switch strings.ToLower(cfg.StorageBackend) {
	case "sql", "":
		db, err := database.Open(cfg.DatabaseType, cfg.DatabaseURL, cfg.DatabasePath)
		if err != nil {
			return nil, nil, err
		}
		if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
			db.Close()
			return nil, nil, err
		}
		return repository.NewBackend(db), db.Close, nil

	case "local":
		fileStore, err := localstore.NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return localstore.NewDatabase(fileStore), func() error { return nil }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported storage backend: %s", cfg.StorageBackend)
	}
}

func printUsage() {
	fmt.Println("CogniPlay Backup Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  backup export [options]    Export all identities to a JSON file")
	fmt.Println("  backup import [options]    Import identities from a JSON file")
	fmt.Println()
	fmt.Println("Export Options:")
	fmt.Println("  -output <file>    Output file path (default: backup_YYYYMMDD_HHMMSS.json)")
	fmt.Println()
	fmt.Println("Import Options:")
	fmt.Println("  -input <file>     Input file path (required)")
	fmt.Println()
	fmt.Println("Backups are written through the storage ports, so a dump taken from")
	fmt.Println("the SQL backend can be restored into the local one and vice versa.")
	fmt.Println("Identities whose email already exists are skipped.")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  STORAGE_BACKEND    sql or local (default: sql)")
	fmt.Println("  DB_TYPE            sqlite, postgres, or mysql (default: sqlite)")
	fmt.Println("  DB_PATH            SQLite database path (default: ./cogniplay.db)")
	fmt.Println("  DB_URL             PostgreSQL or MySQL connection URL")
	fmt.Println("  DATA_DIR           Local backend data directory (default: ./data)")
}
