package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"quizmaster/internal/config"
	"quizmaster/internal/database"
	"quizmaster/internal/repository"
	"quizmaster/internal/service"
	"quizmaster/internal/store"
)

func main() {
	// Define subcommands
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)

	// Export flags
	exportOutput := exportCmd.String("output", "", "Output file path (default: questions_YYYYMMDD_HHMMSS.json)")
	exportUser := exportCmd.String("user", "", "Export this user's question store instead of the master set")

	// Import flags
	importInput := importCmd.String("input", "", "Input file path (required)")
	importClear := importCmd.Bool("clear", false, "Clear the master set before import (WARNING: destructive)")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg := config.Load()

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations to ensure schema is up to date
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		backupService := newBackupService(cfg, db, *exportUser != "")
		handleExport(backupService, *exportOutput, *exportUser)

	case "import":
		importCmd.Parse(os.Args[2:])
		if *importInput == "" {
			fmt.Println("Error: -input flag is required")
			importCmd.PrintDefaults()
			os.Exit(1)
		}
		handleImport(newBackupService(cfg, db, false), *importInput, *importClear)

	default:
		printUsage()
		os.Exit(1)
	}
}

func newBackupService(cfg *config.Config, db *database.DB, withUsers bool) *service.BackupService {
	var users service.UserQuestions
	if withUsers {
		partition, err := store.NewPartition(cfg.DatabaseType, cfg.UserStoreDir, db)
		if err != nil {
			log.Fatalf("Failed to open user question stores: %v", err)
		}
		master, err := repository.NewQuestionRepository(db, repository.MasterTable)
		if err != nil {
			log.Fatalf("Failed to open master set: %v", err)
		}
		users = store.New(partition, master, nil)
	}

	backupService, err := service.NewBackupService(db, users)
	if err != nil {
		log.Fatalf("Failed to create backup service: %v", err)
	}
	return backupService
}

func handleExport(backupService *service.BackupService, outputPath, userID string) {
	if outputPath == "" {
		timestamp := time.Now().Format("20060102_150405")
		outputPath = fmt.Sprintf("questions_%s.json", timestamp)
	}

	dir := filepath.Dir(outputPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create output directory: %v", err)
		}
	}

	var err error
	if userID != "" {
		log.Printf("Exporting question store for %s to: %s", userID, outputPath)
		err = backupService.ExportUser(userID, outputPath)
	} else {
		log.Printf("Exporting master set to: %s", outputPath)
		err = backupService.Export(outputPath)
	}
	if err != nil {
		log.Fatalf("Export failed: %v", err)
	}

	fileInfo, err := os.Stat(outputPath)
	if err == nil {
		log.Printf("Export complete! File size: %.2f KB", float64(fileInfo.Size())/1024)
	}
}

func handleImport(backupService *service.BackupService, inputPath string, clearData bool) {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		log.Fatalf("Input file does not exist: %s", inputPath)
	}

	if clearData {
		fmt.Print("WARNING: This will delete every question in the master set. Type 'yes' to confirm: ")
		var confirmation string
		fmt.Scanln(&confirmation)
		if confirmation != "yes" {
			log.Println("Import cancelled")
			return
		}

		if err := backupService.Clear(); err != nil {
			log.Fatalf("Failed to clear master set: %v", err)
		}
	}

	log.Printf("Importing questions from: %s", inputPath)
	summary, err := backupService.Import(inputPath)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	log.Printf("Import complete! %d imported, %d invalid, %d duplicate", summary.Imported, summary.Invalid, summary.Duplicate)
}

func printUsage() {
	fmt.Println("Quiz Master Question Backup Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  backup export [options]    Export questions to a JSON file")
	fmt.Println("  backup import [options]    Import questions into the master set")
	fmt.Println()
	fmt.Println("Export Options:")
	fmt.Println("  -output <file>    Output file path (default: questions_YYYYMMDD_HHMMSS.json)")
	fmt.Println("  -user <token>     Export one user's question store, progress included")
	fmt.Println()
	fmt.Println("Import Options:")
	fmt.Println("  -input <file>     Input file path (required)")
	fmt.Println("  -clear            Clear the master set before import (WARNING: destructive)")
	fmt.Println()
	fmt.Println("The input may be an export file or a bare JSON array of questions:")
	fmt.Println(`  [{"question": "...", "options": ["a", "b"], "answer": "a"}]`)
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  DATABASE_TYPE    Database type: sqlite, postgres, or mysql (default: sqlite)")
	fmt.Println("  DB_PATH          SQLite master set path (default: ./questions.db)")
	fmt.Println("  DATABASE_URL     PostgreSQL or MySQL connection URL")
	fmt.Println("  USER_STORE_DIR   Directory of per-user SQLite stores (default: ./.user_databases)")
}
