// Command import-questions loads a question bank from an .xlsx or .csv file
// into the data directory, or exports the current bank as a workbook.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/stemsi/exstem-proctor/internal/config"
	"github.com/stemsi/exstem-proctor/internal/logger"
	"github.com/stemsi/exstem-proctor/internal/repository"
	"github.com/stemsi/exstem-proctor/internal/service"
	"github.com/stemsi/exstem-proctor/internal/spreadsheet"
)

func main() {
	cfg := config.Load()

	dataDir := flag.String("data-dir", cfg.DataDir, "directory holding questions.json")
	exportPath := flag.String("export", "", "write the current bank to this .xlsx file instead of importing")
	dryRun := flag.Bool("dry-run", false, "parse and report without saving")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <questions.xlsx|questions.csv>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	questionRepo, err := repository.NewQuestionRepository(*dataDir, repository.SeedQuestions(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open question bank")
	}
	questionService := service.NewQuestionService(questionRepo, 0)

	// ─── Export ────────────────────────────────────────────────────────
	if *exportPath != "" {
		questions, err := questionService.List(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to list questions")
		}
		f, err := os.Create(*exportPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create export file")
		}
		if err := spreadsheet.ExportQuestions(f, questions); err != nil {
			f.Close()
			log.Fatal().Err(err).Msg("Failed to write workbook")
		}
		if err := f.Close(); err != nil {
			log.Fatal().Err(err).Msg("Failed to close export file")
		}
		fmt.Printf("Exported %d questions to %s\n", len(questions), *exportPath)
		return
	}

	// ─── Import ────────────────────────────────────────────────────────
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	f, err := os.Open(path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open import file")
	}
	defer f.Close()

	result, err := spreadsheet.ParseQuestions(f, path)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("Failed to parse import file")
	}

	fmt.Printf("=== Importing %s ===\n", path)
	fmt.Printf("Rows processed: %d, valid: %d, rejected: %d\n",
		result.TotalProcessed, len(result.Questions), len(result.Errors))
	for _, e := range result.Errors {
		fmt.Println("  " + e)
	}

	if *dryRun {
		fmt.Println("Dry run: nothing saved.")
		return
	}

	imported, err := questionService.Import(ctx, result.Questions)
	if err != nil {
		log.Fatal().Err(err).Int("imported", imported).Msg("Import stopped early")
	}
	fmt.Printf("Success! %d questions added to %s\n", imported, *dataDir)
}
