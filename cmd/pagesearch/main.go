// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/poiesic/pagesearch"
	"github.com/poiesic/pagesearch/ingestion"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	defaults := pagesearch.DefaultConfig()

	return &cli.App{
		Name:  "pagesearch",
		Usage: "Whole-word phrase search over the pages of PDF books",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"PAGESEARCH_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory",
				Value:   defaults.DBPath,
				EnvVars: []string{"PAGESEARCH_DB"},
			},
			&cli.IntFlag{
				Name:    "max-retries",
				Usage:   "Maximum attempts for a conflicting write",
				Value:   defaults.MaxRetries,
				EnvVars: []string{"PAGESEARCH_MAX_RETRIES"},
			},
			&cli.DurationFlag{
				Name:    "retry-delay",
				Usage:   "Base delay for exponential backoff between conflicting writes",
				Value:   defaults.RetryDelay,
				EnvVars: []string{"PAGESEARCH_RETRY_DELAY"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the HTTP search API",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "listen",
						Usage:   "Address to listen on",
						Value:   defaults.ListenAddr,
						EnvVars: []string{"PAGESEARCH_LISTEN"},
					},
				},
			},
			{
				Name:      "import",
				Usage:     "Import PDF files as books of a subject",
				ArgsUsage: "FILE...",
				Action:    importCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "subject",
						Aliases:  []string{"s"},
						Usage:    "Subject the books belong to",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "title",
						Aliases: []string{"t"},
						Usage:   "Book title (single file only; defaults to the file name)",
					},
					&cli.StringFlag{
						Name:  "password",
						Usage: "Password for encrypted PDFs",
					},
					&cli.IntFlag{
						Name:    "pool-size",
						Usage:   "Number of concurrent page writers",
						Value:   defaults.PoolSize,
						EnvVars: []string{"PAGESEARCH_POOL_SIZE"},
					},
				},
			},
			{
				Name:   "subjects",
				Usage:  "List all subjects",
				Action: subjectsCommand,
			},
			{
				Name:   "titles",
				Usage:  "List the book titles of a subject",
				Action: titlesCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "subject",
						Aliases:  []string{"s"},
						Usage:    "Subject to list",
						Required: true,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search a phrase across books of a subject",
				ArgsUsage: "PHRASE",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "subject",
						Aliases:  []string{"s"},
						Usage:    "Subject to search",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:    "title",
						Aliases: []string{"t"},
						Usage:   "Book title to search (repeatable; defaults to every book of the subject)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print results as JSON",
					},
				},
			},
			{
				Name:   "reindex",
				Usage:  "Drop and rebuild all indexes",
				Action: reindexCommand,
			},
		},
	}
}

// openDatabase opens the database named by the global flags.
func openDatabase(c *cli.Context, opts ...pagesearch.ConfigOption) (*pagesearch.Database, error) {
	cfg := pagesearch.NewConfig(append([]pagesearch.ConfigOption{
		pagesearch.WithDBPath(c.String("db")),
		pagesearch.WithMaxRetries(c.Int("max-retries")),
		pagesearch.WithRetryDelay(c.Duration("retry-delay")),
	}, opts...)...)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	db, err := pagesearch.Open(c.Context, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func serveCommand(c *cli.Context) error {
	db, err := openDatabase(c, pagesearch.WithListenAddr(c.String("listen")))
	if err != nil {
		return err
	}
	defer db.Close()

	srv, err := db.NewServer()
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.ListenAndServe(ctx, db.Config().ListenAddr)
}

func importCommand(c *cli.Context) error {
	files := c.Args().Slice()
	if len(files) == 0 {
		return errors.New("at least one PDF file is required")
	}
	title := c.String("title")
	if title != "" && len(files) > 1 {
		return errors.New("--title can only be used with a single file")
	}

	db, err := openDatabase(c, pagesearch.WithPoolSize(c.Int("pool-size")))
	if err != nil {
		return err
	}
	defer db.Close()

	importer, err := db.NewImporter(ingestion.WithExtractor(ingestion.NewPDFExtractor(c.String("password"))))
	if err != nil {
		return fmt.Errorf("failed to create importer: %w", err)
	}
	defer importer.Release()

	var errs []error
	for _, file := range files {
		summary, err := importer.ImportPDFFile(c.Context, c.String("subject"), title, file)
		if err != nil {
			slog.Error("error importing file", "file", file, "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", file, err))
		}
		fmt.Fprintf(c.App.Writer, "%s: %d pages written (%d new, %d failed)\n",
			file, summary.Pages, summary.Created, summary.Failed)
	}
	return errors.Join(errs...)
}

func subjectsCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	subjects, err := db.BookRepository().ListDistinctSubjects(c.Context)
	if err != nil {
		return err
	}
	for _, subject := range subjects {
		fmt.Fprintln(c.App.Writer, subject)
	}
	return nil
}

func titlesCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	titles, err := db.BookRepository().ListBookTitlesBySubject(c.Context, c.String("subject"))
	if err != nil {
		return err
	}
	for _, title := range titles {
		fmt.Fprintln(c.App.Writer, title)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("a search phrase is required")
	}
	phrase := strings.Join(c.Args().Slice(), " ")
	subject := c.String("subject")

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	titles := c.StringSlice("title")
	if len(titles) == 0 {
		titles, err = db.BookRepository().ListBookTitlesBySubject(c.Context, subject)
		if err != nil {
			return err
		}
		if len(titles) == 0 {
			return fmt.Errorf("no books in subject %q", subject)
		}
	}

	searcher, err := db.NewSearcher()
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}
	results, err := searcher.Search(c.Context, subject, phrase, titles)
	if err != nil {
		return err
	}

	if c.Bool("json") {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	// Print in requested title order
	total := 0
	for _, title := range titles {
		matches, ok := results[title]
		if !ok {
			continue
		}
		delete(results, title)
		for _, match := range matches {
			fmt.Fprintf(c.App.Writer, "%s p.%d: %s\n", title, match.PageNum, oneLine(match.Text))
			total++
		}
	}
	fmt.Fprintf(c.App.Writer, "%d matches\n", total)
	return nil
}

func reindexCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	return db.RebuildIndexes(c.Context)
}

// oneLine collapses whitespace so a page prints on a single line.
func oneLine(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

