// Copyright 2025 Auricle Systems
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
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	auricle "github.com/auricle-ai/auricle"
	"github.com/auricle-ai/auricle/ai"
	"github.com/auricle-ai/auricle/ai/openai"
	"github.com/auricle-ai/auricle/core"
	"github.com/auricle-ai/auricle/ingest"
	"github.com/auricle-ai/auricle/reembed"
	"github.com/auricle-ai/auricle/search"
	"github.com/auricle-ai/auricle/storage/badger"
)

func main() {
	app := &cli.App{
		Name:  "auricle",
		Usage: "Semantic retrieval over chunked, embedded text",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Chunk, embed and index a source under an owner scope",
				Action: ingestCommand,
				Flags: append(dbAndEmbedderFlags(),
					&cli.StringFlag{
						Name:     "scope",
						Aliases:  []string{"s"},
						Usage:    "Owner scope the content belongs to",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "source",
						Usage: "Source type: message, document or transcript",
						Value: "document",
					},
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Read content from file instead of stdin",
					},
					&cli.StringSliceFlag{
						Name:  "tag",
						Usage: "Tag to attach to every chunk (repeatable)",
					},
					&cli.BoolFlag{
						Name:  "wait",
						Usage: "Block until the job reaches a terminal stage",
						Value: true,
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Search indexed chunks",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: append(dbAndEmbedderFlags(),
					&cli.StringSliceFlag{
						Name:    "scope",
						Aliases: []string{"s"},
						Usage:   "Limit results to these owner scopes (repeatable)",
					},
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Maximum number of results",
						Value:   search.DefaultTopK,
					},
				),
			},
			{
				Name:   "delete",
				Usage:  "Delete all chunks of an owner scope",
				Action: deleteCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:     "scope",
						Aliases:  []string{"s"},
						Usage:    "Owner scope to delete",
						Required: true,
					},
				},
			},
			{
				Name:      "job",
				Usage:     "Show the status of an ingestion job",
				ArgsUsage: "<job-id>",
				Action:    jobCommand,
				Flags:     []cli.Flag{dbFlag()},
			},
			{
				Name:   "reembed",
				Usage:  "Reembed all indexed chunks with new embeddings",
				Action: reembedCommand,
				Flags: append(dbAndEmbedderFlags(),
					&cli.StringSliceFlag{
						Name:    "scope",
						Aliases: []string{"s"},
						Usage:   "Limit to these owner scopes (repeatable)",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to process in each batch",
						Value: reembed.DefaultBatchSize,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N chunks",
						Value: reembed.DefaultReportInterval,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func dbFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "db",
		Aliases:  []string{"d"},
		Usage:    "Path to BadgerDB database directory",
		Required: true,
	}
}

func dbAndEmbedderFlags() []cli.Flag {
	return []cli.Flag{
		dbFlag(),
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
	}
}

func openCorpus(c *cli.Context) (*auricle.Corpus, error) {
	cfg := ai.NewConfig(
		ai.WithHost(c.String("embedding-host")),
		ai.WithModel(c.String("embedding-model")),
	)
	return auricle.Open(c.String("db"), auricle.WithAIConfig(cfg))
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	sourceType, err := core.ParseSourceType(c.String("source"))
	if err != nil {
		return err
	}

	content, err := readContent(c.String("file"))
	if err != nil {
		return err
	}

	source := ingest.Source{Type: sourceType, Tags: c.StringSlice("tag")}
	if sourceType == core.SourceTypeTranscript {
		source.Segments, err = parseSegments(content)
		if err != nil {
			return err
		}
	} else {
		source.Text = content
	}

	corpus, err := openCorpus(c)
	if err != nil {
		return fmt.Errorf("failed to open corpus: %w", err)
	}
	defer corpus.Close()

	pipeline, err := corpus.NewPipeline()
	if err != nil {
		return err
	}
	defer pipeline.Release()

	id, err := pipeline.Ingest(ctx, c.String("scope"), source)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}
	fmt.Printf("job %s queued for scope %q\n", id, c.String("scope"))

	if !c.Bool("wait") {
		return nil
	}

	job, err := waitForJob(ctx, pipeline, id)
	if err != nil {
		return err
	}
	printJob(job)
	if job.Stage == core.JobStageFailed {
		return fmt.Errorf("job failed: %s", job.LastError)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("query is required")
	}

	corpus, err := openCorpus(c)
	if err != nil {
		return fmt.Errorf("failed to open corpus: %w", err)
	}
	defer corpus.Close()

	searcher, err := corpus.NewSearcher()
	if err != nil {
		return err
	}

	resp, err := searcher.Search(context.Background(),
		query, search.ScopeFilter{Scopes: c.StringSlice("scope")}, c.Int("top-k"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if resp.QueryDegraded {
		fmt.Fprintln(os.Stderr, "warning: query embedding unavailable, results ranked lexically")
	}
	for i, hit := range resp.Results {
		fmt.Printf("%2d. [%.4f] %s #%d (%s)\n    %s\n",
			i+1, hit.Score, hit.Chunk.OwnerScope, hit.Chunk.SequenceIndex,
			hit.Chunk.Source, hit.Chunk.Text)
	}
	if len(resp.Results) == 0 {
		fmt.Println("no results")
	}
	return nil
}

func deleteCommand(c *cli.Context) error {
	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewChunkRepository(backend)
	if err != nil {
		return err
	}
	defer repo.Close()

	scope := c.String("scope")
	if err := repo.DeleteScope(context.Background(), scope); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	fmt.Printf("scope %q deleted\n", scope)
	return nil
}

func jobCommand(c *cli.Context) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("job ID is required")
	}

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	job, err := badger.NewJobRepository(backend).GetJob(context.Background(), id)
	if err != nil {
		return err
	}
	printJob(job)
	return nil
}

func reembedCommand(c *cli.Context) error {
	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewChunkRepository(backend)
	if err != nil {
		return err
	}
	defer repo.Close()

	cfg := ai.NewConfig(
		ai.WithHost(c.String("embedding-host")),
		ai.WithModel(c.String("embedding-model")),
	)
	embedder, err := openai.NewEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	config := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		Retry: ai.RetryPolicy{
			MaxAttempts: c.Int("max-retries"),
			BaseDelay:   c.Duration("retry-delay"),
		},
		Scopes: c.StringSlice("scope"),
	}
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.Retry.MaxAttempts <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n\n", c.String("embedding-model"))

	if err := reembed.NewReembedder(repo, embedder, config, os.Stderr).Run(context.Background()); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

func readContent(path string) (string, error) {
	if path == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// parseSegments reads transcript lines of the form "start end text", with
// start and end in seconds.
func parseSegments(content string) ([]core.Segment, error) {
	var segments []core.Segment
	for i, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, " ", 3)
		if len(fields) != 3 {
			return nil, fmt.Errorf("line %d: expected \"start end text\", got %q", i+1, line)
		}
		start, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad start time %q", i+1, fields[0])
		}
		end, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad end time %q", i+1, fields[1])
		}
		segments = append(segments, core.Segment{StartSec: start, EndSec: end, Text: fields[2]})
	}
	return segments, nil
}

func waitForJob(ctx context.Context, pipeline *ingest.Pipeline, id string) (*core.IngestionJob, error) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		job, err := pipeline.Job(ctx, id)
		if err != nil {
			return nil, err
		}
		if job.Stage.Terminal() {
			return job, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func printJob(job *core.IngestionJob) {
	fmt.Printf("job %s\n", job.Id)
	fmt.Printf("  scope:      %s\n", job.OwnerScope)
	fmt.Printf("  source:     %s\n", job.Source)
	fmt.Printf("  stage:      %s\n", job.Stage)
	fmt.Printf("  generation: %d\n", job.Generation)
	fmt.Printf("  chunks:     %d (%d failed)\n", job.ChunkCount, job.FailedChunks)
	if job.Degraded {
		fmt.Printf("  degraded:   true\n")
	}
	if job.LastError != "" {
		fmt.Printf("  error:      %s (retryable: %v)\n", job.LastError, job.Retryable)
	}
	fmt.Printf("  updated:    %s\n", job.UpdatedAt.Format(time.RFC3339))
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

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

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
