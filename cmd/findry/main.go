// Copyright 2025 Quillon Labs
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
	"log"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/urfave/cli/v2"

	"github.com/quillon/findry"
	"github.com/quillon/findry/ai"
	"github.com/quillon/findry/core"
	"github.com/quillon/findry/registry"
	"github.com/quillon/findry/search"
	"github.com/quillon/findry/server"
)

func main() {
	app := &cli.App{
		Name:  "findry",
		Usage: "Hybrid semantic retrieval over document collections",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API server",
				Action: serveCommand,
				Flags: append(engineFlags(),
					&cli.StringFlag{
						Name:  "listen",
						Usage: "HTTP listen address",
						Value: ":8080",
					},
				),
			},
			{
				Name:      "index",
				Usage:     "Index files into a collection",
				ArgsUsage: "FILE [FILE...]",
				Action:    indexCommand,
				Flags: append(engineFlags(),
					&cli.StringFlag{
						Name:  "source-type",
						Usage: "Source type for the documents (wiki-page, ticket, repository-file, uploaded-file, generic)",
						Value: "uploaded-file",
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Search indexed documents",
				ArgsUsage: "QUERY",
				Action:    searchCommand,
				Flags: append(engineFlags(),
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Result limit",
						Value: search.DefaultTopK,
					},
					&cli.Float64Flag{
						Name:  "min-score",
						Usage: "Combined score floor in [0,1]",
					},
					&cli.StringSliceFlag{
						Name:  "source-type",
						Usage: "Restrict the search to these source types",
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func engineFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Path to the vector store directory",
			Value:   "findry-data",
			EnvVars: []string{"FINDRY_DB"},
		},
		&cli.StringFlag{
			Name:    "embedding-host",
			Usage:   "Embedding service host URL",
			Value:   "http://localhost:11434/v1",
			EnvVars: []string{"FINDRY_EMBEDDING_HOST"},
		},
		&cli.StringFlag{
			Name:    "embedding-model",
			Usage:   "Embedding model name",
			Value:   "embeddinggemma",
			EnvVars: []string{"FINDRY_EMBEDDING_MODEL"},
		},
		&cli.IntFlag{
			Name:    "embedding-dim",
			Usage:   "Embedding vector dimension",
			Value:   768,
			EnvVars: []string{"FINDRY_EMBEDDING_DIM"},
		},
		&cli.BoolFlag{
			Name:    "offline",
			Usage:   "Use the deterministic offline embedder instead of a provider",
			EnvVars: []string{"FINDRY_OFFLINE"},
		},
	}
}

func openEngine(c *cli.Context) (*findry.Engine, error) {
	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("embedding-host")),
		ai.WithModel(c.String("embedding-model")),
		ai.WithDimension(c.Int("embedding-dim")),
		ai.WithOffline(c.Bool("offline")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid embedding configuration: %w", err)
	}
	return findry.Open(c.String("db"), findry.WithAIConfig(aiConfig))
}

func serveCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	container := restful.NewContainer()
	container.Filter(server.RequestLogger)
	container.Filter(server.RecoverPanic)
	server.RegisterRoutes(container, server.NewHandler(engine))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	addr := c.String("listen")
	slog.Info("starting findry API", "address", addr, "db", c.String("db"))

	srv := http.Server{
		Addr:              addr,
		Handler:           corsHandler.Handler(container),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

func indexCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one file argument is required")
	}
	sourceType := core.SourceType(c.String("source-type"))
	if err := core.ValidateSourceType(sourceType); err != nil {
		return err
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	reqs := make([]registry.IndexRequest, 0, c.NArg())
	for _, path := range c.Args().Slice() {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		reqs = append(reqs, registry.IndexRequest{
			SourceType: sourceType,
			DocumentID: path,
			Content:    string(content),
			Metadata: core.DocumentMetadata{
				Title:      filepath.Base(path),
				SourceType: sourceType,
				SourceID:   path,
				UpdatedAt:  time.Now().UTC(),
			},
		})
	}

	results, err := engine.IndexDocuments(context.Background(), reqs)
	for _, result := range results {
		fmt.Printf("%s: %d chunks -> %s\n", result.DocumentID, result.ChunksIndexed, result.Collection)
	}
	if err != nil {
		return fmt.Errorf("some documents failed to index: %w", err)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("a query argument is required")
	}
	query := strings.Join(c.Args().Slice(), " ")

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	var sourceTypes []core.SourceType
	for _, raw := range c.StringSlice("source-type") {
		sourceTypes = append(sourceTypes, core.SourceType(raw))
	}

	resp, err := engine.Search(context.Background(), search.Request{
		Query:       query,
		SourceTypes: sourceTypes,
		TopK:        c.Int("top-k"),
		MinScore:    float32(c.Float64("min-score")),
	})
	if err != nil {
		return err
	}

	for _, ce := range resp.CollectionsErrored {
		fmt.Fprintf(os.Stderr, "warning: collection %s failed: %v\n", ce.Collection, ce.Err)
	}
	if len(resp.Results) == 0 {
		fmt.Println("no results")
		return nil
	}
	for _, r := range resp.Results {
		fmt.Printf("%2d. [%.3f] %s (%s)\n", r.Rank, r.CombinedScore, r.DocumentID, r.SourceType)
		if r.Title != "" {
			fmt.Printf("    %s\n", r.Title)
		}
		fmt.Printf("    %s\n", r.Snippet)
	}
	fmt.Printf("\n%d results from %s in %dms\n",
		resp.TotalResults,
		strings.Join(resp.CollectionsSearched, ", "),
		resp.Elapsed.Milliseconds())
	return nil
}

func setup(c *cli.Context) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", "err", err)
	}

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
