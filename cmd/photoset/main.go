package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/snaplisting/photoset/internal/core/domain"
	"github.com/snaplisting/photoset/internal/core/embeddings"
	"github.com/snaplisting/photoset/internal/core/llm"
	"github.com/snaplisting/photoset/internal/platform/config"
	"github.com/snaplisting/photoset/internal/process/pipeline"
)

func main() {
	input := flag.String("input", "-", "Path to the vision output JSON (\"-\" for stdin)")
	output := flag.String("output", "-", "Path for the result JSON (\"-\" for stdout)")
	pretty := flag.Bool("pretty", false, "Indent the result JSON")

	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := newLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	raw, err := readBatch(*input)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to read input batch")
	}

	llmClient := llm.New(cfg, &logger)
	embedder := embeddings.New(cfg, &logger)

	result, err := pipeline.New(cfg, llmClient, embedder, &logger).Run(ctx, raw)
	if err != nil {
		logger.Fatal().Err(err).Msg("pairing pipeline failed")
	}

	if err := writeResult(*output, result, *pretty); err != nil {
		logger.Fatal().Err(err).Msg("failed to write result")
	}
}

func newLogger(appEnv string) zerolog.Logger {
	if appEnv == "local" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func readBatch(path string) ([]domain.RawImage, error) {
	var reader io.Reader = os.Stdin

	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		defer f.Close() //nolint:errcheck // read-only file

		reader = f
	}

	var raw []domain.RawImage
	if err := json.NewDecoder(reader).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}

	return raw, nil
}

func writeResult(path string, result *domain.Result, pretty bool) error {
	var writer io.Writer = os.Stdout

	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close() //nolint:errcheck // flushed by encoder below

		writer = f
	}

	encoder := json.NewEncoder(writer)
	if pretty {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	return nil
}
