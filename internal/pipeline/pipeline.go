// Package pipeline wires ingestion, normalization, reporting, enrichment and persistence into runs.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"shipscan/internal/config"
	"shipscan/internal/country"
	"shipscan/internal/crawler"
	"shipscan/internal/export"
	"shipscan/internal/ingest"
	"shipscan/internal/logger"
	"shipscan/internal/models"
	"shipscan/internal/normalizer"
	"shipscan/internal/report"
	"shipscan/internal/store"
	"shipscan/pkg/metadata"
)

// Pipeline runs the stages configured by cfg.
type Pipeline struct {
	cfg      *config.Config
	log      *logger.Logger
	resolver country.Resolver
	fetcher  crawler.Fetcher
	now      func() time.Time
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithResolver replaces the configured country resolver.
func WithResolver(r country.Resolver) Option {
	return func(p *Pipeline) { p.resolver = r }
}

// WithFetcher replaces the HTTP scraper used for enrichment.
func WithFetcher(f crawler.Fetcher) Option {
	return func(p *Pipeline) { p.fetcher = f }
}

// WithClock replaces time.Now for run timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New creates a pipeline for cfg. A nil log discards output.
func New(cfg *config.Config, log *logger.Logger, opts ...Option) (*Pipeline, error) {
	if log == nil {
		log = logger.Nop()
	}

	p := &Pipeline{cfg: cfg, log: log, now: time.Now}

	for _, opt := range opts {
		opt(p)
	}

	if p.resolver == nil {
		r, err := country.New(cfg.Country.Aliases, cfg.Country.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create country resolver: %w", err)
		}

		p.resolver = r
	}

	return p, nil
}

// Analysis is the outcome of the report stage.
type Analysis struct {
	Report *report.Report
	Result *normalizer.Result
	Input  *metadata.Metadata
}

// Analyze reads the input file, normalizes it and computes the aggregates.
func (p *Pipeline) Analyze(ctx context.Context) (*Analysis, error) {
	path := p.cfg.Input.Path

	input, err := metadata.FromFile(path)
	if err != nil {
		return nil, err
	}

	reader, err := ingest.NewReader(ReaderOptions(p.cfg.Input))
	if err != nil {
		return nil, err
	}

	ds, err := reader.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}

	p.log.Info("input loaded", "path", path, "rows", len(ds.Rows), "sha256", input.Hash)

	res, err := normalizer.NewProcessor(normalizer.RulesFromConfig(p.cfg.Validation), p.resolver, p.log).Process(ctx, ds)
	if err != nil {
		return nil, err
	}

	return &Analysis{
		Report: report.Build(ingest.NullCounts(ds), res.Shipments),
		Result: res,
		Input:  input,
	}, nil
}

// WriteReport prints the text report to w and writes the workbook when configured.
func (p *Pipeline) WriteReport(a *Analysis, w io.Writer) error {
	if err := a.Report.WriteText(w); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if path := p.cfg.Output.XLSXPath; path != "" {
		if err := a.Report.WriteXLSX(path); err != nil {
			return err
		}

		p.log.Info("report workbook saved", "path", path)
	}

	return nil
}

// Enrich scrapes port details for isoCodes.
func (p *Pipeline) Enrich(ctx context.Context, isoCodes []string) ([]models.PortInfo, crawler.EnrichStats, error) {
	return crawler.NewClient(p.cfg.Scraper, p.fetcher, p.log).Enrich(ctx, isoCodes)
}

// Export writes ports to the configured CSV and SQLite targets.
func (p *Pipeline) Export(ctx context.Context, ports []models.PortInfo, run store.Run) error {
	if path := p.cfg.Output.PortsCSV; path != "" {
		if err := export.WritePortsCSV(path, ports); err != nil {
			return err
		}

		p.log.Info("ports saved", "path", path, "ports", len(ports))
	}

	path := p.cfg.Output.SQLitePath
	if path == "" {
		return nil
	}

	db, err := store.Open(ctx, path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.SavePorts(ctx, run.ID, ports); err != nil {
		return err
	}

	if err := db.RecordRun(ctx, run); err != nil {
		return err
	}

	p.log.Info("run recorded", "path", path, "run_id", run.ID)

	return nil
}

// Summary is the outcome of a full run.
type Summary struct {
	Analysis *Analysis
	Ports    []models.PortInfo
	Enrich   crawler.EnrichStats
	Run      store.Run
}

// Run executes the full pipeline, writing the text report to w.
func (p *Pipeline) Run(ctx context.Context, w io.Writer) (*Summary, error) {
	run := store.Run{ID: uuid.New(), StartedAt: p.now()}
	log := p.log.With("run_id", run.ID)

	log.Info("run started", "input", p.cfg.Input.Path)

	a, err := p.Analyze(ctx)
	if err != nil {
		return nil, err
	}

	if err := p.WriteReport(a, w); err != nil {
		return nil, err
	}

	ports, stats, err := p.Enrich(ctx, a.Report.Countries)
	if err != nil {
		return nil, err
	}

	run.InputPath = a.Input.Path
	run.InputSHA256 = a.Input.Hash
	run.Read = a.Result.Stats.Read
	run.Kept = a.Result.Stats.Kept
	run.Dropped = a.Result.Stats.Dropped
	run.Ports = len(ports)
	run.FinishedAt = p.now()

	if err := metadata.Verify(a.Input.Path, a.Input.Hash); err != nil {
		return nil, fmt.Errorf("input changed during run: %w", err)
	}

	if err := p.Export(ctx, ports, run); err != nil {
		return nil, err
	}

	log.Info("run finished", "duration", run.FinishedAt.Sub(run.StartedAt), "ports", run.Ports)

	return &Summary{Analysis: a, Ports: ports, Enrich: stats, Run: run}, nil
}

// ReaderOptions maps the input section of the config to reader options.
func ReaderOptions(in config.InputConfig) ingest.Options {
	delim, _ := utf8.DecodeRuneInString(in.Delimiter)

	return ingest.Options{
		HeaderAliases: in.HeaderAliases,
		NullTokens:    in.NullTokens,
		Delimiter:     delim,
	}
}
