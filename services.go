// Package fhirmdr wires the FHIR ingestion and curation engine: source
// readers, the transactional ingest pipeline, the curated read surface and
// the bundle export assemblers, all over one sqlite-backed store.
package fhirmdr

import (
	"context"
	"fmt"
	"io/fs"

	glog "github.com/goliatone/go-logger/glog"
	persistence "github.com/goliatone/go-persistence-bun"
	repositorycache "github.com/goliatone/go-repository-cache/cache"

	"github.com/fmatten/fhir-mdr/core"
	"github.com/fmatten/fhir-mdr/export"
	"github.com/fmatten/fhir-mdr/ingest"
	"github.com/fmatten/fhir-mdr/source"
	sqlstore "github.com/fmatten/fhir-mdr/store/sql"
)

type Logger = core.Logger

type LoggerProvider = core.LoggerProvider

// Service is the module's main entry point. It ingests bundles and packages,
// serves curated queries and assembles exports.
type Service struct {
	factory        *sqlstore.RepositoryFactory
	reader         core.CuratedReader
	engine         *ingest.Engine
	assembler      *export.Assembler
	loggerProvider LoggerProvider
	logger         Logger
}

type Option func(*serviceBuilder)

type serviceBuilder struct {
	loggerProvider LoggerProvider
	logger         Logger
	fieldOrder     export.FieldOrderTable
	payloadCache   repositorycache.CacheService
}

func WithLogger(logger Logger) Option {
	return func(b *serviceBuilder) {
		b.logger = logger
	}
}

func WithLoggerProvider(provider LoggerProvider) Option {
	return func(b *serviceBuilder) {
		b.loggerProvider = provider
	}
}

// WithFieldOrder replaces the strict XML export field order table.
func WithFieldOrder(orders export.FieldOrderTable) Option {
	return func(b *serviceBuilder) {
		b.fieldOrder = orders
	}
}

// WithPayloadCache caches content-addressed payload reads through the given
// cache service. Mostly useful for repeated exports over a slow store.
func WithPayloadCache(cacheService repositorycache.CacheService) Option {
	return func(b *serviceBuilder) {
		b.payloadCache = cacheService
	}
}

// NewService builds the service over a persistence client or a *bun.DB.
func NewService(persistenceClient any, opts ...Option) (*Service, error) {
	builder := serviceBuilder{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}
	loggerProvider, logger := glog.Resolve("fhirmdr", builder.loggerProvider, builder.logger)

	factory := sqlstore.NewRepositoryFactory()
	if err := factory.BuildStores(persistenceClient); err != nil {
		return nil, err
	}

	engine, err := ingest.New(factory.IngestStore(),
		ingest.WithLogger(loggerProvider.GetLogger("fhirmdr.ingest")))
	if err != nil {
		return nil, err
	}

	var reader core.CuratedReader = factory.CuratedStore()
	if builder.payloadCache != nil {
		cached, err := sqlstore.NewCachedCuratedStore(reader, builder.payloadCache)
		if err != nil {
			return nil, err
		}
		reader = cached
	}

	exportOpts := []export.Option{
		export.WithLogger(loggerProvider.GetLogger("fhirmdr.export")),
	}
	if builder.fieldOrder != nil {
		exportOpts = append(exportOpts, export.WithFieldOrder(builder.fieldOrder))
	}
	assembler, err := export.NewAssembler(reader, exportOpts...)
	if err != nil {
		return nil, err
	}

	return &Service{
		factory:        factory,
		reader:         reader,
		engine:         engine,
		assembler:      assembler,
		loggerProvider: loggerProvider,
		logger:         logger,
	}, nil
}

// RegisterMigrations registers the embedded sqlite schema on a persistence
// client; call client.Migrate afterwards to apply it.
func RegisterMigrations(client *persistence.Client) error {
	if client == nil {
		return fmt.Errorf("fhirmdr: persistence client is required")
	}
	fsys, err := fs.Sub(migrationsFS, "data/sql/migrations/sqlite")
	if err != nil {
		return fmt.Errorf("fhirmdr: resolve migrations filesystem: %w", err)
	}
	client.RegisterSQLMigrations(fsys)
	return nil
}

// Setup registers and applies the schema, then builds the service.
func Setup(ctx context.Context, client *persistence.Client, opts ...Option) (*Service, error) {
	if err := RegisterMigrations(client); err != nil {
		return nil, err
	}
	if err := client.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("fhirmdr: migrate: %w", err)
	}
	return NewService(client, opts...)
}

// Reader exposes the curated read surface, payload-cached when the service
// was built with WithPayloadCache.
func (s *Service) Reader() core.CuratedReader {
	if s == nil {
		return nil
	}
	return s.reader
}

// IngestBundleJSON ingests one FHIR Bundle JSON document.
func (s *Service) IngestBundleJSON(ctx context.Context, data []byte, meta core.RunMeta) core.IngestResult {
	stream, err := source.ReadBundleJSON(data)
	if err != nil {
		return core.IngestResult{OK: false, Message: fmt.Sprintf("import failed: %v", err)}
	}
	return s.engine.Run(ctx, stream, meta)
}

// IngestBundleXML ingests one FHIR Bundle XML document.
func (s *Service) IngestBundleXML(ctx context.Context, data []byte, meta core.RunMeta) core.IngestResult {
	stream, err := source.ReadBundleXML(string(data))
	if err != nil {
		return core.IngestResult{OK: false, Message: fmt.Sprintf("import failed: %v", err)}
	}
	return s.engine.Run(ctx, stream, meta)
}

// IngestPackage ingests a FHIR NPM package directory or archive.
func (s *Service) IngestPackage(ctx context.Context, path string, meta core.RunMeta) core.IngestResult {
	stream, err := source.ReadPackage(path)
	if err != nil {
		return core.IngestResult{OK: false, Message: fmt.Sprintf("import failed: %v", err)}
	}
	return s.engine.Run(ctx, stream, meta)
}

// ExportCuratedJSON writes the latest curated resources as a JSON Bundle.
func (s *Service) ExportCuratedJSON(ctx context.Context, limit int, outPath string) core.ExportResult {
	return s.assembler.ExportCuratedJSON(ctx, limit, outPath)
}

// ExportCuratedXML writes the latest curated resources as an XML Bundle.
func (s *Service) ExportCuratedXML(ctx context.Context, limit int, outPath string, mode export.Mode) core.ExportResult {
	return s.assembler.ExportCuratedXML(ctx, limit, outPath, mode)
}

// ExportSelectedJSON writes the chosen curated identities as a JSON Bundle.
func (s *Service) ExportSelectedJSON(ctx context.Context, idents []string, outPath string) core.ExportResult {
	return s.assembler.ExportSelectedJSON(ctx, idents, outPath)
}

// ExportSelectedXML writes the chosen curated identities as an XML Bundle.
func (s *Service) ExportSelectedXML(ctx context.Context, idents []string, outPath string, mode export.Mode) core.ExportResult {
	return s.assembler.ExportSelectedXML(ctx, idents, outPath, mode)
}
