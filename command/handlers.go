package command

import (
	"context"
	"strings"

	gocmd "github.com/goliatone/go-command"

	"github.com/fmatten/fhir-mdr/core"
	"github.com/fmatten/fhir-mdr/export"
)

// IngestService runs ingestion for each supported source form. Expected
// domain failures come back inside the result.
type IngestService interface {
	IngestBundleJSON(ctx context.Context, data []byte, meta core.RunMeta) core.IngestResult
	IngestBundleXML(ctx context.Context, data []byte, meta core.RunMeta) core.IngestResult
	IngestPackage(ctx context.Context, path string, meta core.RunMeta) core.IngestResult
}

// ExportService writes curated bundles to disk.
type ExportService interface {
	ExportCuratedJSON(ctx context.Context, limit int, outPath string) core.ExportResult
	ExportCuratedXML(ctx context.Context, limit int, outPath string, mode export.Mode) core.ExportResult
	ExportSelectedJSON(ctx context.Context, idents []string, outPath string) core.ExportResult
	ExportSelectedXML(ctx context.Context, idents []string, outPath string, mode export.Mode) core.ExportResult
}

type IngestBundleJSONCommand struct {
	service IngestService
}

func NewIngestBundleJSONCommand(service IngestService) *IngestBundleJSONCommand {
	return &IngestBundleJSONCommand{service: service}
}

func (c *IngestBundleJSONCommand) Execute(ctx context.Context, msg IngestBundleJSONMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: ingest service is required")
	}
	if err := msg.Validate(); err != nil {
		return commandInvalidInputError(err.Error())
	}
	storeResult(ctx, c.service.IngestBundleJSON(ctx, msg.Data, msg.Meta))
	return nil
}

type IngestBundleXMLCommand struct {
	service IngestService
}

func NewIngestBundleXMLCommand(service IngestService) *IngestBundleXMLCommand {
	return &IngestBundleXMLCommand{service: service}
}

func (c *IngestBundleXMLCommand) Execute(ctx context.Context, msg IngestBundleXMLMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: ingest service is required")
	}
	if err := msg.Validate(); err != nil {
		return commandInvalidInputError(err.Error())
	}
	storeResult(ctx, c.service.IngestBundleXML(ctx, msg.Data, msg.Meta))
	return nil
}

type IngestPackageCommand struct {
	service IngestService
}

func NewIngestPackageCommand(service IngestService) *IngestPackageCommand {
	return &IngestPackageCommand{service: service}
}

func (c *IngestPackageCommand) Execute(ctx context.Context, msg IngestPackageMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: ingest service is required")
	}
	if err := msg.Validate(); err != nil {
		return commandInvalidInputError(err.Error())
	}
	storeResult(ctx, c.service.IngestPackage(ctx, msg.Path, msg.Meta))
	return nil
}

type ExportCuratedJSONCommand struct {
	service ExportService
}

func NewExportCuratedJSONCommand(service ExportService) *ExportCuratedJSONCommand {
	return &ExportCuratedJSONCommand{service: service}
}

func (c *ExportCuratedJSONCommand) Execute(ctx context.Context, msg ExportCuratedJSONMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: export service is required")
	}
	if err := msg.Validate(); err != nil {
		return commandInvalidInputError(err.Error())
	}
	storeResult(ctx, c.service.ExportCuratedJSON(ctx, msg.Limit, msg.OutPath))
	return nil
}

type ExportCuratedXMLCommand struct {
	service ExportService
}

func NewExportCuratedXMLCommand(service ExportService) *ExportCuratedXMLCommand {
	return &ExportCuratedXMLCommand{service: service}
}

func (c *ExportCuratedXMLCommand) Execute(ctx context.Context, msg ExportCuratedXMLMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: export service is required")
	}
	if err := msg.Validate(); err != nil {
		return commandInvalidInputError(err.Error())
	}
	mode, err := export.ParseMode(string(msg.Mode))
	if err != nil {
		return commandInvalidInputError(err.Error())
	}
	storeResult(ctx, c.service.ExportCuratedXML(ctx, msg.Limit, msg.OutPath, mode))
	return nil
}

type ExportSelectedCommand struct {
	service ExportService
}

func NewExportSelectedCommand(service ExportService) *ExportSelectedCommand {
	return &ExportSelectedCommand{service: service}
}

func (c *ExportSelectedCommand) Execute(ctx context.Context, msg ExportSelectedMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: export service is required")
	}
	if err := msg.Validate(); err != nil {
		return commandInvalidInputError(err.Error())
	}
	if strings.EqualFold(strings.TrimSpace(msg.Format), "json") {
		storeResult(ctx, c.service.ExportSelectedJSON(ctx, msg.Idents, msg.OutPath))
		return nil
	}
	mode, err := export.ParseMode(string(msg.Mode))
	if err != nil {
		return commandInvalidInputError(err.Error())
	}
	storeResult(ctx, c.service.ExportSelectedXML(ctx, msg.Idents, msg.OutPath, mode))
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
