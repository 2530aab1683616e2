package command

import (
	"fmt"
	"strings"

	"github.com/fmatten/fhir-mdr/core"
	"github.com/fmatten/fhir-mdr/export"
)

const (
	TypeIngestBundleJSON  = "fhirmdr.command.ingest.bundle_json"
	TypeIngestBundleXML   = "fhirmdr.command.ingest.bundle_xml"
	TypeIngestPackage     = "fhirmdr.command.ingest.package"
	TypeExportCuratedJSON = "fhirmdr.command.export.curated_json"
	TypeExportCuratedXML  = "fhirmdr.command.export.curated_xml"
	TypeExportSelected    = "fhirmdr.command.export.selected"
)

type IngestBundleJSONMessage struct {
	Data []byte
	Meta core.RunMeta
}

func (IngestBundleJSONMessage) Type() string { return TypeIngestBundleJSON }

func (m IngestBundleJSONMessage) Validate() error {
	if len(m.Data) == 0 {
		return fmt.Errorf("command: bundle data is required")
	}
	return nil
}

type IngestBundleXMLMessage struct {
	Data []byte
	Meta core.RunMeta
}

func (IngestBundleXMLMessage) Type() string { return TypeIngestBundleXML }

func (m IngestBundleXMLMessage) Validate() error {
	if len(m.Data) == 0 {
		return fmt.Errorf("command: bundle data is required")
	}
	return nil
}

type IngestPackageMessage struct {
	Path string
	Meta core.RunMeta
}

func (IngestPackageMessage) Type() string { return TypeIngestPackage }

func (m IngestPackageMessage) Validate() error {
	if strings.TrimSpace(m.Path) == "" {
		return fmt.Errorf("command: package path is required")
	}
	return nil
}

type ExportCuratedJSONMessage struct {
	Limit   int
	OutPath string
}

func (ExportCuratedJSONMessage) Type() string { return TypeExportCuratedJSON }

func (m ExportCuratedJSONMessage) Validate() error {
	if strings.TrimSpace(m.OutPath) == "" {
		return fmt.Errorf("command: output path is required")
	}
	if m.Limit < 0 {
		return fmt.Errorf("command: limit must be >= 0")
	}
	return nil
}

type ExportCuratedXMLMessage struct {
	Limit   int
	OutPath string
	Mode    export.Mode
}

func (ExportCuratedXMLMessage) Type() string { return TypeExportCuratedXML }

func (m ExportCuratedXMLMessage) Validate() error {
	if strings.TrimSpace(m.OutPath) == "" {
		return fmt.Errorf("command: output path is required")
	}
	if m.Limit < 0 {
		return fmt.Errorf("command: limit must be >= 0")
	}
	if _, err := export.ParseMode(string(m.Mode)); err != nil {
		return err
	}
	return nil
}

// ExportSelectedMessage exports the named curated identities. Format is
// "json" or "xml"; Mode only applies to XML output.
type ExportSelectedMessage struct {
	Idents  []string
	OutPath string
	Format  string
	Mode    export.Mode
}

func (ExportSelectedMessage) Type() string { return TypeExportSelected }

func (m ExportSelectedMessage) Validate() error {
	if len(m.Idents) == 0 {
		return fmt.Errorf("command: at least one identifier is required")
	}
	if strings.TrimSpace(m.OutPath) == "" {
		return fmt.Errorf("command: output path is required")
	}
	switch strings.ToLower(strings.TrimSpace(m.Format)) {
	case "json", "xml":
	default:
		return fmt.Errorf("command: format must be json or xml")
	}
	if _, err := export.ParseMode(string(m.Mode)); err != nil {
		return err
	}
	return nil
}
