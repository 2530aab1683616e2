package fhirmdr

import (
	"fmt"

	fhircommand "github.com/fmatten/fhir-mdr/command"
	fhirquery "github.com/fmatten/fhir-mdr/query"
)

// Commands groups the write-side handlers bound to one service.
type Commands struct {
	IngestBundleJSON  *fhircommand.IngestBundleJSONCommand
	IngestBundleXML   *fhircommand.IngestBundleXMLCommand
	IngestPackage     *fhircommand.IngestPackageCommand
	ExportCuratedJSON *fhircommand.ExportCuratedJSONCommand
	ExportCuratedXML  *fhircommand.ExportCuratedXMLCommand
	ExportSelected    *fhircommand.ExportSelectedCommand
}

// Queries groups the read-side handlers bound to one service.
type Queries struct {
	ListCurated           *fhirquery.ListCuratedQuery
	GetCurated            *fhirquery.GetCuratedQuery
	ListVariants          *fhirquery.ListVariantsQuery
	ListRuns              *fhirquery.ListRunsQuery
	ListArtifactConflicts *fhirquery.ListArtifactConflictsQuery
}

// Facade bundles a service with its command and query handlers.
type Facade struct {
	service  *Service
	commands Commands
	queries  Queries
}

func NewFacade(service *Service) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("fhirmdr: service is required")
	}

	reader := service.Reader()
	facade := &Facade{service: service}
	facade.commands = Commands{
		IngestBundleJSON:  fhircommand.NewIngestBundleJSONCommand(service),
		IngestBundleXML:   fhircommand.NewIngestBundleXMLCommand(service),
		IngestPackage:     fhircommand.NewIngestPackageCommand(service),
		ExportCuratedJSON: fhircommand.NewExportCuratedJSONCommand(service),
		ExportCuratedXML:  fhircommand.NewExportCuratedXMLCommand(service),
		ExportSelected:    fhircommand.NewExportSelectedCommand(service),
	}
	facade.queries = Queries{
		ListCurated:           fhirquery.NewListCuratedQuery(reader),
		GetCurated:            fhirquery.NewGetCuratedQuery(reader),
		ListVariants:          fhirquery.NewListVariantsQuery(reader),
		ListRuns:              fhirquery.NewListRunsQuery(reader),
		ListArtifactConflicts: fhirquery.NewListArtifactConflictsQuery(reader),
	}

	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() *Service {
	if f == nil {
		return nil
	}
	return f.service
}

var (
	_ fhircommand.IngestService = (*Service)(nil)
	_ fhircommand.ExportService = (*Service)(nil)
)
