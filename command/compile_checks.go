package command

import (
	gocmd "github.com/goliatone/go-command"
)

var (
	_ gocmd.Commander[IngestBundleJSONMessage]  = (*IngestBundleJSONCommand)(nil)
	_ gocmd.Commander[IngestBundleXMLMessage]   = (*IngestBundleXMLCommand)(nil)
	_ gocmd.Commander[IngestPackageMessage]     = (*IngestPackageCommand)(nil)
	_ gocmd.Commander[ExportCuratedJSONMessage] = (*ExportCuratedJSONCommand)(nil)
	_ gocmd.Commander[ExportCuratedXMLMessage]  = (*ExportCuratedXMLCommand)(nil)
	_ gocmd.Commander[ExportSelectedMessage]    = (*ExportSelectedCommand)(nil)
)
