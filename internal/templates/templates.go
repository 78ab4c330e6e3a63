package templates

import (
	_ "embed"
)

// AuditReportText is the plain text audit report offered for download.
//
//go:embed audit_report.txt
var AuditReportText string

//go:embed report.html
var ReportHTML string
