package config

// Config is the runtime configuration of the dashboard, assembled from the
// environment and command-line flags.
type Config struct {
	CredentialsFile string
	SpreadsheetID   string
	SpreadsheetName string
	Worksheet       string
	WorkbookFile    string
	ListenAddr      string

	NtfyEnabled  bool
	NtfyURL      string
	NtfyTopic    string
	NtfyPriority string

	Resilience ResilienceConfig
}

const (
	DefaultCredentialsFile = "credentials.json"
	DefaultSpreadsheetName = "Blasting tracker"
	DefaultWorksheet       = "draft"
	DefaultListenAddr      = ":8080"
	DefaultNtfyURL         = "https://ntfy.sh"
	DefaultNtfyTopic       = "blasting-tracker"

	// LatestWorksheet selects the most recent dated worksheet.
	LatestWorksheet = "latest"
)

// UsesWorkbook reports whether records come from a local .xlsx file instead
// of Google Sheets.
func (c Config) UsesWorkbook() bool {
	return c.WorkbookFile != ""
}
