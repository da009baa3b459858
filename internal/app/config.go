package app

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"blasting_tracker/internal/config"
	"blasting_tracker/internal/notifications"
	"blasting_tracker/internal/session"
	"blasting_tracker/internal/sheets"
	"blasting_tracker/internal/workbook"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// SetupEnvironment loads .env file and configures zerolog output and log level.
func SetupEnvironment() {
	// Load .env file if it exists
	err := godotenv.Load()

	// Configure logging
	if os.Getenv("ENV") == "production" {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = log.Output(os.Stderr)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	levelStr := strings.ToLower(os.Getenv("LOGLEVEL"))
	switch levelStr {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "fatal":
		zerolog.SetGlobalLevel(zerolog.FatalLevel)
	case "panic":
		zerolog.SetGlobalLevel(zerolog.PanicLevel)
	case "disabled":
		zerolog.SetGlobalLevel(zerolog.Disabled)
	case "":
		if os.Getenv("ENV") == "production" {
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		log.Warn().Msgf("Unknown LOGLEVEL '%s', defaulting to info.", levelStr)
	}

	// wait until now to report on the .env file so we have the chance to set up logging first
	if err == nil {
		log.Debug().Msg("Loaded environment variables from .env file.")
	} else {
		log.Debug().Msg("No .env file found or error loading .env file; proceeding with existing environment variables.")
	}
}

// GetEnvWithDefault fetches an environment variable with a default fallback.
func GetEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// LoadConfig assembles the runtime configuration from the environment.
func LoadConfig() config.Config {
	cfg := config.Config{
		CredentialsFile: GetEnvWithDefault("CREDENTIALS_FILE", config.DefaultCredentialsFile),
		SpreadsheetID:   os.Getenv("SPREADSHEET_ID"),
		SpreadsheetName: GetEnvWithDefault("SPREADSHEET_NAME", config.DefaultSpreadsheetName),
		Worksheet:       GetEnvWithDefault("WORKSHEET", config.DefaultWorksheet),
		WorkbookFile:    os.Getenv("WORKBOOK_FILE"),
		ListenAddr:      GetEnvWithDefault("LISTEN_ADDR", config.DefaultListenAddr),
		NtfyEnabled:     GetEnvWithDefault("NTFY_ENABLED", "false") == "true",
		NtfyURL:         GetEnvWithDefault("NTFY_URL", config.DefaultNtfyURL),
		NtfyTopic:       GetEnvWithDefault("NTFY_TOPIC", config.DefaultNtfyTopic),
		NtfyPriority:    os.Getenv("NTFY_PRIORITY"),
		Resilience:      config.DefaultResilienceConfig,
	}

	log.Debug().
		Str("spreadsheet", cfg.SpreadsheetName).
		Str("worksheet", cfg.Worksheet).
		Str("workbook", cfg.WorkbookFile).
		Msg("Loaded configuration")
	return cfg
}

// Source is an opened record source with the worksheet chosen for this run.
type Source struct {
	Worksheet  string
	Worksheets []string
	Records    session.Source
	close      func() error
}

func (s *Source) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// OpenSource opens the workbook file when one is configured, otherwise the
// shared Google spreadsheet, and picks the configured worksheet.
func OpenSource(ctx context.Context, cfg config.Config) (*Source, error) {
	if cfg.UsesWorkbook() {
		return openWorkbook(ctx, cfg)
	}
	return openSpreadsheet(ctx, cfg)
}

func openWorkbook(ctx context.Context, cfg config.Config) (*Source, error) {
	book, err := workbook.Open(cfg.WorkbookFile)
	if err != nil {
		return nil, err
	}
	names, err := book.ListWorksheetNames(ctx)
	if err != nil {
		book.Close()
		return nil, err
	}
	name, err := session.PickWorksheet(names, cfg.Worksheet, time.Now())
	if err != nil {
		book.Close()
		return nil, err
	}
	ws, err := book.Worksheet(name)
	if err != nil {
		book.Close()
		return nil, err
	}

	log.Info().Str("workbook", cfg.WorkbookFile).Str("worksheet", name).Msg("Using workbook")
	return &Source{Worksheet: name, Worksheets: names, Records: ws, close: book.Close}, nil
}

func openSpreadsheet(ctx context.Context, cfg config.Config) (*Source, error) {
	log.Debug().Str("credentials", cfg.CredentialsFile).Msg("Initializing sheets client")
	client, err := sheets.NewClientWithOptions(ctx, cfg.Resilience, option.WithCredentialsFile(cfg.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}

	spreadsheetID := cfg.SpreadsheetID
	if spreadsheetID == "" {
		spreadsheetID, err = client.ResolveSpreadsheetID(ctx, cfg.SpreadsheetName)
		if err != nil {
			return nil, err
		}
	}

	names, err := client.ListWorksheetNames(ctx, spreadsheetID)
	if err != nil {
		return nil, err
	}
	name, err := session.PickWorksheet(names, cfg.Worksheet, time.Now())
	if err != nil {
		return nil, err
	}

	log.Info().Str("spreadsheet_id", spreadsheetID).Str("worksheet", name).Msg("Using spreadsheet")
	return &Source{Worksheet: name, Worksheets: names, Records: client.Worksheet(spreadsheetID, name)}, nil
}

// InitializeNotificationClient creates and returns the notification client
func InitializeNotificationClient(cfg config.Config) *notifications.Client {
	log.Debug().
		Bool("enabled", cfg.NtfyEnabled).
		Str("base_url", cfg.NtfyURL).
		Str("topic", cfg.NtfyTopic).
		Msg("Initializing notification client")

	client := notifications.NewClient(cfg.NtfyURL, cfg.NtfyTopic, cfg.NtfyEnabled, cfg.NtfyPriority, cfg.Resilience.Notification)

	if cfg.NtfyEnabled {
		log.Info().Str("topic", cfg.NtfyTopic).Msg("Notifications enabled")
	} else {
		log.Debug().Msg("Notifications disabled")
	}

	return client
}
