package sheets

import (
	"context"
	"fmt"
	"strings"

	"blasting_tracker/internal/config"
	"blasting_tracker/internal/retry"

	"github.com/rs/zerolog/log"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"

type Client struct {
	service    *sheets.Service
	drive      *drive.Service
	resilience config.ResilienceConfig
}

// NewClientWithOptions builds a client from explicit API options, e.g.
// option.WithCredentialsFile or a custom endpoint.
func NewClientWithOptions(ctx context.Context, resilience config.ResilienceConfig, opts ...option.ClientOption) (*Client, error) {
	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	driveOpts := append([]option.ClientOption{option.WithScopes(drive.DriveMetadataReadonlyScope)}, opts...)
	driveService, err := drive.NewService(ctx, driveOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	resilience.SheetRead.Retryable = IsRetryable
	resilience.SheetWrite.Retryable = IsRetryable

	return &Client{
		service:    service,
		drive:      driveService,
		resilience: resilience,
	}, nil
}

// ResolveSpreadsheetID finds the ID of the spreadsheet with exactly this title
// among the files shared with the service account.
func (c *Client) ResolveSpreadsheetID(ctx context.Context, name string) (string, error) {
	log.Debug().Str("spreadsheet", name).Msg("Resolving spreadsheet by name")

	escaped := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(name)
	query := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false", escaped, spreadsheetMimeType)

	files, err := retry.WithRetry(ctx, c.resilience.SheetRead, func(ctx context.Context) ([]*drive.File, error) {
		resp, err := c.drive.Files.List().
			Q(query).
			Fields("files(id, name)").
			SupportsAllDrives(true).
			IncludeItemsFromAllDrives(true).
			Context(ctx).
			Do()
		if err != nil {
			return nil, err
		}
		return resp.Files, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to search spreadsheet %q: %w", name, err)
	}

	switch len(files) {
	case 0:
		return "", fmt.Errorf("spreadsheet %q not found or not shared with the service account", name)
	case 1:
		log.Debug().Str("spreadsheet", name).Str("spreadsheet_id", files[0].Id).Msg("Resolved spreadsheet")
		return files[0].Id, nil
	default:
		return "", fmt.Errorf("spreadsheet name %q is ambiguous: %d files match", name, len(files))
	}
}

// ListWorksheetNames returns the worksheet titles in tab order.
func (c *Client) ListWorksheetNames(ctx context.Context, spreadsheetID string) ([]string, error) {
	ss, err := retry.WithRetry(ctx, c.resilience.SheetRead, func(ctx context.Context) (*sheets.Spreadsheet, error) {
		return c.service.Spreadsheets.Get(spreadsheetID).
			Fields("sheets(properties(title))").
			Context(ctx).
			Do()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read spreadsheet metadata: %w", err)
	}

	names := make([]string, 0, len(ss.Sheets))
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			names = append(names, sh.Properties.Title)
		}
	}
	log.Debug().Int("worksheets", len(names)).Msg("Listed worksheets")
	return names, nil
}

// Worksheet binds the client to one worksheet of a spreadsheet.
func (c *Client) Worksheet(spreadsheetID, title string) *Worksheet {
	return &Worksheet{
		client:        c,
		spreadsheetID: spreadsheetID,
		title:         title,
	}
}

func (c *Client) readRange(ctx context.Context, spreadsheetID, range_ string) ([][]interface{}, error) {
	return retry.WithRetry(ctx, c.resilience.SheetRead, func(ctx context.Context) ([][]interface{}, error) {
		resp, err := c.service.Spreadsheets.Values.Get(spreadsheetID, range_).Context(ctx).Do()
		if err != nil {
			return nil, err
		}
		return resp.Values, nil
	})
}

func (c *Client) updateRange(ctx context.Context, spreadsheetID, range_ string, values [][]interface{}) error {
	valueRange := &sheets.ValueRange{
		Values: values,
	}

	return retry.Do(ctx, c.resilience.SheetWrite, func(ctx context.Context) error {
		_, err := c.service.Spreadsheets.Values.Update(spreadsheetID, range_, valueRange).
			ValueInputOption("USER_ENTERED").
			Context(ctx).
			Do()
		return err
	})
}
