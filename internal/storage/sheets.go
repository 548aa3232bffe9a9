package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/thedittmer/briefly/internal/models"
)

const sheetName = "Results"

type SheetsConfig struct {
	CredentialsFile string
	// SpreadsheetID overrides the one remembered from an earlier export.
	SpreadsheetID string
	// FolderID, if set, is the Drive folder new spreadsheets are moved into.
	FolderID string
}

type ExportResult struct {
	SpreadsheetID string
	URL           string
	Rows          int
}

// ExportToSheets replaces the contents of the export spreadsheet with
// articles, creating the spreadsheet on first use. Extra client options are
// passed to both Google services.
func (s *Storage) ExportToSheets(ctx context.Context, cfg SheetsConfig, articles []models.Article, opts ...option.ClientOption) (*ExportResult, error) {
	credentials, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	jwtConfig, err := google.JWTConfigFromJSON(credentials, sheets.SpreadsheetsScope, drive.DriveFileScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	clientOpts := append([]option.ClientOption{option.WithHTTPClient(jwtConfig.Client(ctx))}, opts...)

	sheetsService, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets client: %w", err)
	}

	spreadsheetID := cfg.SpreadsheetID
	if spreadsheetID == "" {
		if spreadsheetID, err = s.LoadSpreadsheetID(); err != nil {
			return nil, err
		}
	}

	if spreadsheetID == "" {
		spreadsheetID, err = createSpreadsheet(ctx, sheetsService)
		if err != nil {
			return nil, err
		}

		if cfg.FolderID != "" {
			driveService, err := drive.NewService(ctx, clientOpts...)
			if err != nil {
				return nil, fmt.Errorf("unable to create drive client: %w", err)
			}
			if err := moveToFolder(ctx, driveService, spreadsheetID, cfg.FolderID, credentials); err != nil {
				return nil, err
			}
		}

		if err := s.SaveSpreadsheetID(spreadsheetID); err != nil {
			return nil, fmt.Errorf("failed to save spreadsheet ID: %w", err)
		}
	}

	values := sheetRows(articles, time.Now())

	_, err = sheetsService.Spreadsheets.Values.Clear(spreadsheetID, sheetName, &sheets.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to clear spreadsheet: %w", err)
	}

	writeRange := fmt.Sprintf("%s!A1:F%d", sheetName, len(values))
	_, err = sheetsService.Spreadsheets.Values.Update(spreadsheetID, writeRange, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to update spreadsheet: %w", err)
	}

	if err := freezeHeader(ctx, sheetsService, spreadsheetID); err != nil {
		return nil, err
	}

	return &ExportResult{
		SpreadsheetID: spreadsheetID,
		URL:           fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/edit", spreadsheetID),
		Rows:          len(articles),
	}, nil
}

// sheetRows is the header plus one row per article.
func sheetRows(articles []models.Article, exportedAt time.Time) [][]interface{} {
	stamp := exportedAt.Format("2006-01-02 15:04:05")

	values := make([][]interface{}, 0, len(articles)+1)
	values = append(values, []interface{}{"Title", "Publisher", "Date", "Link", "Image", "Exported"})
	for _, a := range articles {
		values = append(values, []interface{}{a.Title, a.Publisher, a.Date, a.Link, a.Image, stamp})
	}
	return values
}

func createSpreadsheet(ctx context.Context, sheetsService *sheets.Service) (string, error) {
	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title: fmt.Sprintf("Briefly Search Results - %s", time.Now().Format("2006-01-02-15-04-05")),
		},
		Sheets: []*sheets.Sheet{
			{Properties: &sheets.SheetProperties{Title: sheetName}},
		},
	}

	created, err := sheetsService.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create spreadsheet: %w", err)
	}
	return created.SpreadsheetId, nil
}

func moveToFolder(ctx context.Context, driveService *drive.Service, fileID, folderID string, credentials []byte) error {
	if _, err := driveService.Files.Get(folderID).Fields("id").SupportsAllDrives(true).Context(ctx).Do(); err != nil {
		return fmt.Errorf("service account cannot access folder %s; share it with %s as a Content Manager: %w",
			folderID, serviceAccountEmail(credentials), err)
	}

	_, err := driveService.Files.Update(fileID, nil).
		AddParents(folderID).
		Fields("id, parents").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("unable to move spreadsheet to folder: %w", err)
	}
	return nil
}

func freezeHeader(ctx context.Context, sheetsService *sheets.Service, spreadsheetID string) error {
	spreadsheet, err := sheetsService.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("unable to get spreadsheet: %w", err)
	}
	if len(spreadsheet.Sheets) == 0 {
		return fmt.Errorf("spreadsheet has no sheets")
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
					Properties: &sheets.SheetProperties{
						SheetId:        spreadsheet.Sheets[0].Properties.SheetId,
						GridProperties: &sheets.GridProperties{FrozenRowCount: 1},
					},
					Fields: "gridProperties.frozenRowCount",
				},
			},
		},
	}

	if _, err := sheetsService.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("unable to freeze header row: %w", err)
	}
	return nil
}

func serviceAccountEmail(credentials []byte) string {
	var creds struct {
		ClientEmail string `json:"client_email"`
	}
	if err := json.Unmarshal(credentials, &creds); err != nil || creds.ClientEmail == "" {
		return "the service account"
	}
	return creds.ClientEmail
}
