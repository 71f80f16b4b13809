// Package google implements the record store ports on a Google spreadsheet:
// one "injections" sheet and one "side_effects" sheet, header row in row 1.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"glptrack/internal/core"
	ports "glptrack/internal/store"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc              *gsheet.Service
	spreadsheetID    string
	injectionsSheet  string
	sideEffectsSheet string
}

// Ensure interface conformance
var (
	_ ports.InjectionAppender  = (*Client)(nil)
	_ ports.InjectionLister    = (*Client)(nil)
	_ ports.SideEffectAppender = (*Client)(nil)
	_ ports.SideEffectLister   = (*Client)(nil)
)

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID.
// Auth: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
// Optional sheet names: GOOGLE_INJECTIONS_SHEET_NAME (default "injections"),
// GOOGLE_SIDE_EFFECTS_SHEET_NAME (default "side_effects").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	injections := strings.TrimSpace(os.Getenv("GOOGLE_INJECTIONS_SHEET_NAME"))
	if injections == "" {
		injections = "injections"
	}
	sideEffects := strings.TrimSpace(os.Getenv("GOOGLE_SIDE_EFFECTS_SHEET_NAME"))
	if sideEffects == "" {
		sideEffects = "side_effects"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:              svc,
		spreadsheetID:    spreadsheetID,
		injectionsSheet:  injections,
		sideEffectsSheet: sideEffects,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account
// credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created")
	return service, nil
}

// AppendInjection implements ports.InjectionAppender.
func (c *Client) AppendInjection(ctx context.Context, r core.InjectionRecord) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	row := []any{r.Date.String(), r.Time.String(), r.Dosage.String(), r.Weight.String(), r.Notes}
	return c.appendRow(ctx, c.injectionsSheet, row)
}

// AppendSideEffect implements ports.SideEffectAppender.
func (c *Client) AppendSideEffect(ctx context.Context, r core.SideEffectRecord) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	row := []any{r.Date.String(), r.Description, r.Severity}
	return c.appendRow(ctx, c.sideEffectsSheet, row)
}

func (c *Client) appendRow(ctx context.Context, sheetName string, row []any) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:A", sheetName)
	vr := &gsheet.ValueRange{Values: [][]any{row}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", sheetName, err)
	}
	ref := sheetName
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	return ref, nil
}

// ListInjections implements ports.InjectionLister. Rows that fail to parse
// are skipped; the list is best-effort like the rest of the backends.
func (c *Client) ListInjections(ctx context.Context) ([]core.InjectionRecord, error) {
	rows, err := c.readRows(ctx, c.injectionsSheet, "A2:E")
	if err != nil {
		return nil, err
	}
	var out []core.InjectionRecord
	for _, cols := range rows {
		if len(cols) < 4 {
			continue
		}
		date, err := core.ParseDate(cols[0])
		if err != nil {
			continue
		}
		tod, err := core.ParseTimeOfDay(cols[1])
		if err != nil {
			tod = core.TimeOfDay{}
		}
		dosage, err := core.ParseDecimal(cols[2])
		if err != nil {
			continue
		}
		weight, err := core.ParseDecimal(cols[3])
		if err != nil {
			continue
		}
		notes := ""
		if len(cols) >= 5 {
			notes = cols[4]
		}
		out = append(out, core.InjectionRecord{
			Date: date, Time: tod, Dosage: dosage, Weight: weight, Notes: notes,
		})
	}
	return out, nil
}

// ListSideEffects implements ports.SideEffectLister.
func (c *Client) ListSideEffects(ctx context.Context) ([]core.SideEffectRecord, error) {
	rows, err := c.readRows(ctx, c.sideEffectsSheet, "A2:C")
	if err != nil {
		return nil, err
	}
	var out []core.SideEffectRecord
	for _, cols := range rows {
		if len(cols) < 2 {
			continue
		}
		date, err := core.ParseDate(cols[0])
		if err != nil {
			continue
		}
		desc := strings.TrimSpace(cols[1])
		if desc == "" {
			continue
		}
		severity := ""
		if len(cols) >= 3 {
			severity = cols[2]
		}
		out = append(out, core.SideEffectRecord{Date: date, Description: desc, Severity: severity})
	}
	return out, nil
}

func (c *Client) readRows(ctx context.Context, sheetName, span string) ([][]string, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!%s", sheetName, span)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	out := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		out = append(out, toStrings(row))
	}
	return out, nil
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
