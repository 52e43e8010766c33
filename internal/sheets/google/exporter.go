// Package google mirrors the ledger into a Google Spreadsheet.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"finbot/internal/core"
	applog "finbot/internal/log"
	ports "finbot/internal/sheets"
)

var _ ports.LedgerExporter = (*Exporter)(nil)

type Config struct {
	SpreadsheetID string
	SheetName     string
	// Service account credentials, inline JSON takes precedence over the file.
	CredentialsJSON string
	CredentialsFile string
	// Location used to render the Date column. Defaults to UTC.
	Location *time.Location
}

type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	loc           *time.Location
	logger        *applog.Logger
}

// New creates an Exporter authenticated with a service account.
func New(ctx context.Context, cfg Config, logger *applog.Logger) (*Exporter, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if logger == nil {
		logger = applog.Discard()
	}
	svc, err := newSheetsService(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, cfg, logger), nil
}

// NewWithService wraps an already configured Sheets service.
func NewWithService(svc *gsheet.Service, cfg Config, logger *applog.Logger) *Exporter {
	if logger == nil {
		logger = applog.Discard()
	}
	sheet := strings.TrimSpace(cfg.SheetName)
	if sheet == "" {
		sheet = "Ledger"
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Exporter{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     sheet,
		loc:           loc,
		logger:        logger.WithComponent(applog.ComponentSheets),
	}
}

func newSheetsService(ctx context.Context, cfg Config, logger *applog.Logger) (*gsheet.Service, error) {
	var credentialsJSON []byte
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		logger.InfoContext(ctx, "Using inline service account credentials")
		credentialsJSON = []byte(cfg.CredentialsJSON)
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		logger.InfoContext(ctx, "Read service account credentials file",
			"path", cfg.CredentialsFile,
			"size", len(b))
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

// ExportTransaction appends tx as a new row unless a row with its id already
// exists. The header row is written first when the sheet is empty.
func (e *Exporter) ExportTransaction(ctx context.Context, tx core.Transaction) error {
	if tx.ID <= 0 {
		return core.ErrInvalidID
	}
	ids, err := e.readIDs(ctx)
	if err != nil {
		return err
	}
	if row := findRowByID(ids, tx.ID); row > 0 {
		e.logger.DebugContext(ctx, "Transaction already exported",
			applog.FieldTxID, tx.ID,
			"row", row)
		return nil
	}

	values := [][]interface{}{transactionRow(tx, e.loc)}
	if len(ids) == 0 {
		values = append([][]interface{}{Header}, values...)
	}
	vr := &gsheet.ValueRange{Values: values}
	_, err = e.svc.Spreadsheets.Values.Append(e.spreadsheetID, columnRange(e.sheetName, "A:"+lastColumn), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to sheet %s: %w", e.sheetName, err)
	}

	e.logger.InfoContext(ctx, "Exported transaction",
		applog.FieldTxID, tx.ID,
		applog.FieldUserID, tx.UserID,
		applog.FieldKind, tx.Kind.String())
	return nil
}

// RemoveTransaction clears the row holding txID. A missing row is not an error.
func (e *Exporter) RemoveTransaction(ctx context.Context, txID int64) error {
	ids, err := e.readIDs(ctx)
	if err != nil {
		return err
	}
	row := findRowByID(ids, txID)
	if row == 0 {
		e.logger.DebugContext(ctx, "Transaction not present in sheet", applog.FieldTxID, txID)
		return nil
	}

	_, err = e.svc.Spreadsheets.Values.Clear(e.spreadsheetID, rowRange(e.sheetName, row), &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear row %d in sheet %s: %w", row, e.sheetName, err)
	}

	e.logger.InfoContext(ctx, "Removed transaction from sheet",
		applog.FieldTxID, txID,
		"row", row)
	return nil
}

func (e *Exporter) readIDs(ctx context.Context) ([][]interface{}, error) {
	resp, err := e.svc.Spreadsheets.Values.Get(e.spreadsheetID, columnRange(e.sheetName, idColumnRef)).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read ids from sheet %s: %w", e.sheetName, err)
	}
	return resp.Values, nil
}
