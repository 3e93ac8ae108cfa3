package tabular

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsStore implements Store on top of the Google Sheets values API. All
// writes use RAW input so cell text is stored verbatim, and appends use
// INSERT_ROWS so existing rows are pushed down rather than overwritten.
type SheetsStore struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
}

// NewSheetsStore builds a Sheets-backed store from service-account
// credentials JSON.
func NewSheetsStore(ctx context.Context, credentials []byte, spreadsheetID, sheetName string) (*SheetsStore, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsJSON(credentials),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("init sheets service: %w", err)
	}
	return &SheetsStore{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// ReadHeader reads A1 through the width-th column of row 1.
func (s *SheetsStore) ReadHeader(ctx context.Context, width int) ([]string, error) {
	readRange := fmt.Sprintf("%s!A1:%s1", s.sheetName, columnName(width))
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read header range: %w", err)
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}
	return cellStrings(resp.Values[0]), nil
}

// WriteHeader overwrites the header region starting at A1.
func (s *SheetsStore) WriteHeader(ctx context.Context, cells []string) error {
	body := &sheets.ValueRange{Values: [][]interface{}{cellValues(cells)}}
	_, err := s.svc.Spreadsheets.Values.
		Update(s.spreadsheetID, fmt.Sprintf("%s!A1", s.sheetName), body).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write header range: %w", err)
	}
	return nil
}

// Append inserts one row beneath the existing content.
func (s *SheetsStore) Append(ctx context.Context, row []string) error {
	body := &sheets.ValueRange{Values: [][]interface{}{cellValues(row)}}
	_, err := s.svc.Spreadsheets.Values.
		Append(s.spreadsheetID, fmt.Sprintf("%s!A2", s.sheetName), body).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append row: %w", err)
	}
	return nil
}

func cellValues(cells []string) []interface{} {
	out := make([]interface{}, len(cells))
	for i, c := range cells {
		out[i] = c
	}
	return out
}

func cellStrings(cells []interface{}) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = fmt.Sprint(c)
	}
	return out
}
