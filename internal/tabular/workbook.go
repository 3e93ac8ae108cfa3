package tabular

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/xuri/excelize/v2"
)

// Workbook implements Store against a local .xlsx file. It exists for
// development and air-gapped deployments where no hosted spreadsheet is
// reachable. Every operation reopens the file so concurrent processes see
// each other's writes; the mutex only serializes callers within this process.
type Workbook struct {
	mu    sync.Mutex
	path  string
	sheet string
}

// NewWorkbook builds a workbook store. The file is created lazily on the
// first write.
func NewWorkbook(path, sheet string) *Workbook {
	return &Workbook{path: path, sheet: sheet}
}

// ReadHeader returns the header region of the first row, confined to width
// columns the way a ranged read would be, or nil when the file or sheet does
// not exist yet. Stale cells beyond the region are left in place and ignored.
func (w *Workbook) ReadHeader(_ context.Context, width int) ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	f, err := w.open()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()
	idx, err := f.GetSheetIndex(w.sheet)
	if err != nil {
		return nil, fmt.Errorf("find sheet %s: %w", w.sheet, err)
	}
	if idx < 0 {
		return nil, nil
	}
	rows, err := f.GetRows(w.sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", w.sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	header := rows[0]
	if len(header) > width {
		header = header[:width]
	}
	return header, nil
}

// WriteHeader sets the first row of the sheet, creating the workbook and
// sheet as needed.
func (w *Workbook) WriteHeader(_ context.Context, cells []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	f, created, err := w.openOrCreate()
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SetSheetRow(w.sheet, "A1", rowValues(cells)); err != nil {
		return fmt.Errorf("set header row: %w", err)
	}
	return w.save(f, created)
}

// Append writes the row into the first unpopulated row of the sheet.
func (w *Workbook) Append(_ context.Context, row []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	f, created, err := w.openOrCreate()
	if err != nil {
		return err
	}
	defer f.Close()
	rows, err := f.GetRows(w.sheet)
	if err != nil {
		return fmt.Errorf("read sheet %s: %w", w.sheet, err)
	}
	cell := fmt.Sprintf("A%d", len(rows)+1)
	if err := f.SetSheetRow(w.sheet, cell, rowValues(row)); err != nil {
		return fmt.Errorf("set row at %s: %w", cell, err)
	}
	return w.save(f, created)
}

func (w *Workbook) open() (*excelize.File, error) {
	if _, err := os.Stat(w.path); err != nil {
		return nil, err
	}
	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", w.path, err)
	}
	return f, nil
}

// openOrCreate returns the workbook plus whether it was newly created, so
// save knows to SaveAs instead of Save. The target sheet is guaranteed to
// exist on return.
func (w *Workbook) openOrCreate() (*excelize.File, bool, error) {
	f, err := w.open()
	created := false
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, false, err
		}
		f = excelize.NewFile()
		created = true
	}
	idx, err := f.GetSheetIndex(w.sheet)
	if err != nil {
		f.Close()
		return nil, false, fmt.Errorf("find sheet %s: %w", w.sheet, err)
	}
	if idx < 0 {
		if _, err := f.NewSheet(w.sheet); err != nil {
			f.Close()
			return nil, false, fmt.Errorf("create sheet %s: %w", w.sheet, err)
		}
	}
	return f, created, nil
}

func (w *Workbook) save(f *excelize.File, created bool) error {
	if created {
		if err := f.SaveAs(w.path); err != nil {
			return fmt.Errorf("save workbook %s: %w", w.path, err)
		}
		return nil
	}
	if err := f.Save(); err != nil {
		return fmt.Errorf("save workbook %s: %w", w.path, err)
	}
	return nil
}

func rowValues(cells []string) *[]interface{} {
	out := make([]interface{}, len(cells))
	for i, c := range cells {
		out[i] = c
	}
	return &out
}
