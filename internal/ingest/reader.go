package ingest

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Row is one data row with its 1-based line number in the source file.
type Row struct {
	Line  int
	Cells []string
}

// Table is the raw content of an export: a header plus data rows. Blank
// rows are already removed.
type Table struct {
	Source string
	Header []string
	Rows   []Row
}

// ReadOptions configures table reading.
type ReadOptions struct {
	SheetName string // XLSX only; first sheet when empty
}

// ReadTable reads a CSV or XLSX file, chosen by extension.
func ReadTable(ctx context.Context, path string, opts ReadOptions) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrap(err, "ingest: open file")
		}
		defer f.Close()
		t, err := ReadCSV(ctx, f)
		if err != nil {
			return nil, err
		}
		t.Source = path
		return t, nil
	case ".xlsx":
		t, err := ReadXLSX(ctx, path, opts)
		if err != nil {
			return nil, err
		}
		t.Source = path
		return t, nil
	default:
		return nil, eris.Errorf("ingest: unsupported file format %q (use .csv or .xlsx)", filepath.Ext(path))
	}
}

// ReadCSV reads a whole CSV export. UTF-8 with or without a byte-order mark
// and UTF-16 with a byte-order mark are accepted.
func ReadCSV(ctx context.Context, r io.Reader) (*Table, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	rowCh, errCh := streamCSV(ctx, decoded)
	return collect(rowCh, errCh)
}

// streamCSV sends rows to a channel as they are parsed. Both channels are
// closed when parsing completes.
func streamCSV(ctx context.Context, r io.Reader) (<-chan Row, <-chan error) {
	rowCh := make(chan Row, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(rowCh)
		defer close(errCh)

		reader := csv.NewReader(r)
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		for {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "ingest: csv context cancelled")
				return
			}

			record, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- eris.Wrap(err, "ingest: csv read row")
				return
			}

			line, _ := reader.FieldPos(0)
			select {
			case rowCh <- Row{Line: line, Cells: record}:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "ingest: csv context cancelled")
				return
			}
		}
	}()

	return rowCh, errCh
}

// ReadXLSX reads one sheet of an XLSX export.
func ReadXLSX(ctx context.Context, path string, opts ReadOptions) (*Table, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: xlsx open file")
	}
	return readWorkbook(ctx, f, opts)
}

func readWorkbook(ctx context.Context, f *xlsx.File, opts ReadOptions) (*Table, error) {
	sheet, err := pickSheet(f, opts)
	if err != nil {
		return nil, err
	}

	var b tableBuilder
	for i, row := range sheet.Rows {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "ingest: xlsx context cancelled")
		}
		b.add(Row{Line: i + 1, Cells: cellStrings(row)})
	}
	return b.table()
}

func pickSheet(f *xlsx.File, opts ReadOptions) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("ingest: xlsx sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("ingest: xlsx file has no sheets")
	}
	return f.Sheets[0], nil
}

func cellStrings(row *xlsx.Row) []string {
	if row == nil {
		return nil
	}
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}

// collect drains a row stream into a Table.
func collect(rowCh <-chan Row, errCh <-chan error) (*Table, error) {
	var b tableBuilder
	for row := range rowCh {
		b.add(row)
	}
	for err := range errCh {
		if err != nil {
			return nil, err
		}
	}
	return b.table()
}

// tableBuilder takes the first non-blank row as the header and skips blank
// rows after it.
type tableBuilder struct {
	t         Table
	gotHeader bool
}

func (b *tableBuilder) add(row Row) {
	if blank(row.Cells) {
		return
	}
	if !b.gotHeader {
		b.t.Header = row.Cells
		b.gotHeader = true
		return
	}
	b.t.Rows = append(b.t.Rows, row)
}

func (b *tableBuilder) table() (*Table, error) {
	if !b.gotHeader {
		return nil, eris.New("ingest: file is empty")
	}
	t := b.t
	return &t, nil
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
