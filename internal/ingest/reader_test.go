package ingest

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV_Basic(t *testing.T) {
	input := "a,b,c\n1,2,3\n4,5,6\n"
	tbl, err := ReadCSV(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, tbl.Header)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, []string{"1", "2", "3"}, tbl.Rows[0].Cells)
	assert.Equal(t, 2, tbl.Rows[0].Line)
	assert.Equal(t, 3, tbl.Rows[1].Line)
}

func TestReadCSV_SkipsBlankRows(t *testing.T) {
	input := "\na,b\n,\n1,2\n\n3,4\n"
	tbl, err := ReadCSV(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tbl.Header)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, []string{"3", "4"}, tbl.Rows[1].Cells)
}

func TestReadCSV_StripsUTF8BOM(t *testing.T) {
	input := "\xef\xbb\xbfKeyword,Position\nseo,3\n"
	tbl, err := ReadCSV(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "Keyword", tbl.Header[0])
}

func TestReadCSV_UTF16LE(t *testing.T) {
	// "a,b\n1,2\n" encoded as UTF-16LE with a byte-order mark.
	plain := "a,b\n1,2\n"
	buf := []byte{0xff, 0xfe}
	for _, r := range plain {
		buf = append(buf, byte(r), 0)
	}
	tbl, err := ReadCSV(context.Background(), strings.NewReader(string(buf)))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tbl.Header)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, []string{"1", "2"}, tbl.Rows[0].Cells)
}

func TestReadCSV_LazyQuotesAndVariableFields(t *testing.T) {
	input := "a,b,c\n1,say \"hi\",3\n4,5\n"
	tbl, err := ReadCSV(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, `say "hi"`, tbl.Rows[0].Cells[1])
	assert.Len(t, tbl.Rows[1].Cells, 2)
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(context.Background(), strings.NewReader("\n\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestReadCSV_ContextCancelled(t *testing.T) {
	var sb strings.Builder
	for range 10000 {
		sb.WriteString("a,b,c\n")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ReadCSV(ctx, strings.NewReader(sb.String()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context cancelled")
}

func TestReadTable_XLSX(t *testing.T) {
	path := writeXLSXFile(t, "Sheet1", [][]string{
		{"Keyword", "Position"},
		{"seo tools", "4"},
		{"", ""},
		{"rank tracker", "12"},
	})

	tbl, err := ReadTable(context.Background(), path, ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, path, tbl.Source)
	assert.Equal(t, []string{"Keyword", "Position"}, tbl.Header)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "rank tracker", tbl.Rows[1].Cells[0])
}

func TestReadTable_XLSXSheetNotFound(t *testing.T) {
	path := writeXLSXFile(t, "Data", [][]string{{"a"}})
	_, err := ReadTable(context.Background(), path, ReadOptions{SheetName: "Missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `sheet "Missing" not found`)
}

func TestReadTable_UnsupportedExtension(t *testing.T) {
	_, err := ReadTable(context.Background(), "export.json", ReadOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file format")
}

func TestReadTable_MissingFile(t *testing.T) {
	_, err := ReadTable(context.Background(), "/nonexistent/client.csv", ReadOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open file")
}

func TestReadTable_XLSXLeadingBlankRows(t *testing.T) {
	path := writeXLSXFile(t, "Sheet1", [][]string{
		{"", ""},
		{"Keyword", "Position"},
		{"seo tools", "4"},
	})

	tbl, err := ReadTable(context.Background(), path, ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Keyword", "Position"}, tbl.Header)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, 3, tbl.Rows[0].Line)
}

func TestReadTable_XLSXContextCancelled(t *testing.T) {
	path := writeXLSXFile(t, "Sheet1", [][]string{{"Keyword"}, {"seo tools"}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ReadTable(ctx, path, ReadOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context cancelled")
}
