package render

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"mailreport/apperr"
	"mailreport/dbexport"
)

var fixedNow = func() time.Time { return time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC) }

func sampleTable() *dbexport.Table {
	return dbexport.NewTable("region", "amount", "shipped").
		AddRow("north", int64(10), time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC)).
		AddRow("south", 12.5, nil).
		AddRow(nil, int64(7), time.Date(2024, 2, 3, 14, 0, 0, 0, time.UTC))
}

func openWorkbook(t *testing.T, path string) *excelize.File {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestSpreadsheet_WritesTypedCells(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions()
	opts.SheetName = "Sales"
	w := &SpreadsheetWriter{Now: fixedNow, NewID: func() string { return "abcd1234" }}

	path, err := w.Write(sampleTable(), opts, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report_20261019-083000_abcd1234.xlsx"), path)

	f := openWorkbook(t, path)
	assert.Equal(t, []string{"Sales"}, f.GetSheetList())

	rows, err := f.GetRows("Sales")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"region", "amount", "shipped"}, rows[0])

	typ, err := f.GetCellType("Sales", "B2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, typ)
	assert.NotEqual(t, excelize.CellTypeInlineString, typ)

	raw, err := f.GetCellValue("Sales", "B3", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "12.5", raw)

	styleID, err := f.GetCellStyle("Sales", "C2")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	assert.Equal(t, 14, style.NumFmt)

	headerID, err := f.GetCellStyle("Sales", "A1")
	require.NoError(t, err)
	header, err := f.GetStyle(headerID)
	require.NoError(t, err)
	require.NotNil(t, header.Font)
	assert.True(t, header.Font.Bold)
}

func TestSpreadsheet_ColumnWidthDelta(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions()
	opts.DefaultColumnWidth = 12
	opts.ColumnWidths = map[string]float64{"2": 30}

	path, err := (&SpreadsheetWriter{Now: fixedNow}).Write(sampleTable(), opts, dir)
	require.NoError(t, err)

	f := openWorkbook(t, path)
	a, err := f.GetColWidth(DefaultSheetName, "A")
	require.NoError(t, err)
	b, err := f.GetColWidth(DefaultSheetName, "B")
	require.NoError(t, err)
	c, err := f.GetColWidth(DefaultSheetName, "C")
	require.NoError(t, err)

	assert.Equal(t, a, c)
	assert.InDelta(t, 18, b-a, 1e-9)
}

func TestSpreadsheet_WidthByColumnNameAndOutOfRange(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions()
	opts.DefaultColumnWidth = 10
	opts.ColumnWidths = map[string]float64{"SHIPPED": 22, "9": 40, "nope": 40}

	path, err := (&SpreadsheetWriter{Now: fixedNow}).Write(sampleTable(), opts, dir)
	require.NoError(t, err)

	f := openWorkbook(t, path)
	cw, err := f.GetColWidth(DefaultSheetName, "C")
	require.NoError(t, err)
	assert.InDelta(t, 22, cw, 1e-9)
}

func TestSpreadsheet_InvalidStylingIsBestEffort(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions()
	opts.SheetName = "bad/name?"
	opts.HeaderStyle.BackgroundColor = "not-a-color"
	opts.AutoFilter = true

	path, err := (&SpreadsheetWriter{Now: fixedNow}).Write(sampleTable(), opts, dir)
	require.NoError(t, err)

	f := openWorkbook(t, path)
	assert.Equal(t, []string{DefaultSheetName}, f.GetSheetList())
	rows, err := f.GetRows(DefaultSheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}

func TestSpreadsheet_ZeroRows(t *testing.T) {
	dir := t.TempDir()
	path, err := Spreadsheet(dbexport.NewTable("id"), DefaultOptions(), dir)
	require.NoError(t, err)

	f := openWorkbook(t, path)
	rows, err := f.GetRows(DefaultSheetName)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"id"}}, rows)
}

func TestSpreadsheet_UniqueNames(t *testing.T) {
	dir := t.TempDir()
	w := &SpreadsheetWriter{Now: fixedNow}
	p1, err := w.Write(sampleTable(), DefaultOptions(), dir)
	require.NoError(t, err)
	p2, err := w.Write(sampleTable(), DefaultOptions(), dir)
	require.NoError(t, err)
	assert.NotEqual(t, p1, p2)
}

func TestSpreadsheet_NeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	w := &SpreadsheetWriter{Now: fixedNow, NewID: func() string { return "same" }}
	existing := filepath.Join(dir, FileName(DefaultFilePrefix, fixedNow(), "same"))
	require.NoError(t, os.WriteFile(existing, []byte("keep me"), 0o644))

	_, err := w.Write(sampleTable(), DefaultOptions(), dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.Export))

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(data))
}

func TestSpreadsheet_FailedWriteLeavesNoFile(t *testing.T) {
	origWrite := writeWorkbook
	t.Cleanup(func() { writeWorkbook = origWrite })
	writeWorkbook = func(f *excelize.File, w io.Writer) error {
		if _, err := w.Write([]byte("PK partial")); err != nil {
			return err
		}
		return errors.New("disk full")
	}

	dir := t.TempDir()
	_, err := Spreadsheet(sampleTable(), DefaultOptions(), dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.Export))
	assert.Contains(t, err.Error(), "disk full")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "partial workbook left behind")
}

func TestSpreadsheet_BadDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "plain.txt")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	for _, target := range []string{"", filepath.Join(dir, "missing"), file} {
		_, err := Spreadsheet(sampleTable(), DefaultOptions(), target)
		assert.True(t, errors.Is(err, apperr.Export), "target %q: %v", target, err)
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "report_20261019-083000_x.xlsx", FileName("", fixedNow(), "x"))
	assert.Equal(t, "sales_20261019-083000_x.xlsx", FileName("sales", fixedNow(), "x"))
}
