package render

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"mailreport/apperr"
	"mailreport/dbexport"
	"mailreport/logger"
)

var hexColor = regexp.MustCompile(`^[0-9A-Fa-f]{6}$`)

// SpreadsheetWriter writes a Table to a new xlsx workbook.
type SpreadsheetWriter struct {
	Log   *logger.Logger
	Now   func() time.Time
	NewID func() string
}

// Spreadsheet writes t to a new workbook inside targetDir using default
// collaborators and returns the file path.
func Spreadsheet(t *dbexport.Table, opts Options, targetDir string) (string, error) {
	return (&SpreadsheetWriter{}).Write(t, opts, targetDir)
}

// FileName returns the generated workbook name:
// <prefix>_<yyyyMMdd-HHmmss>_<id>.xlsx.
func FileName(prefix string, now time.Time, id string) string {
	if prefix == "" {
		prefix = DefaultFilePrefix
	}
	return fmt.Sprintf("%s_%s_%s.xlsx", prefix, now.Format("20060102-150405"), id)
}

// Write renders t into a workbook with a single sheet and saves it under
// targetDir with a generated, never pre-existing file name. The caller
// owns the returned file.
func (w *SpreadsheetWriter) Write(t *dbexport.Table, opts Options, targetDir string) (string, error) {
	log := w.Log
	if log == nil {
		log = logger.Nop()
	}
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	newID := func() string { return strings.ReplaceAll(uuid.NewString(), "-", "")[:8] }
	if w.NewID != nil {
		newID = w.NewID
	}

	if err := checkDir(targetDir); err != nil {
		return "", apperr.NewExport("check attachment directory", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet, err := populate(f, t, opts, log)
	if err != nil {
		return "", apperr.NewExport("build workbook", err)
	}
	log.Debug().Str("sheet", sheet).Int("rows", t.NumRows()).Msg("workbook built")

	path := filepath.Join(targetDir, FileName(opts.FilePrefix, now(), newID()))
	if err := save(f, path); err != nil {
		return "", apperr.NewExport("write workbook", err)
	}
	return path, nil
}

func checkDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return errors.New("attachment directory is not set")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

// save writes the workbook through an exclusively created file so an
// existing report is never replaced. A partial file is removed on error.
func save(f *excelize.File, path string) (err error) {
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
		}
	}()
	return writeWorkbook(f, out)
}

var writeWorkbook = func(f *excelize.File, w io.Writer) error { return f.Write(w) }

func populate(f *excelize.File, t *dbexport.Table, opts Options, log *logger.Logger) (string, error) {
	sheet := f.GetSheetName(0)
	if name := strings.TrimSpace(opts.SheetName); name != "" && name != sheet {
		if err := f.SetSheetName(sheet, name); err != nil {
			log.Warn().Err(err).Str("sheet_name", name).Msg("invalid sheet name, keeping default")
		} else {
			sheet = name
		}
	}

	ncols := t.NumColumns()
	if ncols == 0 {
		return sheet, nil
	}

	header := make([]any, ncols)
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return sheet, err
	}
	lastCol, err := excelize.ColumnNumberToName(ncols)
	if err != nil {
		return sheet, err
	}
	if style, ok := headerStyle(f, opts.HeaderStyle, log); ok {
		if err := f.SetCellStyle(sheet, "A1", lastCol+"1", style); err != nil {
			return sheet, err
		}
	}

	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	if err != nil {
		return sheet, err
	}
	dateTimeStyle, err := f.NewStyle(&excelize.Style{NumFmt: 22})
	if err != nil {
		return sheet, err
	}

	for r, row := range t.Rows {
		rowNum := r + 2
		vals := make([]any, ncols)
		copy(vals, row)
		start, _ := excelize.CoordinatesToCellName(1, rowNum)
		if err := f.SetSheetRow(sheet, start, &vals); err != nil {
			return sheet, fmt.Errorf("row %d: %w", rowNum, err)
		}
		for c, v := range vals {
			tm, ok := v.(time.Time)
			if !ok {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, rowNum)
			style := dateTimeStyle
			if isDateOnly(tm) {
				style = dateStyle
			}
			if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
				return sheet, err
			}
		}
	}

	applyColumnWidths(f, sheet, t, opts, log)

	if opts.FreezeHeader {
		err := f.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		})
		if err != nil {
			log.Warn().Err(err).Msg("could not freeze header row")
		}
	}
	if opts.AutoFilter {
		ref := fmt.Sprintf("A1:%s%d", lastCol, t.NumRows()+1)
		if err := f.AutoFilter(sheet, ref, nil); err != nil {
			log.Warn().Err(err).Msg("could not add auto filter")
		}
	}
	return sheet, nil
}

func headerStyle(f *excelize.File, hs HeaderStyle, log *logger.Logger) (int, bool) {
	style := &excelize.Style{Font: &excelize.Font{Bold: hs.Bold}}
	if c := strings.TrimPrefix(strings.TrimSpace(hs.BackgroundColor), "#"); c != "" {
		if hexColor.MatchString(c) {
			style.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{strings.ToUpper(c)}}
		} else {
			log.Warn().Str("color", hs.BackgroundColor).Msg("invalid header background color, ignoring")
		}
	}
	id, err := f.NewStyle(style)
	if err != nil {
		log.Warn().Err(err).Msg("could not create header style")
		return 0, false
	}
	return id, true
}

// applyColumnWidths sets the default width on every column, then the
// explicit widths. Keys that match no column are skipped.
func applyColumnWidths(f *excelize.File, sheet string, t *dbexport.Table, opts Options, log *logger.Logger) {
	ncols := t.NumColumns()
	lastCol, _ := excelize.ColumnNumberToName(ncols)
	if opts.DefaultColumnWidth > 0 {
		if err := f.SetColWidth(sheet, "A", lastCol, opts.DefaultColumnWidth); err != nil {
			log.Warn().Err(err).Float64("width", opts.DefaultColumnWidth).Msg("could not apply default column width")
		}
	}
	for key, width := range opts.ColumnWidths {
		idx := resolveColumn(t, key)
		if idx < 1 {
			log.Warn().Str("column", key).Int("columns", ncols).Msg("column width refers to a column not in the result, ignoring")
			continue
		}
		col, _ := excelize.ColumnNumberToName(idx)
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			log.Warn().Err(err).Str("column", key).Float64("width", width).Msg("could not apply column width")
		}
	}
}

// resolveColumn maps a width key to a 1-based column number, or 0.
func resolveColumn(t *dbexport.Table, key string) int {
	key = strings.TrimSpace(key)
	if n, err := strconv.Atoi(key); err == nil {
		if n >= 1 && n <= t.NumColumns() {
			return n
		}
		return 0
	}
	return t.ColumnIndex(key) + 1
}
