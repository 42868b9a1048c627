package render

// HeaderStyle controls how the spreadsheet header row looks.
type HeaderStyle struct {
	Bold bool
	// BackgroundColor is an RGB hex color such as "#D9E1F2". Empty means no fill.
	BackgroundColor string
}

// Options controls spreadsheet formatting. Styling is best effort: an
// option that cannot be applied is skipped with a warning, the data is
// always written.
type Options struct {
	SheetName   string
	HeaderStyle HeaderStyle
	// DefaultColumnWidth applies to every column without an explicit width.
	// Zero keeps the spreadsheet application's default.
	DefaultColumnWidth float64
	// ColumnWidths maps a 1-based column index ("2") or a column name
	// (case-insensitive) to a width.
	ColumnWidths map[string]float64
	FreezeHeader bool
	AutoFilter   bool
	// FilePrefix is the first part of the generated file name.
	FilePrefix string
}

const (
	DefaultSheetName   = "Sheet1"
	DefaultFilePrefix  = "report"
	DefaultColumnWidth = 15
)

// DefaultOptions returns the formatting used when the configuration is silent.
func DefaultOptions() Options {
	return Options{
		SheetName: DefaultSheetName,
		HeaderStyle: HeaderStyle{
			Bold:            true,
			BackgroundColor: "#D9D9D9",
		},
		DefaultColumnWidth: DefaultColumnWidth,
		FreezeHeader:       true,
		FilePrefix:         DefaultFilePrefix,
	}
}
