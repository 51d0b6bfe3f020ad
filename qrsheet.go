// Package qrsheet lays out batches of QR codes and linear barcodes on
// print-ready pages and exports them as PDF, PNG, SVG, Word documents and
// ZIP archives.
//
// All geometry is derived from a single Config by NewLayout, so that every
// export target places codes, labels and cut lines at the same positions.
// Physical sizes in a Config are in centimeters (code size, margin, spacing),
// inches (custom page size) and points (font sizes):
//
//	cfg := qrsheet.DefaultConfig()
//	cfg.Columns, cfg.Rows, cfg.TotalCodes = 2, 2, 7
//	job := &qrsheet.Job{Config: cfg}
//	b, err := qrsheet.ExportPDF(ctx, job, nil)
package qrsheet

import (
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"

	"github.com/tailscale/hujson"
)

// CodeMode selects between QR codes and linear barcodes.
type CodeMode int

const (
	ModeQR CodeMode = iota
	ModeBarcode
)

var codeModeNames = map[CodeMode]string{
	ModeQR:      "qr",
	ModeBarcode: "barcode",
}

func (m CodeMode) String() string { return enumString(codeModeNames, m) }

func (m CodeMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *CodeMode) UnmarshalText(b []byte) error { return enumParse(codeModeNames, m, b, "code mode") }

// PageSize names one of the page presets.
type PageSize int

const (
	PageLetter PageSize = iota
	PageA4
	PageA5
	PageCustom
)

var pageSizeNames = map[PageSize]string{
	PageLetter: "letter",
	PageA4:     "a4",
	PageA5:     "a5",
	PageCustom: "custom",
}

func (p PageSize) String() string { return enumString(pageSizeNames, p) }

func (p PageSize) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *PageSize) UnmarshalText(b []byte) error { return enumParse(pageSizeNames, p, b, "page size") }

// pageDimensions are in inches.
var pageDimensions = map[PageSize][2]float64{
	PageLetter: {8.5, 11},
	PageA4:     {8.27, 11.69},
	PageA5:     {5.83, 8.27},
}

// LabelPosition selects on which sides of a code its label is printed.
type LabelPosition int

const (
	LabelBottom LabelPosition = iota
	LabelTop
	LabelBoth // top and bottom
	LabelAll  // all four sides, left and right rotated
)

var labelPositionNames = map[LabelPosition]string{
	LabelBottom: "bottom",
	LabelTop:    "top",
	LabelBoth:   "both",
	LabelAll:    "all",
}

func (p LabelPosition) String() string { return enumString(labelPositionNames, p) }

func (p LabelPosition) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *LabelPosition) UnmarshalText(b []byte) error {
	return enumParse(labelPositionNames, p, b, "label position")
}

// sides reports which label bands the position requests.
func (p LabelPosition) sides() (top, bottom, left, right bool) {
	switch p {
	case LabelBottom:
		return false, true, false, false
	case LabelTop:
		return true, false, false, false
	case LabelBoth:
		return true, true, false, false
	case LabelAll:
		return true, true, true, true
	}
	panic(fmt.Sprintf("BUG: unhandled label position %d", int(p)))
}

// ECLevel is the QR error-correction grade.
type ECLevel int

const (
	ECLow      ECLevel = iota // L, ~7% recovery
	ECMedium                  // M, ~15%
	ECQuartile                // Q, ~25%
	ECHigh                    // H, ~30%
)

var ecLevelNames = map[ECLevel]string{
	ECLow:      "L",
	ECMedium:   "M",
	ECQuartile: "Q",
	ECHigh:     "H",
}

func (l ECLevel) String() string { return enumString(ecLevelNames, l) }

func (l ECLevel) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

func (l *ECLevel) UnmarshalText(b []byte) error { return enumParse(ecLevelNames, l, b, "error correction level") }

// recovery returns the fraction of codewords the grade can restore.
func (l ECLevel) recovery() float64 {
	switch l {
	case ECLow:
		return 0.07
	case ECMedium:
		return 0.15
	case ECQuartile:
		return 0.25
	case ECHigh:
		return 0.30
	}
	panic(fmt.Sprintf("BUG: unhandled error correction level %d", int(l)))
}

// Color is an opaque RGB color, written as #rrggbb in configuration files.
type Color color.RGBA

func (c Color) RGBA() (r, g, b, a uint32) { return color.RGBA(c).RGBA() }

func (c Color) String() string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

func (c Color) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Color) UnmarshalText(b []byte) error {
	parsed, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseColor parses #rgb and #rrggbb notation.
func ParseColor(s string) (Color, error) {
	v := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(v) == 3 {
		v = string([]byte{v[0], v[0], v[1], v[1], v[2], v[2]})
	}
	if len(v) != 6 {
		return Color{}, fmt.Errorf("invalid color %q: want #rrggbb", s)
	}
	n, err := strconv.ParseUint(v, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %v", s, err)
	}
	return Color{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 0xff}, nil
}

var (
	black = Color{A: 0xff}
	white = Color{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// Config describes one render pass. It is treated as immutable while a pass
// runs; edits produce a new Config.
type Config struct {
	Mode    CodeMode      `json:"codeMode"`
	Barcode BarcodeConfig `json:"barcode"`
	Content ContentConfig `json:"content"`

	Columns    int `json:"cols"`
	Rows       int `json:"rows"`
	TotalCodes int `json:"totalCodes"`

	CodeSize float64 `json:"codeSize"` // cm
	Margin   float64 `json:"margin"`   // cm
	Spacing  float64 `json:"spacing"`  // cm

	PageSize     PageSize `json:"pageSize"`
	CustomWidth  float64  `json:"customPageWidth"`  // inches
	CustomHeight float64  `json:"customPageHeight"` // inches

	Label         string        `json:"label"`
	LabelPosition LabelPosition `json:"labelPosition"`
	Title         string        `json:"pageTitle"`
	TitleSize     float64       `json:"titleSize"` // pt
	LabelSize     float64       `json:"labelSize"` // pt
	FontFamily    string        `json:"fontFamily"`

	CodeColor             Color `json:"codeColor"`
	CodeBackground        Color `json:"codeBg"`
	PageBackground        Color `json:"pageBg"`
	TransparentBackground bool  `json:"transparentBg"`

	CutLines        bool    `json:"cutLines"`
	PageNumbers     bool    `json:"showPageNum"`
	Roundness       int     `json:"roundness"` // percent, 0 means square modules
	ErrorCorrection ECLevel `json:"errorCorrection"`

	LogoSize       int  `json:"logoSize"` // percent of the QR edge
	LogoBackground bool `json:"logoBgWhite"`

	OutputFilename string `json:"outputFilename"`
	TemplateID     string `json:"templateId"`
}

// BarcodeConfig holds the raw text of a linear barcode; it bypasses the QR
// content encoder.
type BarcodeConfig struct {
	Format Symbology `json:"format"`
	Text   string    `json:"text"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() *Config {
	return &Config{
		Mode:    ModeQR,
		Barcode: BarcodeConfig{Format: Code128, Text: "1234567890"},
		Content: ContentConfig{
			Type:  ContentURL,
			Value: "https://example.com",
			WiFi:  WiFi{Encryption: EncryptionWPA},
		},
		Columns:         3,
		Rows:            4,
		TotalCodes:      24,
		CodeSize:        4,
		Margin:          1.5,
		Spacing:         0,
		PageSize:        PageLetter,
		CustomWidth:     8.5,
		CustomHeight:    11,
		Label:           "Scan here",
		LabelPosition:   LabelBottom,
		TitleSize:       18,
		LabelSize:       9,
		FontFamily:      "system-ui, -apple-system, sans-serif",
		CodeColor:       black,
		CodeBackground:  white,
		PageBackground:  white,
		CutLines:        true,
		ErrorCorrection: ECHigh,
		LogoSize:        25,
		LogoBackground:  true,
		TemplateID:      "custom",
	}
}

// LoadConfig reads a JSON document (comments and trailing commas allowed) and
// applies it on top of DefaultConfig.
func LoadConfig(r io.Reader) (*Config, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	b, err = hujson.Standardize(b)
	if err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return cfg.Fill(), nil
}

// Fill returns a copy of c with out-of-range values clamped and missing
// values replaced by their defaults.
func (c *Config) Fill() *Config {
	def := DefaultConfig()
	f := *c
	if f.Columns < 1 {
		f.Columns = 1
	}
	if f.Rows < 1 {
		f.Rows = 1
	}
	if f.TotalCodes < 1 {
		f.TotalCodes = 1
	}
	if f.CodeSize <= 0 {
		f.CodeSize = def.CodeSize
	}
	if f.Margin < 0 {
		f.Margin = 0
	}
	if f.Spacing < 0 {
		f.Spacing = 0
	}
	if f.PageSize == PageCustom && (f.CustomWidth <= 0 || f.CustomHeight <= 0) {
		f.CustomWidth, f.CustomHeight = def.CustomWidth, def.CustomHeight
	}
	if f.TitleSize <= 0 {
		f.TitleSize = def.TitleSize
	}
	if f.LabelSize <= 0 {
		f.LabelSize = def.LabelSize
	}
	f.Roundness = clampInt(f.Roundness, 0, 100)
	f.LogoSize = clampInt(f.LogoSize, MinLogoSize, MaxLogoSize)
	return &f
}

// PageInches returns the page width and height in inches.
func (c *Config) PageInches() (w, h float64) {
	if c.PageSize == PageCustom {
		return c.CustomWidth, c.CustomHeight
	}
	d, ok := pageDimensions[c.PageSize]
	if !ok {
		d = pageDimensions[PageLetter]
	}
	return d[0], d[1]
}

// background returns the code background, or a fully transparent color when
// TransparentBackground is set.
func (c *Config) background() color.RGBA {
	if c.TransparentBackground {
		return color.RGBA{}
	}
	return color.RGBA(c.CodeBackground)
}

// FileKind identifies one export target for Filename.
type FileKind int

const (
	FilePDF FileKind = iota
	FileWord
	FileHTML
	FilePagePNG
	FileSinglePNG
	FileSingleSVG
	FileArchive
)

// Filename returns the suggested file name for an export. page is 1-based
// and only used for FilePagePNG.
func (c *Config) Filename(kind FileKind, page int) string {
	switch kind {
	case FilePDF:
		return c.baseName("QR_Template") + ".pdf"
	case FileWord:
		return c.baseName("QR_Template") + ".doc"
	case FileHTML:
		return c.baseName("QR_Template") + ".html"
	case FilePagePNG:
		return fmt.Sprintf("%s_%d.png", c.baseName("QR_Sheet"), page)
	case FileSinglePNG:
		return c.baseName("code_hires") + ".png"
	case FileSingleSVG:
		return c.baseName("code") + ".svg"
	case FileArchive:
		return c.baseName("code") + "_bulk.zip"
	}
	panic(fmt.Sprintf("BUG: unhandled file kind %d", int(kind)))
}

// baseName returns OutputFilename, or def when it is unset.
func (c *Config) baseName(def string) string {
	if c.OutputFilename != "" {
		return c.OutputFilename
	}
	return def
}

func enumString[T ~int](names map[T]string, v T) string {
	if s, ok := names[v]; ok {
		return s
	}
	return fmt.Sprintf("%d(?)", int(v))
}

func enumParse[T ~int](names map[T]string, dst *T, b []byte, what string) error {
	s := string(b)
	for v, name := range names {
		if strings.EqualFold(name, s) {
			*dst = v
			return nil
		}
	}
	return fmt.Errorf("unknown %s %q", what, s)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
