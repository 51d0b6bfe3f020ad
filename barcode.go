// Copyright 2020 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package qrsheet

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/code39"
	"github.com/boombuler/barcode/ean"
	"github.com/fogleman/gg"
)

// Symbology is one of the supported linear barcode formats.
type Symbology int

const (
	Code128 Symbology = iota
	EAN13
	UPC // UPC-A
	Code39
)

var symbologyNames = map[Symbology]string{
	Code128: "CODE128",
	EAN13:   "EAN13",
	UPC:     "UPC",
	Code39:  "CODE39",
}

// Symbologies lists every supported format in presentation order.
var Symbologies = []Symbology{Code128, EAN13, UPC, Code39}

func (s Symbology) String() string { return enumString(symbologyNames, s) }

func (s Symbology) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Symbology) UnmarshalText(b []byte) error { return enumParse(symbologyNames, s, b, "barcode format") }

// Placeholder returns an example of valid input for s.
func (s Symbology) Placeholder() string {
	switch s {
	case EAN13:
		return "590123412345"
	case UPC:
		return "01234567890"
	case Code39:
		return "ITEM-001"
	case Code128:
		return "ABC-123"
	}
	panic(fmt.Sprintf("BUG: unhandled symbology %d", int(s)))
}

// ValidationError describes why text cannot be encoded in a symbology. Its
// Error string is a stable code (e.g. "need_digits:1") for user interfaces
// to translate.
type ValidationError struct {
	Code string // empty, digits_only, need_digits, too_long, invalid_chars
	Arg  string
}

func (e *ValidationError) Error() string {
	if e.Arg == "" {
		return e.Code
	}
	return e.Code + ":" + e.Arg
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// validateDigits checks numeric symbologies which take n digits (the check
// digit is computed) or n+1 digits.
func validateDigits(text string, n int) error {
	if !isDigits(text) {
		return &ValidationError{Code: "digits_only"}
	}
	if len(text) < n {
		return &ValidationError{Code: "need_digits", Arg: fmt.Sprint(n - len(text))}
	}
	if len(text) > n+1 {
		return &ValidationError{Code: "too_long", Arg: fmt.Sprint(n + 1)}
	}
	return nil
}

const code39Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 -.$/+%"

// ValidateBarcode reports whether text can be encoded in format s. The
// returned error, if any, is a *ValidationError.
func ValidateBarcode(text string, s Symbology) error {
	if text == "" {
		return &ValidationError{Code: "empty"}
	}
	switch s {
	case EAN13:
		return validateDigits(text, 12)
	case UPC:
		return validateDigits(text, 11)
	case Code39:
		var invalid []string
		seen := make(map[rune]bool)
		for _, r := range text {
			if strings.ContainsRune(code39Alphabet, toUpperASCII(r)) || seen[r] {
				continue
			}
			seen[r] = true
			invalid = append(invalid, string(r))
		}
		if len(invalid) > 0 {
			if len(invalid) > 5 {
				invalid = invalid[:5]
			}
			return &ValidationError{Code: "invalid_chars", Arg: strings.Join(invalid, " ")}
		}
		return nil
	case Code128:
		return nil
	}
	panic(fmt.Sprintf("BUG: unhandled symbology %d", int(s)))
}

func toUpperASCII(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - 'a' + 'A'
	}
	return r
}

// encodeBarcode validates text and builds the 1D symbol.
func encodeBarcode(text string, s Symbology) (barcode.Barcode, error) {
	if err := ValidateBarcode(text, s); err != nil {
		return nil, err
	}
	switch s {
	case EAN13:
		return ean.Encode(text)
	case UPC:
		// UPC-A is EAN-13 with a leading zero.
		return ean.Encode("0" + text)
	case Code39:
		return code39.Encode(strings.ToUpper(text), false, false)
	case Code128:
		return code128.Encode(text)
	}
	panic(fmt.Sprintf("BUG: unhandled symbology %d", int(s)))
}

// displayText is the human-readable line printed under the bars.
func displayText(bc barcode.Barcode, s Symbology) string {
	content := bc.Content()
	if s == UPC {
		return strings.TrimPrefix(content, "0")
	}
	return content
}

// modules returns the dark/light pattern of a 1D barcode.
func modules(bc barcode.Barcode) []bool {
	b := bc.Bounds()
	bars := make([]bool, 0, b.Dx())
	for x := b.Min.X; x < b.Max.X; x++ {
		r, g, bl, _ := bc.At(x, b.Min.Y).RGBA()
		bars = append(bars, r+g+bl < 3*0x8000)
	}
	return bars
}

// barRuns calls fn for every run of adjacent dark modules.
func barRuns(bars []bool, fn func(start, n int)) {
	for i := 0; i < len(bars); {
		if !bars[i] {
			i++
			continue
		}
		j := i
		for j < len(bars) && bars[j] {
			j++
		}
		fn(i, j-i)
		i = j
	}
}

const (
	barcodeMargin   = 10 // px around the symbol
	barcodeFontSize = 14 // px
	barcodeTextGap  = 2  // px between bars and text
)

// BarcodeOptions controls barcode rendering. Zero values select the grid
// defaults of 2 px per module and 100 px bar height.
type BarcodeOptions struct {
	Format      Symbology
	Foreground  color.Color
	Background  color.Color
	ModuleWidth int
	Height      int
}

func (o BarcodeOptions) withDefaults() BarcodeOptions {
	if o.ModuleWidth <= 0 {
		o.ModuleWidth = 2
	}
	if o.Height <= 0 {
		o.Height = 100
	}
	if o.Foreground == nil {
		o.Foreground = black
	}
	if o.Background == nil {
		o.Background = white
	}
	return o
}

// RenderBarcode draws text as a barcode with its human-readable value. Input
// that fails ValidateBarcode or cannot be encoded yields a placeholder image
// instead of an error.
func RenderBarcode(text string, opts BarcodeOptions) image.Image {
	img, _ := renderBarcode(text, opts)
	return img
}

// renderBarcode is RenderBarcode, additionally returning why a placeholder
// was substituted.
func renderBarcode(text string, opts BarcodeOptions) (image.Image, error) {
	opts = opts.withDefaults()
	bc, err := encodeBarcode(text, opts.Format)
	if err != nil {
		return placeholderImage(opts.Background), err
	}
	bars := modules(bc)
	mw := opts.ModuleWidth
	width := len(bars)*mw + 2*barcodeMargin
	height := barcodeMargin + opts.Height + barcodeTextGap + barcodeFontSize + barcodeMargin

	dc := gg.NewContext(width, height)
	dc.SetColor(opts.Background)
	dc.Clear()

	dc.SetColor(opts.Foreground)
	barRuns(bars, func(start, n int) {
		dc.DrawRectangle(float64(barcodeMargin+start*mw), barcodeMargin, float64(n*mw), float64(opts.Height))
	})
	dc.Fill()

	dc.SetFontFace(newFace(faceMono, barcodeFontSize))
	dc.DrawStringAnchored(displayText(bc, opts.Format), float64(width)/2, float64(barcodeMargin+opts.Height+barcodeTextGap), 0.5, 1)
	return dc.Image(), nil
}

const (
	placeholderWidth  = 300
	placeholderHeight = 80
)

var (
	placeholderStroke = color.RGBA{R: 0xe5, G: 0xe7, B: 0xeb, A: 0xff}
	placeholderText   = color.RGBA{R: 0x9c, G: 0xa3, B: 0xaf, A: 0xff}
)

// placeholderImage is the neutral glyph shown in place of an unrenderable
// barcode: a dashed box with an ellipsis.
func placeholderImage(bg color.Color) image.Image {
	dc := gg.NewContext(placeholderWidth, placeholderHeight)
	dc.SetColor(bg)
	dc.Clear()
	dc.SetColor(placeholderStroke)
	dc.SetLineWidth(1)
	dc.SetDash(4, 4)
	dc.DrawRectangle(4, 4, placeholderWidth-8, placeholderHeight-8)
	dc.Stroke()
	dc.SetColor(placeholderText)
	dc.SetFontFace(newFace(faceRegular, 13))
	dc.DrawStringAnchored("...", placeholderWidth/2, placeholderHeight/2, 0.5, 0.5)
	return dc.Image()
}
