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
	"image/draw"
	"math"

	"github.com/fogleman/gg"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode/decoder"
	"github.com/makiuchi-d/gozxing/qrcode/encoder"
)

const (
	// QRSize is the canonical edge length in pixels of grid QR rasters.
	QRSize = 800

	// QRSizeSingle is the edge length of single-code PNG downloads.
	QRSizeSingle = 1600

	squareQuietZone  = 1 // modules
	roundedQuietZone = 2 // modules

	// roundedGap is the fraction of a module left empty between dots.
	roundedGap = 0.12

	// roundedRadius is the dot corner radius relative to the dot size.
	roundedRadius = 0.35
)

// QROptions controls QR rendering.
type QROptions struct {
	// Size is the edge length in pixels; 0 means QRSize.
	Size int

	Foreground color.Color
	// Background may be fully transparent.
	Background color.Color

	// Roundness in percent: 0 draws square modules, anything above draws
	// separated rounded dots.
	Roundness int

	Level ECLevel
}

func (o QROptions) withDefaults() QROptions {
	if o.Size <= 0 {
		o.Size = QRSize
	}
	if o.Foreground == nil {
		o.Foreground = black
	}
	if o.Background == nil {
		o.Background = white
	}
	return o
}

// qrOptions returns the QR options c describes at edge length size.
func (c *Config) qrOptions(size int) QROptions {
	return QROptions{
		Size:       size,
		Foreground: c.CodeColor,
		Background: c.background(),
		Roundness:  c.Roundness,
		Level:      c.ErrorCorrection,
	}
}

func (l ECLevel) zxing() decoder.ErrorCorrectionLevel {
	switch l {
	case ECLow:
		return decoder.ErrorCorrectionLevel_L
	case ECMedium:
		return decoder.ErrorCorrectionLevel_M
	case ECQuartile:
		return decoder.ErrorCorrectionLevel_Q
	case ECHigh:
		return decoder.ErrorCorrectionLevel_H
	}
	panic(fmt.Sprintf("BUG: unhandled error correction level %d", int(l)))
}

func encodeHints(level ECLevel, quietZone int) map[gozxing.EncodeHintType]interface{} {
	return map[gozxing.EncodeHintType]interface{}{
		gozxing.EncodeHintType_ERROR_CORRECTION: level.zxing(),
		gozxing.EncodeHintType_MARGIN:           quietZone,
		gozxing.EncodeHintType_CHARACTER_SET:    "UTF-8",
	}
}

// qrPayload substitutes a single space for empty text, which QR encoders
// reject.
func qrPayload(text string) string {
	if text == "" {
		return " "
	}
	return text
}

// RenderQR draws text as a QR code of opts.Size × opts.Size pixels.
func RenderQR(text string, opts QROptions) (*image.RGBA, error) {
	opts = opts.withDefaults()
	if opts.Roundness > 0 {
		return renderRounded(qrPayload(text), opts)
	}
	return renderSquare(qrPayload(text), opts)
}

// renderSquare walks the module matrix at a fractional module size, so the
// quiet zone stays exactly squareQuietZone modules wide at any opts.Size.
// Module edges are rounded to whole pixels.
func renderSquare(text string, opts QROptions) (*image.RGBA, error) {
	code, err := encoder.Encoder_encode(text, opts.Level.zxing(), encodeHints(opts.Level, squareQuietZone))
	if err != nil {
		return nil, fmt.Errorf("encoding QR code: %w", err)
	}
	input := code.GetMatrix()
	if input == nil {
		return nil, gozxing.NewWriterException("IllegalStateException")
	}
	n := input.GetWidth()
	modPx := float64(opts.Size) / float64(n+2*squareQuietZone)
	edge := func(i int) int { return int(math.Round(float64(i+squareQuietZone) * modPx)) }

	img := image.NewRGBA(image.Rect(0, 0, opts.Size, opts.Size))
	draw.Draw(img, img.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)
	fg := image.NewUniform(opts.Foreground)
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			if input.Get(col, row) != 1 {
				continue
			}
			r := image.Rect(edge(col), edge(row), edge(col+1), edge(row+1))
			draw.Draw(img, r, fg, image.Point{}, draw.Src)
		}
	}
	return img, nil
}

// renderRounded walks the module matrix itself and draws every dark module as
// a rounded dot.
func renderRounded(text string, opts QROptions) (*image.RGBA, error) {
	code, err := encoder.Encoder_encode(text, opts.Level.zxing(), encodeHints(opts.Level, roundedQuietZone))
	if err != nil {
		return nil, fmt.Errorf("encoding QR code: %w", err)
	}
	input := code.GetMatrix()
	if input == nil {
		return nil, gozxing.NewWriterException("IllegalStateException")
	}
	n := input.GetWidth()
	modPx := float64(opts.Size) / float64(n+2*roundedQuietZone)
	gap := modPx * roundedGap
	dot := modPx - gap
	radius := dot * roundedRadius

	dc := gg.NewContext(opts.Size, opts.Size)
	dc.SetColor(opts.Background)
	dc.Clear()
	dc.SetColor(opts.Foreground)
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			if input.Get(col, row) != 1 {
				continue
			}
			x := float64(col+roundedQuietZone)*modPx + gap/2
			y := float64(row+roundedQuietZone)*modPx + gap/2
			dc.DrawRoundedRectangle(x, y, dot, dot, radius)
		}
	}
	// Filling the whole path at once avoids seams between dots.
	dc.Fill()
	return dc.Image().(*image.RGBA), nil
}
