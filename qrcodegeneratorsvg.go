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
	"bytes"
	"fmt"
	"image/color"
	"strings"

	svg "github.com/ajstarks/svgo"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode/encoder"
)

// RenderQRSVG renders text as a scalable QR code of about opts.Size units.
// Rounded modules are a raster-only style; the vector path always draws
// square modules.
func RenderQRSVG(text string, opts QROptions) ([]byte, error) {
	opts = opts.withDefaults()
	code, err := encoder.Encoder_encode(qrPayload(text), opts.Level.zxing(), encodeHints(opts.Level, squareQuietZone))
	if err != nil {
		return nil, fmt.Errorf("encoding QR code: %w", err)
	}
	return renderResultSVG(code, opts.Size, opts.Size, squareQuietZone, opts.Foreground, opts.Background)
}

// renderResultSVG is a copy of renderResult from
// gozxing/qrcode/qrcode_writer.go, adapted to output to SVG.
func renderResultSVG(code *encoder.QRCode, width, height, quietZone int, fg, bg color.Color) ([]byte, error) {
	input := code.GetMatrix()
	if input == nil {
		return nil, gozxing.NewWriterException("IllegalStateException")
	}
	inputWidth := input.GetWidth()
	inputHeight := input.GetHeight()
	qrWidth := inputWidth + (quietZone * 2)
	qrHeight := inputHeight + (quietZone * 2)
	outputWidth := max(qrWidth, width)
	outputHeight := max(qrHeight, height)

	multiple := min(outputWidth/qrWidth, outputHeight/qrHeight)
	// Padding includes both the quiet zone and the extra pixels to
	// accommodate the requested dimensions.
	leftPadding := (outputWidth - (inputWidth * multiple)) / 2
	topPadding := (outputHeight - (inputHeight * multiple)) / 2

	var d strings.Builder
	for inputY, outputY := 0, topPadding; inputY < inputHeight; inputY, outputY = inputY+1, outputY+multiple {
		for inputX, outputX := 0, leftPadding; inputX < inputWidth; inputX, outputX = inputX+1, outputX+multiple {
			if input.Get(inputX, inputY) == 1 {
				fmt.Fprintf(&d, "M%d %dh%dv%dh-%dz", outputX, outputY, multiple, multiple, multiple)
			}
		}
	}

	var buf bytes.Buffer
	s := svg.New(&buf)
	s.Startview(outputWidth, outputHeight, 0, 0, outputWidth, outputHeight)
	s.Rect(0, 0, outputWidth, outputHeight, fmt.Sprintf(`fill="%s"`, svgColor(bg)))
	// A single path avoids hairline seams between modules.
	s.Path(d.String(), fmt.Sprintf(`fill="%s" shape-rendering="crispEdges"`, svgColor(fg)))
	s.End()
	return buf.Bytes(), nil
}

// svgColor formats c as #rrggbb, or "none" when it is fully transparent.
func svgColor(c color.Color) string {
	rgba := color.NRGBAModel.Convert(c).(color.NRGBA)
	if rgba.A == 0 {
		return "none"
	}
	return fmt.Sprintf("#%02x%02x%02x", rgba.R, rgba.G, rgba.B)
}
