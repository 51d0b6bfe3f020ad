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

	svg "github.com/ajstarks/svgo"
)

// placeholderSVG is the vector form of placeholderImage.
const placeholderSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="300" height="80"><rect x="4" y="4" width="292" height="72" fill="none" stroke="#e5e7eb" stroke-dasharray="4"/><text x="150" y="44" text-anchor="middle" fill="#9ca3af" font-size="13">...</text></svg>`

// RenderBarcodeSVG is the vector counterpart of RenderBarcode, with the same
// placeholder fallback.
func RenderBarcodeSVG(text string, opts BarcodeOptions) []byte {
	b, _ := renderBarcodeSVG(text, opts)
	return b
}

func renderBarcodeSVG(text string, opts BarcodeOptions) ([]byte, error) {
	opts = opts.withDefaults()
	bc, err := encodeBarcode(text, opts.Format)
	if err != nil {
		return []byte(placeholderSVG), err
	}
	bars := modules(bc)
	mw := opts.ModuleWidth
	width := len(bars)*mw + 2*barcodeMargin
	height := barcodeMargin + opts.Height + barcodeTextGap + barcodeFontSize + barcodeMargin

	var buf bytes.Buffer
	s := svg.New(&buf)
	s.Startview(width, height, 0, 0, width, height)
	s.Rect(0, 0, width, height, fmt.Sprintf(`fill="%s"`, svgColor(opts.Background)))
	s.Group(fmt.Sprintf(`fill="%s" shape-rendering="crispEdges"`, svgColor(opts.Foreground)))
	barRuns(bars, func(start, n int) {
		s.Rect(barcodeMargin+start*mw, barcodeMargin, n*mw, opts.Height)
	})
	s.Gend()
	s.Text(width/2, barcodeMargin+opts.Height+barcodeTextGap+barcodeFontSize,
		displayText(bc, opts.Format),
		fmt.Sprintf(`text-anchor="middle" font-family="monospace" font-size="%d" fill="%s"`, barcodeFontSize, svgColor(opts.Foreground)))
	s.End()
	return buf.Bytes(), nil
}
