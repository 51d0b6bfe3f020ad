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

// Single downloads render at a higher resolution than grid artifacts.
var singleBarcode = BarcodeOptions{ModuleWidth: 4, Height: 200}

// ExportSinglePNG renders content as one print-quality PNG, independent of
// the grid settings.
func ExportSinglePNG(job *Job, content string) ([]byte, error) {
	art, err := job.renderArtifact(content, QRSizeSingle, singleBarcode)
	if err != nil {
		return nil, err
	}
	return encodePNG(art.Image)
}

// ExportSingleSVG renders content as one SVG. Logos are not embedded.
func ExportSingleSVG(job *Job, content string) ([]byte, error) {
	cfg := job.Config
	if cfg.Mode == ModeBarcode {
		b, err := renderBarcodeSVG(content, BarcodeOptions{
			Format:     cfg.Barcode.Format,
			Foreground: cfg.CodeColor,
			Background: cfg.background(),
		})
		if err != nil {
			job.logf("barcode %q: %v, using placeholder", content, err)
		}
		return b, nil
	}
	return RenderQRSVG(content, cfg.qrOptions(QRSize))
}
