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
	"context"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
)

// PageDensity is the pixel density multiplier of page PNG exports relative
// to CSS pixels.
const PageDensity = 3

// ExportPNGPages renders every page of job as a PNG at PageDensity times the
// CSS pixel size. arts are the grid artifacts from Generate; nil generates
// them.
func ExportPNGPages(ctx context.Context, job *Job, arts []*Artifact) ([][]byte, error) {
	arts, err := job.artifacts(ctx, arts)
	if err != nil {
		return nil, err
	}
	l := job.Layout(Pixels).Scaled(PageDensity)
	pages := make([][]byte, 0, l.Pages)
	for page := 0; page < l.Pages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img := renderPage(job, l, arts, page)
		b, err := encodePNG(img)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page+1, err)
		}
		pages = append(pages, b)
	}
	return pages, nil
}

// renderPage paints one page of l onto a new raster.
func renderPage(job *Job, l *Layout, arts []*Artifact, page int) *image.RGBA {
	cfg := job.Config
	im := image.NewRGBA(image.Rect(0, 0, int(math.Round(l.PageWidth)), int(math.Round(l.PageHeight))))
	dc := gg.NewContextForRGBA(im)
	dc.SetColor(cfg.PageBackground)
	dc.Clear()

	if cfg.Title != "" {
		tr := l.TitleRect()
		dc.SetColor(black)
		dc.SetFontFace(newFace(faceBold, l.TitleFontSize))
		dc.DrawStringAnchored(cfg.Title, tr.CenterX(), tr.CenterY(), 0.5, 0.5)
	}

	labelFace := newFace(labelTypeface(cfg.FontFamily), l.LabelFontSize)
	job.eachSlot(l, arts, page, func(s Slot, art *Artifact) {
		if art != nil {
			r := s.Image.FitContain(art.Image.Bounds().Dx(), art.Image.Bounds().Dy())
			scaleInto(im, r, art.Image, cfg.Mode == ModeQR && cfg.Roundness == 0)
		}
		if cfg.CutLines {
			dc.SetColor(cutLineColor)
			dc.SetLineWidth(0.5 * l.Scale)
			dc.SetDash(3*l.Scale, 3*l.Scale)
			dc.DrawRectangle(s.Cell.X, s.Cell.Y, s.Cell.W, s.Cell.H)
			dc.Stroke()
			dc.SetDash()
		}
		if art == nil {
			return
		}
		dc.SetColor(labelColor)
		dc.SetFontFace(labelFace)
		for _, lb := range s.Labels {
			ggText(dc, lb.Rect, lb.Rotation, cfg.Label)
		}
	})

	if cfg.PageNumbers {
		dc.SetColor(pageNumberColor)
		dc.SetFontFace(newFace(faceRegular, l.PageNumberFontSize))
		ggText(dc, l.PageNumberRect(), 0, pageNumber(page, l.Pages))
	}
	return im
}

// scaleInto draws src scaled into r. Square-module QR codes are scaled with
// nearest neighbor so module edges stay sharp.
func scaleInto(dst *image.RGBA, r Rect, src image.Image, pixelated bool) {
	dr := image.Rect(int(math.Round(r.X)), int(math.Round(r.Y)), int(math.Round(r.Right())), int(math.Round(r.Bottom())))
	var s draw.Scaler = draw.CatmullRom
	if pixelated {
		s = draw.NearestNeighbor
	}
	s.Scale(dst, dr, src, src.Bounds(), draw.Over, nil)
}

// ggText centers text in r, rotated counter-clockwise by rotation degrees.
func ggText(dc *gg.Context, r Rect, rotation float64, text string) {
	cx, cy := r.CenterX(), r.CenterY()
	dc.Push()
	defer dc.Pop()
	if rotation != 0 {
		// gg rotates clockwise for positive angles, as y points down.
		dc.RotateAbout(gg.Radians(-rotation), cx, cy)
	}
	dc.DrawStringAnchored(text, cx, cy, 0.5, 0.5)
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
