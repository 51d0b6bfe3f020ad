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
	"time"

	"github.com/signintech/gopdf"
)

var (
	cutLineColor    = Color{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff}
	labelColor      = Color{R: 0x33, G: 0x33, B: 0x33, A: 0xff}
	pageNumberColor = Color{R: 0x99, G: 0x99, B: 0x99, A: 0xff}
)

const (
	pdfLabelFont = "label"
	pdfTitleFont = "title"

	cutLineWidthInches = 0.005
)

// ExportPDF renders the sheet of job as a vector PDF, one page per computed
// page. arts are the grid artifacts from Generate; nil generates them.
func ExportPDF(ctx context.Context, job *Job, arts []*Artifact) ([]byte, error) {
	arts, err := job.artifacts(ctx, arts)
	if err != nil {
		return nil, err
	}
	cfg := job.Config
	// PDF user space is in points; the layout is computed in it directly.
	l := job.Layout(Points)

	pageSize := gopdf.Rect{W: l.PageWidth, H: l.PageHeight}
	var pdf gopdf.GoPdf
	pdf.Start(gopdf.Config{Unit: gopdf.UnitPT, PageSize: pageSize})
	title := cfg.Title
	if title == "" {
		title = "QR Template"
	}
	pdf.SetInfo(gopdf.PdfInfo{
		Title:        title,
		Producer:     "https://github.com/stapelberg/qrsheet",
		CreationDate: time.Now(),
	})
	if err := pdf.AddTTFFontData(pdfLabelFont, typefaces[labelTypeface(cfg.FontFamily)].ttf); err != nil {
		return nil, fmt.Errorf("adding label font: %w", err)
	}
	if err := pdf.AddTTFFontData(pdfTitleFont, typefaces[faceBold].ttf); err != nil {
		return nil, fmt.Errorf("adding title font: %w", err)
	}

	w := &pdfWriter{pdf: &pdf, holders: make(map[*Artifact]gopdf.ImageHolder)}
	for page := 0; page < l.Pages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pdf.AddPageWithOption(gopdf.PageOption{PageSize: &pageSize})

		setFill(&pdf, cfg.PageBackground)
		pdf.RectFromUpperLeftWithStyle(0, 0, l.PageWidth, l.PageHeight, "F")

		if cfg.Title != "" {
			if err := pdf.SetFont(pdfTitleFont, "", cfg.TitleSize); err != nil {
				return nil, err
			}
			pdf.SetTextColor(0, 0, 0)
			if err := pdfText(&pdf, l.TitleRect(), 0, cfg.Title); err != nil {
				return nil, err
			}
		}

		if err := pdf.SetFont(pdfLabelFont, "", cfg.LabelSize); err != nil {
			return nil, err
		}
		if err := drawPDFSlots(job, l, arts, page, w); err != nil {
			return nil, err
		}

		if cfg.PageNumbers {
			if err := pdf.SetFont(pdfLabelFont, "", float64(pageNumberFontSize)); err != nil {
				return nil, err
			}
			pdf.SetTextColor(pageNumberColor.R, pageNumberColor.G, pageNumberColor.B)
			if err := pdfText(&pdf, l.PageNumberRect(), 0, pageNumber(page, l.Pages)); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := pdf.Write(&buf); err != nil {
		return nil, fmt.Errorf("writing PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// slotDrawer receives the grid elements of one PDF page.
type slotDrawer interface {
	image(art *Artifact, r Rect) error
	cutLines(cell Rect)
	label(lb LabelBox, text string) error
}

// drawPDFSlots draws every slot of page: the code image, then the cut lines,
// then the labels. A code that cannot be embedded is logged and leaves its
// slot without image and labels.
func drawPDFSlots(job *Job, l *Layout, arts []*Artifact, page int, d slotDrawer) error {
	cfg := job.Config
	var err error
	job.eachSlot(l, arts, page, func(s Slot, art *Artifact) {
		if err != nil {
			return
		}
		drawn := false
		if art != nil {
			r := s.Image.FitContain(art.Image.Bounds().Dx(), art.Image.Bounds().Dy())
			if ierr := d.image(art, r); ierr != nil {
				job.logf("pdf: page %d: skipping code %q: %v", page+1, art.Content, ierr)
			} else {
				drawn = true
			}
		}
		if cfg.CutLines {
			d.cutLines(s.Cell)
		}
		if !drawn || cfg.Label == "" {
			return
		}
		for _, lb := range s.Labels {
			if err = d.label(lb, cfg.Label); err != nil {
				return
			}
		}
	})
	return err
}

// pdfWriter draws slots with gopdf, embedding every artifact once.
type pdfWriter struct {
	pdf     *gopdf.GoPdf
	holders map[*Artifact]gopdf.ImageHolder
}

func (w *pdfWriter) image(art *Artifact, r Rect) error {
	h, ok := w.holders[art]
	if !ok {
		b, err := encodePNG(art.Image)
		if err != nil {
			return err
		}
		if h, err = gopdf.ImageHolderByBytes(b); err != nil {
			return err
		}
		w.holders[art] = h
	}
	return w.pdf.ImageByHolder(h, r.X, r.Y, &gopdf.Rect{W: r.W, H: r.H})
}

func (w *pdfWriter) cutLines(cell Rect) {
	w.pdf.SetLineType("dashed")
	w.pdf.SetLineWidth(Points.FromInches(cutLineWidthInches))
	w.pdf.SetStrokeColor(cutLineColor.R, cutLineColor.G, cutLineColor.B)
	w.pdf.RectFromUpperLeftWithStyle(cell.X, cell.Y, cell.W, cell.H, "D")
}

func (w *pdfWriter) label(lb LabelBox, text string) error {
	w.pdf.SetTextColor(labelColor.R, labelColor.G, labelColor.B)
	return pdfText(w.pdf, lb.Rect, lb.Rotation, text)
}

func setFill(pdf *gopdf.GoPdf, c Color) {
	pdf.SetFillColor(c.R, c.G, c.B)
}

// pdfText centers text in r, rotated counter-clockwise by rotation degrees
// about the center of r.
func pdfText(pdf *gopdf.GoPdf, r Rect, rotation float64, text string) error {
	w, h := r.W, r.H
	if rotation != 0 {
		pdf.Rotate(rotation, r.CenterX(), r.CenterY())
		defer pdf.RotateReset()
		if rotation == 90 || rotation == -90 {
			w, h = h, w
		}
	}
	pdf.SetXY(r.CenterX()-w/2, r.CenterY()-h/2)
	return pdf.CellWithOption(&gopdf.Rect{W: w, H: h}, text, gopdf.CellOption{
		Align: gopdf.Center | gopdf.Middle,
	})
}
