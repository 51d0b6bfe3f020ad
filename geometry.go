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

import "math"

const (
	// titleBandFactor multiplies the title font height to get the height
	// reserved above the grid.
	titleBandFactor = 2

	// labelBandFactor multiplies the label font height so that ascenders and
	// descenders do not clip.
	labelBandFactor = 1.8

	// imageInset keeps codes off the cell edges (8% safety inset).
	imageInset = 0.92

	// barcodeAspect is the height of a barcode slot relative to its width.
	barcodeAspect = 0.5

	pageNumberBandInches = 0.25
	pageNumberFontSize   = 9 // pt

	// labelGapInches separates a label from its code (2 CSS pixels).
	labelGapInches = 2 / 96.0
)

// Pagination describes how many codes land on which page.
type Pagination struct {
	PerPage int   // grid capacity, columns × rows
	Pages   int   // ceil(total / PerPage)
	Counts  []int // codes on each page, each in [1, PerPage]
}

// Paginate splits total codes into pages of perPage slots.
func Paginate(perPage, total int) Pagination {
	if perPage < 1 {
		perPage = 1
	}
	if total < 0 {
		total = 0
	}
	p := Pagination{
		PerPage: perPage,
		Pages:   (total + perPage - 1) / perPage,
	}
	p.Counts = make([]int, 0, p.Pages)
	for remaining := total; remaining > 0; remaining -= perPage {
		p.Counts = append(p.Counts, min(perPage, remaining))
	}
	return p
}

// Start returns the global index of the first code on page.
func (p Pagination) Start(page int) int { return page * p.PerPage }

// Rect is an axis-aligned rectangle; Y grows downwards.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Right() float64   { return r.X + r.W }
func (r Rect) Bottom() float64  { return r.Y + r.H }
func (r Rect) CenterX() float64 { return r.X + r.W/2 }
func (r Rect) CenterY() float64 { return r.Y + r.H/2 }

func (r Rect) scale(f float64) Rect {
	return Rect{X: r.X * f, Y: r.Y * f, W: r.W * f, H: r.H * f}
}

// FitContain returns the largest rectangle with the aspect ratio w:h that
// fits into r, centered.
func (r Rect) FitContain(w, h int) Rect {
	if w <= 0 || h <= 0 || r.W <= 0 || r.H <= 0 {
		return r
	}
	s := math.Min(r.W/float64(w), r.H/float64(h))
	fw, fh := float64(w)*s, float64(h)*s
	return Rect{
		X: r.X + (r.W-fw)/2,
		Y: r.Y + (r.H-fh)/2,
		W: fw,
		H: fh,
	}
}

// LabelBands holds the label reservation on each side of a cell.
type LabelBands struct {
	Top, Bottom, Left, Right float64
}

func (b LabelBands) scale(f float64) LabelBands {
	return LabelBands{Top: b.Top * f, Bottom: b.Bottom * f, Left: b.Left * f, Right: b.Right * f}
}

// Layout is the page geometry derived from a Config, expressed in one Unit.
// It is recomputed for every render pass and never cached across exporters.
type Layout struct {
	Pagination

	Unit  Unit
	Scale float64 // display scale; 1 for every export surface

	Columns, Rows int
	Barcode       bool

	PageWidth, PageHeight float64
	Margin                float64
	Spacing               float64
	CodeSize              float64

	TitleHeight      float64 // 0 without a title
	PageNumberHeight float64 // 0 without page numbers

	Grid                  Rect
	CellWidth, CellHeight float64

	Bands    LabelBands
	LabelGap float64

	// ImageWidth and ImageHeight are the code slot inside each cell.
	ImageWidth, ImageHeight float64

	TitleFontSize      float64
	LabelFontSize      float64
	PageNumberFontSize float64
}

// NewLayout computes the page geometry for total codes (the effective total,
// see Job.Total) in unit u.
func NewLayout(cfg *Config, total int, u Unit) *Layout {
	l := &Layout{
		Pagination: Paginate(cfg.Columns*cfg.Rows, total),
		Unit:       u,
		Scale:      1,
		Columns:    max(cfg.Columns, 1),
		Rows:       max(cfg.Rows, 1),
		Barcode:    cfg.Mode == ModeBarcode,
		Margin:     u.FromCm(cfg.Margin),
		Spacing:    u.FromCm(cfg.Spacing),
		CodeSize:   u.FromCm(cfg.CodeSize),
		LabelGap:   u.FromInches(labelGapInches),

		TitleFontSize:      u.FromPoints(cfg.TitleSize),
		LabelFontSize:      u.FromPoints(cfg.LabelSize),
		PageNumberFontSize: u.FromPoints(pageNumberFontSize),
	}
	w, h := cfg.PageInches()
	l.PageWidth, l.PageHeight = u.FromInches(w), u.FromInches(h)

	if cfg.Title != "" {
		l.TitleHeight = l.TitleFontSize * titleBandFactor
	}
	if cfg.PageNumbers {
		l.PageNumberHeight = u.FromInches(pageNumberBandInches)
	}

	l.Grid = Rect{
		X: l.Margin,
		Y: l.Margin + l.TitleHeight,
		W: l.PageWidth - 2*l.Margin,
		H: l.PageHeight - 2*l.Margin - l.TitleHeight - l.PageNumberHeight,
	}
	l.CellWidth = (l.Grid.W - l.Spacing*float64(l.Columns-1)) / float64(l.Columns)
	l.CellHeight = (l.Grid.H - l.Spacing*float64(l.Rows-1)) / float64(l.Rows)

	if cfg.Label != "" {
		band := l.LabelFontSize * labelBandFactor
		top, bottom, left, right := cfg.LabelPosition.sides()
		if top {
			l.Bands.Top = band
		}
		if bottom {
			l.Bands.Bottom = band
		}
		if left {
			l.Bands.Left = band
		}
		if right {
			l.Bands.Right = band
		}
	}

	availW := math.Max(0, (l.CellWidth-l.Bands.Left-l.Bands.Right)*imageInset)
	availH := math.Max(0, (l.CellHeight-l.Bands.Top-l.Bands.Bottom)*imageInset)
	if l.Barcode {
		// Barcodes are 2:1; only the width follows the code size.
		l.ImageWidth = math.Min(l.CodeSize, math.Min(availW, availH/barcodeAspect))
		l.ImageHeight = l.ImageWidth * barcodeAspect
	} else {
		l.ImageWidth = math.Min(l.CodeSize, math.Min(availW, availH))
		l.ImageHeight = l.ImageWidth
	}
	return l
}

// PreviewLayout returns the pixel layout shrunk by PreviewScale, as shown on
// screen.
func PreviewLayout(cfg *Config, total int) *Layout {
	return NewLayout(cfg, total, Pixels).Scaled(PreviewScale)
}

// Scaled returns a copy of l with every length multiplied by f. Exporters
// use it for pixel density, the preview for its display scale.
func (l *Layout) Scaled(f float64) *Layout {
	s := *l
	s.Scale = l.Scale * f
	s.PageWidth *= f
	s.PageHeight *= f
	s.Margin *= f
	s.Spacing *= f
	s.CodeSize *= f
	s.TitleHeight *= f
	s.PageNumberHeight *= f
	s.Grid = l.Grid.scale(f)
	s.CellWidth *= f
	s.CellHeight *= f
	s.Bands = l.Bands.scale(f)
	s.LabelGap *= f
	s.ImageWidth *= f
	s.ImageHeight *= f
	s.TitleFontSize *= f
	s.LabelFontSize *= f
	s.PageNumberFontSize *= f
	return &s
}

// Cell returns the rectangle of slot i (0-based, row-major) on any page.
func (l *Layout) Cell(i int) Rect {
	col, row := i%l.Columns, i/l.Columns
	return Rect{
		X: l.Grid.X + float64(col)*(l.CellWidth+l.Spacing),
		Y: l.Grid.Y + float64(row)*(l.CellHeight+l.Spacing),
		W: l.CellWidth,
		H: l.CellHeight,
	}
}

// Slot returns the composed code and label positions of slot i.
func (l *Layout) Slot(i int) Slot {
	return ComposeSlot(l.Cell(i), l.ImageWidth, l.ImageHeight, l.Bands, l.LabelGap)
}

// TitleRect is the band above the grid the page title is centered in.
func (l *Layout) TitleRect() Rect {
	return Rect{X: l.Margin, Y: l.Margin, W: l.PageWidth - 2*l.Margin, H: l.TitleHeight}
}

// PageNumberRect is the band below the grid the page number is centered in.
func (l *Layout) PageNumberRect() Rect {
	return Rect{X: l.Margin, Y: l.Grid.Bottom(), W: l.Grid.W, H: l.PageNumberHeight}
}
