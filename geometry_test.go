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

package qrsheet_test

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stapelberg/qrsheet"
)

func TestPaginate(t *testing.T) {
	for _, tt := range []struct {
		name    string
		perPage int
		total   int
		want    qrsheet.Pagination
	}{
		{
			name:    "full pages",
			perPage: 12,
			total:   24,
			want:    qrsheet.Pagination{PerPage: 12, Pages: 2, Counts: []int{12, 12}},
		},

		{
			name:    "partial last page",
			perPage: 4,
			total:   7,
			want:    qrsheet.Pagination{PerPage: 4, Pages: 2, Counts: []int{4, 3}},
		},

		{
			name:    "fewer codes than slots",
			perPage: 12,
			total:   5,
			want:    qrsheet.Pagination{PerPage: 12, Pages: 1, Counts: []int{5}},
		},

		{
			name:    "single slot",
			perPage: 1,
			total:   3,
			want:    qrsheet.Pagination{PerPage: 1, Pages: 3, Counts: []int{1, 1, 1}},
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got := qrsheet.Paginate(tt.perPage, tt.total)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Paginate(%d, %d): unexpected diff (-want +got):\n%s", tt.perPage, tt.total, diff)
			}
		})
	}
}

func TestPaginateCoversTotal(t *testing.T) {
	for perPage := 1; perPage <= 30; perPage++ {
		for total := 1; total <= 100; total++ {
			p := qrsheet.Paginate(perPage, total)
			if got, want := p.Pages, (total+perPage-1)/perPage; got != want {
				t.Fatalf("Paginate(%d, %d).Pages = %d, want %d", perPage, total, got, want)
			}
			sum := 0
			for i, n := range p.Counts {
				if n < 1 || n > perPage {
					t.Fatalf("Paginate(%d, %d).Counts[%d] = %d, want in [1, %d]", perPage, total, i, n, perPage)
				}
				if i < len(p.Counts)-1 && n != perPage {
					t.Fatalf("Paginate(%d, %d).Counts[%d] = %d, want a full page", perPage, total, i, n)
				}
				sum += n
			}
			if sum != total {
				t.Fatalf("Paginate(%d, %d): counts sum to %d, want %d", perPage, total, sum, total)
			}
		}
	}
}

func TestJobTotal(t *testing.T) {
	cfg := qrsheet.DefaultConfig()
	cfg.TotalCodes = 24

	job := &qrsheet.Job{Config: cfg}
	if got, want := job.Layout(qrsheet.Inches).Pages, 2; got != want {
		t.Errorf("Pages = %d, want %d", got, want)
	}

	// Interleave entries replace the configured total.
	job.Entries = []string{"a", "b", "c", "d", "e"}
	l := job.Layout(qrsheet.Inches)
	if got, want := job.Total(), 5; got != want {
		t.Errorf("Total() = %d, want %d", got, want)
	}
	if diff := cmp.Diff([]int{5}, l.Counts); diff != "" {
		t.Errorf("Counts: unexpected diff (-want +got):\n%s", diff)
	}
	if got, want := job.ContentAt(3), "d"; got != want {
		t.Errorf("ContentAt(3) = %q, want %q", got, want)
	}
}

func TestLayoutAcrossUnits(t *testing.T) {
	cfg := qrsheet.DefaultConfig()
	cfg.Title = "Inventory"
	cfg.PageNumbers = true
	cfg.LabelPosition = qrsheet.LabelAll
	cfg.Spacing = 0.3

	in := qrsheet.NewLayout(cfg, 24, qrsheet.Inches)
	for _, u := range []qrsheet.Unit{qrsheet.Pixels, qrsheet.Points} {
		t.Run(u.String(), func(t *testing.T) {
			l := qrsheet.NewLayout(cfg, 24, u)
			toInches := func(v float64) float64 { return v / u.FromInches(1) }
			for i := 0; i < l.PerPage; i++ {
				want := in.Slot(i)
				got := l.Slot(i)
				if !approx(toInches(got.Image.X), want.Image.X) ||
					!approx(toInches(got.Image.Y), want.Image.Y) ||
					!approx(toInches(got.Image.W), want.Image.W) {
					t.Errorf("slot %d: image %+v (%v) differs from %+v (in)", i, got.Image, u, want.Image)
				}
				for j, lb := range got.Labels {
					if !approx(toInches(lb.Rect.Y), want.Labels[j].Rect.Y) {
						t.Errorf("slot %d: label %v at y=%v (%v), want %v (in)", i, lb.Side, lb.Rect.Y, u, want.Labels[j].Rect.Y)
					}
				}
			}
		})
	}
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestLayoutDefaults(t *testing.T) {
	l := qrsheet.NewLayout(qrsheet.DefaultConfig(), 24, qrsheet.Inches)
	margin := 1.5 / qrsheet.CmPerInch
	want := qrsheet.Rect{X: margin, Y: margin, W: 8.5 - 2*margin, H: 11 - 2*margin}
	if diff := cmp.Diff(want, l.Grid, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("Grid: unexpected diff (-want +got):\n%s", diff)
	}
	// 4 cm fits into a letter cell of a 3×4 grid.
	if got, want := l.ImageWidth, 4/qrsheet.CmPerInch; !approx(got, want) {
		t.Errorf("ImageWidth = %v, want %v", got, want)
	}
	if l.ImageHeight != l.ImageWidth {
		t.Errorf("QR slot is not square: %v×%v", l.ImageWidth, l.ImageHeight)
	}
}

func TestLayoutImageFitsCell(t *testing.T) {
	for _, tt := range []struct {
		name string
		mode qrsheet.CodeMode
		size float64
	}{
		{name: "qr", mode: qrsheet.ModeQR, size: 20},
		{name: "barcode", mode: qrsheet.ModeBarcode, size: 20},
		{name: "small barcode", mode: qrsheet.ModeBarcode, size: 2},
	} {
		t.Run(tt.name, func(t *testing.T) {
			cfg := qrsheet.DefaultConfig()
			cfg.Mode = tt.mode
			cfg.CodeSize = tt.size
			cfg.LabelPosition = qrsheet.LabelBoth
			l := qrsheet.NewLayout(cfg, 12, qrsheet.Pixels)
			availW := l.CellWidth * 0.92
			availH := (l.CellHeight - l.Bands.Top - l.Bands.Bottom) * 0.92
			if l.ImageWidth > availW+1e-9 || l.ImageHeight > availH+1e-9 {
				t.Errorf("image %v×%v exceeds available %v×%v", l.ImageWidth, l.ImageHeight, availW, availH)
			}
			if l.ImageWidth > l.CodeSize+1e-9 {
				t.Errorf("image width %v exceeds code size %v", l.ImageWidth, l.CodeSize)
			}
			if tt.mode == qrsheet.ModeBarcode && !approx(l.ImageHeight, l.ImageWidth/2) {
				t.Errorf("barcode slot %v×%v is not 2:1", l.ImageWidth, l.ImageHeight)
			}
		})
	}
}

func TestPreviewLayout(t *testing.T) {
	cfg := qrsheet.DefaultConfig()
	full := qrsheet.NewLayout(cfg, 24, qrsheet.Pixels)
	preview := qrsheet.PreviewLayout(cfg, 24)
	if got, want := preview.Scale, qrsheet.PreviewScale; got != want {
		t.Errorf("Scale = %v, want %v", got, want)
	}
	for i := 0; i < full.PerPage; i++ {
		f, p := full.Cell(i), preview.Cell(i)
		if !approx(p.X, f.X*qrsheet.PreviewScale) || !approx(p.W, f.W*qrsheet.PreviewScale) {
			t.Errorf("cell %d: preview %+v is not %v × %+v", i, p, qrsheet.PreviewScale, f)
		}
	}
	if !approx(preview.ImageWidth, full.ImageWidth*qrsheet.PreviewScale) {
		t.Errorf("preview ImageWidth = %v, want %v", preview.ImageWidth, full.ImageWidth*qrsheet.PreviewScale)
	}
}

func TestUnitConversion(t *testing.T) {
	if got, want := qrsheet.CmToPixels(2.54, 96, 1), 96.0; !approx(got, want) {
		t.Errorf("CmToPixels(2.54, 96, 1) = %v, want %v", got, want)
	}
	if got, want := qrsheet.PixelsToCm(qrsheet.CmToPixels(4, 300, 0.75), 300, 0.75), 4.0; !approx(got, want) {
		t.Errorf("PixelsToCm round trip = %v, want %v", got, want)
	}
	if got, want := qrsheet.PixelsToInches(qrsheet.InchesToPixels(8.5, 96, 2), 96, 2), 8.5; !approx(got, want) {
		t.Errorf("PixelsToInches round trip = %v, want %v", got, want)
	}
	if got, want := qrsheet.Points.FromInches(1), 72.0; got != want {
		t.Errorf("Points.FromInches(1) = %v, want %v", got, want)
	}
	if got, want := qrsheet.Pixels.ToPoints(qrsheet.PixelsPerInch), 72.0; !approx(got, want) {
		t.Errorf("Pixels.ToPoints(PixelsPerInch) = %v, want %v", got, want)
	}
}

func TestComposeSlot(t *testing.T) {
	cell := qrsheet.Rect{X: 10, Y: 20, W: 100, H: 120}
	bands := qrsheet.LabelBands{Top: 10, Bottom: 10, Left: 10, Right: 10}
	s := qrsheet.ComposeSlot(cell, 60, 60, bands, 2)

	// The group of image, gaps and bands is centered in the cell.
	want := qrsheet.Rect{X: 10 + (100-84)/2.0 + 12, Y: 20 + (120-84)/2.0 + 12, W: 60, H: 60}
	if diff := cmp.Diff(want, s.Image); diff != "" {
		t.Errorf("Image: unexpected diff (-want +got):\n%s", diff)
	}

	wantLabels := []qrsheet.LabelBox{
		{Side: qrsheet.SideTop, Rect: qrsheet.Rect{X: 10, Y: want.Y - 12, W: 100, H: 10}},
		{Side: qrsheet.SideBottom, Rect: qrsheet.Rect{X: 10, Y: want.Bottom() + 2, W: 100, H: 10}},
		{Side: qrsheet.SideLeft, Rect: qrsheet.Rect{X: want.X - 12, Y: want.Y, W: 10, H: 60}, Rotation: 90},
		{Side: qrsheet.SideRight, Rect: qrsheet.Rect{X: want.Right() + 2, Y: want.Y, W: 10, H: 60}, Rotation: -90},
	}
	if diff := cmp.Diff(wantLabels, s.Labels); diff != "" {
		t.Errorf("Labels: unexpected diff (-want +got):\n%s", diff)
	}
}

func TestComposeSlotNoLabels(t *testing.T) {
	cell := qrsheet.Rect{X: 0, Y: 0, W: 100, H: 100}
	s := qrsheet.ComposeSlot(cell, 50, 50, qrsheet.LabelBands{}, 2)
	if diff := cmp.Diff(qrsheet.Rect{X: 25, Y: 25, W: 50, H: 50}, s.Image); diff != "" {
		t.Errorf("Image: unexpected diff (-want +got):\n%s", diff)
	}
	if len(s.Labels) != 0 {
		t.Errorf("Labels = %v, want none", s.Labels)
	}
}

func TestFitContain(t *testing.T) {
	r := qrsheet.Rect{X: 0, Y: 0, W: 200, H: 100}
	got := r.FitContain(300, 80)
	want := qrsheet.Rect{X: 0, Y: 50 - 200*80/300.0/2, W: 200, H: 200 * 80 / 300.0}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("FitContain: unexpected diff (-want +got):\n%s", diff)
	}
}
