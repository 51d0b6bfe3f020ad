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

import "fmt"

// LabelSide is the side of a code a label box is attached to.
type LabelSide int

const (
	SideTop LabelSide = iota
	SideBottom
	SideLeft
	SideRight
)

func (s LabelSide) String() string {
	switch s {
	case SideTop:
		return "top"
	case SideBottom:
		return "bottom"
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	}
	panic(fmt.Sprintf("BUG: unhandled label side %d", int(s)))
}

// rotation returns the counter-clockwise text rotation in degrees. Left
// labels read bottom-to-top, right labels top-to-bottom.
func (s LabelSide) rotation() float64 {
	switch s {
	case SideTop, SideBottom:
		return 0
	case SideLeft:
		return 90
	case SideRight:
		return -90
	}
	panic(fmt.Sprintf("BUG: unhandled label side %d", int(s)))
}

// LabelBox is where one label is drawn. Text is centered on the box center
// and then rotated by Rotation degrees counter-clockwise about it.
type LabelBox struct {
	Side     LabelSide
	Rect     Rect
	Rotation float64
}

// Slot is a composed cell: the code rectangle and its label boxes.
type Slot struct {
	Cell   Rect
	Image  Rect
	Labels []LabelBox
}

// ComposeSlot centers the code image together with its labels inside cell.
// Every export target draws from the returned rectangles, so their positions
// agree across formats.
func ComposeSlot(cell Rect, imageW, imageH float64, bands LabelBands, gap float64) Slot {
	gapOf := func(band float64) float64 {
		if band > 0 {
			return gap
		}
		return 0
	}
	groupW := bands.Left + gapOf(bands.Left) + imageW + gapOf(bands.Right) + bands.Right
	groupH := bands.Top + gapOf(bands.Top) + imageH + gapOf(bands.Bottom) + bands.Bottom

	img := Rect{
		X: cell.X + (cell.W-groupW)/2 + bands.Left + gapOf(bands.Left),
		Y: cell.Y + (cell.H-groupH)/2 + bands.Top + gapOf(bands.Top),
		W: imageW,
		H: imageH,
	}
	s := Slot{Cell: cell, Image: img}
	add := func(side LabelSide, r Rect) {
		s.Labels = append(s.Labels, LabelBox{Side: side, Rect: r, Rotation: side.rotation()})
	}
	if bands.Top > 0 {
		add(SideTop, Rect{X: cell.X, Y: img.Y - gap - bands.Top, W: cell.W, H: bands.Top})
	}
	if bands.Bottom > 0 {
		add(SideBottom, Rect{X: cell.X, Y: img.Bottom() + gap, W: cell.W, H: bands.Bottom})
	}
	if bands.Left > 0 {
		add(SideLeft, Rect{X: img.X - gap - bands.Left, Y: img.Y, W: bands.Left, H: img.H})
	}
	if bands.Right > 0 {
		add(SideRight, Rect{X: img.Right() + gap, Y: img.Y, W: bands.Right, H: img.H})
	}
	return s
}
