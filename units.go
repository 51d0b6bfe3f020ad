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

const (
	CmPerInch     = 2.54
	PointsPerInch = 72

	// PixelsPerCm is the CSS reference pixel density (96 px per inch).
	PixelsPerCm   = 37.795
	PixelsPerInch = PixelsPerCm * CmPerInch

	// PreviewScale shrinks the full-size page for on-screen preview. It is
	// applied as a final pass (see Layout.Scaled) and never enters exports.
	PreviewScale = 0.75
)

// CmToPixels converts centimeters to pixels at dpi pixels per inch, then
// applies scale.
func CmToPixels(cm, dpi, scale float64) float64 {
	return cm / CmPerInch * dpi * scale
}

// InchesToPixels converts inches to pixels at dpi pixels per inch, then
// applies scale.
func InchesToPixels(in, dpi, scale float64) float64 {
	return in * dpi * scale
}

// PixelsToCm is the inverse of CmToPixels.
func PixelsToCm(px, dpi, scale float64) float64 {
	return px / scale / dpi * CmPerInch
}

// PixelsToInches is the inverse of InchesToPixels.
func PixelsToInches(px, dpi, scale float64) float64 {
	return px / scale / dpi
}

// Unit is the length unit a Layout is expressed in.
type Unit int

const (
	// Inches is used by surfaces with native physical units (PDF, HTML).
	Inches Unit = iota
	// Pixels are CSS reference pixels at PixelsPerInch.
	Pixels
	// Points are PDF user-space units.
	Points
)

func (u Unit) String() string {
	switch u {
	case Inches:
		return "in"
	case Pixels:
		return "px"
	case Points:
		return "pt"
	}
	return fmt.Sprintf("Unit(%d)", int(u))
}

func (u Unit) perInch() float64 {
	switch u {
	case Inches:
		return 1
	case Pixels:
		return PixelsPerInch
	case Points:
		return PointsPerInch
	}
	panic(fmt.Sprintf("BUG: unhandled unit %d", int(u)))
}

// FromInches converts inches to u.
func (u Unit) FromInches(in float64) float64 { return in * u.perInch() }

// FromCm converts centimeters to u.
func (u Unit) FromCm(cm float64) float64 { return cm / CmPerInch * u.perInch() }

// FromPoints converts typographic points to u.
func (u Unit) FromPoints(pt float64) float64 { return pt / PointsPerInch * u.perInch() }

// ToPoints converts a length in u to typographic points.
func (u Unit) ToPoints(v float64) float64 { return v / u.perInch() * PointsPerInch }
