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

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
)

const (
	MinLogoSize = 10 // percent
	MaxLogoSize = 30 // percent

	// logoPadding is the backing pad around the logo, relative to its width.
	logoPadding = 0.12
)

// LogoOptions controls OverlayLogo.
type LogoOptions struct {
	// SizePercent is the logo edge relative to the QR edge.
	SizePercent int

	// Backing paints a rounded pad in Background behind the logo. A
	// transparent Background falls back to white.
	Backing    bool
	Background color.Color
}

// OverlayLogo draws logo centered on dst, scaled to fit a square of
// SizePercent of dst's width while keeping its aspect ratio.
func OverlayLogo(dst *image.RGBA, logo image.Image, opts LogoOptions) {
	if logo == nil || logo.Bounds().Empty() {
		return
	}
	size := float64(dst.Bounds().Dx())
	logoW := size * float64(opts.SizePercent) / 100
	logoH := logoW
	cx, cy := size/2, float64(dst.Bounds().Dy())/2

	dc := gg.NewContextForRGBA(dst)
	if opts.Backing {
		bg := opts.Background
		if bg == nil {
			bg = white
		}
		if _, _, _, a := bg.RGBA(); a == 0 {
			bg = white
		}
		pad := logoW * logoPadding
		dc.SetColor(bg)
		dc.DrawRoundedRectangle(cx-logoW/2-pad, cy-logoH/2-pad, logoW+2*pad, logoH+2*pad, pad)
		dc.Fill()
	}

	b := logo.Bounds()
	ratio := float64(b.Dx()) / float64(b.Dy())
	dw, dh := logoW, logoH
	if ratio > 1 {
		dh = logoW / ratio
	} else {
		dw = logoH * ratio
	}
	scaled := imaging.Resize(logo, max(1, int(dw+0.5)), max(1, int(dh+0.5)), imaging.Lanczos)
	dc.DrawImageAnchored(scaled, int(cx), int(cy), 0.5, 0.5)
}

// LogoRisk grades how likely a logo of a given size breaks scanning.
type LogoRisk int

const (
	LogoOK      LogoRisk = iota
	LogoMaxSafe          // at the limit of what the error correction restores
	LogoMayFail          // some readers will fail
)

func (r LogoRisk) String() string {
	switch r {
	case LogoOK:
		return "ok"
	case LogoMaxSafe:
		return "max_safe"
	case LogoMayFail:
		return "may_fail"
	}
	panic(fmt.Sprintf("BUG: unhandled logo risk %d", int(r)))
}

// LogoAdvisory grades a logo of sizePercent on a code with error correction
// level l. The thresholds of 25% and 28% hold for level H and shrink in
// proportion to the recovery capacity of lower levels. It is advisory only;
// OverlayLogo draws any size.
func LogoAdvisory(sizePercent int, l ECLevel) LogoRisk {
	f := l.recovery() / ECHigh.recovery()
	p := float64(sizePercent)
	switch {
	case p >= 28*f:
		return LogoMayFail
	case p >= 25*f:
		return LogoMaxSafe
	}
	return LogoOK
}
