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
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// typeface is one of the embedded Go fonts. Configured font families are
// CSS-like lists ("Georgia, serif"); they are mapped onto these.
type typeface int

const (
	faceRegular typeface = iota
	faceBold
	faceMono
)

var typefaces = map[typeface]struct {
	name string
	ttf  []byte
	font *opentype.Font
}{
	faceRegular: {name: "goregular", ttf: goregular.TTF, font: mustParseFont(goregular.TTF)},
	faceBold:    {name: "gobold", ttf: gobold.TTF, font: mustParseFont(gobold.TTF)},
	faceMono:    {name: "gomono", ttf: gomono.TTF, font: mustParseFont(gomono.TTF)},
}

func mustParseFont(ttf []byte) *opentype.Font {
	f, err := opentype.Parse(ttf)
	if err != nil {
		panic(fmt.Sprintf("BUG: parsing embedded font: %v", err))
	}
	return f
}

// labelTypeface maps a font family list onto an embedded font.
func labelTypeface(family string) typeface {
	f := strings.ToLower(family)
	if strings.Contains(f, "mono") || strings.Contains(f, "courier") {
		return faceMono
	}
	return faceRegular
}

// newFace returns a face of t at size pixels. Faces are not safe for
// concurrent use, so every drawing context gets its own.
func newFace(t typeface, size float64) font.Face {
	if size <= 0 {
		size = 1
	}
	face, err := opentype.NewFace(typefaces[t].font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		panic(fmt.Sprintf("BUG: creating %s face (size=%.1f): %v", typefaces[t].name, size, err))
	}
	return face
}
