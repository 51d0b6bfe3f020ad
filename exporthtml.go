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
	"encoding/base64"
	"fmt"
	"html/template"
	"strings"
)

// The print markup positions every element absolutely, in inches, from the
// same Layout the other exporters use.
var printTmpl = template.Must(template.New("").Parse(`
{{ define "style" }}<style>
*{margin:0;padding:0;box-sizing:border-box}
@page{size:{{ .PageCSS }};margin:0}
body{font-family:{{ .FontFamily }}}
.page{position:relative;overflow:hidden;page-break-after:always;{{ .PageStyle }}}
.page:last-child{page-break-after:avoid}
.title{position:absolute;display:flex;align-items:center;justify-content:center;font-weight:700;{{ .TitleStyle }}}
.cell{position:absolute{{ if .CutLines }};border:1px dashed #ccc{{ end }}}
.code{position:absolute;object-fit:contain;image-rendering:{{ .Rendering }}}
.lbl{position:absolute;display:flex;align-items:center;justify-content:center;white-space:nowrap;color:#333;{{ .LabelStyle }}}
.pnum{position:absolute;display:flex;align-items:center;justify-content:center;font-size:9pt;color:#999}
</style>{{ end }}

{{ define "pages" }}{{ range .Pages }}<div class="page">
{{- if .Title }}<div class="title" style="{{ .TitleBox }}">{{ .Title }}</div>{{ end }}
{{- range .Cells }}<div class="cell" style="{{ .Box }}"></div>
{{- if .Src }}<img class="code" style="{{ .ImageBox }}" src="{{ .Src }}" alt="{{ .Alt }}"/>
{{- range .Labels }}<div class="lbl" style="{{ . }}">{{ $.Label }}</div>{{ end }}
{{- end }}{{ end }}
{{- if .PageNumber }}<div class="pnum" style="{{ .PageNumberBox }}">{{ .PageNumber }}</div>{{ end -}}
</div>
{{ end }}{{ end }}

{{ define "html" }}<!DOCTYPE html><html><head><meta charset="utf-8"><title>{{ .DocTitle }}</title>{{ template "style" . }}</head><body>
{{ template "pages" . }}</body></html>
{{ end }}

{{ define "word" }}<html xmlns:o="urn:schemas-microsoft-com:office:office" xmlns:w="urn:schemas-microsoft-com:office:word" xmlns="http://www.w3.org/TR/REC-html40">
<head><meta charset="utf-8">{{ template "style" . }}</head>
<body>
{{ template "pages" . }}</body></html>
{{ end }}
`))

type printCell struct {
	Box      template.CSS
	ImageBox template.CSS
	Src      template.URL
	Alt      string
	Labels   []template.CSS
}

type printPage struct {
	Title         string
	TitleBox      template.CSS
	Cells         []printCell
	PageNumber    string
	PageNumberBox template.CSS
}

type printDoc struct {
	DocTitle   string
	PageCSS    template.CSS
	FontFamily template.CSS
	PageStyle  template.CSS
	TitleStyle template.CSS
	LabelStyle template.CSS
	Rendering  template.CSS
	CutLines   bool
	Label      string
	Pages      []printPage
}

// cssUnsafe strips characters that could end a CSS declaration or the style
// element from user-supplied values.
var cssUnsafe = strings.NewReplacer("<", "", ">", "", "{", "", "}", "", ";", "", "\\", "")

func inch(v float64) string { return fmt.Sprintf("%.4fin", v) }

func boxCSS(r Rect) template.CSS {
	return template.CSS(fmt.Sprintf("left:%s;top:%s;width:%s;height:%s", inch(r.X), inch(r.Y), inch(r.W), inch(r.H)))
}

// labelCSS positions a label box; rotated boxes are laid out unrotated around
// the same center and turned with a CSS transform.
func labelCSS(lb LabelBox) template.CSS {
	r := lb.Rect
	if lb.Rotation == 0 {
		return boxCSS(r)
	}
	w, h := r.H, r.W
	unrotated := Rect{X: r.CenterX() - w/2, Y: r.CenterY() - h/2, W: w, H: h}
	// CSS rotates clockwise for positive angles.
	return boxCSS(unrotated) + template.CSS(fmt.Sprintf(";transform:rotate(%gdeg)", -lb.Rotation))
}

func pageCSS(cfg *Config) string {
	switch cfg.PageSize {
	case PageLetter:
		return "letter"
	case PageA4:
		return "A4"
	case PageA5:
		return "A5"
	case PageCustom:
		return fmt.Sprintf("%gin %gin", cfg.CustomWidth, cfg.CustomHeight)
	}
	panic(fmt.Sprintf("BUG: unhandled page size %d", int(cfg.PageSize)))
}

func (j *Job) printDoc(arts []*Artifact) *printDoc {
	cfg := j.Config
	l := j.Layout(Inches)
	rendering := "pixelated"
	if cfg.Mode == ModeBarcode || cfg.Roundness > 0 {
		rendering = "auto"
	}
	doc := &printDoc{
		DocTitle:   cfg.Title,
		PageCSS:    template.CSS(pageCSS(cfg)),
		FontFamily: template.CSS(cssUnsafe.Replace(cfg.FontFamily)),
		PageStyle: template.CSS(fmt.Sprintf("width:%s;height:%s;background:%s",
			inch(l.PageWidth), inch(l.PageHeight), cfg.PageBackground)),
		TitleStyle: template.CSS(fmt.Sprintf("font-size:%gpt", cfg.TitleSize)),
		LabelStyle: template.CSS(fmt.Sprintf("font-size:%gpt", cfg.LabelSize)),
		Rendering:  template.CSS(rendering),
		CutLines:   cfg.CutLines,
		Label:      cfg.Label,
	}
	if doc.DocTitle == "" {
		doc.DocTitle = "QR Template"
	}

	srcs := make(map[*Artifact]template.URL)
	for page := 0; page < l.Pages; page++ {
		p := printPage{}
		if cfg.Title != "" {
			p.Title = cfg.Title
			p.TitleBox = boxCSS(l.TitleRect())
		}
		if cfg.PageNumbers {
			p.PageNumber = pageNumber(page, l.Pages)
			p.PageNumberBox = boxCSS(l.PageNumberRect())
		}
		j.eachSlot(l, arts, page, func(s Slot, art *Artifact) {
			c := printCell{Box: boxCSS(s.Cell)}
			defer func() { p.Cells = append(p.Cells, c) }()
			if art == nil {
				return
			}
			src, ok := srcs[art]
			if !ok {
				b, err := encodePNG(art.Image)
				if err != nil {
					j.logf("html: skipping code %q: %v", art.Content, err)
					return
				}
				src = template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(b))
				srcs[art] = src
			}
			c.Src = src
			c.Alt = art.Content
			c.ImageBox = boxCSS(s.Image)
			for _, lb := range s.Labels {
				c.Labels = append(c.Labels, labelCSS(lb))
			}
		})
		doc.Pages = append(doc.Pages, p)
	}
	return doc
}

// BuildPrintHTML returns a self-contained, print-ready HTML document of the
// sheet with the codes embedded as data URIs.
func BuildPrintHTML(ctx context.Context, job *Job, arts []*Artifact) ([]byte, error) {
	return job.executePrint(ctx, arts, "html")
}

// wordBOM makes word processors detect the document as UTF-8.
const wordBOM = "\ufeff"

// ExportWord returns the print markup wrapped as a Word-compatible HTML
// document (.doc).
func ExportWord(ctx context.Context, job *Job, arts []*Artifact) ([]byte, error) {
	b, err := job.executePrint(ctx, arts, "word")
	if err != nil {
		return nil, err
	}
	return append([]byte(wordBOM), b...), nil
}

func (j *Job) executePrint(ctx context.Context, arts []*Artifact, name string) ([]byte, error) {
	arts, err := j.artifacts(ctx, arts)
	if err != nil {
		return nil, err
	}
	doc := j.printDoc(arts)
	var buf bytes.Buffer
	if err := printTmpl.ExecuteTemplate(&buf, name, doc); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
