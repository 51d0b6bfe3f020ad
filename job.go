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
	"context"
	"fmt"
	"image"
	"log"
	"strings"
)

// Job is everything one render pass consumes.
type Job struct {
	Config *Config

	// Entries is the interleave list. When non-empty it replaces both the
	// configured content and Config.TotalCodes: code i renders Entries[i].
	Entries []string

	// Logo is drawn onto QR codes when non-nil.
	Logo image.Image

	// Logf receives progress and skipped-item messages. nil means log.Printf.
	Logf func(format string, args ...interface{})
}

func (j *Job) logf(format string, args ...interface{}) {
	if j.Logf != nil {
		j.Logf(format, args...)
		return
	}
	log.Printf(format, args...)
}

// Interleaved reports whether codes carry distinct contents.
func (j *Job) Interleaved() bool { return len(j.Entries) > 0 }

// Total is the effective number of codes.
func (j *Job) Total() int {
	if j.Interleaved() {
		return len(j.Entries)
	}
	return max(j.Config.TotalCodes, 1)
}

// Content is the payload shared by all codes when not interleaving: the raw
// barcode text, or the encoded QR content.
func (j *Job) Content() string {
	if j.Config.Mode == ModeBarcode {
		return j.Config.Barcode.Text
	}
	return EncodeContent(j.Config.Content)
}

// ContentAt returns the payload of code i (0-based, across pages).
func (j *Job) ContentAt(i int) string {
	if j.Interleaved() {
		return j.Entries[i]
	}
	return j.Content()
}

// Layout computes the page geometry of j in unit u.
func (j *Job) Layout(u Unit) *Layout {
	return NewLayout(j.Config, j.Total(), u)
}

// Artifact is one rendered code.
type Artifact struct {
	Content string
	Image   image.Image

	// Placeholder is set when Image is the placeholder glyph, with the
	// reason (usually a *ValidationError).
	Placeholder error
}

// renderArtifact renders content for the grid. qrSize and barcode sizes
// select the resolution.
func (j *Job) renderArtifact(content string, qrSize int, bopts BarcodeOptions) (*Artifact, error) {
	cfg := j.Config
	if cfg.Mode == ModeBarcode {
		bopts.Format = cfg.Barcode.Format
		bopts.Foreground = cfg.CodeColor
		bopts.Background = cfg.background()
		img, err := renderBarcode(content, bopts)
		if err != nil {
			j.logf("barcode %q: %v, using placeholder", content, err)
		}
		return &Artifact{Content: content, Image: img, Placeholder: err}, nil
	}
	img, err := RenderQR(content, cfg.qrOptions(qrSize))
	if err != nil {
		return nil, fmt.Errorf("QR code %q: %w", content, err)
	}
	if j.Logo != nil {
		OverlayLogo(img, j.Logo, LogoOptions{
			SizePercent: cfg.LogoSize,
			Backing:     cfg.LogoBackground,
			Background:  cfg.background(),
		})
	}
	return &Artifact{Content: content, Image: img}, nil
}

// artifactAt picks the artifact of code i: the shared one unless the job is
// interleaved. It returns nil when i has not been generated (yet).
func (j *Job) artifactAt(arts []*Artifact, i int) *Artifact {
	if !j.Interleaved() {
		if len(arts) == 0 {
			return nil
		}
		return arts[0]
	}
	if i < len(arts) {
		return arts[i]
	}
	return nil
}

// ParseEntries splits manually entered interleave text into entries, one per
// non-blank line.
func ParseEntries(text string) []string {
	var entries []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			entries = append(entries, line)
		}
	}
	return entries
}

// eachSlot calls fn for every grid slot of page, in row-major order. art is
// nil for slots past the page's code count and for codes not generated.
func (j *Job) eachSlot(l *Layout, arts []*Artifact, page int, fn func(s Slot, art *Artifact)) {
	start, count := l.Start(page), l.Counts[page]
	for i := 0; i < l.PerPage; i++ {
		var art *Artifact
		if i < count {
			art = j.artifactAt(arts, start+i)
		}
		fn(l.Slot(i), art)
	}
}

// pageNumber is the footer text of page (0-based).
func pageNumber(page, pages int) string {
	return fmt.Sprintf("%d / %d", page+1, pages)
}

// artifacts returns arts, generating them first when nil.
func (j *Job) artifacts(ctx context.Context, arts []*Artifact) ([]*Artifact, error) {
	if arts != nil {
		return arts, nil
	}
	return Generate(ctx, j, nil)
}
