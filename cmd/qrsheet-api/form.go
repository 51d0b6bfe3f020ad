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

package main

import (
	"encoding"
	"fmt"
	"net/url"
	"strconv"

	"github.com/stapelberg/qrsheet"
)

// formParser applies URL parameters on top of a config, remembering the
// first malformed parameter.
type formParser struct {
	form url.Values
	err  error
}

func (p *formParser) get(key string) (string, bool) {
	if len(p.form[key]) == 0 {
		return "", false
	}
	return p.form[key][0], true
}

func (p *formParser) fail(key string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("parameter %s: %w", key, err)
	}
}

func (p *formParser) str(key string, dst *string) {
	if v, ok := p.get(key); ok {
		*dst = v
	}
}

func (p *formParser) int(key string, dst *int) {
	v, ok := p.get(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, err)
		return
	}
	*dst = n
}

func (p *formParser) float(key string, dst *float64) {
	v, ok := p.get(key)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(key, err)
		return
	}
	*dst = f
}

func (p *formParser) bool(key string, dst *bool) {
	v, ok := p.get(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, err)
		return
	}
	*dst = b
}

// text handles every enum and color type of the config.
func (p *formParser) text(key string, dst encoding.TextUnmarshaler) {
	if v, ok := p.get(key); ok {
		if err := dst.UnmarshalText([]byte(v)); err != nil {
			p.fail(key, err)
		}
	}
}

// configFromForm returns a copy of base with the URL parameters applied.
func configFromForm(base *qrsheet.Config, form url.Values) (*qrsheet.Config, error) {
	cfg := *base
	p := &formParser{form: form}
	if id, ok := p.get("template"); ok {
		t, err := cfg.ApplyTemplate(id)
		if err != nil {
			return nil, err
		}
		cfg = *t
	}

	p.text("mode", &cfg.Mode)
	p.text("barcode", &cfg.Barcode.Format)
	p.str("text", &cfg.Barcode.Text)

	c := &cfg.Content
	p.text("type", &c.Type)
	p.str("value", &c.Value)
	p.str("ssid", &c.WiFi.SSID)
	p.str("password", &c.WiFi.Password)
	p.text("encryption", &c.WiFi.Encryption)
	p.bool("hidden", &c.WiFi.Hidden)
	p.str("phone", &c.Phone)
	p.str("to", &c.Email.To)
	p.str("subject", &c.Email.Subject)
	p.str("body", &c.Email.Body)
	p.str("smsnumber", &c.SMS.Number)
	p.str("smsbody", &c.SMS.Body)
	p.str("firstname", &c.VCard.FirstName)
	p.str("lastname", &c.VCard.LastName)
	p.str("vphone", &c.VCard.Phone)
	p.str("vemail", &c.VCard.Email)
	p.str("org", &c.VCard.Org)
	p.str("url", &c.VCard.URL)
	p.str("jobtitle", &c.VCard.Title)

	p.int("cols", &cfg.Columns)
	p.int("rows", &cfg.Rows)
	p.int("total", &cfg.TotalCodes)
	p.float("size", &cfg.CodeSize)
	p.float("margin", &cfg.Margin)
	p.float("spacing", &cfg.Spacing)
	p.text("pagesize", &cfg.PageSize)
	p.float("width", &cfg.CustomWidth)
	p.float("height", &cfg.CustomHeight)

	p.str("label", &cfg.Label)
	p.text("labelpos", &cfg.LabelPosition)
	p.str("title", &cfg.Title)
	p.float("titlesize", &cfg.TitleSize)
	p.float("labelsize", &cfg.LabelSize)
	p.str("font", &cfg.FontFamily)

	p.text("fg", &cfg.CodeColor)
	p.text("bg", &cfg.CodeBackground)
	p.text("pagebg", &cfg.PageBackground)
	p.bool("transparent", &cfg.TransparentBackground)
	p.bool("cutlines", &cfg.CutLines)
	p.bool("pagenum", &cfg.PageNumbers)
	p.int("roundness", &cfg.Roundness)
	p.text("ec", &cfg.ErrorCorrection)
	p.str("name", &cfg.OutputFilename)
	if p.err != nil {
		return nil, p.err
	}
	return cfg.Fill(), nil
}
