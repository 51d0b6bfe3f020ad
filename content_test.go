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
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stapelberg/qrsheet"
)

func TestEncodeContent(t *testing.T) {
	for _, tt := range []struct {
		name    string
		content qrsheet.Content
		want    string
	}{
		{
			name:    "url without scheme",
			content: qrsheet.URL{Value: "  example.com/a  "},
			want:    "https://example.com/a",
		},

		{
			name:    "url with scheme",
			content: qrsheet.URL{Value: "HTTP://example.com"},
			want:    "HTTP://example.com",
		},

		{
			name:    "empty url",
			content: qrsheet.URL{Value: "   "},
			want:    "",
		},

		{
			name:    "text",
			content: qrsheet.Text{Value: " as is "},
			want:    " as is ",
		},

		{
			name:    "email",
			content: qrsheet.Email{To: "a@b.c", Subject: "Hi there", Body: "x&y=z (ok)!"},
			want:    "mailto:a@b.c?subject=Hi%20there&body=x%26y%3Dz%20(ok)!",
		},

		{
			name:    "email body only",
			content: qrsheet.Email{To: "a@b.c", Body: "b"},
			want:    "mailto:a@b.c?body=b",
		},

		{
			name:    "email address only",
			content: qrsheet.Email{To: "a@b.c"},
			want:    "mailto:a@b.c",
		},

		{
			name:    "phone",
			content: qrsheet.Phone{Number: "+1 555"},
			want:    "tel:+1 555",
		},

		{
			name:    "sms",
			content: qrsheet.SMS{Number: "+15550100", Body: "hello world"},
			want:    "sms:+15550100?body=hello%20world",
		},

		{
			name:    "sms without body",
			content: qrsheet.SMS{Number: "+15550100"},
			want:    "sms:+15550100",
		},

		{
			name:    "wifi",
			content: qrsheet.WiFi{SSID: "Home", Password: "pw", Encryption: qrsheet.EncryptionWPA},
			want:    "WIFI:T:WPA;S:Home;P:pw;;",
		},

		{
			name:    "hidden open wifi",
			content: qrsheet.WiFi{SSID: "Lab", Encryption: qrsheet.EncryptionNone, Hidden: true},
			want:    "WIFI:T:nopass;S:Lab;P:;H:true;",
		},

		{
			name:    "minimal vcard",
			content: qrsheet.VCard{FirstName: "John", LastName: "Doe", Phone: "555"},
			want:    "BEGIN:VCARD\nVERSION:3.0\nN:Doe;John;;;\nFN:John Doe\nTEL:555\nEND:VCARD",
		},

		{
			name: "vcard",
			content: qrsheet.VCard{
				FirstName: "Ada",
				LastName:  "Lovelace",
				Email:     "ada@example.com",
				Title:     "Analyst",
			},
			want: strings.Join([]string{
				"BEGIN:VCARD",
				"VERSION:3.0",
				"N:Lovelace;Ada;;;",
				"FN:Ada Lovelace",
				"EMAIL:ada@example.com",
				"TITLE:Analyst",
				"END:VCARD",
			}, "\n"),
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.content.Encode(); got != tt.want {
				t.Errorf("Encode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestContentConfigSelectsType(t *testing.T) {
	cfg := qrsheet.DefaultConfig().Content
	for _, ct := range qrsheet.ContentTypes {
		c := qrsheet.SampleContent(cfg, ct)
		if got := c.Content().Type(); got != ct {
			t.Errorf("SampleContent(%v).Content().Type() = %v", ct, got)
		}
		if qrsheet.EncodeContent(c) == "" {
			t.Errorf("SampleContent(%v) encodes to the empty string", ct)
		}
	}
}

func TestSampleContentKeepsOtherFields(t *testing.T) {
	c := qrsheet.ContentConfig{Type: qrsheet.ContentURL, Value: "example.net"}
	c = qrsheet.SampleContent(c, qrsheet.ContentWiFi)
	if got, want := c.Value, "example.net"; got != want {
		t.Errorf("Value = %q, want %q", got, want)
	}
	if got, want := qrsheet.EncodeContent(c), "WIFI:T:WPA;S:MyNetwork;P:SecurePass123;;"; got != want {
		t.Errorf("EncodeContent = %q, want %q", got, want)
	}
}

func TestLoadConfig(t *testing.T) {
	const doc = `{
	// sheet for the shop
	"codeMode": "qr",
	"content": {"type": "wifi", "wifi": {"ssid": "Shop", "password": "s3cret", "encryption": "WEP"}},
	"cols": 0,
	"logoSize": 50,
	"errorCorrection": "Q",
	"codeColor": "#123",
	"pageSize": "a4",
	"labelPosition": "all",
}`
	cfg, err := qrsheet.LoadConfig(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := qrsheet.EncodeContent(cfg.Content), "WIFI:T:WEP;S:Shop;P:s3cret;;"; got != want {
		t.Errorf("content = %q, want %q", got, want)
	}
	// Fill clamps what is out of range.
	if got, want := cfg.Columns, 1; got != want {
		t.Errorf("Columns = %d, want %d", got, want)
	}
	if got, want := cfg.LogoSize, qrsheet.MaxLogoSize; got != want {
		t.Errorf("LogoSize = %d, want %d", got, want)
	}
	if got, want := cfg.CodeColor, (qrsheet.Color{R: 0x11, G: 0x22, B: 0x33, A: 0xff}); got != want {
		t.Errorf("CodeColor = %v, want %v", got, want)
	}
	if got, want := cfg.ErrorCorrection, qrsheet.ECQuartile; got != want {
		t.Errorf("ErrorCorrection = %v, want %v", got, want)
	}
	// Unset fields keep their defaults.
	if got, want := cfg.Label, "Scan here"; got != want {
		t.Errorf("Label = %q, want %q", got, want)
	}
	w, h := cfg.PageInches()
	if diff := cmp.Diff([2]float64{8.27, 11.69}, [2]float64{w, h}); diff != "" {
		t.Errorf("PageInches: unexpected diff (-want +got):\n%s", diff)
	}

	if _, err := qrsheet.LoadConfig(strings.NewReader(`{"pageSize": "tabloid"}`)); err == nil {
		t.Errorf("LoadConfig accepted an unknown page size")
	}
}

func TestConfigRoundTrip(t *testing.T) {
	cfg := qrsheet.DefaultConfig()
	cfg.Mode = qrsheet.ModeBarcode
	cfg.Barcode.Format = qrsheet.UPC
	b, err := json.Marshal(cfg)
	if err != nil {
		t.Fatal(err)
	}
	got, err := qrsheet.LoadConfig(strings.NewReader(string(b)))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("config changed in a JSON round trip (-want +got):\n%s", diff)
	}
}

func TestFilename(t *testing.T) {
	cfg := qrsheet.DefaultConfig()
	for _, tt := range []struct {
		kind qrsheet.FileKind
		page int
		want string
	}{
		{kind: qrsheet.FilePDF, want: "QR_Template.pdf"},
		{kind: qrsheet.FileWord, want: "QR_Template.doc"},
		{kind: qrsheet.FileHTML, want: "QR_Template.html"},
		{kind: qrsheet.FilePagePNG, page: 2, want: "QR_Sheet_2.png"},
		{kind: qrsheet.FileSinglePNG, want: "code_hires.png"},
		{kind: qrsheet.FileSingleSVG, want: "code.svg"},
		{kind: qrsheet.FileArchive, want: "code_bulk.zip"},
	} {
		t.Run(tt.want, func(t *testing.T) {
			if got := cfg.Filename(tt.kind, tt.page); got != tt.want {
				t.Errorf("Filename(%v, %d) = %q, want %q", tt.kind, tt.page, got, tt.want)
			}
		})
	}

	cfg.OutputFilename = "shop"
	if got, want := cfg.Filename(qrsheet.FilePagePNG, 1), "shop_1.png"; got != want {
		t.Errorf("Filename = %q, want %q", got, want)
	}
}

func TestApplyTemplate(t *testing.T) {
	cfg, err := qrsheet.DefaultConfig().ApplyTemplate("stickers")
	if err != nil {
		t.Fatal(err)
	}
	got := [...]int{cfg.Columns, cfg.Rows, cfg.TotalCodes}
	if diff := cmp.Diff([...]int{5, 6, 30}, got); diff != "" {
		t.Errorf("stickers: unexpected diff (-want +got):\n%s", diff)
	}
	if got, want := cfg.TemplateID, "stickers"; got != want {
		t.Errorf("TemplateID = %q, want %q", got, want)
	}

	custom, err := cfg.ApplyTemplate("custom")
	if err != nil {
		t.Fatal(err)
	}
	if custom.Columns != 5 || custom.TemplateID != "custom" {
		t.Errorf("custom template changed the layout: %+v", custom)
	}

	if _, err := cfg.ApplyTemplate("poster"); err == nil {
		t.Errorf("ApplyTemplate(poster) succeeded, want error")
	}
}

func TestParseEntries(t *testing.T) {
	got := qrsheet.ParseEntries("  a \n\n\tb\r\n   \nc")
	if diff := cmp.Diff([]string{"a", "b", "c"}, got); diff != "" {
		t.Errorf("ParseEntries: unexpected diff (-want +got):\n%s", diff)
	}
	if got := qrsheet.ParseEntries(" \n "); len(got) != 0 {
		t.Errorf("ParseEntries(blank) = %q, want none", got)
	}
}
