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
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stapelberg/qrsheet"
)

func TestConfigFromForm(t *testing.T) {
	form := url.Values{
		"template": {"stickers"},
		"mode":     {"barcode"},
		"barcode":  {"ean13"},
		"text":     {"590123412345"},
		"cols":     {"3"},
		"fg":       {"#0000ff"},
		"cutlines": {"false"},
		"ec":       {"m"},
		"pagesize": {"a4"},
		"page":     {"2"},
	}
	cfg, err := configFromForm(qrsheet.DefaultConfig(), form)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Mode != qrsheet.ModeBarcode || cfg.Barcode.Format != qrsheet.EAN13 {
		t.Errorf("mode = %v/%v, want barcode/EAN13", cfg.Mode, cfg.Barcode.Format)
	}
	// Explicit parameters win over the template.
	if got, want := cfg.Columns, 3; got != want {
		t.Errorf("Columns = %d, want %d", got, want)
	}
	if got, want := cfg.Rows, 6; got != want {
		t.Errorf("Rows = %d, want %d", got, want)
	}
	if cfg.CutLines {
		t.Errorf("CutLines = true, want false")
	}
	if got, want := cfg.CodeColor.String(), "#0000ff"; got != want {
		t.Errorf("CodeColor = %s, want %s", got, want)
	}
	if got, want := cfg.ErrorCorrection, qrsheet.ECMedium; got != want {
		t.Errorf("ErrorCorrection = %v, want %v", got, want)
	}
	// page selects a PNG page in the handler and leaves the page size alone.
	if got, want := cfg.PageSize, qrsheet.PageA4; got != want {
		t.Errorf("PageSize = %v, want %v", got, want)
	}

	for _, bad := range []url.Values{
		{"cols": {"three"}},
		{"pagesize": {"tabloid"}},
		{"fg": {"blue"}},
		{"template": {"poster"}},
	} {
		if _, err := configFromForm(qrsheet.DefaultConfig(), bad); err == nil {
			t.Errorf("configFromForm(%v) succeeded, want error", bad)
		}
	}
}

func newTestServer() *httptest.Server {
	s := &server{listen: "localhost:0", base: qrsheet.DefaultConfig()}
	mux := http.NewServeMux()
	mux.HandleFunc("/sheet", s.sheet)
	mux.HandleFunc("/validate", s.validate)
	return httptest.NewServer(mux)
}

func get(t *testing.T, srv *httptest.Server, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := srv.Client().Get(srv.URL + path)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, b
}

func TestSheetHandler(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	for _, tt := range []struct {
		path        string
		wantStatus  int
		wantType    string
		wantPrefix  string
		wantContain string
	}{
		{
			path:       "/sheet",
			wantStatus: http.StatusBadRequest,
		},

		{
			path:       "/sheet?format=gif",
			wantStatus: http.StatusBadRequest,
		},

		{
			path:       "/sheet?format=pdf&total=3",
			wantStatus: http.StatusOK,
			wantType:   "application/pdf",
			wantPrefix: "%PDF-",
		},

		{
			path:       "/sheet?format=png&total=30&page=3",
			wantStatus: http.StatusOK,
			wantType:   "image/png",
			wantPrefix: "\x89PNG",
		},

		{
			path:       "/sheet?format=png&total=30&pagesize=a5&page=2",
			wantStatus: http.StatusOK,
			wantType:   "image/png",
			wantPrefix: "\x89PNG",
		},

		{
			path:       "/sheet?format=png&total=3&page=2",
			wantStatus: http.StatusBadRequest,
		},

		{
			path:        "/sheet?format=svg&value=example.net",
			wantStatus:  http.StatusOK,
			wantType:    "image/svg+xml",
			wantContain: "<svg",
		},

		{
			path:       "/sheet?format=zip&entries=a%0Ab",
			wantStatus: http.StatusOK,
			wantType:   "application/zip",
			wantPrefix: "PK",
		},

		{
			path:        "/sheet?format=txt&cols=2",
			wantStatus:  http.StatusOK,
			wantType:    "text/plain; charset=utf-8",
			wantContain: "Columns: (int) 2",
		},

		{
			path:        "/sheet?format=debug&mode=barcode&text=x",
			wantStatus:  http.StatusOK,
			wantType:    "text/html; charset=utf-8",
			wantContain: "barcode: ok",
		},
	} {
		t.Run(tt.path, func(t *testing.T) {
			resp, b := get(t, srv, tt.path)
			if got, want := resp.StatusCode, tt.wantStatus; got != want {
				t.Fatalf("status = %d, want %d (body: %s)", got, want, b)
			}
			if tt.wantType != "" {
				if got := resp.Header.Get("Content-Type"); got != tt.wantType {
					t.Errorf("Content-Type = %q, want %q", got, tt.wantType)
				}
			}
			if !bytes.HasPrefix(b, []byte(tt.wantPrefix)) {
				t.Errorf("body starts with %q, want prefix %q", b[:min(len(b), 8)], tt.wantPrefix)
			}
			if !bytes.Contains(b, []byte(tt.wantContain)) {
				t.Errorf("body does not contain %q", tt.wantContain)
			}
		})
	}
}

func TestValidateHandler(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()

	for _, tt := range []struct {
		query string
		want  string
	}{
		{query: "format=EAN13&text=590123412345", want: "ok"},
		{query: "format=UPC&text=123", want: "need_digits:8"},
		{query: "format=CODE39&text=a_b", want: "invalid_chars:_"},
		{query: "format=CODE128&text=", want: "empty"},
	} {
		_, b := get(t, srv, "/validate?"+tt.query)
		if got := strings.TrimSpace(string(b)); got != tt.want {
			t.Errorf("/validate?%s = %q, want %q", tt.query, got, tt.want)
		}
	}

	if resp, _ := get(t, srv, "/validate?format=QR&text=x"); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown format: status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}
