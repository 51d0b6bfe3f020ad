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

// Binary qrsheet-api serves print sheets of QR codes and barcodes over HTTP.
//
// With URL arguments, it answers them from an in-process server and writes
// the responses to stdout instead of listening:
//
//	qrsheet-api '/sheet?format=pdf&value=example.net' > sheet.pdf
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/mattn/go-isatty"
	"github.com/peterbourgon/ff/v3"
	"github.com/stapelberg/qrsheet"
)

var defaultListenAddress = "localhost:9933"

var formats = []string{"pdf", "png", "doc", "html", "zip", "svg", "txt", "debug"}

func validFormat(format string) bool {
	for _, f := range formats {
		if f == format {
			return true
		}
	}
	return false
}

type server struct {
	listen string
	base   *qrsheet.Config
}

// jobFromRequest builds the job of a /sheet request. entries holds the
// interleave list, one entry per line.
func (s *server) jobFromRequest(r *http.Request, prefix string) (*qrsheet.Job, error) {
	cfg, err := configFromForm(s.base, r.Form)
	if err != nil {
		return nil, err
	}
	return &qrsheet.Job{
		Config:  cfg,
		Entries: qrsheet.ParseEntries(r.FormValue("entries")),
		Logf: func(format string, args ...interface{}) {
			log.Printf("%s "+format, append([]interface{}{prefix}, args...)...)
		},
	}, nil
}

func (s *server) sheet(w http.ResponseWriter, r *http.Request) {
	prefix := "[" + r.RemoteAddr + "]"
	format := r.FormValue("format")
	log.Printf("%s handling request for %s, format=%s", prefix, r.URL.Path, format)
	defer log.Printf("%s request completed (%s)", prefix, r.URL.Path)

	if format == "" {
		msg := fmt.Sprintf("no ?format= parameter specified. Try %s",
			"http://"+s.listen+"/sheet?format=html")
		log.Printf("%s %s", prefix, msg)
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	if !validFormat(format) {
		msg := fmt.Sprintf("format (%q) must be one of %s", format, strings.Join(formats, ", "))
		log.Printf("%s %s", prefix, msg)
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	if err := r.ParseForm(); err != nil {
		log.Printf("%s %s", prefix, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	job, err := s.jobFromRequest(r, prefix)
	if err != nil {
		log.Printf("%s %s", prefix, err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cfg := job.Config
	ctx := r.Context()

	// https://developer.mozilla.org/en-US/docs/Web/HTTP/Headers/Cache-Control
	// […] this alone is the only directive you need in preventing cached
	// responses on modern browsers.
	w.Header().Add("Cache-Control", "no-store")

	var (
		b        []byte
		filename string
	)
	switch format {
	case "pdf":
		b, err = qrsheet.ExportPDF(ctx, job, nil)
		filename = cfg.Filename(qrsheet.FilePDF, 0)
		w.Header().Add("Content-Type", "application/pdf")

	case "png":
		page := 1
		if v := r.FormValue("page"); v != "" {
			if page, err = strconv.Atoi(v); err != nil {
				log.Printf("%s %s", prefix, err)
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}
		var pages [][]byte
		pages, err = qrsheet.ExportPNGPages(ctx, job, nil)
		if err == nil && (page < 1 || page > len(pages)) {
			msg := fmt.Sprintf("page %d out of range [1, %d]", page, len(pages))
			log.Printf("%s %s", prefix, msg)
			http.Error(w, msg, http.StatusBadRequest)
			return
		}
		if err == nil {
			b = pages[page-1]
		}
		filename = cfg.Filename(qrsheet.FilePagePNG, page)
		w.Header().Add("Content-Type", "image/png")

	case "doc":
		b, err = qrsheet.ExportWord(ctx, job, nil)
		filename = cfg.Filename(qrsheet.FileWord, 0)
		w.Header().Add("Content-Type", "application/msword")

	case "html":
		b, err = qrsheet.BuildPrintHTML(ctx, job, nil)
		w.Header().Add("Content-Type", "text/html; charset=utf-8")

	case "zip":
		var buf bytes.Buffer
		err = qrsheet.ExportArchive(ctx, job, &buf, func(done, total int) {
			log.Printf("%s archive: %d/%d codes", prefix, done, total)
		})
		b = buf.Bytes()
		filename = cfg.Filename(qrsheet.FileArchive, 0)
		w.Header().Add("Content-Type", "application/zip")

	case "svg":
		b, err = qrsheet.ExportSingleSVG(job, job.ContentAt(0))
		w.Header().Add("Content-Type", "image/svg+xml")

	case "txt":
		w.Header().Add("Content-Type", "text/plain; charset=utf-8")
		spew.Fdump(w, cfg, job.Layout(qrsheet.Inches))
		return

	case "debug":
		debugHTML(w, r, prefix, job)
		return
	}
	if err != nil {
		log.Printf("%s %s", prefix, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if filename != "" {
		w.Header().Add("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	}

	if _, err := io.Copy(w, bytes.NewReader(b)); err != nil {
		log.Printf("%s %s", prefix, err)
		return
	}
}

// validate reports the validation code of ?text= in the ?format= symbology,
// or "ok".
func (s *server) validate(w http.ResponseWriter, r *http.Request) {
	prefix := "[" + r.RemoteAddr + "]"
	log.Printf("%s handling request for %s", prefix, r.URL.Path)
	defer log.Printf("%s request completed (%s)", prefix, r.URL.Path)

	var sym qrsheet.Symbology
	if err := sym.UnmarshalText([]byte(r.FormValue("format"))); err != nil {
		log.Printf("%s %s", prefix, err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Add("Content-Type", "text/plain; charset=utf-8")
	w.Header().Add("Cache-Control", "no-store")
	if err := qrsheet.ValidateBarcode(r.FormValue("text"), sym); err != nil {
		fmt.Fprintln(w, err)
		return
	}
	fmt.Fprintln(w, "ok")
}

func loadBase(path string) (*qrsheet.Config, error) {
	if path == "" {
		return qrsheet.DefaultConfig(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	cfg, err := qrsheet.LoadConfig(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func logic() error {
	fs := flag.NewFlagSet("qrsheet-api", flag.ExitOnError)
	var (
		listen     = fs.String("listen", defaultListenAddress, "[host]:port to listen on")
		configPath = fs.String("config", "", "path to a JSON (HuJSON) config file with the defaults for every request")
	)
	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix("QRSHEET")); err != nil {
		return err
	}

	base, err := loadBase(*configPath)
	if err != nil {
		return err
	}
	s := &server{listen: *listen, base: base}

	mux := http.NewServeMux()
	mux.HandleFunc("/sheet", s.sheet)
	mux.HandleFunc("/validate", s.validate)

	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `User-agent: *
Disallow: /
`)
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Redirect(w, r, "/sheet?format=debug", http.StatusFound)
	})

	if fs.NArg() > 0 {
		srv := httptest.NewServer(mux)
		defer srv.Close()
		for _, arg := range fs.Args() {
			u, err := url.Parse(arg)
			if err != nil {
				return err
			}
			u.Scheme = "http"
			u.Host = strings.TrimPrefix(srv.URL, "http://")
			resp, err := srv.Client().Get(u.String())
			if err != nil {
				return err
			}
			ct := resp.Header.Get("Content-Type")
			if !strings.HasPrefix(ct, "text/") &&
				isatty.IsTerminal(os.Stdout.Fd()) {
				resp.Body.Close()
				fmt.Fprintf(os.Stderr, "not writing raw binary data to terminal, did you forget to redirect the output?\n")
				os.Exit(2)
			}
			_, err = io.Copy(os.Stdout, resp.Body)
			resp.Body.Close()
			if err != nil {
				return err
			}
		}
		return nil
	}

	log.Printf("QR sheet URL: http://%s/sheet?format=debug", *listen)
	srv := &http.Server{Addr: *listen, Handler: mux}
	return srv.ListenAndServe()
}

func main() {
	if err := logic(); err != nil {
		log.Fatal(err)
	}
}
