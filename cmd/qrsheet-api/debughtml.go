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
	"fmt"
	"html/template"
	"log"
	"net/http"
	"regexp"
	"sort"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/stapelberg/qrsheet"
)

var (
	fieldNameRe     = regexp.MustCompile(`<br>(&nbsp;)*([^:]+):`)
	stringLiteralRe = regexp.MustCompile(`"([^"]*)"`)
	parenRe         = regexp.MustCompile(`\(([^)]+)\)&nbsp;`)
)

var tmpl = template.Must(template.New("").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <title>QR Sheet HTML Debug Page</title>
  <style type="text/css">

.fieldname { font-weight: bold; }
.stringliteral { color: blue; }
#spews { display: flex; flex-wrap: wrap; }
#spews div { border: 1px solid black; margin: 1em; padding: 1em; }
.dump { font-family: monospace; }
th { text-align: left; }
#params tr td:nth-child(2) { color: blue; }
#params tr td:nth-child(1)::before { content: "&"; }
#params tr td:nth-child(1)::after { content: "="; }

  </style>
</head>
<body>
<div id="spews">
<div class="dump">
<h1>URL parameters</h1>
<table id="params">
<tr>
  <th>Parameter</th>
  <th>Value</th>
</tr>
{{ range .Params }}
<tr>
  <td>{{ .Key }}</td>
  <td>{{ .Value }}</td>
</tr>
{{ end }}
</table>
<p>{{ .Total }} codes on {{ .Pages }} page(s)</p>
{{ with .Advisory }}<p>logo: {{ . }}</p>{{ end }}
{{ with .Validation }}<p>barcode: {{ . }}</p>{{ end }}
</div>
`))

type param struct {
	Key, Value string
}

func debugHTML(w http.ResponseWriter, r *http.Request, prefix string, job *qrsheet.Job) {
	w.Header().Add("Content-Type", "text/html; charset=utf-8")
	cfg := job.Config
	l := job.Layout(qrsheet.Inches)

	var params []param
	for key, values := range r.Form {
		for _, v := range values {
			params = append(params, param{Key: key, Value: v})
		}
	}
	sort.Slice(params, func(i, j int) bool { return params[i].Key < params[j].Key })

	var (
		advisory   string
		validation string
	)
	if cfg.Mode == qrsheet.ModeBarcode {
		validation = "ok"
		if err := qrsheet.ValidateBarcode(job.ContentAt(0), cfg.Barcode.Format); err != nil {
			validation = err.Error()
		}
	} else {
		advisory = qrsheet.LogoAdvisory(cfg.LogoSize, cfg.ErrorCorrection).String()
	}

	var buf bytes.Buffer
	err := tmpl.Execute(&buf, struct {
		Params     []param
		Total      int
		Pages      int
		Advisory   string
		Validation string
	}{
		Params:     params,
		Total:      job.Total(),
		Pages:      l.Pages,
		Advisory:   advisory,
		Validation: validation,
	})
	if err != nil {
		log.Printf("%s %s", prefix, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	fmt.Fprintf(w, "%s", buf.String())

	spew := func(vars ...interface{}) string {
		sp := spew.Sdump(vars...)
		sp = strings.ReplaceAll(sp, "\n", "<br>")
		sp = strings.ReplaceAll(sp, " ", "&nbsp;")
		sp = parenRe.ReplaceAllString(sp, "")
		sp = stringLiteralRe.ReplaceAllStringFunc(sp, func(stringLiteral string) string {
			return `<span class="stringliteral">` + stringLiteral + "</span>"
		})
		sp = fieldNameRe.ReplaceAllStringFunc(sp, func(fieldName string) string {
			return `<span class="fieldname">` + fieldName + "</span>"
		})
		return sp
	}
	fmt.Fprintf(w, `<div class="dump"><h1>config</h1>%s</div>`, spew(cfg))

	fmt.Fprintf(w, `<div class="dump"><h1>layout (inches)</h1>%s</div>`, spew(l))

	fmt.Fprintf(w, `<div class="dump"><h1>content</h1>%s</div>`, spew(job.ContentAt(0)))

	r.URL.Path = "/sheet"
	v := r.URL.Query()
	v.Set("format", "svg")
	r.URL.RawQuery = v.Encode()
	fmt.Fprintf(w, `<div class="dump"><h1>code</h1><img src="%s" width="200"></div>`, template.HTMLEscapeString(r.URL.String()))

	v.Set("format", "png")
	v.Set("page", "1")
	r.URL.RawQuery = v.Encode()
	fmt.Fprintf(w, `<div class="dump"><h1>page 1</h1><img src="%s" width="400"></div>`, template.HTMLEscapeString(r.URL.String()))

	fmt.Fprintf(w, "</div></body></html>")
}
