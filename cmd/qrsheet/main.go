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

// Binary qrsheet renders print sheets of QR codes and barcodes from a config
// file.
//
//	qrsheet -config sheet.hujson pdf > sheet.pdf
//	qrsheet -entries urls.txt zip -o codes.zip
//	qrsheet single -t
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"text/tabwriter"

	"github.com/disintegration/imaging"
	"github.com/mattn/go-isatty"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
	"github.com/skip2/go-qrcode"
	"github.com/stapelberg/qrsheet"
)

var rootFlags struct {
	config   string
	entries  string
	logo     string
	template string
	out      string
}

func buildRootFlags() *flag.FlagSet {
	fs := flag.NewFlagSet("qrsheet", flag.ExitOnError)
	fs.StringVar(&rootFlags.config, "config", "", "path to a JSON (HuJSON) config file; defaults are used when empty")
	fs.StringVar(&rootFlags.entries, "entries", "", "file with one code content per line (- for stdin); replaces the configured content and count")
	fs.StringVar(&rootFlags.logo, "logo", "", "image file to place in the center of QR codes")
	fs.StringVar(&rootFlags.template, "template", "", "sheet preset to apply (see the templates command)")
	fs.StringVar(&rootFlags.out, "o", "", "output file (output directory for png); stdout when empty")
	return fs
}

var singleFlags struct {
	svg      bool
	terminal bool
	index    int
}

func buildSingleFlags() *flag.FlagSet {
	fs := flag.NewFlagSet("single", flag.ExitOnError)
	fs.BoolVar(&singleFlags.svg, "svg", false, "write SVG instead of PNG")
	fs.BoolVar(&singleFlags.terminal, "t", false, "print the QR code as text to the terminal")
	fs.IntVar(&singleFlags.index, "i", 1, "1-based index of the code to render")
	return fs
}

// loadJob assembles the job described by the root flags.
func loadJob() (*qrsheet.Job, error) {
	cfg := qrsheet.DefaultConfig()
	if rootFlags.config != "" {
		f, err := os.Open(rootFlags.config)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if cfg, err = qrsheet.LoadConfig(f); err != nil {
			return nil, fmt.Errorf("%s: %w", rootFlags.config, err)
		}
	}
	if rootFlags.template != "" {
		var err error
		if cfg, err = cfg.ApplyTemplate(rootFlags.template); err != nil {
			return nil, err
		}
	}
	job := &qrsheet.Job{Config: cfg.Fill()}

	if rootFlags.entries != "" {
		var (
			b   []byte
			err error
		)
		if rootFlags.entries == "-" {
			b, err = io.ReadAll(os.Stdin)
		} else {
			b, err = os.ReadFile(rootFlags.entries)
		}
		if err != nil {
			return nil, err
		}
		job.Entries = qrsheet.ParseEntries(string(b))
		if len(job.Entries) == 0 {
			return nil, fmt.Errorf("%s: no entries", rootFlags.entries)
		}
	}

	if rootFlags.logo != "" {
		img, err := imaging.Open(rootFlags.logo)
		if err != nil {
			return nil, err
		}
		job.Logo = img
		if risk := qrsheet.LogoAdvisory(cfg.LogoSize, cfg.ErrorCorrection); risk != qrsheet.LogoOK {
			log.Printf("logo at %d%% with error correction %v: %v", cfg.LogoSize, cfg.ErrorCorrection, risk)
		}
	}
	return job, nil
}

var errTerminal = errors.New("not writing raw binary data to terminal, did you forget to redirect the output or to pass -o?")

// writeOutput writes b to the -o file, or to stdout unless that is a
// terminal and b is binary.
func writeOutput(b []byte, binary bool) error {
	if rootFlags.out != "" {
		return os.WriteFile(rootFlags.out, b, 0644)
	}
	if binary && isatty.IsTerminal(os.Stdout.Fd()) {
		return errTerminal
	}
	_, err := io.Copy(os.Stdout, bytes.NewReader(b))
	return err
}

// sheetCommand returns a subcommand exporting the whole sheet with export.
func sheetCommand(name, help string, binary bool, export func(ctx context.Context, job *qrsheet.Job) ([]byte, error)) *ffcli.Command {
	return &ffcli.Command{
		Name:       name,
		ShortUsage: "qrsheet [flags] " + name,
		ShortHelp:  help,
		Exec: func(ctx context.Context, args []string) error {
			job, err := loadJob()
			if err != nil {
				return err
			}
			b, err := export(ctx, job)
			if err != nil {
				return err
			}
			return writeOutput(b, binary)
		},
	}
}

func pngCommand() *ffcli.Command {
	return &ffcli.Command{
		Name:       "png",
		ShortUsage: "qrsheet [flags] png",
		ShortHelp:  "write one PNG per page into the -o directory",
		Exec: func(ctx context.Context, args []string) error {
			job, err := loadJob()
			if err != nil {
				return err
			}
			pages, err := qrsheet.ExportPNGPages(ctx, job, nil)
			if err != nil {
				return err
			}
			dir := rootFlags.out
			if dir == "" {
				dir = "."
			}
			for i, b := range pages {
				fn := filepath.Join(dir, job.Config.Filename(qrsheet.FilePagePNG, i+1))
				if err := os.WriteFile(fn, b, 0644); err != nil {
					return err
				}
				log.Printf("wrote %s", fn)
			}
			return nil
		},
	}
}

func zipCommand() *ffcli.Command {
	return &ffcli.Command{
		Name:       "zip",
		ShortUsage: "qrsheet [flags] zip",
		ShortHelp:  "write a ZIP archive with a PNG and an SVG of every code",
		Exec: func(ctx context.Context, args []string) error {
			job, err := loadJob()
			if err != nil {
				return err
			}
			export := func(w io.Writer) error {
				return qrsheet.ExportArchive(ctx, job, w, func(done, total int) {
					log.Printf("archive: %d/%d codes", done, total)
				})
			}
			if rootFlags.out == "" {
				if isatty.IsTerminal(os.Stdout.Fd()) {
					return errTerminal
				}
				return export(os.Stdout)
			}
			f, err := os.Create(rootFlags.out)
			if err != nil {
				return err
			}
			if err := export(f); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
}

var terminalLevels = map[qrsheet.ECLevel]qrcode.RecoveryLevel{
	qrsheet.ECLow:      qrcode.Low,
	qrsheet.ECMedium:   qrcode.Medium,
	qrsheet.ECQuartile: qrcode.High,
	qrsheet.ECHigh:     qrcode.Highest,
}

// terminalQR renders content as half-block text. Empty content is encoded
// as a single space, like every other QR output.
func terminalQR(content string, level qrsheet.ECLevel) (string, error) {
	if content == "" {
		content = " "
	}
	q, err := qrcode.New(content, terminalLevels[level])
	if err != nil {
		return "", err
	}
	return q.ToSmallString(false), nil
}

func singleCommand() *ffcli.Command {
	return &ffcli.Command{
		Name:       "single",
		ShortUsage: "qrsheet [flags] single [-svg] [-t] [-i n]",
		ShortHelp:  "render one code at print resolution",
		FlagSet:    buildSingleFlags(),
		Exec: func(ctx context.Context, args []string) error {
			job, err := loadJob()
			if err != nil {
				return err
			}
			i := singleFlags.index - 1
			if i < 0 || i >= job.Total() {
				return fmt.Errorf("code %d out of range [1, %d]", singleFlags.index, job.Total())
			}
			content := job.ContentAt(i)
			cfg := job.Config

			if singleFlags.terminal {
				if cfg.Mode != qrsheet.ModeQR {
					return errors.New("-t only supports QR codes")
				}
				s, err := terminalQR(content, cfg.ErrorCorrection)
				if err != nil {
					return err
				}
				fmt.Print(s)
				return nil
			}

			if singleFlags.svg {
				b, err := qrsheet.ExportSingleSVG(job, content)
				if err != nil {
					return err
				}
				return writeOutput(b, false)
			}
			b, err := qrsheet.ExportSinglePNG(job, content)
			if err != nil {
				return err
			}
			return writeOutput(b, true)
		},
	}
}

func validateCommand() *ffcli.Command {
	return &ffcli.Command{
		Name:       "validate",
		ShortUsage: "qrsheet validate <CODE128|EAN13|UPC|CODE39> <text>",
		ShortHelp:  "check barcode text against a symbology",
		Exec: func(ctx context.Context, args []string) error {
			if len(args) != 2 {
				return flag.ErrHelp
			}
			var sym qrsheet.Symbology
			if err := sym.UnmarshalText([]byte(args[0])); err != nil {
				return err
			}
			if err := qrsheet.ValidateBarcode(args[1], sym); err != nil {
				fmt.Println(err)
				os.Exit(1)
			}
			fmt.Println("ok")
			return nil
		},
	}
}

func templatesCommand() *ffcli.Command {
	return &ffcli.Command{
		Name:       "templates",
		ShortUsage: "qrsheet templates",
		ShortHelp:  "list the sheet presets",
		Exec: func(ctx context.Context, args []string) error {
			tw := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
			for _, t := range qrsheet.Templates {
				fmt.Fprintf(tw, "%s\t%s\n", t.ID, t.Description)
			}
			return tw.Flush()
		},
	}
}

func main() {
	root := &ffcli.Command{
		ShortUsage: "qrsheet [flags] <subcommand> [flags]",
		ShortHelp:  "render print sheets of QR codes and barcodes",
		FlagSet:    buildRootFlags(),
		Options:    []ff.Option{ff.WithEnvVarPrefix("QRSHEET")},
		Exec: func(ctx context.Context, args []string) error {
			return flag.ErrHelp
		},
		Subcommands: []*ffcli.Command{
			sheetCommand("pdf", "write the sheet as a PDF", true, func(ctx context.Context, job *qrsheet.Job) ([]byte, error) {
				return qrsheet.ExportPDF(ctx, job, nil)
			}),
			pngCommand(),
			sheetCommand("doc", "write the sheet as a Word document", true, func(ctx context.Context, job *qrsheet.Job) ([]byte, error) {
				return qrsheet.ExportWord(ctx, job, nil)
			}),
			sheetCommand("html", "write the sheet as print-ready HTML", false, func(ctx context.Context, job *qrsheet.Job) ([]byte, error) {
				return qrsheet.BuildPrintHTML(ctx, job, nil)
			}),
			zipCommand(),
			singleCommand(),
			validateCommand(),
			templatesCommand(),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := root.ParseAndRun(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatal(err)
	}
}
