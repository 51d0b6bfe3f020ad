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
	"io"
	"strconv"
	"time"

	"github.com/klauspost/compress/zip"
	"golang.org/x/sync/errgroup"
)

// archiveBatch is how many codes are rendered concurrently before their
// files are written and progress is reported.
const archiveBatch = 10

// ArchiveName returns the name of the files of code i (0-based) of total,
// without extension: the base name and the 1-based index zero-padded to the
// width of total.
func ArchiveName(base string, i, total int) string {
	return fmt.Sprintf("%s_%0*d", base, len(strconv.Itoa(total)), i+1)
}

// ExportArchive writes a ZIP archive to w holding a PNG and an SVG of every
// code: one per interleave entry, or Config.TotalCodes copies of the
// configured content. progress, if non-nil, is called with (done, total)
// after every batch. Cancelling ctx aborts the export between batches and
// leaves w with an incomplete archive.
func ExportArchive(ctx context.Context, job *Job, w io.Writer, progress func(done, total int)) error {
	total := job.Total()
	base := job.Config.baseName("code")
	zw := zip.NewWriter(w)
	now := time.Now()

	type files struct {
		png, svg []byte
	}
	for start := 0; start < total; start += archiveBatch {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := min(archiveBatch, total-start)
		batch := make([]files, n)
		eg, ectx := errgroup.WithContext(ctx)
		for j := 0; j < n; j++ {
			eg.Go(func() error {
				if err := ectx.Err(); err != nil {
					return err
				}
				content := job.ContentAt(start + j)
				png, err := ExportSinglePNG(job, content)
				if err != nil {
					return err
				}
				svg, err := ExportSingleSVG(job, content)
				if err != nil {
					return err
				}
				batch[j] = files{png: png, svg: svg}
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return err
		}
		for j, f := range batch {
			name := ArchiveName(base, start+j, total)
			// PNG data is already compressed.
			if err := writeZipFile(zw, name+".png", zip.Store, now, f.png); err != nil {
				return err
			}
			if err := writeZipFile(zw, name+".svg", zip.Deflate, now, f.svg); err != nil {
				return err
			}
		}
		if progress != nil {
			progress(start+n, total)
		}
	}
	return zw.Close()
}

func writeZipFile(zw *zip.Writer, name string, method uint16, mod time.Time, b []byte) error {
	fw, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   method,
		Modified: mod,
	})
	if err != nil {
		return err
	}
	if _, err := fw.Write(b); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}
