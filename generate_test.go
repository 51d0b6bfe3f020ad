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
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stapelberg/qrsheet"
)

func barcodeJob(entries int) *qrsheet.Job {
	cfg := qrsheet.DefaultConfig()
	cfg.Mode = qrsheet.ModeBarcode
	job := &qrsheet.Job{Config: cfg, Logf: func(string, ...interface{}) {}}
	for i := 0; i < entries; i++ {
		job.Entries = append(job.Entries, fmt.Sprintf("ITEM-%03d", i))
	}
	return job
}

func contents(arts []*qrsheet.Artifact) []string {
	var s []string
	for _, a := range arts {
		s = append(s, a.Content)
	}
	return s
}

func TestGenerateShared(t *testing.T) {
	cfg := qrsheet.DefaultConfig()
	cfg.TotalCodes = 30
	arts, err := qrsheet.Generate(context.Background(), &qrsheet.Job{Config: cfg}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := len(arts), 1; got != want {
		t.Fatalf("len(arts) = %d, want %d", got, want)
	}
	if got, want := arts[0].Content, "https://example.com"; got != want {
		t.Errorf("Content = %q, want %q", got, want)
	}
}

func TestGeneratePublishesBatches(t *testing.T) {
	for _, tt := range []struct {
		entries int
		want    []int // sizes of the published partial results
	}{
		{entries: 5, want: nil},
		{entries: 20, want: nil},
		{entries: 40, want: []int{20}},
		{entries: 45, want: []int{20, 40}},
	} {
		t.Run(fmt.Sprint(tt.entries), func(t *testing.T) {
			job := barcodeJob(tt.entries)
			var got []int
			arts, err := qrsheet.Generate(context.Background(), job, func(partial []*qrsheet.Artifact) {
				got = append(got, len(partial))
			})
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("published sizes: unexpected diff (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(job.Entries, contents(arts)); diff != "" {
				t.Errorf("artifacts: unexpected diff (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGenerateSharesDuplicates(t *testing.T) {
	job := barcodeJob(0)
	job.Entries = []string{"A-1", "B-2", "A-1"}
	arts, err := qrsheet.Generate(context.Background(), job, nil)
	if err != nil {
		t.Fatal(err)
	}
	if arts[0] != arts[2] {
		t.Errorf("equal entries rendered twice")
	}
	if arts[0] == arts[1] {
		t.Errorf("different entries share an artifact")
	}
}

func TestGeneratePlaceholder(t *testing.T) {
	job := barcodeJob(0)
	job.Config.Barcode.Format = qrsheet.EAN13
	job.Entries = []string{"590123412345", "not digits"}
	arts, err := qrsheet.Generate(context.Background(), job, nil)
	if err != nil {
		t.Fatal(err)
	}
	if arts[0].Placeholder != nil {
		t.Errorf("valid entry got a placeholder: %v", arts[0].Placeholder)
	}
	var verr *qrsheet.ValidationError
	if !errors.As(arts[1].Placeholder, &verr) || verr.Code != "digits_only" {
		t.Errorf("Placeholder = %v, want digits_only", arts[1].Placeholder)
	}
}

func TestGenerateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := qrsheet.Generate(ctx, barcodeJob(3), nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Generate(cancelled) = %v, want %v", err, context.Canceled)
	}
}

type event struct {
	arts       []*qrsheet.Artifact
	generating bool
}

func TestGeneratorDebounces(t *testing.T) {
	events := make(chan event, 100)
	g := qrsheet.NewGenerator(func(arts []*qrsheet.Artifact, generating bool) {
		events <- event{arts, generating}
	})
	defer g.Close()

	// Only the last of several rapid updates is rendered.
	for i := 1; i <= 5; i++ {
		g.Update(barcodeJob(i))
	}

	var got []event
	timeout := time.After(10 * time.Second)
	for done := false; !done; {
		select {
		case ev := <-events:
			got = append(got, ev)
			done = !ev.generating
		case <-timeout:
			t.Fatalf("no final result after %d events", len(got))
		}
	}
	if len(got) != 2 {
		t.Fatalf("got %d events, want start and final", len(got))
	}
	if got[0].arts != nil || !got[0].generating {
		t.Errorf("first event = %+v, want (nil, true)", got[0])
	}
	if diff := cmp.Diff(barcodeJob(5).Entries, contents(got[1].arts)); diff != "" {
		t.Errorf("final artifacts: unexpected diff (-want +got):\n%s", diff)
	}
}

func TestGeneratorClose(t *testing.T) {
	events := make(chan event, 100)
	g := qrsheet.NewGenerator(func(arts []*qrsheet.Artifact, generating bool) {
		events <- event{arts, generating}
	})
	g.Update(barcodeJob(3))
	g.Close()
	// Updates after Close are ignored.
	g.Update(barcodeJob(3))
	time.Sleep(2 * qrsheet.DebounceDelay)
	select {
	case ev := <-events:
		t.Errorf("got event %+v after Close", ev)
	default:
	}
}
