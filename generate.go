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
	"sync"
	"time"
)

const (
	// generateBatch is how many interleaved codes are rendered between
	// publishing partial results.
	generateBatch = 20

	// DebounceDelay coalesces rapid Generator.Update calls.
	DebounceDelay = 100 * time.Millisecond
)

// Generate renders the grid artifacts of job: a single shared artifact, or
// one per interleave entry. For interleaved jobs, publish (if non-nil) is
// called with the partial result after every full batch of 20 codes that is
// not the last one. Cancelling ctx stops the pass between codes; a code that
// is being rendered is finished first.
func Generate(ctx context.Context, job *Job, publish func([]*Artifact)) ([]*Artifact, error) {
	if publish == nil {
		publish = func([]*Artifact) {}
	}
	if !job.Interleaved() {
		art, err := job.renderArtifact(job.Content(), QRSize, BarcodeOptions{})
		if err != nil {
			return nil, err
		}
		return []*Artifact{art}, nil
	}

	arts := make([]*Artifact, 0, len(job.Entries))
	// Equal entries share one artifact.
	rendered := make(map[string]*Artifact)
	for i, content := range job.Entries {
		if err := ctx.Err(); err != nil {
			return arts, err
		}
		art, ok := rendered[content]
		if !ok {
			var err error
			art, err = job.renderArtifact(content, QRSize, BarcodeOptions{})
			if err != nil {
				return arts, err
			}
			rendered[content] = art
		}
		arts = append(arts, art)
		if (i+1)%generateBatch == 0 && i+1 < len(job.Entries) {
			publish(append([]*Artifact(nil), arts...))
		}
	}
	return arts, nil
}

// Generator keeps artifacts up to date with a changing job, the way an
// interactive preview needs it: updates are debounced, and a new update
// cancels the pass in flight so its results are never published.
type Generator struct {
	publish func(arts []*Artifact, generating bool)

	mu     sync.Mutex
	timer  *time.Timer
	cancel context.CancelFunc
	closed bool
	wg     sync.WaitGroup
}

// NewGenerator returns a Generator reporting to publish. Every pass first
// reports (nil, true), then partial results with generating set, then the
// final artifacts with generating cleared. A nil arts carries no results; a
// failed pass ends with (nil, false). publish is called with the
// generator's lock held and must not call Update or Close.
func NewGenerator(publish func(arts []*Artifact, generating bool)) *Generator {
	return &Generator{publish: publish}
}

// Update schedules a generation pass for job after DebounceDelay, replacing
// any pending or running pass.
func (g *Generator) Update(job *Job) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	g.stopLocked()
	ctx, cancel := context.WithCancel(context.Background())
	g.cancel = cancel
	g.wg.Add(1)
	g.timer = time.AfterFunc(DebounceDelay, func() {
		defer g.wg.Done()
		g.run(ctx, job)
	})
}

// stopLocked cancels the pending and running passes.
func (g *Generator) stopLocked() {
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	if g.timer != nil && g.timer.Stop() {
		// The pass never started.
		g.wg.Done()
	}
	g.timer = nil
}

func (g *Generator) run(ctx context.Context, job *Job) {
	emit := func(arts []*Artifact, generating bool) {
		g.mu.Lock()
		defer g.mu.Unlock()
		if ctx.Err() != nil {
			return // superseded
		}
		g.publish(arts, generating)
	}
	emit(nil, true)
	arts, err := Generate(ctx, job, func(partial []*Artifact) {
		emit(partial, true)
	})
	if err != nil {
		if ctx.Err() == nil {
			job.logf("generating codes: %v", err)
			emit(nil, false)
		}
		return
	}
	emit(arts, false)
}

// Close cancels all work and waits for running passes to return.
func (g *Generator) Close() {
	g.mu.Lock()
	g.closed = true
	g.stopLocked()
	g.mu.Unlock()
	g.wg.Wait()
}
