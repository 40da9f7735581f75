// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pipeline

import (
	"context"
	"sync"

	"github.com/matt-FFFFFF/shellax/internal/ctxlog"
)

// Job is a chain running in the background.
type Job struct {
	ID   int
	Line string

	done   chan struct{}
	stages []*stage
}

// Done is closed once every stage of the job has been waited for.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Stages returns the stage results. They are final once Done is closed.
func (j *Job) Stages() []StageResult {
	select {
	case <-j.done:
	default:
		return nil
	}

	return collect(j.stages)
}

// Reaper waits for background jobs so that no child is left unreaped.
type Reaper struct {
	mu       sync.Mutex
	nextID   int
	running  int
	finished []*Job
	wg       sync.WaitGroup
}

// NewReaper returns an empty reaper.
func NewReaper() *Reaper {
	return &Reaper{}
}

// Track starts waiting for the stages of a background chain and returns the
// job describing it.
func (r *Reaper) Track(ctx context.Context, line string, stages []*stage) *Job {
	r.mu.Lock()
	r.nextID++
	r.running++
	job := &Job{ID: r.nextID, Line: line, done: make(chan struct{}), stages: stages}
	r.mu.Unlock()

	r.wg.Add(1)

	go func() {
		defer r.wg.Done()

		for i := len(stages) - 1; i >= 0; i-- {
			waitStage(ctx, stages[i])
		}

		ctxlog.Debug(ctx, "background job finished", "job", job.ID)

		r.mu.Lock()
		r.running--
		r.finished = append(r.finished, job)
		r.mu.Unlock()

		close(job.done)
	}()

	return job
}

// Finished returns the jobs that completed since the last call. It never
// blocks.
func (r *Reaper) Finished() []*Job {
	r.mu.Lock()
	defer r.mu.Unlock()

	jobs := r.finished
	r.finished = nil

	return jobs
}

// Running returns the number of jobs still running.
func (r *Reaper) Running() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.running
}

// Wait blocks until every tracked job has finished.
func (r *Reaper) Wait() {
	r.wg.Wait()
}
