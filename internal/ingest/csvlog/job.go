package csvlog

import (
	"context"

	"github.com/claude/liftlog/internal/ingest"
)

// Job is a CSV parse running on its own goroutine.
type Job struct {
	progress chan ingest.Progress
	done     chan struct{}
	result   *ingest.Result
	err      error
}

// Start parses data in the background. Progress updates are delivered on
// Progress() without blocking the parser; a slow reader may miss
// intermediate updates but the channel is always closed when parsing ends.
func (imp *Importer) Start(ctx context.Context, data string) *Job {
	j := &Job{
		progress: make(chan ingest.Progress, 16),
		done:     make(chan struct{}),
	}
	go func() {
		defer close(j.done)
		defer close(j.progress)
		j.result, j.err = imp.Parse(ctx, data, func(p ingest.Progress) {
			select {
			case j.progress <- p:
			default:
			}
		})
	}()
	return j
}

// Progress returns the channel of progress updates.
func (j *Job) Progress() <-chan ingest.Progress {
	return j.progress
}

// Done is closed once the result is available.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until parsing finishes and returns its outcome.
func (j *Job) Wait() (*ingest.Result, error) {
	<-j.done
	return j.result, j.err
}
