package fetch

import "context"

// Job tracks one request started by Sync.
type Job struct {
	epoch   uint64
	done    chan struct{}
	applied bool
}

func newJob(epoch uint64) *Job {
	return &Job{epoch: epoch, done: make(chan struct{})}
}

// Epoch is the generation the request was started under.
func (j *Job) Epoch() uint64 {
	return j.epoch
}

// Done is closed once the request has settled (applied or discarded).
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the request settles or ctx ends.
func (j *Job) Wait(ctx context.Context) error {
	select {
	case <-j.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Applied reports whether the result reached the controller state. It is
// false for requests superseded by a later Sync. Only meaningful after Done.
func (j *Job) Applied() bool {
	select {
	case <-j.done:
		return j.applied
	default:
		return false
	}
}
