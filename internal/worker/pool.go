// worker/pool.go
package worker

// Job produces a single value. Jobs must be self-contained; the pool
// imposes no ordering between them.
type Job[T any] func() T

type Result[T any] struct {
	JobID  string
	Output T
}

// Pool fans jobs out over a fixed set of goroutines. Used by the
// simulator to run many learners' attempts concurrently.
type Pool[T any] struct {
	jobs    chan jobWrapper[T]
	results chan Result[T]
}

type jobWrapper[T any] struct {
	id string
	fn Job[T]
}

func NewPool[T any](workerCount int, bufferSize int) *Pool[T] {
	p := &Pool[T]{
		jobs:    make(chan jobWrapper[T], bufferSize),
		results: make(chan Result[T], bufferSize),
	}

	for i := 0; i < workerCount; i++ {
		go p.worker()
	}

	return p
}

func (p *Pool[T]) worker() {
	for job := range p.jobs {
		output := job.fn()
		p.results <- Result[T]{
			JobID:  job.id,
			Output: output,
		}
	}
}

func (p *Pool[T]) Submit(id string, fn Job[T]) {
	p.jobs <- jobWrapper[T]{id: id, fn: fn}
}

func (p *Pool[T]) Results() <-chan Result[T] {
	return p.results
}

// Close stops accepting jobs. Workers drain what was already submitted.
func (p *Pool[T]) Close() {
	close(p.jobs)
}
