package fluid

import (
	"runtime"
	"sync"
)

// defaultParallelThreshold is the minimum particle count to fan a stage out.
// Below this, running inline is faster than the channel round trips.
const defaultParallelThreshold = 256

// stageFunc processes particles [start, end) on behalf of a worker.
type stageFunc func(start, end, worker int)

// workChunk represents a range of particles for a worker to process.
type workChunk struct {
	start, end int
}

// workerCounters accumulates per-worker tick statistics. Padded so adjacent
// workers do not share a cache line.
type workerCounters struct {
	recoveries int
	collisions int
	_          [48]byte
}

// workerPool runs stages across persistent goroutines. Worker w owns job
// channel w, so chunk w of every stage lands on the same goroutine and the
// same counters slot. run returns only after every chunk has finished, which
// is the barrier between stages.
type workerPool struct {
	numWorkers int
	threshold  int
	counters   []workerCounters

	jobs    []chan workChunk // nil while stopped
	pending sync.WaitGroup   // chunks of the current stage
	exited  sync.WaitGroup   // live worker goroutines
	stage   stageFunc        // written before the sends, read after the receives
}

func newWorkerPool(numWorkers, threshold int) *workerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	if threshold <= 0 {
		threshold = defaultParallelThreshold
	}
	return &workerPool{
		numWorkers: numWorkers,
		threshold:  threshold,
		counters:   make([]workerCounters, numWorkers),
	}
}

func (p *workerPool) running() bool {
	return p.jobs != nil
}

func (p *workerPool) start() {
	p.jobs = make([]chan workChunk, p.numWorkers)
	for w := range p.jobs {
		p.jobs[w] = make(chan workChunk, 1)
		p.exited.Add(1)
		go p.work(w, p.jobs[w])
	}
}

// stop closes the job channels and waits for the workers to exit. The pool
// restarts on the next parallel run.
func (p *workerPool) stop() {
	if !p.running() {
		return
	}
	for _, ch := range p.jobs {
		close(ch)
	}
	p.exited.Wait()
	p.jobs = nil
}

func (p *workerPool) work(w int, jobs <-chan workChunk) {
	defer p.exited.Done()
	for chunk := range jobs {
		p.stage(chunk.start, chunk.end, w)
		p.pending.Done()
	}
}

// run executes fn over [0, n) split into one contiguous chunk per worker.
// Small workloads and single-worker pools run inline as worker 0.
func (p *workerPool) run(n int, fn stageFunc) {
	if n == 0 {
		return
	}
	if n < p.threshold || p.numWorkers == 1 {
		fn(0, n, 0)
		return
	}
	if !p.running() {
		p.start()
	}

	p.stage = fn
	size := (n + p.numWorkers - 1) / p.numWorkers
	for w := 0; w*size < n; w++ {
		p.pending.Add(1)
		p.jobs[w] <- workChunk{start: w * size, end: min(n, (w+1)*size)}
	}
	p.pending.Wait()
	p.stage = nil
}

// resetCounters zeroes the per-worker counters before a tick.
func (p *workerPool) resetCounters() {
	for i := range p.counters {
		p.counters[i] = workerCounters{}
	}
}

// sumCounters totals the per-worker counters. Only call between stages.
func (p *workerPool) sumCounters() (recoveries, collisions int) {
	for i := range p.counters {
		recoveries += p.counters[i].recoveries
		collisions += p.counters[i].collisions
	}
	return recoveries, collisions
}
