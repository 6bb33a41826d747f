package engine

import (
	"runtime"

	"github.com/jmannall/roomacoustigo/slotpool"
)

// workerPool fans per-image-source chain processing for one audio block
// across a small set of persistent goroutines, synchronising with the audio
// thread through a spin counter rather than blocking on a WaitGroup (spec
// §5 "a worker pool... the audio thread waits on a spin counter until all
// enqueued tasks complete").
type workerPool struct {
	tasks chan func()
	wait  slotpool.WaitCounter
}

// newWorkerPool starts min(8, runtime.NumCPU()) persistent workers.
func newWorkerPool() *workerPool {
	n := runtime.NumCPU()
	if n > 8 {
		n = 8
	}
	if n < 1 {
		n = 1
	}
	p := &workerPool{tasks: make(chan func(), maxImageSources)}
	for i := 0; i < n; i++ {
		go p.loop()
	}
	return p
}

func (p *workerPool) loop() {
	for fn := range p.tasks {
		fn()
		p.wait.Done()
	}
}

// Dispatch enqueues fn, counting it against the block's outstanding-task
// total.
func (p *workerPool) Dispatch(fn func()) {
	p.wait.Add(1)
	p.tasks <- fn
}

// Wait spin-waits until every task dispatched for the current block has
// completed.
func (p *workerPool) Wait() { p.wait.Wait() }

// Close terminates every worker goroutine. Not real-time safe; call only at
// shutdown.
func (p *workerPool) Close() { close(p.tasks) }
