package cli

import "sync"

// The serial event loop of the command line. Terminal events and functions
// posted by timers and completion generators share one queue, so they are
// handled in the order they arrive. The queue is unbounded: posting never
// blocks, including between two calls to Run.
type loop struct {
	queueMutex sync.Mutex
	queue      []event
	// Signaled when queue becomes non-empty.
	queued chan struct{}

	handleCb handleCb
	redrawCb redrawCb

	redrawMutex sync.Mutex
	redrawFull  bool
	redrawCh    chan struct{}

	returnCh chan loopReturn
}

type loopReturn struct {
	buffer string
	err    error
}

// A terminal event or a posted func().
type event any

type redrawCb func(flag redrawFlag)

type redrawFlag uint

const (
	// Set when Redraw(true) was called since the last redraw.
	fullRedraw redrawFlag = 1 << iota
	// Set on the redraw right before Run returns.
	finalRedraw
)

type handleCb func(event)

func newLoop() *loop {
	return &loop{
		queued:   make(chan struct{}, 1),
		handleCb: func(event) {},
		redrawCb: func(redrawFlag) {},
		redrawCh: make(chan struct{}, 1),
		returnCh: make(chan loopReturn, 1),
	}
}

// HandleCb sets the handler of terminal events. It must be called before Run.
func (lp *loop) HandleCb(cb handleCb) { lp.handleCb = cb }

// RedrawCb sets the redraw callback. It must be called before Run.
func (lp *loop) RedrawCb(cb redrawCb) { lp.redrawCb = cb }

// Redraw requests a redraw, a full one if full is true. It never blocks.
func (lp *loop) Redraw(full bool) {
	lp.redrawMutex.Lock()
	lp.redrawFull = lp.redrawFull || full
	lp.redrawMutex.Unlock()
	wake(lp.redrawCh)
}

// Input queues a terminal event.
func (lp *loop) Input(ev event) { lp.enqueue(ev) }

// Post queues f to be called by Run.
func (lp *loop) Post(f func()) { lp.enqueue(f) }

func (lp *loop) enqueue(ev event) {
	lp.queueMutex.Lock()
	lp.queue = append(lp.queue, ev)
	lp.queueMutex.Unlock()
	wake(lp.queued)
}

func (lp *loop) dequeue() (event, bool) {
	lp.queueMutex.Lock()
	defer lp.queueMutex.Unlock()
	if len(lp.queue) == 0 {
		return nil, false
	}
	ev := lp.queue[0]
	lp.queue[0] = nil
	lp.queue = lp.queue[1:]
	return ev, true
}

// Return makes Run return after the event being handled. Only the first call
// in a Run counts.
func (lp *loop) Return(buffer string, err error) {
	select {
	case lp.returnCh <- loopReturn{buffer, err}:
	default:
	}
}

// HasReturned reports whether Return has been called during the current Run.
func (lp *loop) HasReturned() bool { return len(lp.returnCh) == 1 }

// Run handles events until Return is called. Everything it calls runs on the
// calling goroutine, one at a time. Events left in the queue when it returns
// are handled by the next Run.
func (lp *loop) Run() (buffer string, err error) {
	for {
		var flag redrawFlag
		if lp.takeRedrawFull() {
			flag |= fullRedraw
		}
		lp.redrawCb(flag)
		select {
		case <-lp.queued:
			// Handle the whole backlog before redrawing.
			for {
				ev, ok := lp.dequeue()
				if !ok {
					break
				}
				if f, ok := ev.(func()); ok {
					f()
				} else {
					lp.handleCb(ev)
				}
				if lp.HasReturned() {
					if lp.pending() {
						wake(lp.queued)
					}
					return lp.finish(<-lp.returnCh)
				}
			}
		case ret := <-lp.returnCh:
			return lp.finish(ret)
		case <-lp.redrawCh:
		}
	}
}

func (lp *loop) finish(ret loopReturn) (string, error) {
	lp.redrawCb(finalRedraw)
	return ret.buffer, ret.err
}

func (lp *loop) pending() bool {
	lp.queueMutex.Lock()
	defer lp.queueMutex.Unlock()
	return len(lp.queue) > 0
}

func (lp *loop) takeRedrawFull() bool {
	lp.redrawMutex.Lock()
	defer lp.redrawMutex.Unlock()
	full := lp.redrawFull
	lp.redrawFull = false
	return full
}

// Sends on a channel with a buffer of one without blocking.
func wake(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
