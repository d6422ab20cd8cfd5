// {{{ Copyright (c) Paul R. Tagliamonte <paul@k3xec.com>, 2020
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE. }}}

// Package uloop contains the standard upump.Mgr implementation: a
// single-threaded poll(2) loop with a timer heap, an idler ring, signal
// forwarding and a self-pipe for cross-thread wakeups. Queue pumps wake
// the loop from producer goroutines through the self-pipe, which is the
// one cross-thread entry point; everything else runs on the loop thread.
package uloop

import (
	"container/heap"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"go.uber.org/multierr"
	"golang.org/x/sys/unix"

	"hz.tools/upipe/uclock"
	"hz.tools/upipe/uerr"
	"hz.tools/upipe/upump"
)

// Mgr is a single-threaded pump scheduler. Construct with New, drive
// with Run from the owning thread, release with Close.
type Mgr struct {
	clock uclock.Clock

	pumps   map[*pump]struct{}
	started int

	timers timerHeap
	idlers []*pump
	fds    []*pump
	queues []*pump

	sigPumps   map[syscall.Signal][]*pump
	sigCh      chan os.Signal
	sigPending []syscall.Signal
	sigMu      sync.Mutex
	sigOnce    sync.Once

	wakeR, wakeW int
	wakePending  atomic.Bool

	stopped atomic.Bool
}

// New returns a Mgr ready to allocate pumps.
func New() (*Mgr, error) {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		return nil, uerr.ErrExternal
	}
	return &Mgr{
		clock:    uclock.NewStd(),
		pumps:    map[*pump]struct{}{},
		sigPumps: map[syscall.Signal][]*pump{},
		sigCh:    make(chan os.Signal, 16),
		wakeR:    fds[0],
		wakeW:    fds[1],
	}, nil
}

// wake makes a blocked Run iteration return. Safe from any goroutine.
func (m *Mgr) wake() {
	if m.wakePending.Swap(true) {
		return
	}
	_, _ = unix.Write(m.wakeW, []byte{0})
}

func (m *Mgr) drainWake() {
	var buf [16]byte
	for {
		if _, err := unix.Read(m.wakeR, buf[:]); err != nil {
			break
		}
	}
	m.wakePending.Store(false)
}

type pump struct {
	mgr      *Mgr
	kind     upump.Kind
	cb       func(upump.Pump)
	started  bool
	blockers int

	// timer
	deadline      uint64
	after, repeat uint64

	// fd
	fd int

	// signal
	sig syscall.Signal

	// queue
	queue upump.Signaler
	ready atomic.Bool
}

type blocker struct {
	p *pump
}

func (m *Mgr) alloc(kind upump.Kind, cb func(upump.Pump)) *pump {
	p := &pump{mgr: m, kind: kind, cb: cb}
	m.pumps[p] = struct{}{}
	return p
}

// AllocIdler implements the upump.Mgr interface.
func (m *Mgr) AllocIdler(cb func(upump.Pump)) upump.Pump {
	return m.alloc(upump.KindIdler, cb)
}

// AllocTimer implements the upump.Mgr interface.
func (m *Mgr) AllocTimer(cb func(upump.Pump), after, repeat uint64) upump.Pump {
	p := m.alloc(upump.KindTimer, cb)
	p.after = after
	p.repeat = repeat
	return p
}

// AllocFdRead implements the upump.Mgr interface.
func (m *Mgr) AllocFdRead(cb func(upump.Pump), fd int) upump.Pump {
	p := m.alloc(upump.KindFdRead, cb)
	p.fd = fd
	return p
}

// AllocFdWrite implements the upump.Mgr interface.
func (m *Mgr) AllocFdWrite(cb func(upump.Pump), fd int) upump.Pump {
	p := m.alloc(upump.KindFdWrite, cb)
	p.fd = fd
	return p
}

// AllocSignal implements the upump.Mgr interface.
func (m *Mgr) AllocSignal(cb func(upump.Pump), sig syscall.Signal) upump.Pump {
	p := m.alloc(upump.KindSignal, cb)
	p.sig = sig
	return p
}

// AllocQueue implements the upump.Mgr interface.
func (m *Mgr) AllocQueue(cb func(upump.Pump), queue upump.Signaler) upump.Pump {
	p := m.alloc(upump.KindQueue, cb)
	p.queue = queue
	return p
}

// Kind implements the upump.Pump interface.
func (p *pump) Kind() upump.Kind {
	return p.kind
}

// Start implements the upump.Pump interface.
func (p *pump) Start() {
	if p.started {
		return
	}
	p.started = true
	p.mgr.started++
	switch p.kind {
	case upump.KindIdler:
		p.mgr.idlers = append(p.mgr.idlers, p)
	case upump.KindTimer:
		p.deadline = p.mgr.clock.Now() + p.after
		heap.Push(&p.mgr.timers, p)
	case upump.KindFdRead, upump.KindFdWrite:
		p.mgr.fds = append(p.mgr.fds, p)
	case upump.KindSignal:
		p.mgr.sigPumps[p.sig] = append(p.mgr.sigPumps[p.sig], p)
		p.mgr.watchSignals()
		signal.Notify(p.mgr.sigCh, p.sig)
	case upump.KindQueue:
		mgr := p.mgr
		p.queue.SetSignal(func() {
			p.ready.Store(true)
			mgr.wake()
		})
		// Drain once in case items were queued before the watch.
		p.ready.Store(true)
		p.mgr.queues = append(p.mgr.queues, p)
	}
	p.mgr.wake()
}

// Stop implements the upump.Pump interface.
func (p *pump) Stop() {
	if !p.started {
		return
	}
	p.started = false
	p.mgr.started--
	switch p.kind {
	case upump.KindIdler:
		p.mgr.idlers = removePump(p.mgr.idlers, p)
	case upump.KindTimer:
		p.mgr.timers.remove(p)
	case upump.KindFdRead, upump.KindFdWrite:
		p.mgr.fds = removePump(p.mgr.fds, p)
	case upump.KindSignal:
		p.mgr.sigPumps[p.sig] = removePump(p.mgr.sigPumps[p.sig], p)
	case upump.KindQueue:
		p.queue.SetSignal(nil)
		p.mgr.queues = removePump(p.mgr.queues, p)
	}
	p.mgr.wake()
}

// Free implements the upump.Pump interface.
func (p *pump) Free() {
	p.Stop()
	delete(p.mgr.pumps, p)
}

// Block implements the upump.Pump interface.
func (p *pump) Block() upump.Blocker {
	p.blockers++
	return &blocker{p: p}
}

// Blocked implements the upump.Pump interface.
func (p *pump) Blocked() bool {
	return p.blockers > 0
}

// Free implements the upump.Blocker interface.
func (b *blocker) Free() {
	if b.p == nil {
		return
	}
	b.p.blockers--
	b.p.mgr.wake()
	b.p = nil
}

func (p *pump) runnable() bool {
	return p.started && p.blockers == 0
}

func removePump(pumps []*pump, p *pump) []*pump {
	for i := range pumps {
		if pumps[i] == p {
			return append(pumps[:i], pumps[i+1:]...)
		}
	}
	return pumps
}

func (m *Mgr) watchSignals() {
	m.sigOnce.Do(func() {
		go func() {
			for sig := range m.sigCh {
				s, ok := sig.(syscall.Signal)
				if !ok {
					continue
				}
				m.sigMu.Lock()
				m.sigPending = append(m.sigPending, s)
				m.sigMu.Unlock()
				m.wake()
			}
		}()
	})
}

// Stop implements the upump.Mgr interface.
func (m *Mgr) Stop() {
	m.stopped.Store(true)
	m.wake()
}

// Run implements the upump.Mgr interface: it processes events until
// Stop is called or no started pump remains. A stopped Mgr may Run
// again; started pumps pick up where they left off.
func (m *Mgr) Run() error {
	m.stopped.Store(false)
	for !m.stopped.Load() && m.started > 0 {
		timeout := -1
		if m.idlersRunnable() {
			timeout = 0
		} else if next, ok := m.timers.nextRunnable(); ok {
			now := m.clock.Now()
			if next <= now {
				timeout = 0
			} else {
				timeout = int(uclock.Duration(next - now).Milliseconds())
				if timeout == 0 {
					timeout = 1
				}
			}
		}

		pollfds := []unix.PollFd{{Fd: int32(m.wakeR), Events: unix.POLLIN}}
		watched := []*pump{nil}
		for _, p := range m.fds {
			if !p.runnable() {
				continue
			}
			events := int16(unix.POLLIN)
			if p.kind == upump.KindFdWrite {
				events = unix.POLLOUT
			}
			pollfds = append(pollfds, unix.PollFd{Fd: int32(p.fd), Events: events})
			watched = append(watched, p)
		}

		n, err := unix.Poll(pollfds, timeout)
		if err != nil && err != unix.EINTR {
			return uerr.ErrUpump
		}

		if pollfds[0].Revents != 0 {
			m.drainWake()
		}
		if n > 0 {
			for i := 1; i < len(pollfds); i++ {
				p := watched[i]
				if pollfds[i].Revents == 0 || !p.runnable() {
					continue
				}
				p.cb(p)
			}
		}

		m.fireTimers()
		m.fireSignals()
		m.fireQueues()
		m.fireIdlers()
	}
	return nil
}

func (m *Mgr) idlersRunnable() bool {
	for _, p := range m.idlers {
		if p.runnable() {
			return true
		}
	}
	return false
}

func (m *Mgr) fireTimers() {
	now := m.clock.Now()
	var blocked []*pump
	for {
		next, ok := m.timers.next()
		if !ok || next > now {
			break
		}
		p := heap.Pop(&m.timers).(*pump)
		if !p.started {
			continue
		}
		if p.blockers > 0 {
			// Hold the deadline until unblocked.
			blocked = append(blocked, p)
			continue
		}
		if p.repeat != 0 {
			p.deadline = now + p.repeat
			heap.Push(&m.timers, p)
		} else {
			p.started = false
			m.started--
		}
		p.cb(p)
	}
	for _, p := range blocked {
		heap.Push(&m.timers, p)
	}
}

func (m *Mgr) fireSignals() {
	m.sigMu.Lock()
	pending := m.sigPending
	m.sigPending = nil
	m.sigMu.Unlock()
	for _, sig := range pending {
		for _, p := range append([]*pump(nil), m.sigPumps[sig]...) {
			if p.runnable() {
				p.cb(p)
			}
		}
	}
}

func (m *Mgr) fireQueues() {
	for _, p := range append([]*pump(nil), m.queues...) {
		if p.ready.Load() && p.runnable() {
			p.ready.Store(false)
			p.cb(p)
		}
	}
}

func (m *Mgr) fireIdlers() {
	for _, p := range append([]*pump(nil), m.idlers...) {
		if p.runnable() {
			p.cb(p)
		}
	}
}

// Close implements the upump.Mgr interface.
func (m *Mgr) Close() error {
	var err error
	signal.Stop(m.sigCh)
	if closeErr := unix.Close(m.wakeR); closeErr != nil {
		err = multierr.Append(err, closeErr)
	}
	if closeErr := unix.Close(m.wakeW); closeErr != nil {
		err = multierr.Append(err, closeErr)
	}
	return err
}

// timerHeap orders timer pumps by deadline.
type timerHeap []*pump

func (h timerHeap) Len() int            { return len(h) }
func (h timerHeap) Less(i, j int) bool  { return h[i].deadline < h[j].deadline }
func (h timerHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *timerHeap) Push(x interface{}) { *h = append(*h, x.(*pump)) }
func (h *timerHeap) Pop() interface{} {
	old := *h
	n := len(old)
	p := old[n-1]
	*h = old[:n-1]
	return p
}

func (h timerHeap) next() (uint64, bool) {
	if len(h) == 0 {
		return 0, false
	}
	return h[0].deadline, true
}

// nextRunnable returns the earliest deadline among unblocked timers, so
// a blocked timer at the head does not spin the loop.
func (h timerHeap) nextRunnable() (uint64, bool) {
	var (
		best  uint64
		found bool
	)
	for _, p := range h {
		if !p.runnable() {
			continue
		}
		if !found || p.deadline < best {
			best = p.deadline
			found = true
		}
	}
	return best, found
}

func (h *timerHeap) remove(p *pump) {
	for i := range *h {
		if (*h)[i] == p {
			heap.Remove(h, i)
			return
		}
	}
}

// vim: foldmethod=marker
