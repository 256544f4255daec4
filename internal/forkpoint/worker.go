// Package forkpoint offloads ancestor-check queries to a background
// goroutine so interactive rendering never waits on a process spawn.
package forkpoint

import (
	"errors"
	"sync"

	"github.com/kalkin/glv/internal/git"
	"github.com/kalkin/glv/internal/models"
)

// queueSize bounds the request queue. One request is issued per visible
// merge commit, so a burst larger than this applies backpressure at Send
// instead of growing memory.
const queueSize = 64

// Answer is the outcome of one ancestor check.
type Answer int

const (
	AnswerNo Answer = iota
	AnswerYes
	// AnswerUnknown means the query failed. The worker reports it instead
	// of dying, otherwise every later fork-point resolution would stall.
	AnswerUnknown
)

// Request asks whether Ancestor is an ancestor of Descendant.
type Request struct {
	Ancestor   models.Oid
	Descendant models.Oid
	WorkingDir string
}

// Response answers one request. Oid echoes the request's Ancestor; callers
// reconcile by matching on it, responses are not ordered.
type Response struct {
	Oid   models.Oid
	Value Answer
}

// ErrNoResponse means no response has arrived yet.
var ErrNoResponse = errors.New("no fork point response pending")

// ErrClosed means the worker has shut down.
var ErrClosed = errors.New("fork point worker closed")

// Worker services ancestor checks on a single long-lived goroutine. It
// holds no state across requests.
type Worker struct {
	requests  chan Request
	responses chan Response
	closeOnce sync.Once
}

// NewWorker starts the worker goroutine. It lives until Close.
func NewWorker() *Worker {
	w := &Worker{
		requests:  make(chan Request, queueSize),
		responses: make(chan Response, queueSize),
	}
	go w.loop()
	return w
}

func (w *Worker) loop() {
	for req := range w.requests {
		value := AnswerUnknown
		if ok, err := git.IsAncestor(req.WorkingDir, req.Ancestor, req.Descendant); err == nil {
			if ok {
				value = AnswerYes
			} else {
				value = AnswerNo
			}
		}
		w.deliver(Response{Oid: req.Ancestor, Value: value})
	}
	close(w.responses)
}

// deliver hands a response to the caller without ever blocking the loop.
// When the caller has stopped draining and the buffer is full, the oldest
// answer is shed so the loop keeps moving and Close can always reach it.
func (w *Worker) deliver(resp Response) {
	select {
	case w.responses <- resp:
		return
	default:
	}
	select {
	case <-w.responses:
	default:
	}
	select {
	case w.responses <- resp:
	default:
	}
}

// Send enqueues a request. It only blocks when the bounded queue is full.
func (w *Worker) Send(req Request) {
	w.requests <- req
}

// TryRecv polls for a response without blocking. It returns ErrNoResponse
// when nothing has arrived and ErrClosed once the worker is gone and
// drained.
func (w *Worker) TryRecv() (Response, error) {
	select {
	case resp, ok := <-w.responses:
		if !ok {
			return Response{}, ErrClosed
		}
		return resp, nil
	default:
		return Response{}, ErrNoResponse
	}
}

// Close stops the worker once the queued requests are serviced.
func (w *Worker) Close() {
	w.closeOnce.Do(func() { close(w.requests) })
}

// Checker satisfies the parser's ancestor interface by enqueueing the
// check and reporting false right away. The caller applies the real answer
// when it polls the worker, trading a one-tick-late fork-point glyph for a
// render loop that never blocks.
type Checker struct {
	Worker *Worker
}

func (c *Checker) IsAncestor(workingDir string, ancestor, descendant models.Oid) (bool, error) {
	c.Worker.Send(Request{Ancestor: ancestor, Descendant: descendant, WorkingDir: workingDir})
	return false, nil
}
