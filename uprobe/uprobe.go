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

// Package uprobe contains the probe decorator library: chainable event
// catchers layered under an application's own probes. Log sinks, tag
// prefixes, capability providers auto-answering requests, prometheus
// event counters, the dejittering PLL and the split-output selector all
// live here.
//
// Decorators compose by construction order: each takes the next probe
// in the chain and owns that reference.
package uprobe

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"hz.tools/upipe"
	"hz.tools/upipe/uerr"
)

// PfxQuery recovers the tag of the nearest Pfx decorator on a pipe's
// chain; throw it, then read Name back.
type PfxQuery struct {
	upipe.EventBase

	Name string
}

// NewPfx returns a probe prepending a tag to every log line passing
// through. An empty name gets a short unique tag so concurrent unnamed
// pipes stay distinguishable in logs.
func NewPfx(next *upipe.Probe, name string) *upipe.Probe {
	if name == "" {
		name = "pipe-" + uuid.NewString()[:8]
	}
	return upipe.NewProbe(func(probe *upipe.Probe, pipe upipe.Pipe, event upipe.Event) error {
		switch ev := event.(type) {
		case *upipe.Log:
			err := probe.ThrowNext(pipe, &upipe.Log{
				Level: ev.Level,
				Msg:   fmt.Sprintf("[%s] %s", name, ev.Msg),
			})
			if errors.Is(err, uerr.ErrUnhandled) {
				return nil
			}
			return err
		case *PfxQuery:
			ev.Name = name
			return nil
		default:
			return uerr.ErrUnhandled
		}
	}, next)
}

// PipeName returns the log tag of the nearest Pfx decorator on the
// pipe's probe chain.
func PipeName(pipe upipe.Pipe) (string, bool) {
	q := &PfxQuery{}
	if err := upipe.Throw(pipe, q); err != nil {
		return "", false
	}
	return q.Name, q.Name != ""
}

// vim: foldmethod=marker
