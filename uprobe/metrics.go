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

package uprobe

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"hz.tools/upipe"
	"hz.tools/upipe/uerr"
)

// NewMetrics returns a transparent probe counting the events passing
// through it: a counter vector by event type, a fatal counter and a
// live-pipe gauge driven by Ready/Dead. Every event is passed on
// untouched.
func NewMetrics(next *upipe.Probe, reg prometheus.Registerer, namespace string) *upipe.Probe {
	factory := promauto.With(reg)
	events := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "probe",
		Name:      "events_total",
		Help:      "Events thrown through this probe chain, by type.",
	}, []string{"event"})
	fatals := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "probe",
		Name:      "fatal_errors_total",
		Help:      "Fatal errors surfaced through this probe chain.",
	})
	pipes := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "probe",
		Name:      "pipes_live",
		Help:      "Pipes constructed and not yet released.",
	})

	return upipe.NewProbe(func(probe *upipe.Probe, pipe upipe.Pipe, event upipe.Event) error {
		events.WithLabelValues(eventName(event)).Inc()
		switch event.(type) {
		case *upipe.Ready:
			pipes.Inc()
		case *upipe.Dead:
			pipes.Dec()
		case *upipe.Fatal:
			fatals.Inc()
		}
		return uerr.ErrUnhandled
	}, next)
}

func eventName(event upipe.Event) string {
	switch event.(type) {
	case *upipe.Ready:
		return "ready"
	case *upipe.Dead:
		return "dead"
	case *upipe.Log:
		return "log"
	case *upipe.Fatal:
		return "fatal"
	case *upipe.ErrorThrown:
		return "error"
	case *upipe.NewFlowDef:
		return "new-flow-def"
	case *upipe.NeedOutput:
		return "need-output"
	case *upipe.NeedUpumpMgr:
		return "need-upump-mgr"
	case *upipe.ProvideRequest:
		return "provide-request"
	case *upipe.SourceEnd:
		return "source-end"
	case *upipe.SyncAcquired:
		return "sync-acquired"
	case *upipe.SyncLost:
		return "sync-lost"
	case *upipe.ClockRef:
		return "clock-ref"
	case *upipe.ClockTs:
		return "clock-ts"
	case *upipe.NewRap:
		return "new-rap"
	case *upipe.SplitUpdate:
		return "split-update"
	case *upipe.ProbeUref:
		return "probe-uref"
	default:
		return "other"
	}
}

// vim: foldmethod=marker
