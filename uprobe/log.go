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
	"fmt"
	"io"

	"go.uber.org/zap"

	"hz.tools/upipe"
	"hz.tools/upipe/uerr"
)

// NewZap returns a probe sinking log events at or above min into a zap
// logger. Fatal and error events are logged too, then passed on so the
// application still sees them.
func NewZap(next *upipe.Probe, logger *zap.Logger, min upipe.LogLevel) *upipe.Probe {
	sugar := logger.Sugar()
	return upipe.NewProbe(func(probe *upipe.Probe, pipe upipe.Pipe, event upipe.Event) error {
		switch ev := event.(type) {
		case *upipe.Log:
			if ev.Level < min {
				return nil
			}
			switch ev.Level {
			case upipe.LogVerbose, upipe.LogDebug:
				sugar.Debug(ev.Msg)
			case upipe.LogNotice, upipe.LogInfo:
				sugar.Info(ev.Msg)
			case upipe.LogWarning:
				sugar.Warn(ev.Msg)
			default:
				sugar.Error(ev.Msg)
			}
			return nil
		case *upipe.Fatal:
			sugar.Errorw("fatal pipe error", zap.Error(ev.Err))
			return uerr.ErrUnhandled
		case *upipe.ErrorThrown:
			sugar.Errorw("pipe error", zap.Error(ev.Err))
			return uerr.ErrUnhandled
		default:
			return uerr.ErrUnhandled
		}
	}, next)
}

// NewWriter returns a probe printing log events at or above min to a
// writer, one "level: message" line each.
func NewWriter(next *upipe.Probe, w io.Writer, min upipe.LogLevel) *upipe.Probe {
	return upipe.NewProbe(func(probe *upipe.Probe, pipe upipe.Pipe, event upipe.Event) error {
		ev, ok := event.(*upipe.Log)
		if !ok {
			return uerr.ErrUnhandled
		}
		if ev.Level < min {
			return nil
		}
		fmt.Fprintf(w, "%s: %s\n", ev.Level, ev.Msg)
		return nil
	}, next)
}

// vim: foldmethod=marker
