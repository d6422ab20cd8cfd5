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
	"sync"

	"github.com/kelseyhightower/envconfig"

	"hz.tools/upipe"
	"hz.tools/upipe/ubuf"
	"hz.tools/upipe/uerr"
	"hz.tools/upipe/umem"
)

// UbufMemConfig tunes the buffer managers the UbufMem probe allocates.
// Load from the environment with UbufMemConfigFromEnv, or start from
// the zero value.
type UbufMemConfig struct {
	// PoolDepth bounds the recycling pools of allocated managers.
	PoolDepth int `envconfig:"POOL_DEPTH" default:"16"`

	// Prepend and Append are the block margins, in bytes.
	Prepend int `envconfig:"PREPEND" default:"32"`
	Append  int `envconfig:"APPEND" default:"32"`

	// Align is the block alignment, in bytes.
	Align int `envconfig:"ALIGN" default:"16"`

	// PicMgr and SoundMgr, when set, answer picture and sound flows;
	// their plane layouts cannot be derived from a flow definition
	// string alone.
	PicMgr   *ubuf.PicMgr   `ignored:"true"`
	SoundMgr *ubuf.SoundMgr `ignored:"true"`
}

// UbufMemConfigFromEnv loads the tunables from UPIPE_UBUF_MEM_*
// environment variables.
func UbufMemConfigFromEnv() (UbufMemConfig, error) {
	var cfg UbufMemConfig
	if err := envconfig.Process("upipe_ubuf_mem", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// NewUbufMem returns a probe answering buffer-manager and flow-format
// requests by allocating shared-memory buffer managers over the
// provided storage backend. Block managers are allocated on demand and
// cached; picture and sound flows are answered when the config carries
// managers for them.
func NewUbufMem(next *upipe.Probe, mem umem.Mgr, cfg UbufMemConfig) *upipe.Probe {
	if mem == nil {
		mem = umem.NewHeapMgr()
	}
	var (
		mu       sync.Mutex
		blockMgr *ubuf.BlockMgr
	)
	block := func() *ubuf.BlockMgr {
		mu.Lock()
		defer mu.Unlock()
		if blockMgr == nil {
			blockMgr = ubuf.NewBlockMgr(ubuf.BlockMgrConfig{
				Depth:   cfg.PoolDepth,
				Prepend: cfg.Prepend,
				Append:  cfg.Append,
				Align:   cfg.Align,
				Mem:     mem,
			})
		}
		return blockMgr
	}

	return upipe.NewProbe(func(probe *upipe.Probe, pipe upipe.Pipe, event upipe.Event) error {
		ev, ok := event.(*upipe.ProvideRequest)
		if !ok {
			return uerr.ErrUnhandled
		}
		req := ev.Request
		switch req.Kind {
		case upipe.RequestUbufMgr:
			def, ok := req.Flow.FlowDef()
			if !ok {
				return uerr.ErrInvalid
			}
			flowFormat, err := req.Flow.Dup()
			if err != nil {
				return err
			}
			var mgr ubuf.Mgr
			switch {
			case req.Flow.MatchDef("block."):
				mgr = block()
			case req.Flow.MatchDef("pic.") && cfg.PicMgr != nil:
				mgr = cfg.PicMgr
			case req.Flow.MatchDef("sound.") && cfg.SoundMgr != nil:
				mgr = cfg.SoundMgr
			default:
				flowFormat.Free()
				upipe.Warn(pipe, "no buffer manager for flow "+def)
				return uerr.ErrUnhandled
			}
			return req.ProvideUbufMgr(mgr, flowFormat)

		case upipe.RequestFlowFormat:
			flowFormat, err := req.Flow.Dup()
			if err != nil {
				return err
			}
			return req.ProvideFlowFormat(flowFormat)

		default:
			return uerr.ErrUnhandled
		}
	}, next)
}

// vim: foldmethod=marker
