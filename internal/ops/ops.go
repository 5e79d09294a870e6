// Copyright (C) 2021 Magnus Karlsen
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.


package ops

import (
	"fmt"
	"io"
	"runtime"
	"github.com/klauspost/cpuid"
	"github.com/pbnjay/memory"
	"github.com/mkarlsen/flatfield/internal/fimg"
)

// An execution context for one pipeline invocation. Owns typed handles for
// every intermediate artifact the stages create, so intermediates are
// addressed explicitly rather than through a process-wide name registry.
// A context is owned by a single synchronous run and needs no locking
type Context struct {
	Log               io.Writer
	MemoryMB          int          // memory.TotalMemory()/1024/1024
	MaxThreads        int          // logical CPU cores; bounds per-plane blur parallelism
	KeepIntermediates bool

	// artifact handles, populated in stage order
	Split      []*fimg.Channel   // splitter output, indexed 0..C-1
	Background *fimg.Channel     // blurred duplicate of the target channel
	Ratio      *fimg.Channel     // floating point source/background ratio
	Enhanced   *fimg.Channel     // contrast-stretched ratio, working range [0,1]
	Quantized  []*fimg.Channel   // all channels at output bit depth
	Corrected  *fimg.Channel     // quantized corrected channel, pre-recombination

	released   bool
}

// Creates an execution context for a pipeline run, logging to the given writer
func NewContext(log io.Writer, keepIntermediates bool) *Context {
	maxThreads:=cpuid.CPU.LogicalCores
	if maxThreads<1 { maxThreads=runtime.GOMAXPROCS(0) }
	return &Context{
		Log               : log,
		MemoryMB          : int(memory.TotalMemory()/1024/1024),
		MaxThreads        : maxThreads,
		KeepIntermediates : keepIntermediates,
	}
}

// Releases intermediate artifacts at the end of a successful run, honoring
// KeepIntermediates. Idempotent: artifacts released once are not released or
// reported again. The final composite is never held by the context and thus
// never released here
func (c *Context) Release() {
	c.release(!c.KeepIntermediates)
}

// Releases all intermediate artifacts regardless of KeepIntermediates.
// Used when a run aborts, so no partially built artifacts remain reachable
func (c *Context) ReleaseAll() {
	c.release(true)
}

func (c *Context) release(drop bool) {
	if c.released { return }
	c.released=true
	if !drop {
		fmt.Fprintf(c.Log, "Keeping intermediate artifacts as requested\n")
		return
	}

	count:=0
	for i,ch:=range c.Split {
		if ch!=nil && ch.Data!=nil { ch.Data=nil; count++ }
		c.Split[i]=nil
	}
	c.Split=nil
	for i,ch:=range c.Quantized {
		if ch!=nil && ch.Data!=nil { ch.Data=nil; count++ }
		c.Quantized[i]=nil
	}
	c.Quantized=nil
	// Corrected aliases the quantized target channel, so its buffer may be gone already
	for _,ch:=range []**fimg.Channel{&c.Background, &c.Ratio, &c.Enhanced, &c.Corrected} {
		if *ch!=nil && (*ch).Data!=nil { (*ch).Data=nil; count++ }
		*ch=nil
	}
	fmt.Fprintf(c.Log, "Released %d intermediate artifacts\n", count)
}
