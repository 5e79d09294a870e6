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


package fimg

import (
	"fmt"
	"github.com/mkarlsen/flatfield/internal/stats"
)

// Bit depth of a pixel value domain. Positive values are integral bits per
// pixel, negative values floating point, following the FITS Bitpix convention
type Depth int32

const (
	Depth8     Depth =   8
	Depth16    Depth =  16
	Depth32    Depth =  32
	DepthFloat Depth = -32
)

// Returns the maximum representable value of the depth's value domain.
// Floating point data is kept normalized to [0,1], so its maximum is 1
func (d Depth) MaxValue() float32 {
	switch d {
	case Depth8:
		return 255
	case Depth16:
		return 65535
	case Depth32:
		return 4294967295
	default:
		return 1
	}
}

func (d Depth) String() string {
	if d<0 { return fmt.Sprintf("%d-bit float", -d) }
	return fmt.Sprintf("%d-bit", d)
}

// A multichannel image: C channels of equal width x height x slices x frames
// extent, each channel an independently addressable pixel buffer.
// Pixel storage is always float32; Depth describes the value domain
type Image struct {
	Width    int
	Height   int
	Channels int
	Slices   int      // Z axis
	Frames   int      // T axis
	Depth    Depth
	Chan     [][]float32  // Chan[c] holds Width*Height*Slices*Frames values
}

// A single channel's full (Z x T)-plane stack, with its own bit depth.
// Plane (z,t) starts at offset (t*Slices+z)*Width*Height
type Channel struct {
	Width  int
	Height int
	Slices int
	Frames int
	Depth  Depth
	Data   []float32

	stats  *stats.BasicStats // lazily calculated
}

// Creates a multichannel image of the given extent with zeroed channel buffers
func NewImage(width, height, channels, slices, frames int, depth Depth) *Image {
	chans:=make([][]float32, channels)
	for c,_:=range chans {
		chans[c]=make([]float32, width*height*slices*frames)
	}
	return &Image{
		Width    : width,
		Height   : height,
		Channels : channels,
		Slices   : slices,
		Frames   : frames,
		Depth    : depth,
		Chan     : chans,
	}
}

func (f *Image) DimensionsToString() string {
	return fmt.Sprintf("%dx%dx%d [Z=%d, T=%d]", f.Width, f.Height, f.Channels, f.Slices, f.Frames)
}

// Number of pixels per channel
func (f *Image) PixelsPerChannel() int {
	return f.Width*f.Height*f.Slices*f.Frames
}

// Decompose the image into C independent single-channel stacks.
// Splitting is lossless: each output pixel equals the source pixel at the
// same (channel, x, y, z, t) coordinate. Channel buffers are copied, so the
// source image remains untouched by downstream stages
func (f *Image) Split() []*Channel {
	chans:=make([]*Channel, f.Channels)
	for c:=0; c<f.Channels; c++ {
		data:=make([]float32, len(f.Chan[c]))
		copy(data, f.Chan[c])
		chans[c]=&Channel{
			Width  : f.Width,
			Height : f.Height,
			Slices : f.Slices,
			Frames : f.Frames,
			Depth  : f.Depth,
			Data   : data,
		}
	}
	return chans
}

// Combine single channel stacks into one multichannel composite image.
// All channels must share dimensions and bit depth, else an error is returned.
// Channel data is copied; the composite owns its buffers
func NewImageFromChannels(chans []*Channel) (*Image, error) {
	if len(chans)==0 { return nil, fmt.Errorf("no channels to combine") }
	ref:=chans[0]
	for i,ch:=range chans {
		if ch==nil {
			return nil, fmt.Errorf("channel %d: missing", i+1)
		}
		if ch.Width!=ref.Width || ch.Height!=ref.Height || ch.Slices!=ref.Slices || ch.Frames!=ref.Frames {
			return nil, fmt.Errorf("channel %d: dimensions %dx%d [Z=%d, T=%d] differ from channel 1 dimensions %dx%d [Z=%d, T=%d]",
				i+1, ch.Width, ch.Height, ch.Slices, ch.Frames, ref.Width, ref.Height, ref.Slices, ref.Frames)
		}
		if ch.Depth!=ref.Depth {
			return nil, fmt.Errorf("channel %d: depth %v differs from channel 1 depth %v", i+1, ch.Depth, ref.Depth)
		}
	}

	img:=NewImage(ref.Width, ref.Height, len(chans), ref.Slices, ref.Frames, ref.Depth)
	for c,ch:=range chans {
		copy(img.Chan[c], ch.Data)
	}
	return img, nil
}


// Creates a single channel stack of the given extent with a zeroed buffer
func NewChannel(width, height, slices, frames int, depth Depth) *Channel {
	return &Channel{
		Width  : width,
		Height : height,
		Slices : slices,
		Frames : frames,
		Depth  : depth,
		Data   : make([]float32, width*height*slices*frames),
	}
}

// Creates a deep copy of the given channel
func NewChannelFromChannel(ch *Channel) *Channel {
	dup:=NewChannel(ch.Width, ch.Height, ch.Slices, ch.Frames, ch.Depth)
	copy(dup.Data, ch.Data)
	return dup
}

func (ch *Channel) DimensionsToString() string {
	return fmt.Sprintf("%dx%d [Z=%d, T=%d]", ch.Width, ch.Height, ch.Slices, ch.Frames)
}

// Number of pixels in one 2D plane
func (ch *Channel) PlaneSize() int {
	return ch.Width*ch.Height
}

// Number of 2D planes in the stack
func (ch *Channel) Planes() int {
	return ch.Slices*ch.Frames
}

// Returns the 2D plane at the given slice and frame as a subslice of the channel data
func (ch *Channel) Plane(z, t int) []float32 {
	size:=ch.PlaneSize()
	offset:=(t*ch.Slices+z)*size
	return ch.Data[offset:offset+size]
}

// Returns basic statistics for the channel data, calculating them on first use
func (ch *Channel) Stats() *stats.BasicStats {
	if ch.stats==nil {
		ch.stats=stats.CalcBasicStats(ch.Data)
	}
	return ch.stats
}

// Invalidates cached statistics after pixel mutations
func (ch *Channel) ClearStats() {
	ch.stats=nil
}
