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
	"math"
)

// Quantizes the channel to the given target bit depth in a newly allocated
// channel, leaving the source untouched. The channel's value domain
// [0, Depth.MaxValue()] is mapped linearly onto [0, 2^bits-1], rounding to
// nearest and clipping values outside the domain. bits must be 8 or 16
func (ch *Channel) Quantize(bits int) *Channel {
	out:=NewChannel(ch.Width, ch.Height, ch.Slices, ch.Frames, Depth(bits))
	maxOut:=float32(uint32(1)<<uint(bits)) - 1
	scale:=maxOut/ch.Depth.MaxValue()

	for i,d:=range ch.Data {
		v:=d*scale
		if v<0      { v=0      }
		if v>maxOut { v=maxOut }
		out.Data[i]=float32(math.Round(float64(v)))
	}
	return out
}
