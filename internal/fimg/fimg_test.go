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
	"testing"
)

// fill channel c with a value derived from all five coordinates
func fillTestImage(f *Image) {
	size:=f.Width*f.Height
	for c:=0; c<f.Channels; c++ {
		for t:=0; t<f.Frames; t++ {
			for z:=0; z<f.Slices; z++ {
				offset:=(t*f.Slices+z)*size
				for y:=0; y<f.Height; y++ {
					for x:=0; x<f.Width; x++ {
						f.Chan[c][offset+y*f.Width+x]=float32(c*100000+t*10000+z*1000+y*f.Width+x)
					}
				}
			}
		}
	}
}

func TestSplitIsLossless(t *testing.T) {
	f:=NewImage(5, 4, 3, 2, 2, Depth8)
	fillTestImage(f)

	chans:=f.Split()
	if len(chans)!=f.Channels {
		t.Fatalf("split produced %d channels; want %d", len(chans), f.Channels)
	}
	for c,ch:=range chans {
		if ch.Width!=f.Width || ch.Height!=f.Height || ch.Slices!=f.Slices || ch.Frames!=f.Frames {
			t.Errorf("channel %d dimensions %s; want %s", c+1, ch.DimensionsToString(), f.DimensionsToString())
		}
		if ch.Depth!=f.Depth {
			t.Errorf("channel %d depth %v; want %v", c+1, ch.Depth, f.Depth)
		}
		for i,v:=range ch.Data {
			if v!=f.Chan[c][i] {
				t.Fatalf("channel %d data[%d]=%f; want %f", c+1, i, v, f.Chan[c][i])
			}
		}
	}
}

func TestSplitCopiesData(t *testing.T) {
	f:=NewImage(3, 3, 2, 1, 1, Depth8)
	fillTestImage(f)

	chans:=f.Split()
	chans[0].Data[0]=9999
	if f.Chan[0][0]==9999 {
		t.Errorf("mutating a split channel changed the source image")
	}
}

func TestRecombineRoundtrip(t *testing.T) {
	f:=NewImage(4, 3, 3, 2, 1, Depth16)
	fillTestImage(f)

	out, err:=NewImageFromChannels(f.Split())
	if err!=nil { t.Fatalf("recombine: %s", err.Error()) }
	if out.Channels!=f.Channels || out.Width!=f.Width || out.Height!=f.Height ||
	   out.Slices!=f.Slices || out.Frames!=f.Frames || out.Depth!=f.Depth {
		t.Fatalf("recombined %s depth %v; want %s depth %v", out.DimensionsToString(), out.Depth, f.DimensionsToString(), f.Depth)
	}
	for c:=0; c<f.Channels; c++ {
		for i,v:=range out.Chan[c] {
			if v!=f.Chan[c][i] {
				t.Fatalf("channel %d data[%d]=%f; want %f", c+1, i, v, f.Chan[c][i])
			}
		}
	}
}

func TestRecombineRejectsMismatchedDimensions(t *testing.T) {
	a:=NewChannel(4, 4, 1, 1, Depth8)
	b:=NewChannel(5, 4, 1, 1, Depth8)
	if _, err:=NewImageFromChannels([]*Channel{a, b}); err==nil {
		t.Errorf("recombine accepted channels with mismatched dimensions")
	}
}

func TestRecombineRejectsMismatchedDepth(t *testing.T) {
	a:=NewChannel(4, 4, 1, 1, Depth8)
	b:=NewChannel(4, 4, 1, 1, Depth16)
	if _, err:=NewImageFromChannels([]*Channel{a, b}); err==nil {
		t.Errorf("recombine accepted channels with mismatched depth")
	}
}

func TestPlaneAddressing(t *testing.T) {
	ch:=NewChannel(2, 2, 3, 2, DepthFloat)
	for i,_:=range ch.Data {
		ch.Data[i]=float32(i)
	}
	if ch.Planes()!=6 { t.Errorf("planes=%d; want 6", ch.Planes()) }

	// plane (z=2, t=1) starts at (1*3+2)*4=20
	plane:=ch.Plane(2, 1)
	if len(plane)!=4 { t.Fatalf("len(plane)=%d; want 4", len(plane)) }
	if plane[0]!=20 { t.Errorf("plane[0]=%f; want 20", plane[0]) }
}
