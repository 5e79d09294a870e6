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

func TestQuantizeFloatTo8Bit(t *testing.T) {
	ch:=NewChannel(3, 2, 1, 1, DepthFloat)
	ch.Data=[]float32{0, 0.5, 1, -0.25, 2.5, 0.999}

	out:=ch.Quantize(8)
	if out.Depth!=Depth8 { t.Errorf("depth=%v; want %v", out.Depth, Depth8) }
	want:=[]float32{0, 128, 255, 0, 255, 255}  // round(0.5*255)=round(127.5)=128
	for i,w:=range want {
		if out.Data[i]!=w {
			t.Errorf("data[%d]=%f; want %f", i, out.Data[i], w)
		}
	}
}

func TestQuantize8BitTo16Bit(t *testing.T) {
	ch:=NewChannel(2, 2, 1, 1, Depth8)
	ch.Data=[]float32{0, 1, 128, 255}

	out:=ch.Quantize(16)
	if out.Depth!=Depth16 { t.Errorf("depth=%v; want %v", out.Depth, Depth16) }
	want:=[]float32{0, 257, 32896, 65535}  // 65535/255=257 per 8-bit step
	for i,w:=range want {
		if out.Data[i]!=w {
			t.Errorf("data[%d]=%f; want %f", i, out.Data[i], w)
		}
	}
}

func TestQuantizeClipsOutOfRangeInputs(t *testing.T) {
	for _,bits:=range []int{8, 16} {
		maxOut:=float32(uint32(1)<<uint(bits))-1
		ch:=NewChannel(3, 2, 1, 1, DepthFloat)
		ch.Data=[]float32{-1e9, -1, 0.5, 1e9, 3.5e8, 100}

		out:=ch.Quantize(bits)
		for i,v:=range out.Data {
			if v<0 || v>maxOut {
				t.Errorf("bits=%d data[%d]=%f outside [0,%f]", bits, i, v, maxOut)
			}
		}
	}
}

func TestQuantizeLeavesSourceUntouched(t *testing.T) {
	ch:=NewChannel(2, 1, 1, 1, Depth8)
	ch.Data=[]float32{17, 42}
	_=ch.Quantize(8)
	if ch.Data[0]!=17 || ch.Data[1]!=42 {
		t.Errorf("quantize modified its source: %v", ch.Data)
	}
	if ch.Depth!=Depth8 {
		t.Errorf("quantize changed source depth to %v", ch.Depth)
	}
}
