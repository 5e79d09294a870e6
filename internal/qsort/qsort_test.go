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


package qsort

import (
	"testing"
	"github.com/valyala/fastrand"
)


func TestQSelectMedian(t *testing.T) {
	rng:=fastrand.RNG{}
	for i:=1; i<500; i++ {
		// prepare array of given length with a random permutation of 1..n
		arr:=make([]float32, i)
		for j:=0; j<len(arr); j++ {
			arr[j]=float32(j+1)
		}
		for j:=0; j<len(arr); j++ {
			k:=rng.Uint32n(uint32(len(arr)))
			arr[j], arr[k] = arr[k], arr[j]
		}

		// upper median for even lengths, as QSelectMedianFloat32 picks rank (n>>1)+1
		expect:=float32((i>>1)+1)
		if (i&1)!=0 {
			expect=float32((i+1)/2)
		}

		res:=QSelectMedianFloat32(arr)
		if res!=expect {
			t.Errorf("median(1..%d)=%f; want %f", i, res, expect)
		}
	}
}

func TestQSelectRanks(t *testing.T) {
	rng:=fastrand.RNG{}
	arr:=make([]float32, 257)
	for j:=0; j<len(arr); j++ {
		arr[j]=float32(j+1)
	}
	for j:=0; j<len(arr); j++ {
		k:=rng.Uint32n(uint32(len(arr)))
		arr[j], arr[k] = arr[k], arr[j]
	}

	for _,k:=range []int{1, 2, 64, 128, 200, 256, 257} {
		tmp:=make([]float32, len(arr))
		copy(tmp, arr)
		res:=QSelectFloat32(tmp, k)
		if res!=float32(k) {
			t.Errorf("rank %d of 1..257 = %f; want %d", k, res, k)
		}
	}
}
