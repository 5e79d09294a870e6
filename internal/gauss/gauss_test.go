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


package gauss

import (
	"math"
	"testing"
)

type gaussianKernel1DTestCase struct {
	Sigma   float32
	Kernel  []float32
}

func TestGaussianKernel1D(t *testing.T) {
	epsilon:=1e-5
	tcs:=[]gaussianKernel1DTestCase{
		gaussianKernel1DTestCase{1.0, []float32{0.27901, 0.44198, 0.27901}},
		gaussianKernel1DTestCase{2.0, []float32{0.028532, 0.067234, 0.124009, 0.179044, 0.20236, 0.179044, 0.124009, 0.067234, 0.028532}},
	}

	for _,tc:=range tcs {
		sigma :=tc.Sigma
		kernel:=GaussianKernel1D(sigma)
		if len(kernel)!=len(tc.Kernel) {
			t.Errorf("sigma=%f len(kernel)=%d; want %d", sigma, len(kernel), len(tc.Kernel))
			continue
		}
		sum   :=float32(0)
		for i,k :=range(kernel) {
			if math.Abs(float64(k-tc.Kernel[i]))>epsilon { t.Errorf("sigma=%f k[%d]=%f; want %f", sigma, i, k, tc.Kernel[i]) }
			sum+=k
		}
		if math.Abs(float64(sum-1))>epsilon { t.Errorf("sigma=%f sum=%f; want 1", sigma, sum) }
	}
}

// Edge replication must keep a constant image exactly constant, including at the borders
func TestGaussFilter2DConstantImage(t *testing.T) {
	epsilon:=1e-5
	width, height:=16, 11
	data:=make([]float32, width*height)
	for i,_:=range data {
		data[i]=42
	}
	res:=make([]float32, len(data))
	tmp:=make([]float32, len(data))
	GaussFilter2D(res, tmp, data, width, 3.0)
	for i,r:=range res {
		if math.Abs(float64(r-42))>epsilon {
			t.Errorf("res[%d]=%f; want 42", i, r)
		}
	}
}

// Blurring preserves total flux away from extreme sigmas, and flattens gradients
func TestGaussFilter2DFlattens(t *testing.T) {
	width, height:=32, 32
	data:=make([]float32, width*height)
	data[(height/2)*width+width/2]=1  // single bright pixel

	res:=make([]float32, len(data))
	tmp:=make([]float32, len(data))
	GaussFilter2D(res, tmp, data, width, 2.0)

	peak:=res[(height/2)*width+width/2]
	if peak>=1 { t.Errorf("peak=%f; want <1", peak) }
	if peak<=0 { t.Errorf("peak=%f; want >0", peak) }

	sum:=float32(0)
	for _,r:=range res { sum+=r }
	if math.Abs(float64(sum-1))>1e-4 {
		t.Errorf("flux=%f; want 1", sum)
	}
}

func TestBlurStackPlaneIndependence(t *testing.T) {
	width, height, planes:=8, 8, 3
	data:=make([]float32, width*height*planes)
	// plane p is constant p+1, so any cross-plane blending would shift the values
	for p:=0; p<planes; p++ {
		for i:=0; i<width*height; i++ {
			data[p*width*height+i]=float32(p+1)
		}
	}

	res:=BlurStack(data, width, height, 2.0, 4)
	for p:=0; p<planes; p++ {
		for i:=0; i<width*height; i++ {
			r:=res[p*width*height+i]
			if math.Abs(float64(r-float32(p+1)))>1e-5 {
				t.Errorf("plane %d res[%d]=%f; want %d", p, i, r, p+1)
			}
		}
	}
}
