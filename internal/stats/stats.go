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


package stats

import (
	"fmt"
	"math"
	"sort"
	"github.com/valyala/fastrand"
	"gonum.org/v1/gonum/stat"
	"github.com/mkarlsen/flatfield/internal/qsort"
)

// Basic statistics on pixel data arrays
type BasicStats struct {
	Min    float32  // Minimum
	Max    float32  // Maximum
	Mean   float32  // Mean (average)
	StdDev float32  // Standard deviation (norm 2, sigma)
	Median float32  // Sampled approximate median
}

// Number of random samples for the approximate median of large arrays
const numMedianSamples = 128*1024

// Pretty print basic stats to string
func (s *BasicStats) String() string {
	return fmt.Sprintf("Min %.6g Max %.6g Mean %.6g StdDev %.6g Median %.6g",
	                   s.Min, s.Max,   s.Mean,   s.StdDev,   s.Median)
}

// Calculate basic statistics for a data array
func CalcBasicStats(data []float32) (s *BasicStats) {
	s=&BasicStats{}
	if len(data)==0 { return s }
	s.Min, s.Mean, s.Max=calcMinMeanMax(data)

	variance:=calcVariance(data, s.Mean)
	s.StdDev=float32(math.Sqrt(float64(variance)))

	s.Median=FastApproxMedian(data, numMedianSamples)
	return s
}

// Calculate minimum, mean and maximum of given data
func calcMinMeanMax(data []float32) (min, mean, max float32) {
	mmin, mmean, mmax:=data[0], float64(0), data[0]
	for _,v := range data {
		if v<mmin {
			mmin=v
		}
		if v>mmax {
			mmax=v
		}
		mmean+=float64(v)
	}
	return mmin, float32(mmean/float64(len(data))), mmax
}

// Calculate variance of given data from provided mean
func calcVariance(data []float32, mean float32) (result float64) {
	variance:=float64(0)
	for _,v :=range data {
		diff:=float64(v-mean)
		variance+=diff*diff
	}
	return variance/float64(len(data))
}

// Calculates fast approximate median of the (presumably large) data by randomly
// subsampling the given number of values and taking the median of that.
// Exact for arrays no larger than the sample count. Does not modify data
func FastApproxMedian(data []float32, numSamples int) float32 {
	if len(data)==0 { return 0 }
	samples:=make([]float32, numSamples)
	if len(data)<=numSamples {
		samples=samples[:len(data)]
		copy(samples, data)
	} else {
		max:=uint32(len(data))
		rng:=fastrand.RNG{}
		for i,_:=range samples {
			index:=rng.Uint32n(max)
			samples[i]=data[index]
		}
	}
	median:=qsort.QSelectMedianFloat32(samples)
	samples=nil
	return median
}

// Returns the lower and upper percentile clip bounds for the given total
// saturated percentage, split evenly across both tails: the s/2-th and the
// (100-s/2)-th percentile of the pooled value distribution.
// saturation 0 yields the exact minimum and maximum. Does not modify data
func PercentileBounds(data []float32, saturation float32) (lo, hi float32) {
	if len(data)==0 { return 0, 0 }

	sorted:=make([]float64, len(data))
	for i,d:=range data {
		sorted[i]=float64(d)
	}
	sort.Float64s(sorted)

	p:=float64(saturation)/200.0
	if p<0 { p=0 }
	if p>0.5 { p=0.5 }
	lo=float32(stat.Quantile(p,   stat.Empirical, sorted, nil))
	hi=float32(stat.Quantile(1-p, stat.Empirical, sorted, nil))
	sorted=nil
	return lo, hi
}
