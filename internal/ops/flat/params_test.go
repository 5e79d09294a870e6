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


package flat

import (
	"math"
	"testing"
)

func TestResolveParamsChannelBounds(t *testing.T) {
	for _,channels:=range []int{-1, 0, 1, 8, 100} {
		_, err:=ResolveParams(channels, NewRawConfigDefault())
		if err==nil {
			t.Errorf("channels=%d: accepted; want rejection", channels)
			continue
		}
		if _, ok:=err.(*ValidationError); !ok {
			t.Errorf("channels=%d: error type %T; want *ValidationError", channels, err)
		}
	}
	for channels:=2; channels<=MaxChannels; channels++ {
		if _, err:=ResolveParams(channels, NewRawConfigDefault()); err!=nil {
			t.Errorf("channels=%d: rejected with %s; want acceptance", channels, err.Error())
		}
	}
}

func TestResolveParamsClampsInput(t *testing.T) {
	tests:=[]struct{
		name string
		raw  RawConfig
		want Config
	}{
		{"defaults",
		 NewRawConfigDefault(),
		 Config{1, DefaultBlurSigma, DefaultContrastSaturation, DefaultOutputBits, false}},
		{"fractional channel truncates",
		 RawConfig{2.9, 10, 1, 8, false},
		 Config{2, 10, 1, 8, false}},
		{"channel below range",
		 RawConfig{-3, 10, 1, 8, false},
		 Config{1, 10, 1, 8, false}},
		{"channel above range",
		 RawConfig{99, 10, 1, 8, false},
		 Config{3, 10, 1, 8, false}},
		{"zero sigma replaced",
		 RawConfig{1, 0, 1, 8, false},
		 Config{1, DefaultBlurSigma, 1, 8, false}},
		{"negative sigma replaced",
		 RawConfig{1, -5, 1, 8, false},
		 Config{1, DefaultBlurSigma, 1, 8, false}},
		{"negative saturation floored",
		 RawConfig{1, 10, -2, 8, false},
		 Config{1, 10, 0, 8, false}},
		{"saturation at 100 replaced",
		 RawConfig{1, 10, 100, 8, false},
		 Config{1, 10, DefaultContrastSaturation, 8, false}},
		{"unsupported bit depth replaced",
		 RawConfig{1, 10, 1, 12, true},
		 Config{1, 10, 1, DefaultOutputBits, true}},
	}
	for _,tc:=range tests {
		cfg, err:=ResolveParams(3, tc.raw)
		if err!=nil { t.Errorf("%s: rejected with %s", tc.name, err.Error()); continue }
		if *cfg!=tc.want {
			t.Errorf("%s: resolved %+v; want %+v", tc.name, *cfg, tc.want)
		}
	}
}

func TestClampChannel(t *testing.T) {
	tests:=[]struct{ x float64; n, want int }{
		{1,             5, 1},
		{5,             5, 5},
		{3.7,           5, 3},
		{0.5,           5, 1},
		{-2,            5, 1},
		{6,             5, 5},
		{1e300,         5, 5},
		{math.NaN(),    5, 1},
		{math.Inf(1),   5, 5},
		{math.Inf(-1),  5, 1},
	}
	for _,tc:=range tests {
		if got:=ClampChannel(tc.x, tc.n); got!=tc.want {
			t.Errorf("ClampChannel(%v, %d)=%d; want %d", tc.x, tc.n, got, tc.want)
		}
	}
}
