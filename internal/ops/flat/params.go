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
	"fmt"
	"math"
)

// Upper bound on the channel count the recombination stage supports.
// A stage limit, not an algorithmic one
const MaxChannels = 7

// Default parameter values, matching the configuration surface
const (
	DefaultBlurSigma          = float32(50)
	DefaultContrastSaturation = float32(0.35)
	DefaultOutputBits         = 16
)

// Reported when the source image's channel count is outside [2, MaxChannels].
// Raised before any image is touched
type ValidationError struct {
	Channels int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("channel count %d outside [2, %d], nothing to correct", e.Channels, MaxChannels)
}

// Raw, unvalidated user input for one correction run
type RawConfig struct {
	TargetChannel      float64 `json:"targetChannel"`      // 1-based; clamped, fractional input accepted
	BlurSigma          float32 `json:"blurSigma"`          // background smoothing strength in pixels
	ContrastSaturation float32 `json:"contrastSaturation"` // total clipped percentage, split across both tails
	OutputBits         int     `json:"outputBits"`         // 8 or 16
	KeepIntermediates  bool    `json:"keepIntermediates"`
}

func NewRawConfigDefault() RawConfig {
	return RawConfig{
		TargetChannel      : 1,
		BlurSigma          : DefaultBlurSigma,
		ContrastSaturation : DefaultContrastSaturation,
		OutputBits         : DefaultOutputBits,
		KeepIntermediates  : false,
	}
}

// Validated, immutable parameters for one correction run
type Config struct {
	TargetChannel      int     `json:"targetChannel"`
	BlurSigma          float32 `json:"blurSigma"`
	ContrastSaturation float32 `json:"contrastSaturation"`
	OutputBits         int     `json:"outputBits"`
	KeepIntermediates  bool    `json:"keepIntermediates"`
}

// Validates the channel count and clamps raw user input into a resolved Config.
// Rejects with *ValidationError if channels is outside [2, MaxChannels]; all
// other inputs are permissively clamped onto their valid ranges, never rejected
func ResolveParams(channels int, raw RawConfig) (*Config, error) {
	if channels<2 || channels>MaxChannels {
		return nil, &ValidationError{Channels: channels}
	}

	sigma:=raw.BlurSigma
	if !(sigma>0) { sigma=DefaultBlurSigma }  // also catches NaN

	saturation:=raw.ContrastSaturation
	if !(saturation>=0)   { saturation=0 }    // also catches NaN
	if saturation>=100    { saturation=DefaultContrastSaturation }

	bits:=raw.OutputBits
	if bits!=8 && bits!=16 { bits=DefaultOutputBits }

	return &Config{
		TargetChannel      : ClampChannel(raw.TargetChannel, channels),
		BlurSigma          : sigma,
		ContrastSaturation : saturation,
		OutputBits         : bits,
		KeepIntermediates  : raw.KeepIntermediates,
	}, nil
}

// Clamps a requested 1-based channel index into [1, n], truncating fractional
// input toward zero. Out of range and non-finite values are bounded, not rejected
func ClampChannel(x float64, n int) int {
	if math.IsNaN(x) || x<1 { return 1 }
	if x>float64(n)         { return n }
	return int(x)  // truncate toward zero
}
