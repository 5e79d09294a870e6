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
	"github.com/mkarlsen/flatfield/internal/fimg"
	"github.com/mkarlsen/flatfield/internal/gauss"
	"github.com/mkarlsen/flatfield/internal/ops"
	"github.com/mkarlsen/flatfield/internal/stats"
)

// Reported when the splitter fails to produce one intact stack per source
// channel. Any channels already produced are released before this is raised
type SplitIntegrityError struct {
	Channel int     // 1-based index of the offending channel
	Detail  string
}

func (e *SplitIntegrityError) Error() string {
	return fmt.Sprintf("split integrity violation on channel %d: %s", e.Channel, e.Detail)
}

// Reported when the recombination stage cannot merge the processed channels
// back into a composite
type RecombineError struct {
	Err error
}

func (e *RecombineError) Error() string {
	return fmt.Sprintf("recombination failed: %s", e.Err.Error())
}

func (e *RecombineError) Unwrap() error { return e.Err }


// The full illumination correction pipeline for one image and one resolved
// parameter set. Stages run strictly in order; on any stage error all
// intermediate artifacts are released before the error is returned
type Pipeline struct {
	Config *Config
}

func NewPipeline(cfg *Config) *Pipeline {
	return &Pipeline{Config: cfg}
}

// Runs the pipeline on the given source image, returning the corrected
// composite. The source image itself is never modified. On success,
// intermediates are released unless the context keeps them; on error,
// intermediates are always released
func (p *Pipeline) Run(c *ops.Context, f *fimg.Image) (*fimg.Image, error) {
	cfg:=p.Config
	fmt.Fprintf(c.Log, "Correcting %s %v image, target channel %d, sigma %.1f, saturation %.2f%%, output %d-bit\n",
	            f.DimensionsToString(), f.Depth, cfg.TargetChannel, cfg.BlurSigma, cfg.ContrastSaturation, cfg.OutputBits)

	if err:=OpSplit(c, f);       err!=nil { c.ReleaseAll(); return nil, err }
	if err:=OpBackground(c, cfg); err!=nil { c.ReleaseAll(); return nil, err }
	if err:=OpNormalize(c, cfg); err!=nil { c.ReleaseAll(); return nil, err }
	if err:=OpEnhance(c, cfg);   err!=nil { c.ReleaseAll(); return nil, err }
	if err:=OpQuantize(c, cfg);  err!=nil { c.ReleaseAll(); return nil, err }

	res, err:=OpRecombine(c)
	if err!=nil { c.ReleaseAll(); return nil, err }

	c.Release()
	return res, nil
}


// Decompose the source image into per-channel stacks and store them in the
// context. Each produced stack is verified against the source extent; an
// integrity failure releases the partial output and aborts
func OpSplit(c *ops.Context, f *fimg.Image) error {
	chans:=f.Split()
	for i,ch:=range chans {
		detail:=""
		if ch==nil {
			detail="no output produced"
		} else if ch.Width!=f.Width || ch.Height!=f.Height || ch.Slices!=f.Slices || ch.Frames!=f.Frames {
			detail=fmt.Sprintf("dimensions %s differ from source %s", ch.DimensionsToString(), f.DimensionsToString())
		} else if len(ch.Data)!=f.PixelsPerChannel() {
			detail=fmt.Sprintf("buffer holds %d pixels, source channel holds %d", len(ch.Data), f.PixelsPerChannel())
		}
		if detail!="" {
			for _,done:=range chans {  // release the partial split
				if done!=nil { done.Data=nil }
			}
			return &SplitIntegrityError{Channel: i+1, Detail: detail}
		}
	}
	c.Split=chans
	fmt.Fprintf(c.Log, "Split into %d channel stacks of %s\n", len(chans), chans[0].DimensionsToString())
	return nil
}

// Estimate the slowly varying illumination field of the target channel:
// duplicate it and blur each plane with an isotropic gaussian. The source
// channel stack in the context remains untouched
func OpBackground(c *ops.Context, cfg *Config) error {
	src:=c.Split[cfg.TargetChannel-1]
	bg:=fimg.NewChannelFromChannel(src)
	bg.Data=gauss.BlurStack(src.Data, src.Width, src.Height, cfg.BlurSigma, c.MaxThreads)
	bg.ClearStats()
	c.Background=bg

	s:=bg.Stats()
	fmt.Fprintf(c.Log, "Background estimate for channel %d with sigma %.1f: %s\n", cfg.TargetChannel, cfg.BlurSigma, s.String())
	return nil
}

// Normalize the target channel by its background estimate via pixelwise
// division, producing a floating point ratio stack. Zero background pixels
// map to zero rather than poisoning the output with infinities
func OpNormalize(c *ops.Context, cfg *Config) error {
	src, bg:=c.Split[cfg.TargetChannel-1], c.Background
	ratio:=fimg.NewChannel(src.Width, src.Height, src.Slices, src.Frames, fimg.DepthFloat)
	zeros:=0
	for i,b:=range bg.Data {
		if b==0 {
			ratio.Data[i]=0
			zeros++
		} else {
			ratio.Data[i]=src.Data[i]/b
		}
	}
	c.Ratio=ratio

	if zeros>0 {
		fmt.Fprintf(c.Log, "Normalized channel %d by its background; %d zero-background pixels set to 0\n", cfg.TargetChannel, zeros)
	} else {
		fmt.Fprintf(c.Log, "Normalized channel %d by its background: %s\n", cfg.TargetChannel, ratio.Stats().String())
	}
	return nil
}

// Stretch the ratio stack's contrast onto the working range [0,1] by clipping
// the given total percentage of extreme values, split across both tails, and
// rescaling linearly in between. The percentile bounds are computed once over
// the pooled values of all planes, so every plane is rescaled identically.
// A perfectly flat stack maps to all zeroes
func OpEnhance(c *ops.Context, cfg *Config) error {
	ratio:=c.Ratio
	lo, hi:=stats.PercentileBounds(ratio.Data, cfg.ContrastSaturation)

	enhanced:=fimg.NewChannel(ratio.Width, ratio.Height, ratio.Slices, ratio.Frames, fimg.DepthFloat)
	if hi==lo {
		fmt.Fprintf(c.Log, "Contrast stretch found flat data (bound %.6g); output set to 0\n", lo)
	} else {
		scale:=1/(hi-lo)
		for i,v:=range ratio.Data {
			v=(v-lo)*scale
			if v<0 { v=0 }
			if v>1 { v=1 }
			enhanced.Data[i]=v
		}
		fmt.Fprintf(c.Log, "Stretched contrast with %.2f%% saturation: bounds [%.6g, %.6g]\n", cfg.ContrastSaturation, lo, hi)
	}
	c.Enhanced=enhanced
	return nil
}

// Quantize every channel to the output bit depth: the enhanced stack replaces
// the target channel, all other channels pass through from the split.
// Quantization rounds to nearest and clips to the output value domain
func OpQuantize(c *ops.Context, cfg *Config) error {
	quantized:=make([]*fimg.Channel, len(c.Split))
	for i,ch:=range c.Split {
		if i==cfg.TargetChannel-1 {
			quantized[i]=c.Enhanced.Quantize(cfg.OutputBits)
		} else {
			quantized[i]=ch.Quantize(cfg.OutputBits)
		}
	}
	c.Quantized=quantized
	c.Corrected=quantized[cfg.TargetChannel-1]

	fmt.Fprintf(c.Log, "Quantized %d channels to %d-bit\n", len(quantized), cfg.OutputBits)
	return nil
}

// Merge the quantized channels back into a single composite image with the
// source channel order, all channels at the output bit depth
func OpRecombine(c *ops.Context) (*fimg.Image, error) {
	res, err:=fimg.NewImageFromChannels(c.Quantized)
	if err!=nil { return nil, &RecombineError{Err: err} }

	fmt.Fprintf(c.Log, "Recombined %s %v composite\n", res.DimensionsToString(), res.Depth)
	return res, nil
}


// Validates the source image against the channel count bounds, resolves the
// raw parameters and runs the full pipeline. The single entry point shared by
// the command line and the web interface
func Correct(c *ops.Context, f *fimg.Image, raw RawConfig) (*fimg.Image, *Config, error) {
	cfg, err:=ResolveParams(f.Channels, raw)
	if err!=nil { return nil, nil, err }
	c.KeepIntermediates=cfg.KeepIntermediates

	res, err:=NewPipeline(cfg).Run(c, f)
	if err!=nil { return nil, cfg, err }
	return res, cfg, nil
}
