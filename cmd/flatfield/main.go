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

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/pprof"
	"strings"
	"time"
	"github.com/mkarlsen/flatfield/internal/fimg"
	"github.com/mkarlsen/flatfield/internal/ops"
	"github.com/mkarlsen/flatfield/internal/ops/flat"
	"github.com/mkarlsen/flatfield/internal/rest"
)

const version = "0.1.2"

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to `file`")

var out  = flag.String("out", "out.tif", "save corrected channels to `file`, %d receives the channel number")
var jpg  = flag.String("jpg", "%auto", "save 8bit hue-blended preview of output as JPEG to `file`. `%auto` replaces suffix of output file with .jpg")

var channel    = flag.Float64("channel", 1, "1-based channel to correct; out of range values are clamped")
var sigma      = flag.Float64("sigma", float64(flat.DefaultBlurSigma), "gaussian blur sigma in pixels for the background estimate")
var saturation = flag.Float64("saturation", float64(flat.DefaultContrastSaturation), "total percentage of extreme values to clip during contrast stretch")
var bits       = flag.Int("bits", flat.DefaultOutputBits, "output bit depth, 8 or 16")
var keep       = flag.Bool("keep", false, "keep intermediate artifacts instead of releasing them")

var chroot = flag.String("chroot", "", "serve: change filesystem root to `directory` before serving (requires root)")
var setuid = flag.Int("setuid", -1, "serve: change user id to `uid` before serving, -1=no change")

func main() {
	logWriter:=os.Stdout
	start:=time.Now()
	flag.Usage=func(){
 	    fmt.Fprintf(logWriter, `Flatfield Copyright (c) 2021 Magnus Karlsen
This program comes with ABSOLUTELY NO WARRANTY.
This is free software, and you are welcome to redistribute it under certain conditions.
Refer to https://www.gnu.org/licenses/gpl-3.0.en.html for details.

Usage: %s [-flag value] (correct|serve|legal|version) (ch1.tif ... chn.tif)

Commands:
  correct Correct uneven illumination. Inputs are one grayscale TIFF per channel
  serve   Offer the correction pipeline as a web service on port 8080
  legal   Show license and attribution information
  version Show version information

Flags:
`, os.Args[0])
	    flag.PrintDefaults()
	}
	flag.Parse()

	// Also auto-select JPEG output target
	if *jpg=="%auto" {
		if *out!="" {
			*jpg=strings.TrimSuffix(*out, filepath.Ext(*out))+".jpg"
		} else {
			*jpg=""
		}
	}

	// Enable CPU profiling if flagged
    if *cpuprofile != "" {
        f, err := os.Create(*cpuprofile)
        if err != nil {
            fmt.Fprintf(logWriter, "Could not create CPU profile: %s\n", err.Error())
            os.Exit(-1)
        }
        defer f.Close()
        if err := pprof.StartCPUProfile(f); err != nil {
            fmt.Fprintf(logWriter, "Could not start CPU profile: %s\n", err.Error())
            os.Exit(-1)
        }
        defer pprof.StopCPUProfile()
    }

    args:=flag.Args()
    if len(args)<1 {
    	flag.Usage()
    	return
    }

	var err error
    switch args[0] {
    case "serve":
    	rest.Serve(*chroot, *setuid)

    case "correct":
    	err=cmdCorrect(args[1:], logWriter)

    case "legal":
    	cmdLegal(logWriter)

    case "version":
    	fmt.Fprintf(logWriter, "Version %s\n", version)

    case "help", "?":
    	flag.Usage()

    default:
    	fmt.Fprintf(logWriter, "Unknown command '%s'\n\n", args[0])
    	flag.Usage()
    	return
    }

	now:=time.Now()
	elapsed:=now.Sub(start)
	fmt.Fprintf(logWriter, "\nDone after %v\n", elapsed)

    if err!=nil {
		fmt.Fprintf(logWriter, "Error: %s\n", err.Error())
		os.Exit(-1)
	}
}

// Perform the illumination correction command on the given channel files
func cmdCorrect(args []string, logWriter *os.File) error {
	fileNames, err:=flat.GlobPatterns(args)
	if err!=nil { return err }
	if len(fileNames)<2 {
		return fmt.Errorf("need at least two channel files, got %d", len(fileNames))
	}

	f, err:=flat.LoadImageFromFiles(fileNames, logWriter)
	if err!=nil { return err }

	raw:=flat.RawConfig{
		TargetChannel      : *channel,
		BlurSigma          : float32(*sigma),
		ContrastSaturation : float32(*saturation),
		OutputBits         : *bits,
		KeepIntermediates  : *keep,
	}

	c:=ops.NewContext(logWriter, *keep)
	fmt.Fprintf(logWriter, "Using %d threads and up to %d MiB of memory\n", c.MaxThreads, c.MemoryMB)

	res, cfg, err:=flat.Correct(c, f, raw)
	if err!=nil { return err }

	if *out!="" {
		if err:=flat.SaveChannelsToFiles(res, *out, logWriter); err!=nil { return err }
	}
	if *keep {
		if err:=saveIntermediates(c, cfg, *out, logWriter); err!=nil { return err }
	}
	if *jpg!="" {
		fmt.Fprintf(logWriter, "Writing preview JPG to %s\n", *jpg)
		if err:=res.WritePreviewJPGToFile(*jpg, 95); err!=nil { return err }
	}
	return nil
}

// Write kept intermediate artifacts next to the output files
func saveIntermediates(c *ops.Context, cfg *flat.Config, out string, logWriter *os.File) error {
	base:=strings.TrimSuffix(out, filepath.Ext(out))
	ext:=filepath.Ext(out)
	if ext=="" { ext=".tif" }
	for name,ch:=range map[string]*fimg.Channel{
		"background": c.Background,
		"ratio"     : c.Ratio,
		"enhanced"  : c.Enhanced,
	} {
		if ch==nil { continue }
		fileName:=fmt.Sprintf("%s_%s_ch%d%s", base, name, cfg.TargetChannel, ext)
		fmt.Fprintf(logWriter, "Writing %s to %s\n", name, fileName)
		if err:=ch.WritePlaneTIFFToFile(fileName, 0, 0); err!=nil { return err }
	}
	return nil
}
