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
	"io"
	"path/filepath"
	"strings"
	"github.com/mkarlsen/flatfield/internal/fimg"
)

// Glob the given filename patterns into a flat list of files, keeping the
// pattern order. A pattern matching no files is an error, a literal filename
// passes through unchanged
func GlobPatterns(patterns []string) ([]string, error) {
	fileNames:=[]string{}
	for _,pattern:=range patterns {
		matches, err:=filepath.Glob(pattern)
		if err!=nil { return nil, err }
		if len(matches)==0 {
			if strings.ContainsAny(pattern, "*?[") {
				return nil, fmt.Errorf("%s: no matching files", pattern)
			}
			matches=[]string{pattern}  // defer missing-file errors to the reader
		}
		fileNames=append(fileNames, matches...)
	}
	return fileNames, nil
}

// Load one grayscale TIFF per channel and assemble them into a multichannel
// image, channels ordered as the file names. All files must share dimensions
// and bit depth
func LoadImageFromFiles(fileNames []string, logWriter io.Writer) (*fimg.Image, error) {
	chans:=make([]*fimg.Channel, len(fileNames))
	for i,fileName:=range fileNames {
		ch, err:=fimg.ReadChannelFromFile(fileName)
		if err!=nil { return nil, err }
		fmt.Fprintf(logWriter, "%d: Read channel %s %v from %s\n", i+1, ch.DimensionsToString(), ch.Depth, fileName)
		chans[i]=ch
	}
	f, err:=fimg.NewImageFromChannels(chans)
	if err!=nil { return nil, err }
	for _,ch:=range chans { ch.Data=nil }
	return f, nil
}

// Write the composite as one grayscale TIFF per channel. A '%d' verb in the
// pattern receives the 1-based channel number; without one, the channel number
// is appended before the extension
func SaveChannelsToFiles(f *fimg.Image, pattern string, logWriter io.Writer) error {
	chans:=f.Split()
	for i,ch:=range chans {
		fileName:=""
		if strings.Contains(pattern, "%d") {
			fileName=fmt.Sprintf(pattern, i+1)
		} else {
			ext:=filepath.Ext(pattern)
			fileName=fmt.Sprintf("%s_ch%d%s", strings.TrimSuffix(pattern, ext), i+1, ext)
		}
		fmt.Fprintf(logWriter, "%d: Writing channel TIFF to %s\n", i+1, fileName)
		if err:=ch.WritePlaneTIFFToFile(fileName, 0, 0); err!=nil { return err }
		ch.Data=nil
	}
	return nil
}
