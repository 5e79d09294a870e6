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
	"bufio"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"os"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Write an 8-bit composite preview of the image's (z=0, t=0) planes to a JPG
// file. Each channel is assigned an evenly spaced hue on the color circle,
// fluorescence overlay style, and additively blended
func (f *Image) WritePreviewJPGToFile(fileName string, quality int) error {
	file, err := os.Create(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	defer writer.Flush()

	return f.WritePreviewJPG(writer, quality)
}

// Write an 8-bit hue-blended composite preview of the image's (z=0, t=0) planes to a JPG stream
func (f *Image) WritePreviewJPG(writer io.Writer, quality int) error {
	width, height := f.Width, f.Height

	// per-channel base color from an evenly spaced hue
	baseR := make([]float32, f.Channels)
	baseG := make([]float32, f.Channels)
	baseB := make([]float32, f.Channels)
	for c := 0; c < f.Channels; c++ {
		hue := 360.0 * float64(c) / float64(f.Channels)
		r, g, b := colorful.Hsv(hue, 1, 1).LinearRgb()
		baseR[c], baseG[c], baseB[c] = float32(r), float32(g), float32(b)
	}

	scale := 1.0 / f.Depth.MaxValue()
	img := image.NewRGBA(image.Rectangle{image.Point{0, 0}, image.Point{width, height}})
	for y := 0; y < height; y++ {
		yoffset := y * width
		for x := 0; x < width; x++ {
			r, g, b := float32(0), float32(0), float32(0)
			for c := 0; c < f.Channels; c++ {
				v := f.Chan[c][yoffset+x] * scale
				if v < 0 {
					v = 0
				}
				if v > 1 {
					v = 1
				}
				r += v * baseR[c]
				g += v * baseG[c]
				b += v * baseB[c]
			}
			if r > 1 {
				r = 1
			}
			if g > 1 {
				g = 1
			}
			if b > 1 {
				b = 1
			}
			rr, gg, bb := colorful.LinearRgb(float64(r), float64(g), float64(b)).Clamped().RGB255()
			img.SetRGBA(x, y, color.RGBA{rr, gg, bb, 255})
		}
	}
	// preview only ever covers plane (0,0); deeper stacks need the TIFF outputs
	return jpeg.Encode(writer, img, &jpeg.Options{Quality: quality})
}
