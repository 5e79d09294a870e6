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
	"fmt"
	"image"
	"image/color"
	"io"
	"os"

	"golang.org/x/image/tiff"
)

// Read a grayscale TIFF file into a single channel stack with Z=T=1.
// 8-bit and 16-bit grayscale data keeps its native depth; any other color
// model is converted to 16-bit luminance
func ReadChannelFromFile(fileName string) (*Channel, error) {
	file, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	reader := bufio.NewReader(file)

	t, err := tiff.Decode(reader)
	if err != nil {
		return nil, fmt.Errorf("%s: %s", fileName, err.Error())
	}

	width, height := t.Bounds().Dx(), t.Bounds().Dy()
	depth := Depth16
	if t.ColorModel() == color.GrayModel {
		depth = Depth8
	}

	ch := NewChannel(width, height, 1, 1, depth)
	switch img := t.(type) {
	case *image.Gray:
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				ch.Data[y*width+x] = float32(img.GrayAt(x, y).Y)
			}
		}
	case *image.Gray16:
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				ch.Data[y*width+x] = float32(img.Gray16At(x, y).Y)
			}
		}
	default:
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				g := color.Gray16Model.Convert(t.At(x, y)).(color.Gray16)
				ch.Data[y*width+x] = float32(g.Y)
			}
		}
	}
	return ch, nil
}

// Write one (slice, frame) plane of the channel to a grayscale TIFF file.
// 8-bit channels are written as 8-bit grayscale, everything else as 16-bit,
// scaled from the channel's value domain
func (ch *Channel) WritePlaneTIFFToFile(fileName string, z, t int) error {
	file, err := os.Create(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	defer writer.Flush()

	return ch.WritePlaneTIFF(writer, z, t)
}

// Write one (slice, frame) plane of the channel to a grayscale TIFF stream
func (ch *Channel) WritePlaneTIFF(writer io.Writer, z, t int) error {
	width, height := ch.Width, ch.Height
	plane := ch.Plane(z, t)

	if ch.Depth == Depth8 {
		img := image.NewGray(image.Rectangle{image.Point{0, 0}, image.Point{width, height}})
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				v := plane[y*width+x]
				if v < 0 {
					v = 0
				}
				if v > 255 {
					v = 255
				}
				img.SetGray(x, y, color.Gray{uint8(v)})
			}
		}
		return tiff.Encode(writer, img, &tiff.Options{Compression: tiff.Uncompressed, Predictor: false})
	}

	img := image.NewGray16(image.Rectangle{image.Point{0, 0}, image.Point{width, height}})
	scale := 65535 / ch.Depth.MaxValue()
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := plane[y*width+x] * scale
			if v < 0 {
				v = 0
			}
			if v > 65535 {
				v = 65535
			}
			img.SetGray16(x, y, color.Gray16{uint16(v)})
		}
	}
	return tiff.Encode(writer, img, &tiff.Options{Compression: tiff.Uncompressed, Predictor: false})
}
