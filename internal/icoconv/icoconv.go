// Package icoconv renders SVG artwork into Windows ICO favicons.
//
// An ICO file bundles several PNG-encoded images at different sizes so
// browsers and operating systems can pick the closest match. The SVG is
// rasterized once at the largest requested size and scaled down for the
// smaller entries to keep the renders consistent.
package icoconv

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/png"
	"os"
	"sort"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
)

// DefaultSizes matches the favicon sizes browsers commonly request.
var DefaultSizes = []int{16, 32, 48}

// Rasterize renders the SVG file at svgPath into a square RGBA image of the
// given pixel size.
func Rasterize(svgPath string, size int) (*image.RGBA, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid raster size %d", size)
	}
	icon, err := oksvg.ReadIcon(svgPath, oksvg.WarnErrorMode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse SVG %s: %w", svgPath, err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)
	return img, nil
}

// scaleDown resizes src to a square image of the given size using
// Catmull-Rom interpolation.
func scaleDown(src *image.RGBA, size int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}

// EncodeICO writes images as a single ICO container. Each image becomes one
// PNG-encoded directory entry; entries are ordered smallest first.
func EncodeICO(images []image.Image) ([]byte, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("no images to encode")
	}

	type entry struct {
		width, height int
		data          []byte
	}
	entries := make([]entry, 0, len(images))
	for _, img := range images {
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("failed to encode PNG entry: %w", err)
		}
		bounds := img.Bounds()
		entries = append(entries, entry{
			width:  bounds.Dx(),
			height: bounds.Dy(),
			data:   buf.Bytes(),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].width < entries[j].width })

	var out bytes.Buffer
	// ICONDIR: reserved, image type (1 = icon), entry count.
	binary.Write(&out, binary.LittleEndian, uint16(0))
	binary.Write(&out, binary.LittleEndian, uint16(1))
	binary.Write(&out, binary.LittleEndian, uint16(len(entries)))

	// Image data follows the 6-byte header and the 16-byte directory entries.
	offset := 6 + 16*len(entries)
	for _, e := range entries {
		// Width and height bytes use 0 to mean 256.
		out.WriteByte(sizeByte(e.width))
		out.WriteByte(sizeByte(e.height))
		out.WriteByte(0) // color palette count
		out.WriteByte(0) // reserved
		binary.Write(&out, binary.LittleEndian, uint16(1))  // color planes
		binary.Write(&out, binary.LittleEndian, uint16(32)) // bits per pixel
		binary.Write(&out, binary.LittleEndian, uint32(len(e.data)))
		binary.Write(&out, binary.LittleEndian, uint32(offset))
		offset += len(e.data)
	}
	for _, e := range entries {
		out.Write(e.data)
	}
	return out.Bytes(), nil
}

func sizeByte(px int) byte {
	if px >= 256 {
		return 0
	}
	return byte(px)
}

// Convert rasterizes the SVG at svgPath and writes an ICO with the requested
// sizes to icoPath. A nil or empty sizes slice uses DefaultSizes.
func Convert(svgPath, icoPath string, sizes []int) error {
	if len(sizes) == 0 {
		sizes = DefaultSizes
	}
	maxSize := sizes[0]
	for _, s := range sizes {
		// Directory entries store dimensions in a single byte (0 means 256),
		// so 256 is the largest representable size.
		if s <= 0 || s > 256 {
			return fmt.Errorf("invalid icon size %d, must be between 1 and 256", s)
		}
		if s > maxSize {
			maxSize = s
		}
	}

	base, err := Rasterize(svgPath, maxSize)
	if err != nil {
		return err
	}

	images := make([]image.Image, 0, len(sizes))
	for _, s := range sizes {
		if s == maxSize {
			images = append(images, base)
			continue
		}
		images = append(images, scaleDown(base, s))
	}

	data, err := EncodeICO(images)
	if err != nil {
		return err
	}
	if err := os.WriteFile(icoPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write ICO file %s: %w", icoPath, err)
	}
	return nil
}
