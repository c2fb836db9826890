//go:build linux || freebsd || openbsd || netbsd || dragonfly

package capture

import (
	"fmt"
	"image"

	"github.com/jezek/xgb/xproto"
)

// xImageToRGBA converts a ZPixmap reply of a 24 or 32 bit visual into an
// opaque RGBA image. Pixels are BGRX in LSB-first images and XRGB otherwise.
func xImageToRGBA(setup *xproto.SetupInfo, reply *xproto.GetImageReply, width, height int, kind string) (*image.RGBA, error) {
	if setup == nil {
		return nil, fmt.Errorf("xproto setup unavailable")
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%s has empty geometry", kind)
	}
	if reply == nil || len(reply.Data) == 0 {
		return nil, fmt.Errorf("%s pixels: empty image data", kind)
	}

	bitsPerPixel := 0
	for _, format := range setup.PixmapFormats {
		if format.Depth == reply.Depth {
			bitsPerPixel = int(format.BitsPerPixel)
			break
		}
	}
	bytesPerPixel := bitsPerPixel / 8
	if bytesPerPixel < 3 {
		return nil, fmt.Errorf("unsupported %s depth %d (%d bpp)", kind, reply.Depth, bitsPerPixel)
	}

	stride := len(reply.Data) / height
	if stride*height != len(reply.Data) || stride < width*bytesPerPixel {
		return nil, fmt.Errorf("%s pixels: unexpected stride", kind)
	}

	ri, gi, bi := 2, 1, 0
	if setup.ImageByteOrder == xproto.ImageOrderMSBFirst {
		ri, gi, bi = bytesPerPixel-3, bytesPerPixel-2, bytesPerPixel-1
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		row := reply.Data[y*stride:]
		for x := 0; x < width; x++ {
			px := row[x*bytesPerPixel:]
			pix := img.PixOffset(x, y)
			img.Pix[pix+0] = px[ri]
			img.Pix[pix+1] = px[gi]
			img.Pix[pix+2] = px[bi]
			img.Pix[pix+3] = 0xFF
		}
	}
	return img, nil
}
