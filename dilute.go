package vidgfx

import (
	"image"

	"github.com/disintegration/imaging"
)

// DiluteImage returns a copy of img in which every fully transparent pixel
// takes the average colour of its visible neighbours, keeping alpha at 0.
// Bilinear sampling near the edge of a cut-out then blends towards the
// image colour instead of black. The bool reports whether any pixel changed.
func DiluteImage(img image.Image) (*image.NRGBA, bool) {
	src := imaging.Clone(img)
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	out := imaging.Clone(src)
	changed := false
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*src.Stride + x*4
			if src.Pix[i+3] != 0 {
				continue
			}
			var r, g, bl, n int
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if (dx == 0 && dy == 0) || nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					j := ny*src.Stride + nx*4
					if src.Pix[j+3] == 0 {
						continue
					}
					r += int(src.Pix[j])
					g += int(src.Pix[j+1])
					bl += int(src.Pix[j+2])
					n++
				}
			}
			if n == 0 {
				continue
			}
			p := out.Pix[i : i+3 : i+3]
			nr, ng, nb := uint8(r/n), uint8(g/n), uint8(bl/n)
			if p[0] != nr || p[1] != ng || p[2] != nb {
				p[0], p[1], p[2] = nr, ng, nb
				changed = true
			}
		}
	}
	return out, changed
}
