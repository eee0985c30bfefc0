// Package plot renders a telescope bench and its traced rays into a static
// PNG diagram: surfaces as polylines, ray paths colored by bounce order,
// detector hits as dots.
package plot

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"

	"github.com/DysonLewis/Telescope/colors"
	"github.com/DysonLewis/Telescope/geom"
	"github.com/DysonLewis/Telescope/optics"
)

// curveSteps controls how finely curved mirrors are sampled when drawn.
const curveSteps = 200

// Diagram maps world coordinates onto an image canvas. Screen y grows
// downward, so the world y axis is flipped.
type Diagram struct {
	Width, Height int
	Scale         float64
	Offset        geom.Vec2 // screen position of the world origin
}

// New returns a diagram whose viewport is fitted to the given world bounds
// with a small margin.
func New(width, height int, xMin, xMax, yMin, yMax float64) *Diagram {
	sx := float64(width) / (xMax - xMin)
	sy := float64(height) / (yMax - yMin)
	scale := 0.9 * math.Min(sx, sy)
	return &Diagram{
		Width:  width,
		Height: height,
		Scale:  scale,
		Offset: geom.Vec2{
			X: float64(width)/2.0 - scale*(xMin+xMax)/2.0,
			Y: float64(height)/2.0 + scale*(yMin+yMax)/2.0,
		},
	}
}

func (d *Diagram) toScreen(p geom.Vec2) (float64, float64) {
	return d.Offset.X + p.X*d.Scale, d.Offset.Y - p.Y*d.Scale
}

// Render draws the bench and rays onto a fresh canvas.
func (d *Diagram) Render(bench *optics.Bench, rays []*optics.Ray) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, d.Width, d.Height))
	bg := colors.From8BitRgb(10, 10, 16, 255).ToNRGBA()
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	for _, ray := range rays {
		d.drawRay(img, ray)
	}
	for _, s := range bench.Surfaces {
		d.drawSurface(img, s)
	}
	if bench.Detector != nil {
		hitColor := colors.Red().ToNRGBA()
		for _, hit := range bench.Detector.HitPoints {
			d.dot(img, hit, hitColor)
		}
	}
	return img
}

// segmentColor follows the reference palette: incoming rays red, first
// reflection blue, second green, stray light gray.
func segmentColor(i int) colors.Color4 {
	switch i {
	case 0:
		return colors.Red()
	case 1:
		return colors.Blue()
	case 2:
		return colors.Green()
	}
	return colors.From8BitRgb(200, 200, 200, 180)
}

func (d *Diagram) drawRay(img *image.NRGBA, ray *optics.Ray) {
	if ray.Blocked() {
		return
	}
	for i := 0; i+1 < len(ray.Path); i++ {
		d.line(img, ray.Path[i], ray.Path[i+1], segmentColor(i).ToNRGBA())
	}
}

func (d *Diagram) drawSurface(img *image.NRGBA, s optics.Surface) {
	if !s.IsActive() {
		return
	}
	switch v := s.(type) {
	case *optics.Parabolic:
		c := colors.White().ToNRGBA()
		if v.HoleRadius > 0 {
			// Two arcs with a gap at the central aperture.
			d.curve(img, v.HoleRadius, v.YMax, v.XAt, c)
			d.curve(img, v.YMin, -v.HoleRadius, v.XAt, c)
		} else {
			d.curve(img, v.YMin, v.YMax, v.XAt, c)
		}
	case *optics.Hyperbolic:
		d.curve(img, v.YMin, v.YMax, v.XAt, colors.From8BitRgb(255, 150, 255, 255).ToNRGBA())
	case *optics.Flat:
		d.line(img, v.Start(), v.End(), colors.From8BitRgb(255, 0, 255, 255).ToNRGBA())
	case *optics.Detector:
		d.line(img, v.Start(), v.End(), colors.From8BitRgb(0, 255, 255, 255).ToNRGBA())
	}
}

// curve samples x = xAt(y) over [yMin, yMax] and draws the polyline.
func (d *Diagram) curve(img *image.NRGBA, yMin, yMax float64, xAt func(float64) float64, c color.NRGBA) {
	prev := geom.Vec2{X: xAt(yMin), Y: yMin}
	for i := 1; i <= curveSteps; i++ {
		y := yMin + float64(i)*(yMax-yMin)/curveSteps
		next := geom.Vec2{X: xAt(y), Y: y}
		d.line(img, prev, next, c)
		prev = next
	}
}

func (d *Diagram) line(img *image.NRGBA, a, b geom.Vec2, c color.NRGBA) {
	x0, y0 := d.toScreen(a)
	x1, y1 := d.toScreen(b)
	steps := int(math.Max(math.Abs(x1-x0), math.Abs(y1-y0))) + 1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		img.SetNRGBA(int(x0+t*(x1-x0)), int(y0+t*(y1-y0)), c)
	}
}

func (d *Diagram) dot(img *image.NRGBA, p geom.Vec2, c color.NRGBA) {
	x, y := d.toScreen(p)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			img.SetNRGBA(int(x)+dx, int(y)+dy, c)
		}
	}
}

// WritePNG encodes the image the way the rest of the tooling expects it.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return (&png.Encoder{CompressionLevel: png.BestSpeed}).Encode(f, img)
}
