package stroke

import (
	"math"

	"github.com/example/inkpane/internal/geom"
)

// OutlineOptions tunes how a point sequence is thickened into a polygon.
type OutlineOptions struct {
	// Thinning controls how strongly pressure changes the radius. Zero keeps
	// a constant width.
	Thinning float64
	// Smoothing is the minimum spacing, as a fraction of the size, between
	// consecutive outline points.
	Smoothing float64
	// Streamline pulls each sample towards the previous one to remove
	// jitter.
	Streamline float64
	// SimulatePressure derives pressure from pointer speed instead of the
	// recorded samples.
	SimulatePressure bool
	// Complete makes the final sample exact instead of streamlined. It is
	// used for committed strokes.
	Complete bool
}

// DefaultOutlineOptions returns the tunables used when none are configured.
func DefaultOutlineOptions() OutlineOptions {
	return OutlineOptions{
		Thinning:         0.5,
		Smoothing:        0.5,
		Streamline:       0.5,
		SimulatePressure: true,
	}
}

const (
	pressureRate = 0.275
	fixedPi      = math.Pi + 0.0001
	startSteps   = 13
	endSteps     = 29
)

type sample struct {
	point    geom.Vec
	pressure float64
	vector   geom.Vec
	distance float64
	running  float64
}

// samples streamlines the raw points and annotates each kept sample with
// its direction and running length.
func samples(points []geom.Point, size float64, opts OutlineOptions) []sample {
	if len(points) == 0 {
		return nil
	}
	t := 0.15 + (1-opts.Streamline)*0.85

	pts := make([]geom.Point, len(points))
	for i, p := range points {
		pts[i] = p.Normalized()
	}
	switch len(pts) {
	case 1:
		pts = append(pts, geom.Point{X: pts[0].X + 1, Y: pts[0].Y + 1, Pressure: pts[0].Pressure})
	case 2:
		first, last := pts[0], pts[1]
		pts = pts[:1]
		for i := 1; i < 5; i++ {
			f := float64(i) / 4
			v := first.Vec().Lerp(last.Vec(), f)
			pts = append(pts, geom.Point{X: v.X, Y: v.Y, Pressure: first.Pressure + (last.Pressure-first.Pressure)*f})
		}
	}

	out := []sample{{point: pts[0].Vec(), pressure: pts[0].Pressure, vector: geom.Vec{X: 1, Y: 1}}}
	prev := out[0]
	running := 0.0
	reached := false
	final := len(pts) - 1
	for i := 1; i < len(pts); i++ {
		point := prev.point.Lerp(pts[i].Vec(), t)
		if opts.Complete && i == final {
			point = pts[i].Vec()
		}
		if point.Equal(prev.point) {
			continue
		}
		distance := point.Dist(prev.point)
		running += distance
		if i < final && !reached {
			if running < size {
				continue
			}
			reached = true
		}
		prev = sample{
			point:    point,
			pressure: pts[i].Pressure,
			vector:   prev.point.Sub(point).Unit(),
			distance: distance,
			running:  running,
		}
		out = append(out, prev)
	}
	if len(out) > 1 {
		out[0].vector = out[1].vector
	} else {
		out[0].vector = geom.Vec{}
	}
	return out
}

func strokeRadius(size, thinning, pressure float64) float64 {
	return size * (0.5 - thinning*(0.5-pressure))
}

func simulatedPressure(prev, distance, size float64) float64 {
	sp := math.Min(1, distance/size)
	rp := math.Min(1, 1-sp)
	return math.Min(1, prev+(rp-prev)*(sp*pressureRate))
}

// Outline converts a point sequence into the closed polygon of a
// pressure-sensitive stroke of the given base size. The result depends only
// on its arguments.
func Outline(points []geom.Point, size float64, opts OutlineOptions) []geom.Vec {
	if size <= 0 {
		return nil
	}
	ss := samples(points, size, opts)
	if len(ss) == 0 {
		return nil
	}
	lastIdx := len(ss) - 1
	total := ss[lastIdx].running
	minDistance := math.Pow(size*opts.Smoothing, 2)

	prevPressure := ss[0].pressure
	for i := 0; i < len(ss) && i < 10; i++ {
		p := ss[i].pressure
		if opts.SimulatePressure {
			p = simulatedPressure(prevPressure, ss[i].distance, size)
		}
		prevPressure = (prevPressure + p) / 2
	}

	radius := strokeRadius(size, opts.Thinning, ss[lastIdx].pressure)
	firstRadius := -1.0
	prevVector := ss[0].vector
	pl, pr := ss[0].point, ss[0].point
	tl, tr := pl, pr
	prevSharp := false
	var left, right []geom.Vec

	for i, s := range ss {
		if i < lastIdx && total-s.running < 3 {
			continue
		}
		pressure := s.pressure
		if opts.Thinning != 0 {
			if opts.SimulatePressure {
				pressure = simulatedPressure(prevPressure, s.distance, size)
			}
			radius = strokeRadius(size, opts.Thinning, pressure)
		} else {
			radius = size / 2
		}
		if firstRadius < 0 {
			firstRadius = radius
		}
		radius = math.Max(0.01, radius)

		nextVector := s.vector
		nextDpr := 1.0
		if i < lastIdx {
			nextVector = ss[i+1].vector
			nextDpr = s.vector.Dot(nextVector)
		}
		prevDpr := s.vector.Dot(prevVector)
		sharp := prevDpr < 0 && !prevSharp
		nextSharp := nextDpr < 0

		if sharp || nextSharp {
			offset := prevVector.Perp().Mul(radius)
			for k := 0; k <= startSteps; k++ {
				f := float64(k) / startSteps
				tl = s.point.Sub(offset).RotateAround(s.point, fixedPi*f)
				left = append(left, tl)
				tr = s.point.Add(offset).RotateAround(s.point, -fixedPi*f)
				right = append(right, tr)
			}
			pl, pr = tl, tr
			if nextSharp {
				prevSharp = true
			}
			continue
		}
		prevSharp = false

		if i == lastIdx {
			offset := s.vector.Perp().Mul(radius)
			left = append(left, s.point.Sub(offset))
			right = append(right, s.point.Add(offset))
			continue
		}

		offset := nextVector.Lerp(s.vector, nextDpr).Perp().Mul(radius)
		tl = s.point.Sub(offset)
		if i <= 1 || pl.Dist2(tl) > minDistance {
			left = append(left, tl)
			pl = tl
		}
		tr = s.point.Add(offset)
		if i <= 1 || pr.Dist2(tr) > minDistance {
			right = append(right, tr)
			pr = tr
		}
		prevPressure = pressure
		prevVector = s.vector
	}

	first := ss[0].point
	last := first.Add(geom.Vec{X: 1, Y: 1})
	if len(ss) > 1 {
		last = ss[lastIdx].point
	}

	if len(ss) == 1 {
		r := firstRadius
		if r <= 0 {
			r = radius
		}
		start := first.Project(first.Sub(last).Perp().Unit(), -r)
		dot := make([]geom.Vec, 0, startSteps)
		for k := 1; k <= startSteps; k++ {
			dot = append(dot, start.RotateAround(first, fixedPi*2*float64(k)/startSteps))
		}
		return dot
	}

	var startCap []geom.Vec
	if len(right) > 0 {
		for k := 1; k <= startSteps; k++ {
			startCap = append(startCap, right[0].RotateAround(first, fixedPi*float64(k)/startSteps))
		}
	}

	direction := ss[lastIdx].vector.Neg().Perp()
	capStart := last.Project(direction, radius)
	endCap := make([]geom.Vec, 0, endSteps)
	for k := 1; k < endSteps; k++ {
		endCap = append(endCap, capStart.RotateAround(last, fixedPi*3*float64(k)/endSteps))
	}

	out := make([]geom.Vec, 0, len(left)+len(endCap)+len(right)+len(startCap))
	out = append(out, left...)
	out = append(out, endCap...)
	for i := len(right) - 1; i >= 0; i-- {
		out = append(out, right[i])
	}
	out = append(out, startCap...)
	return out
}
