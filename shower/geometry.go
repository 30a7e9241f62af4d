package shower

import (
	"fmt"
	"math"

	"github.com/sarchlab/steptrace/stepping"
)

// A Layer is a slab of material, perpendicular to the z axis.
type Layer struct {
	Name string

	// Thickness along z, in mm.
	Thickness float64

	// InteractionLength is the mean free path between interactions, in mm.
	InteractionLength float64

	// Ionisation is the continuous energy loss of charged particles, in
	// MeV/mm.
	Ionisation float64
}

// Geometry is a stack of layers starting at z = 0. Everything outside the
// stack is outside the world.
type Geometry struct {
	layers  []Layer
	volumes []*stepping.Volume
	bounds  []float64
}

// NewGeometry stacks the layers in order.
func NewGeometry(layers []Layer) (*Geometry, error) {
	if len(layers) == 0 {
		return nil, fmt.Errorf("geometry needs at least one layer")
	}

	g := &Geometry{bounds: []float64{0}}

	for _, l := range layers {
		if l.Thickness <= 0 || l.InteractionLength <= 0 {
			return nil, fmt.Errorf("layer %q must have a positive thickness "+
				"and interaction length", l.Name)
		}

		g.layers = append(g.layers, l)
		g.volumes = append(g.volumes, &stepping.Volume{Name: l.Name})
		g.bounds = append(g.bounds, g.bounds[len(g.bounds)-1]+l.Thickness)
	}

	return g, nil
}

// NumLayers returns the number of layers.
func (g *Geometry) NumLayers() int {
	return len(g.layers)
}

// Depth returns the total thickness of the stack.
func (g *Geometry) Depth() float64 {
	return g.bounds[len(g.bounds)-1]
}

// Locate returns the index of the layer that contains z, or -1 outside the
// world.
func (g *Geometry) Locate(z float64) int {
	if z < 0 || z >= g.Depth() {
		return -1
	}

	for i := range g.layers {
		if z < g.bounds[i+1] {
			return i
		}
	}

	return -1
}

// Volume returns the volume of a layer, or nil outside the world.
func (g *Geometry) Volume(layer int) *stepping.Volume {
	if layer < 0 || layer >= len(g.volumes) {
		return nil
	}

	return g.volumes[layer]
}

// DistanceToBoundary returns the distance from z to the boundary of the
// layer along the direction dz, and the layer on the other side.
func (g *Geometry) DistanceToBoundary(layer int, z, dz float64) (float64, int) {
	switch {
	case dz > 0:
		next := layer + 1
		if next >= len(g.layers) {
			next = -1
		}

		return (g.bounds[layer+1] - z) / dz, next
	case dz < 0:
		return (g.bounds[layer] - z) / dz, layer - 1
	default:
		return math.Inf(1), layer
	}
}

// Safety returns the isotropic distance from z to the closest boundary of
// the layer.
func (g *Geometry) Safety(layer int, z float64) float64 {
	if layer < 0 {
		return 0
	}

	return math.Max(0, math.Min(z-g.bounds[layer], g.bounds[layer+1]-z))
}

// Index returns the layer of a volume, or -1 if the volume is not part of
// the geometry.
func (g *Geometry) Index(v *stepping.Volume) int {
	for i, vol := range g.volumes {
		if vol == v {
			return i
		}
	}

	return -1
}
