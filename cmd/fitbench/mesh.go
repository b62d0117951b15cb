package main

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/meshfit/pkg/geom"
)

// sphereMesh builds a UV sphere of the given radius: two pole fans and
// quad strips between rings. This is the synthetic stand-in for a character
// or asset mesh.
func sphereMesh(rings, segments int, radius float64) ([]r3.Vec, [][]int) {
	if rings < 3 {
		rings = 3
	}
	if segments < 3 {
		segments = 3
	}

	verts := []r3.Vec{{Z: radius}} // top pole
	for r := 1; r < rings; r++ {
		phi := math.Pi * float64(r) / float64(rings)
		for s := 0; s < segments; s++ {
			theta := 2 * math.Pi * float64(s) / float64(segments)
			verts = append(verts, r3.Vec{
				X: radius * math.Sin(phi) * math.Cos(theta),
				Y: radius * math.Sin(phi) * math.Sin(theta),
				Z: radius * math.Cos(phi),
			})
		}
	}
	verts = append(verts, r3.Vec{Z: -radius}) // bottom pole

	ringStart := func(r int) int { return 1 + (r-1)*segments }
	bottom := len(verts) - 1

	var faces [][]int
	// top fan
	for s := 0; s < segments; s++ {
		faces = append(faces, []int{0, ringStart(1) + s, ringStart(1) + (s+1)%segments})
	}
	// quad strips
	for r := 1; r < rings-1; r++ {
		for s := 0; s < segments; s++ {
			a := ringStart(r) + s
			b := ringStart(r) + (s+1)%segments
			c := ringStart(r+1) + (s+1)%segments
			d := ringStart(r+1) + s
			faces = append(faces, []int{a, b, c, d})
		}
	}
	// bottom fan
	last := rings - 1
	for s := 0; s < segments; s++ {
		faces = append(faces, []int{bottom, ringStart(last) + (s+1)%segments, ringStart(last) + s})
	}
	return verts, faces
}

// sphereGeometry wraps sphereMesh in a Geometry.
func sphereGeometry(rings, segments int, radius float64) (*geom.Geometry, error) {
	verts, faces := sphereMesh(rings, segments, radius)
	return geom.New(verts, faces)
}

// jointChain returns evenly spaced joints along the Z axis, spanning the
// unit sphere. Rig joints are a bare point cloud, no faces.
func jointChain(n int) []r3.Vec {
	joints := make([]r3.Vec, n)
	for i := range joints {
		joints[i] = r3.Vec{Z: -1 + 2*float64(i)/float64(n-1)}
	}
	return joints
}
