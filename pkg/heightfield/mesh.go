package heightfield

import (
	"github.com/Faultbox/heightfield/pkg/geom"
)

// buildMesh triangulates the unpadded grid: two top triangles per cell
// with positive height, plus two skirt triangles on each edge shared with
// the -x or -y neighbour where the heights differ. Outer walls are not
// emitted.
func buildMesh(grid [][]float64, resolution float64) []geom.Triangle {
	var mesh []geom.Triangle

	for mx, row := range grid {
		for my, h := range row {
			x1 := resolution * float64(mx)
			x2 := resolution * float64(mx+1)
			y1 := resolution * float64(my)
			y2 := resolution * float64(my+1)

			if h > 0 {
				mesh = append(mesh,
					geom.NewTriangle(geom.Vec(x1, y1, h), geom.Vec(x2, y1, h), geom.Vec(x1, y2, h)),
					geom.NewTriangle(geom.Vec(x2, y1, h), geom.Vec(x2, y2, h), geom.Vec(x1, y2, h)),
				)
			}

			// Wall on the x = x1 edge.
			if mx > 0 && grid[mx-1][my] != h {
				h2 := grid[mx-1][my]
				mesh = append(mesh,
					geom.NewTriangle(geom.Vec(x1, y1, h2), geom.Vec(x1, y2, h), geom.Vec(x1, y1, h)),
					geom.NewTriangle(geom.Vec(x1, y1, h2), geom.Vec(x1, y2, h), geom.Vec(x1, y2, h2)),
				)
			}

			// Wall on the y = y1 edge.
			if my > 0 && grid[mx][my-1] != h {
				h2 := grid[mx][my-1]
				mesh = append(mesh,
					geom.NewTriangle(geom.Vec(x1, y1, h2), geom.Vec(x2, y1, h), geom.Vec(x1, y1, h)),
					geom.NewTriangle(geom.Vec(x1, y1, h2), geom.Vec(x2, y1, h), geom.Vec(x2, y1, h2)),
				)
			}
		}
	}

	return mesh
}
