package terrain

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Faultbox/heightfield/pkg/heightfield"
)

const formatLabel = "format"

var (
	buildLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "terrain_build_seconds",
		Help: "The time to build a heightfield index.",
	}, []string{
		formatLabel,
	})

	buildErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "terrain_build_errors",
		Help: "The number of grids that failed to build.",
	})

	treeNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "terrain_tree_nodes",
		Help: "The node count of the most recently built quadtree.",
	})

	meshTriangles = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "terrain_mesh_triangles",
		Help: "The triangle count of the most recently built mesh.",
	})
)

func observeBuild(f Format, elapsed time.Duration, stats heightfield.Stats) {
	buildLatency.With(prometheus.Labels{
		formatLabel: f.String(),
	}).Observe(elapsed.Seconds())

	treeNodes.Set(float64(stats.Nodes))
	meshTriangles.Set(float64(stats.Triangles))
}
