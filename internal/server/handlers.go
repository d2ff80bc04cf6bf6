package server

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/segmentio/encoding/json"
	"go.uber.org/zap"

	"github.com/Faultbox/heightfield/pkg/formats"
	"github.com/Faultbox/heightfield/pkg/geom"
)

// ErrBadRequest wraps every request validation failure.
var ErrBadRequest = errors.New("bad request")

// Vec3 is a vector on the wire: [x, y, z].
type Vec3 [3]float64

// IntersectRequest is the body of POST /v1/intersect. T0 and T1 fall back
// to the server's defaults when omitted.
type IntersectRequest struct {
	Origin    *Vec3    `json:"origin"`
	Direction *Vec3    `json:"direction"`
	T0        *float64 `json:"t0,omitempty"`
	T1        *float64 `json:"t1,omitempty"`
}

// IntersectResponse reports the nearest hit, if any.
type IntersectResponse struct {
	Hit      bool    `json:"hit"`
	Distance float64 `json:"distance,omitempty"`
	Point    *Vec3   `json:"point,omitempty"`
}

// HeightResponse is the body of GET /v1/height.
type HeightResponse struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Height float64 `json:"height"`
}

// StatsResponse describes the served terrain.
type StatsResponse struct {
	Name       string  `json:"name"`
	Format     string  `json:"format"`
	Rows       int     `json:"rows"`
	Cols       int     `json:"cols"`
	Size       int     `json:"size"`
	Resolution float64 `json:"resolution"`
	Nodes      int     `json:"nodes"`
	Leaves     int     `json:"leaves"`
	Depth      int     `json:"depth"`
	Triangles  int     `json:"triangles"`
	BoundsMin  *Vec3   `json:"bounds_min,omitempty"`
	BoundsMax  *Vec3   `json:"bounds_max,omitempty"`
	BuildMS    float64 `json:"build_ms"`
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func (req *IntersectRequest) ray(defT0, defT1 float64) (geom.Ray, float64, float64, error) {
	if req.Origin == nil || req.Direction == nil {
		return geom.Ray{}, 0, 0, fmt.Errorf("%w: origin and direction are required", ErrBadRequest)
	}
	dir := geom.Vec(req.Direction[0], req.Direction[1], req.Direction[2])
	if dir.Norm2() == 0 {
		return geom.Ray{}, 0, 0, fmt.Errorf("%w: direction must be non-zero", ErrBadRequest)
	}

	t0, t1 := defT0, defT1
	if req.T0 != nil {
		t0 = *req.T0
	}
	if req.T1 != nil {
		t1 = *req.T1
	}
	if t0 < 0 || t1 < t0 {
		return geom.Ray{}, 0, 0, fmt.Errorf("%w: invalid interval [%v, %v]", ErrBadRequest, t0, t1)
	}

	origin := geom.Vec(req.Origin[0], req.Origin[1], req.Origin[2])
	return geom.NewRay(origin, dir), t0, t1, nil
}

func (s *Server) handleIntersect(w http.ResponseWriter, r *http.Request) {
	t := s.terrain.Load()
	if t == nil {
		s.writeError(w, r, ErrNoTerrain)
		return
	}

	var req IntersectRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}

	ray, t0, t1, err := req.ray(s.t0, s.t1)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	d, hit := t.Field.Intersect(ray, t0, t1)
	instrumentRayCast(hit)

	resp := IntersectResponse{Hit: hit}
	if hit {
		p := ray.At(d)
		resp.Distance = d
		resp.Point = &Vec3{p.X, p.Y, p.Z}
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleHeight(w http.ResponseWriter, r *http.Request) {
	t := s.terrain.Load()
	if t == nil {
		s.writeError(w, r, ErrNoTerrain)
		return
	}

	q := r.URL.Query()
	x, errX := parseCoord(q.Get("x"))
	y, errY := parseCoord(q.Get("y"))
	if err := errors.Join(errX, errY); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}

	s.writeJSON(w, r, http.StatusOK, HeightResponse{
		X:      x,
		Y:      y,
		Height: t.Field.HeightAt(x, y),
	})
}

func parseCoord(v string) (float64, error) {
	if v == "" {
		return 0, errors.New("missing coordinate")
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid coordinate %q", v)
	}
	return f, nil
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	t := s.terrain.Load()
	if t == nil {
		s.writeError(w, r, ErrNoTerrain)
		return
	}

	stats := t.Field.Stats()
	rows, cols := t.Field.Dims()
	resp := StatsResponse{
		Name:       t.Name,
		Format:     t.Format.String(),
		Rows:       rows,
		Cols:       cols,
		Size:       t.Field.Size(),
		Resolution: t.Field.Resolution(),
		Nodes:      stats.Nodes,
		Leaves:     stats.Leaves,
		Depth:      stats.Depth,
		Triangles:  stats.Triangles,
		BuildMS:    float64(t.BuildTime.Microseconds()) / 1000,
	}
	if b, ok := t.Field.Bounds(); ok {
		resp.BoundsMin = &Vec3{b.Min.X, b.Min.Y, b.Min.Z}
		resp.BoundsMax = &Vec3{b.Max.X, b.Max.Y, b.Max.Z}
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleMesh(w http.ResponseWriter, r *http.Request) {
	t := s.terrain.Load()
	if t == nil {
		s.writeError(w, r, ErrNoTerrain)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := formats.WriteOBJ(w, "terrain", t.Field.Mesh()); err != nil {
		s.log.Warn("writing mesh failed",
			zap.String("request_id", RequestID(r.Context())),
			zap.Error(err))
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("encoding response failed",
			zap.String("request_id", RequestID(r.Context())),
			zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, ErrNoTerrain):
		status = http.StatusServiceUnavailable
	}

	s.writeJSON(w, r, status, errorResponse{
		Error:     err.Error(),
		RequestID: RequestID(r.Context()),
	})
}
