// hftool builds a quadtree heightfield from a height grid and queries it.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/heightfield/internal/config"
	"github.com/Faultbox/heightfield/internal/logger"
	"github.com/Faultbox/heightfield/internal/server"
	"github.com/Faultbox/heightfield/internal/terrain"
	"github.com/Faultbox/heightfield/pkg/formats"
	"github.com/Faultbox/heightfield/pkg/geom"
	"github.com/Faultbox/heightfield/pkg/grf"
)

func main() {
	flag.Usage = printUsage
	config.ParseFlags()

	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	command := args[0]
	args = args[1:]

	switch command {
	case "info":
		cmdInfo(cfg)
	case "cast":
		cmdCast(cfg, args)
	case "height":
		cmdHeight(cfg, args)
	case "mesh":
		cmdMesh(cfg, args)
	case "export":
		cmdExport(cfg, args)
	case "grids":
		cmdGrids(args)
	case "pack":
		cmdPack(args)
	case "serve":
		cmdServe(cfg)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`hftool - quadtree heightfield utility

Usage:
  hftool [flags] <command> [options]

Flags:
  --config <file>      Config file (default ./hftool.yaml)
  --grid <file>        Grid file (.yaml, .yml or .gat)
  --grf <file.grf>     Read the grid from this archive
  --resolution <r>     World size of one cell (0 = auto)
  --addr <addr>        Listen address for serve
  --log-file <file>    Also write logs to this file
  --debug              Enable debug logging

Commands:
  info                                 Show grid and tree statistics
  cast [-t0 n] [-t1 n] ox oy oz dx dy dz
                                       Cast a ray, print the nearest hit
  height <x> <y>                       Print the column height at (x, y)
  mesh [output.obj|-]                  Write the terrain mesh as OBJ
  export <output.yaml>                 Save the grid as a YAML grid file
  grids <file.grf>                     List GAT grids in an archive
  pack <out.grf> <file>...             Pack grid files into an archive
  serve                                Serve queries over HTTP

Examples:
  hftool --grid hills.yaml info
  hftool --grf data.grf --grid data/prontera.gat cast 780 900 100 0 0 -1
  hftool --grid data/prontera.gat mesh prontera.obj
  hftool --grid hills.yaml --addr :9000 serve`)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	logger.Sync()
	os.Exit(1)
}

func openTerrain(cfg *config.Config) *terrain.Terrain {
	t, err := terrain.Open(cfg.Grid)
	if err != nil {
		fatalf("%v", err)
	}
	return t
}

func cmdInfo(cfg *config.Config) {
	t := openTerrain(cfg)
	field := t.Field
	stats := field.Stats()
	rows, cols := field.Dims()

	fmt.Printf("Grid:       %s (%s)\n", t.Name, t.Format)
	fmt.Printf("Cells:      %d x %d (padded %d)\n", rows, cols, field.Size())
	fmt.Printf("Resolution: %g\n", field.Resolution())
	if b, ok := field.Bounds(); ok {
		fmt.Printf("Bounds:     %s\n", b)
	} else {
		fmt.Println("Bounds:     (empty)")
	}
	fmt.Printf("Nodes:      %d (%d leaves, depth %d)\n", stats.Nodes, stats.Leaves, stats.Depth)
	fmt.Printf("Triangles:  %d\n", stats.Triangles)
	fmt.Printf("Build time: %s\n", t.BuildTime)
}

func parseFloats(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", a)
		}
		out[i] = f
	}
	return out, nil
}

func cmdCast(cfg *config.Config, args []string) {
	defT0, defT1 := cfg.Query.Interval()

	fs := flag.NewFlagSet("cast", flag.ExitOnError)
	t0 := fs.Float64("t0", defT0, "Start of the ray interval")
	t1 := fs.Float64("t1", defT1, "End of the ray interval")
	fs.Parse(args)

	if fs.NArg() != 6 {
		fmt.Fprintln(os.Stderr, "Usage: hftool cast [-t0 n] [-t1 n] ox oy oz dx dy dz")
		os.Exit(1)
	}
	v, err := parseFloats(fs.Args())
	if err != nil {
		fatalf("%v", err)
	}

	t := openTerrain(cfg)
	ray := geom.NewRay(geom.Vec(v[0], v[1], v[2]), geom.Vec(v[3], v[4], v[5]))

	d, hit := t.Field.Intersect(ray, *t0, *t1)
	logger.Debug("ray cast",
		zap.Stringer("ray", ray),
		zap.Float64("t0", *t0),
		zap.Float64("t1", *t1),
		zap.Bool("hit", hit))

	if !hit {
		fmt.Println("miss")
		return
	}
	p := ray.At(d)
	fmt.Printf("hit t=%g at (%g, %g, %g)\n", d, p.X, p.Y, p.Z)
}

func cmdHeight(cfg *config.Config, args []string) {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "Usage: hftool height <x> <y>")
		os.Exit(1)
	}
	v, err := parseFloats(args)
	if err != nil {
		fatalf("%v", err)
	}

	t := openTerrain(cfg)
	fmt.Printf("%g\n", t.Field.HeightAt(v[0], v[1]))
}

func cmdMesh(cfg *config.Config, args []string) {
	output := cfg.Mesh.Output
	if len(args) > 0 {
		output = args[0]
	}

	t := openTerrain(cfg)
	name := trimExt(filepath.Base(t.Name))

	if output == "-" {
		if _, err := formats.WriteOBJ(os.Stdout, name, t.Field.Mesh()); err != nil {
			fatalf("%v", err)
		}
		return
	}

	f, err := os.Create(output)
	if err != nil {
		fatalf("%v", err)
	}
	n, err := formats.WriteOBJ(f, name, t.Field.Mesh())
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		fatalf("%v", err)
	}

	logger.Info("mesh written",
		zap.String("path", output),
		zap.Int("triangles", t.Field.Stats().Triangles),
		zap.Int64("bytes", n))
	fmt.Printf("Wrote %s (%d bytes)\n", output, n)
}

func cmdExport(cfg *config.Config, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: hftool export <output.yaml>")
		os.Exit(1)
	}

	g, err := terrain.Read(cfg.Grid)
	if err != nil {
		fatalf("%v", err)
	}

	file := &formats.GridFile{Resolution: g.Resolution, Heights: g.Heights}
	if err := file.SaveTo(args[0]); err != nil {
		fatalf("%v", err)
	}
	fmt.Printf("Wrote %s (%d rows)\n", args[0], len(g.Heights))
}

func cmdGrids(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: hftool grids <file.grf>")
		os.Exit(1)
	}

	archive, err := grf.Open(args[0])
	if err != nil {
		fatalf("%v", err)
	}
	defer archive.Close()

	for _, name := range archive.ListExt(".gat") {
		fmt.Println(name)
	}
}

func cmdPack(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: hftool pack <out.grf> <file>...")
		os.Exit(1)
	}

	files := make(map[string][]byte, len(args)-1)
	for _, path := range args[1:] {
		data, err := os.ReadFile(path)
		if err != nil {
			fatalf("%v", err)
		}
		files[filepath.ToSlash(path)] = data
	}

	f, err := os.Create(args[0])
	if err != nil {
		fatalf("%v", err)
	}
	err = grf.Write(f, files)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		fatalf("%v", err)
	}
	fmt.Printf("Packed %d files into %s\n", len(files), args[0])
}

func cmdServe(cfg *config.Config) {
	t := openTerrain(cfg)
	t0, t1 := cfg.Query.Interval()

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      server.New(server.Options{Terrain: t, T0: t0, T1: t1}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server.ListenAndServe(ctx, srv)
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}
