package formats

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/golang/geo/r3"

	"github.com/Faultbox/heightfield/pkg/geom"
)

// WriteOBJ writes triangles as a Wavefront OBJ mesh. Every triangle gets
// its own three vertices; nothing is shared. Returns the number of bytes
// written.
func WriteOBJ(w io.Writer, name string, triangles []geom.Triangle) (int64, error) {
	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)

	fmt.Fprintf(bw, "# %d triangles\n", len(triangles))
	if name != "" {
		fmt.Fprintf(bw, "o %s\n", name)
	}
	for _, t := range triangles {
		writeVertex(bw, t.A)
		writeVertex(bw, t.B)
		writeVertex(bw, t.C)
	}
	for i := range triangles {
		base := 3*i + 1
		fmt.Fprintf(bw, "f %d %d %d\n", base, base+1, base+2)
	}

	if err := bw.Flush(); err != nil {
		return cw.n, fmt.Errorf("writing OBJ: %w", err)
	}
	return cw.n, nil
}

func writeVertex(w *bufio.Writer, v r3.Vector) {
	w.WriteString("v ")
	w.WriteString(strconv.FormatFloat(v.X, 'g', -1, 64))
	w.WriteByte(' ')
	w.WriteString(strconv.FormatFloat(v.Y, 'g', -1, 64))
	w.WriteByte(' ')
	w.WriteString(strconv.FormatFloat(v.Z, 'g', -1, 64))
	w.WriteByte('\n')
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
