// Package splat decodes the raw point-cloud files emitted by Gaussian
// splatting trainers: an ASCII header describing per-vertex float fields,
// followed by fixed-stride little-endian float32 records.
package splat

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// shDC0 converts a 0th-order spherical-harmonic coefficient into a
// view-independent diffuse color channel: c*shDC0 + 0.5.
const shDC0 = 0.28209479177387814

const headerSentinel = "end_header"

// DefaultSizeScale matches the visual exaggeration constant used by the
// upstream training tool's own viewers. The trainer does not fix its value
// ranges contractually, so it stays configurable through Options.
const DefaultSizeScale = 50.0

// MalformedError reports a structurally invalid splat file. The whole file
// is rejected; there is no partial decode.
type MalformedError struct {
	Reason string
}

func (e *MalformedError) Error() string {
	return "malformed splat file: " + e.Reason
}

func malformed(format string, args ...any) error {
	return &MalformedError{Reason: fmt.Sprintf(format, args...)}
}

// Options tunes the decode. The zero value selects the defaults.
type Options struct {
	// SizeScale multiplies the opacity-weighted geometric-mean scale into
	// a render-time point radius proxy. 0 means DefaultSizeScale.
	SizeScale float64
}

func (o Options) sizeScale() float64 {
	if o.SizeScale > 0 {
		return o.SizeScale
	}
	return DefaultSizeScale
}

// PointCloud is the decoded, immutable result of one file. Three parallel
// flat arrays: Positions and Colors hold 3*Count floats, Sizes holds Count.
type PointCloud struct {
	Positions []float32
	Colors    []float32
	Sizes     []float32
	Count     int
}

// header is the parsed text prefix of a splat file: declared vertex count
// and per-record field names in declaration order.
type header struct {
	count   int
	fields  []string
	slots   map[string]int
	byteLen int // header bytes including the sentinel line
}

func (h *header) stride() int {
	return len(h.fields) * 4
}

// slot returns the zero-based field index, or -1 if the field is absent.
func (h *header) slot(name string) int {
	if i, ok := h.slots[name]; ok {
		return i
	}
	return -1
}

// parseHeader splits the text header off the binary payload. Kept separate
// from record decoding so header-shape failures and payload truncation can
// be exercised independently.
func parseHeader(buf []byte) (*header, error) {
	idx := bytes.Index(buf, []byte(headerSentinel))
	if idx < 0 {
		return nil, malformed("no header terminator")
	}
	end := idx + len(headerSentinel)
	// Sentinel must be followed by a newline; tolerate CRLF.
	for end < len(buf) && buf[end] == '\r' {
		end++
	}
	if end >= len(buf) || buf[end] != '\n' {
		return nil, malformed("no header terminator")
	}
	end++

	h := &header{
		count:   -1,
		slots:   map[string]int{},
		byteLen: end,
	}
	for _, line := range strings.Split(string(buf[:idx]), "\n") {
		tokens := strings.Fields(line)
		if len(tokens) == 0 {
			continue
		}
		switch tokens[0] {
		case "element":
			if len(tokens) == 3 && tokens[1] == "vertex" {
				n, err := strconv.Atoi(tokens[2])
				if err != nil || n < 0 {
					return nil, malformed("bad vertex count %q", tokens[2])
				}
				h.count = n
			}
		case "property":
			if len(tokens) == 3 {
				name := tokens[2]
				if _, dup := h.slots[name]; !dup {
					h.slots[name] = len(h.fields)
					h.fields = append(h.fields, name)
				}
			}
		}
		// Anything else (ply, format, comment, ...) is ignored.
	}
	if h.count < 0 {
		return nil, malformed("missing vertex count")
	}
	return h, nil
}

// Decode parses one complete splat file buffer into a PointCloud.
// The decode is pure and single-pass: the same buffer always yields
// bit-identical arrays, and any inconsistency rejects the whole file.
func Decode(buf []byte, opts Options) (*PointCloud, error) {
	h, err := parseHeader(buf)
	if err != nil {
		return nil, err
	}

	stride := h.stride()
	if stride == 0 {
		return nil, malformed("no vertex fields")
	}
	// Division form so an absurd declared count cannot overflow the
	// comparison.
	if h.count == 0 || h.count > (len(buf)-h.byteLen)/stride {
		return nil, malformed("truncated point data")
	}

	xs, ys, zs := h.slot("x"), h.slot("y"), h.slot("z")
	if xs < 0 || ys < 0 || zs < 0 {
		return nil, malformed("missing position fields")
	}

	dc := [3]int{h.slot("f_dc_0"), h.slot("f_dc_1"), h.slot("f_dc_2")}
	hasColor := dc[0] >= 0

	opacity := h.slot("opacity")
	scales := []int{}
	for _, name := range []string{"scale_0", "scale_1", "scale_2"} {
		if s := h.slot(name); s >= 0 {
			scales = append(scales, s)
		}
	}
	hasSize := opacity >= 0 && len(scales) > 0

	sizeScale := opts.sizeScale()

	pc := &PointCloud{
		Positions: make([]float32, 3*h.count),
		Colors:    make([]float32, 3*h.count),
		Sizes:     make([]float32, h.count),
		Count:     h.count,
	}

	payload := buf[h.byteLen:]
	for i := 0; i < h.count; i++ {
		rec := payload[i*stride : (i+1)*stride]

		pc.Positions[3*i+0] = fieldAt(rec, xs)
		pc.Positions[3*i+1] = fieldAt(rec, ys)
		pc.Positions[3*i+2] = fieldAt(rec, zs)

		if hasColor {
			for c := 0; c < 3; c++ {
				v := float32(0)
				if dc[c] >= 0 {
					v = fieldAt(rec, dc[c])
				}
				pc.Colors[3*i+c] = clamp01(v*shDC0 + 0.5)
			}
		} else {
			pc.Colors[3*i+0] = 1
			pc.Colors[3*i+1] = 1
			pc.Colors[3*i+2] = 1
		}

		if hasSize {
			alpha := sigmoid(float64(fieldAt(rec, opacity)))
			logSum := 0.0
			for _, s := range scales {
				logSum += float64(fieldAt(rec, s))
			}
			// exp of the mean log-scale is the geometric mean of the
			// exponentiated axes.
			geoMean := math.Exp(logSum / float64(len(scales)))
			pc.Sizes[i] = float32(alpha * geoMean * sizeScale)
		} else {
			// Opaque unit-scale splat.
			pc.Sizes[i] = float32(sizeScale)
		}
	}

	return pc, nil
}

func fieldAt(rec []byte, slot int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(rec[slot*4:]))
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
