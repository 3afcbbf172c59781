package splat

import (
	"bytes"
	"encoding/binary"
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildFile assembles a synthetic splat file: a header declaring count
// vertices with the given float properties, followed by the records.
func buildFile(t *testing.T, count int, fields []string, records [][]float32) []byte {
	t.Helper()

	var buf bytes.Buffer
	buf.WriteString("ply\n")
	buf.WriteString("format binary_little_endian 1.0\n")
	buf.WriteString("comment synthetic test cloud\n")
	buf.WriteString("element vertex ")
	buf.WriteString(strconv.Itoa(count))
	buf.WriteString("\n")
	for _, f := range fields {
		buf.WriteString("property float " + f + "\n")
	}
	buf.WriteString("end_header\n")

	for _, rec := range records {
		require.Equal(t, len(fields), len(rec), "record width must match fields")
		for _, v := range rec {
			var b [4]byte
			binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
			buf.Write(b[:])
		}
	}
	return buf.Bytes()
}

var fullFields = []string{
	"x", "y", "z",
	"f_dc_0", "f_dc_1", "f_dc_2",
	"opacity",
	"scale_0", "scale_1", "scale_2",
}

func TestDecodeWorkedExample(t *testing.T) {
	records := [][]float32{
		{0, 0, 0, 0, 0, 0, 10, 0, 0, 0},
		{1, 2, 3, 1, -1, 0.5, 0, 1, 1, 1},
		{-1, -2, -3, 100, -100, 0, -10, -1, 0, 1},
	}
	buf := buildFile(t, 3, fullFields, records)

	pc, err := Decode(buf, Options{})
	require.NoError(t, err)
	require.Equal(t, 3, pc.Count)

	// Record 0: zero DC coefficients decode to mid-gray, opacity raw 10
	// saturates the sigmoid, unit scales leave the geometric mean at 1.
	assert.InDelta(t, 0.5, float64(pc.Colors[0]), 1e-6)
	assert.InDelta(t, 0.5, float64(pc.Colors[1]), 1e-6)
	assert.InDelta(t, 0.5, float64(pc.Colors[2]), 1e-6)
	assert.InDelta(t, 49.998, float64(pc.Sizes[0]), 0.001)

	// Record 1 positions pass through untransformed.
	assert.Equal(t, float32(1), pc.Positions[3])
	assert.Equal(t, float32(2), pc.Positions[4])
	assert.Equal(t, float32(3), pc.Positions[5])

	// Record 1 size: sigmoid(0)=0.5, scales exp(1) each.
	want := 0.5 * math.Exp(1) * 50
	assert.InDelta(t, want, float64(pc.Sizes[1]), 1e-3)
}

func TestDecodeShapeInvariant(t *testing.T) {
	records := make([][]float32, 7)
	for i := range records {
		records[i] = make([]float32, len(fullFields))
		records[i][0] = float32(i)
	}
	buf := buildFile(t, 7, fullFields, records)

	pc, err := Decode(buf, Options{})
	require.NoError(t, err)

	assert.Equal(t, 7, pc.Count)
	assert.Len(t, pc.Positions, 3*pc.Count)
	assert.Len(t, pc.Colors, 3*pc.Count)
	assert.Len(t, pc.Sizes, pc.Count)
}

func TestDecodeColorClamp(t *testing.T) {
	records := [][]float32{
		{0, 0, 0, 1e6, -1e6, 0, 0, 0, 0, 0},
	}
	buf := buildFile(t, 1, fullFields, records)

	pc, err := Decode(buf, Options{})
	require.NoError(t, err)

	assert.Equal(t, float32(1), pc.Colors[0])
	assert.Equal(t, float32(0), pc.Colors[1])
	for _, c := range pc.Colors {
		assert.GreaterOrEqual(t, c, float32(0))
		assert.LessOrEqual(t, c, float32(1))
	}
}

func TestDecodeDeterministic(t *testing.T) {
	records := [][]float32{
		{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		{-5, 12, 0.003, -2, 3, -4, 5, -6, 7, -8},
	}
	buf := buildFile(t, 2, fullFields, records)

	a, err := Decode(buf, Options{})
	require.NoError(t, err)
	b, err := Decode(buf, Options{})
	require.NoError(t, err)

	assert.Equal(t, a.Positions, b.Positions)
	assert.Equal(t, a.Colors, b.Colors)
	assert.Equal(t, a.Sizes, b.Sizes)
}

func TestDecodePositionsOnlyDefaults(t *testing.T) {
	fields := []string{"x", "y", "z"}
	records := [][]float32{
		{1, 2, 3},
		{4, 5, 6},
	}
	buf := buildFile(t, 2, fields, records)

	pc, err := Decode(buf, Options{})
	require.NoError(t, err)

	for i := 0; i < pc.Count; i++ {
		assert.Equal(t, float32(1), pc.Colors[3*i+0])
		assert.Equal(t, float32(1), pc.Colors[3*i+1])
		assert.Equal(t, float32(1), pc.Colors[3*i+2])
		assert.Equal(t, float32(DefaultSizeScale), pc.Sizes[i])
	}
}

func TestDecodeSizeScaleOption(t *testing.T) {
	fields := []string{"x", "y", "z"}
	buf := buildFile(t, 1, fields, [][]float32{{0, 0, 0}})

	pc, err := Decode(buf, Options{SizeScale: 7})
	require.NoError(t, err)
	assert.Equal(t, float32(7), pc.Sizes[0])
}

func TestDecodeTruncatedPayload(t *testing.T) {
	records := [][]float32{
		{0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
		{1, 1, 1, 0, 0, 0, 0, 0, 0, 0},
	}
	buf := buildFile(t, 2, fullFields, records)

	// Cut half of the declared payload off.
	stride := len(fullFields) * 4
	cut := buf[:len(buf)-stride]

	_, err := Decode(cut, Options{})
	var me *MalformedError
	require.ErrorAs(t, err, &me)
	assert.Contains(t, me.Reason, "truncated")
}

func TestDecodeAbsurdDeclaredCount(t *testing.T) {
	// 2^60 vertices with a 16-byte stride would wrap a naive
	// count*stride size check to zero. Decode must reject the header,
	// not attempt the allocation.
	buf := buildFile(t, 1<<60, []string{"x", "y", "z", "opacity"},
		[][]float32{{0, 0, 0, 0}})

	var pc *PointCloud
	var err error
	require.NotPanics(t, func() { pc, err = Decode(buf, Options{}) })
	require.Nil(t, pc)
	var me *MalformedError
	require.ErrorAs(t, err, &me)
	assert.Contains(t, me.Reason, "truncated")
}

func TestDecodeNoVertexFields(t *testing.T) {
	buf := append(buildFile(t, 1, nil, nil), make([]byte, 12)...)

	_, err := Decode(buf, Options{})
	var me *MalformedError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "no vertex fields", me.Reason)
}

func TestDecodeZeroCount(t *testing.T) {
	buf := buildFile(t, 0, fullFields, nil)

	_, err := Decode(buf, Options{})
	var me *MalformedError
	require.ErrorAs(t, err, &me)
	assert.Contains(t, me.Reason, "truncated")
}

func TestParseHeaderMissingSentinel(t *testing.T) {
	buf := []byte("ply\nelement vertex 3\nproperty float x\n")

	_, err := parseHeader(buf)
	var me *MalformedError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "no header terminator", me.Reason)
}

func TestParseHeaderMissingVertexCount(t *testing.T) {
	buf := []byte("ply\nproperty float x\nend_header\n")

	_, err := parseHeader(buf)
	var me *MalformedError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "missing vertex count", me.Reason)
}

func TestParseHeaderFieldOrder(t *testing.T) {
	buf := []byte("element vertex 1\n" +
		"property float x\n" +
		"property float y\n" +
		"property float z\n" +
		"property float opacity\n" +
		"some unrecognized directive\n" +
		"end_header\n")

	h, err := parseHeader(buf)
	require.NoError(t, err)

	assert.Equal(t, 1, h.count)
	assert.Equal(t, []string{"x", "y", "z", "opacity"}, h.fields)
	assert.Equal(t, 16, h.stride())
	assert.Equal(t, 3, h.slot("opacity"))
	assert.Equal(t, -1, h.slot("scale_0"))
}

func TestParseHeaderCRLF(t *testing.T) {
	buf := []byte("element vertex 1\r\nproperty float x\r\nend_header\r\n" +
		"\x00\x00\x80\x3f")

	h, err := parseHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, 1, h.count)
	assert.Equal(t, len(buf)-4, h.byteLen)
}

func TestDecodeMissingPositions(t *testing.T) {
	fields := []string{"opacity"}
	buf := buildFile(t, 1, fields, [][]float32{{1}})

	_, err := Decode(buf, Options{})
	var me *MalformedError
	require.ErrorAs(t, err, &me)
	assert.Contains(t, me.Reason, "position")
}
