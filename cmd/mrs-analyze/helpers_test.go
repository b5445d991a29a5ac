package main

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	flag "github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mrs "github.com/tphakala/go-mrs"
	"github.com/tphakala/go-mrs/internal/acquisition"
	"github.com/tphakala/go-mrs/internal/testutil"
)

func parseFlags(t *testing.T, argv ...string) *flag.FlagSet {
	t.Helper()
	fs := newFlagSet()
	require.NoError(t, fs.Parse(argv))
	return fs
}

func TestReadRaw_Complex64(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, []float32{1, 2, -3, 4.5}))

	got, err := readRaw(&buf, formatComplex64, 2)
	require.NoError(t, err)
	assert.Equal(t, []complex128{1 + 2i, -3 + 4.5i}, got)
}

func TestReadRaw_Complex128(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, []float64{0.25, -1, 7, 0}))

	got, err := readRaw(&buf, formatComplex128, 2)
	require.NoError(t, err)
	assert.Equal(t, []complex128{0.25 - 1i, 7}, got)
}

func TestReadRaw_Short(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, []float32{1, 2, 3}))

	_, err := readRaw(&buf, formatComplex64, 2)
	assert.ErrorIs(t, err, mrs.ErrShape)

	_, err = readRaw(bytes.NewReader(nil), formatComplex64, 1)
	assert.ErrorIs(t, err, mrs.ErrShape)
}

func TestReadRaw_UnknownFormat(t *testing.T) {
	_, err := readRaw(bytes.NewReader(nil), "int16", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown sample format")
}

func TestReadRawFile_NotFound(t *testing.T) {
	_, err := readRawFile("/nonexistent/scan.raw", formatComplex64, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open input file")
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(parseFlags(t))
	require.NoError(t, err)

	want := mrs.DefaultConfig()
	assert.Equal(t, want.FilterOrder, cfg.FilterOrder)
	assert.Equal(t, want.WaterTransients, cfg.WaterTransients)
	assert.Equal(t, want.CreatineBounds, cfg.CreatineBounds)
	assert.InDelta(t, want.SamplingRate, cfg.SamplingRate, 0)
}

func TestLoadConfig_FileAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mrs.yaml")
	yaml := `sampling_rate: 2000
filter_order: 64
subtract_water: true
reference:
  centerppm: 4.75
creatine_bounds:
  lower: 2.75
  upper: 3.25
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := loadConfig(parseFlags(t, "--config", path, "--filter-order", "32", "--water", "1,2"))
	require.NoError(t, err)

	assert.InDelta(t, 2000.0, cfg.SamplingRate, 0, "from file")
	assert.Equal(t, 32, cfg.FilterOrder, "flag overrides file")
	assert.True(t, cfg.SubtractWater)
	assert.InDelta(t, 4.75, cfg.Reference.CenterPPM, 0)
	assert.InDelta(t, 127.68, cfg.Reference.HzPerPPM, 0, "unset nested key keeps default")
	assert.Equal(t, mrs.Bounds{Lower: 2.75, Upper: 3.25}, cfg.CreatineBounds)
	assert.Equal(t, []int{1, 2}, cfg.WaterTransients)
	assert.Equal(t, 1024, cfg.NFFT, "untouched keys keep defaults")
}

func TestLoadConfig_FilterBandAndPhaseFlags(t *testing.T) {
	cfg, err := loadConfig(parseFlags(t,
		"--filter-low-hz", "10", "--filter-high-hz", "900",
		"--phase0", "0.5", "--phase1", "0.001"))
	require.NoError(t, err)

	assert.InDelta(t, 10.0, cfg.FilterLowHz, 0)
	assert.InDelta(t, 900.0, cfg.FilterHighHz, 0)
	assert.InDelta(t, 0.5, cfg.ZeroOrderPhase, 0)
	assert.InDelta(t, 0.001, cfg.FirstOrderPhase, 0)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := loadConfig(parseFlags(t, "--config", "/nonexistent/mrs.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, err := loadConfig(parseFlags(t, "--min-ppm", "5"))
	assert.ErrorIs(t, err, mrs.ErrInvalidConfig)
}

func TestReadOptions(t *testing.T) {
	o, err := readOptions(parseFlags(t, "--shape", "256,8,2,4", "--format", "COMPLEX128", "--single-voxel"))
	require.NoError(t, err)
	assert.Equal(t, []int{256, 8, 2, 4}, o.shape)
	assert.Equal(t, formatComplex128, o.format)
	assert.True(t, o.singleVoxel)

	_, err = readOptions(parseFlags(t, "--shape", "256,8"))
	assert.Error(t, err)

	_, err = readOptions(parseFlags(t, "--shape", "256,8,4", "--format", "int8"))
	assert.Error(t, err)
}

func TestMeanFID(t *testing.T) {
	s := acquisition.NewSeries(2, 2, 3)
	copy(s.Row(0, 0), []complex128{1, 2, 3})
	copy(s.Row(1, 0), []complex128{3, 4 + 1i, 5})
	copy(s.Row(0, 1), []complex128{-1, 0, 1})
	copy(s.Row(1, 1), []complex128{-3, 0, 1})

	fids := meanFID(s)
	assert.Equal(t, []float64{2, 3, 4}, fids[0])
	assert.Equal(t, []float64{-2, 0, 1}, fids[1])
}

func TestWriteFIDWAV(t *testing.T) {
	s := acquisition.NewSeries(1, 2, 64)
	for i := range 64 {
		s.Row(0, 0)[i] = complex(float64(64-i), 0)
		s.Row(0, 1)[i] = complex(-float64(i), 0)
	}
	path := filepath.Join(t.TempDir(), "fid.wav")
	require.NoError(t, writeFIDWAV(path, s, 2000))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	dec := wav.NewDecoder(f)
	require.True(t, dec.IsValidFile())
	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)

	assert.Equal(t, 2, buf.Format.NumChannels)
	assert.Equal(t, 2000, buf.Format.SampleRate)
	assert.Equal(t, uint16(24), dec.BitDepth)
	require.Len(t, buf.Data, 128)
	headroom := wavHeadroom * maxInt24
	assert.Equal(t, int(math.Round(headroom)), buf.Data[0], "left channel peaks at the headroom")
	assert.Equal(t, 0, buf.Data[1])
	assert.Negative(t, buf.Data[127])
}

func TestWriteFIDWAV_NeedsTwoResonances(t *testing.T) {
	s := acquisition.NewSeries(1, 1, 8)
	assert.Error(t, writeFIDWAV(filepath.Join(t.TempDir(), "x.wav"), s, 2000))
}

func writeRaw(t *testing.T, path string, data []complex128) {
	t.Helper()
	buf := make([]float32, 2*len(data))
	for i, v := range data {
		buf[2*i] = float32(real(v))
		buf[2*i+1] = float32(imag(v))
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, binary.Write(f, binary.LittleEndian, buf))
	require.NoError(t, f.Close())
}

func TestRun_EndToEnd(t *testing.T) {
	syn := testutil.Synth{
		Time: 256, Transients: 8, Resonances: 2, Coils: 2,
		SamplingRate: 2000, HzPerPPM: 127.68, CenterPPM: 4.7,
		CoilGains:       []complex128{1, 0.3i},
		WaterTransients: acquisition.DefaultWaterTransients,
		Water:           testutil.Line{PPM: 4.7, Amplitude: 50, T2: 0.08},
		Lines:           []testutil.Line{{PPM: 3.0, Amplitude: 1, T2: 0.05}},
		EditedLines:     []testutil.Line{{PPM: 3.0, Amplitude: 0.3, T2: 0.04}},
		Noise:           1e-3,
		Seed:            3,
	}
	data, _ := syn.Generate()

	dir := t.TempDir()
	in := filepath.Join(dir, "scan.raw")
	out := filepath.Join(dir, "spectra.csv")
	fid := filepath.Join(dir, "fid.wav")
	writeRaw(t, in, data)

	err := run([]string{
		"--shape", "256,8,2,2", "--sampling-rate", "2000",
		"--filter-order", "64", "--filter-high-hz", "500",
		"--fid-wav", fid, in, out,
	})
	require.NoError(t, err)

	csvData, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(csvData, []byte("ppm,echo1,echo2,diff,sum\n")))

	_, err = os.Stat(fid)
	assert.NoError(t, err)
}

func TestRun_InsufficientArgs(t *testing.T) {
	err := run([]string{"--shape", "4,4,2,1", "only-input.raw"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient arguments")
}
