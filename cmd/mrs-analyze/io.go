package main

import (
	"bufio"
	"encoding/binary"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	mrs "github.com/tphakala/go-mrs"
)

const (
	// WAV export
	wavBitDepth     = 24
	wavChannels     = 2 // off-resonance left, on-resonance right
	wavPCMFormat    = 1
	maxInt24        = 8388607.0
	wavHeadroom     = 0.9
	readerBufferLen = 256 * 1024
)

// readRawFile reads n complex samples from a raw dump.
func readRawFile(path, format string, n int) ([]complex128, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return readRaw(bufio.NewReaderSize(f, readerBufferLen), format, n)
}

// readRaw decodes n little-endian interleaved (real, imag) pairs.
func readRaw(r io.Reader, format string, n int) ([]complex128, error) {
	out := make([]complex128, n)
	switch format {
	case formatComplex64:
		buf := make([]float32, 2*n)
		if err := binary.Read(r, binary.LittleEndian, buf); err != nil {
			return nil, rawReadError(err, n)
		}
		for i := range out {
			out[i] = complex(float64(buf[2*i]), float64(buf[2*i+1]))
		}
	case formatComplex128:
		buf := make([]float64, 2*n)
		if err := binary.Read(r, binary.LittleEndian, buf); err != nil {
			return nil, rawReadError(err, n)
		}
		for i := range out {
			out[i] = complex(buf[2*i], buf[2*i+1])
		}
	default:
		return nil, fmt.Errorf("unknown sample format %q", format)
	}
	return out, nil
}

func rawReadError(err error, n int) error {
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return fmt.Errorf("input holds fewer than %d samples: %w", n, mrs.ErrShape)
	}
	return fmt.Errorf("failed to read samples: %w", err)
}

func writeCSVFile(path string, s *mrs.Spectra) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := s.WriteCSV(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// writeSingleVoxelCSV writes the ppm axis and the mean spectrum.
func writeSingleVoxelCSV(path string, res *mrs.SingleVoxelResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = f.Close() }()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"ppm", "spectrum"}); err != nil {
		return err
	}
	for i, ppm := range res.PPM {
		row := []string{
			strconv.FormatFloat(ppm, 'g', -1, 64),
			strconv.FormatFloat(res.Mean[i], 'g', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return f.Close()
}

// meanFID averages the real part of every transient's FID per resonance.
func meanFID(s *mrs.Series) [][]float64 {
	out := make([][]float64, s.Resonances)
	for r := range out {
		out[r] = make([]float64, s.Time)
		for tr := range s.Transients {
			for i, v := range s.Row(tr, r) {
				out[r][i] += real(v)
			}
		}
		for i := range out[r] {
			out[r][i] /= float64(s.Transients)
		}
	}
	return out
}

// writeFIDWAV writes the mean off- and on-resonance FIDs as the left and
// right channels of a 24-bit WAV, peak normalized with headroom.
func writeFIDWAV(path string, s *mrs.Series, sampleRate int) error {
	if s == nil || s.Resonances < wavChannels {
		return fmt.Errorf("FID export needs %d resonances", wavChannels)
	}
	fids := meanFID(s)

	var peak float64
	for _, ch := range fids[:wavChannels] {
		for _, v := range ch {
			peak = math.Max(peak, math.Abs(v))
		}
	}
	scale := 0.0
	if peak > 0 {
		scale = wavHeadroom * maxInt24 / peak
	}

	data := make([]int, wavChannels*s.Time)
	for i := range s.Time {
		for ch := range wavChannels {
			data[i*wavChannels+ch] = int(math.Round(fids[ch][i] * scale))
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create WAV file: %w", err)
	}

	enc := wav.NewEncoder(f, sampleRate, wavBitDepth, wavChannels, wavPCMFormat)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: wavChannels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: wavBitDepth,
	}
	if err := enc.Write(buf); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write WAV data: %w", err)
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to finalize WAV file: %w", err)
	}
	return f.Close()
}
