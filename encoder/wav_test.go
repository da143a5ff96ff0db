package encoder

import (
	"encoding/binary"
	"testing"
)

func TestWavEncoderHeader(t *testing.T) {
	samples := sineSamples(BlockSize + BlockSize/2)

	enc := NewWav()
	if err := enc.EncodeBlock(samples); err != nil {
		t.Fatalf("EncodeBlock: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data := enc.Bytes()
	wantLen := wavHeaderSize + len(samples)*2
	if len(data) != wantLen {
		t.Fatalf("len = %d, want %d", len(data), wantLen)
	}

	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Fatal("missing RIFF/WAVE magic")
	}
	if got := binary.LittleEndian.Uint32(data[24:28]); got != SampleRate {
		t.Errorf("sample rate = %d, want %d", got, SampleRate)
	}
	if got := binary.LittleEndian.Uint16(data[22:24]); got != Channels {
		t.Errorf("channels = %d, want %d", got, Channels)
	}
	if got := binary.LittleEndian.Uint32(data[40:44]); got != uint32(len(samples)*2) {
		t.Errorf("data size = %d, want %d", got, len(samples)*2)
	}
	if got := binary.LittleEndian.Uint32(data[4:8]); got != uint32(36+len(samples)*2) {
		t.Errorf("riff size = %d, want %d", got, 36+len(samples)*2)
	}
}

func TestWavEncoderSampleRoundTrip(t *testing.T) {
	samples := []int16{0, 1, -1, 32767, -32768, 1234}

	enc := NewWav()
	if err := enc.EncodeBlock(samples); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}

	data := enc.Bytes()[wavHeaderSize:]
	for i, want := range samples {
		got := int16(binary.LittleEndian.Uint16(data[i*2:]))
		if got != want {
			t.Errorf("sample %d = %d, want %d", i, got, want)
		}
	}
	if enc.TotalFrames() != uint64(len(samples)) {
		t.Errorf("TotalFrames = %d, want %d", enc.TotalFrames(), len(samples))
	}
}

func TestWavEncoderDoubleClose(t *testing.T) {
	enc := NewWav()
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal("second Close should be a no-op")
	}
	if len(enc.Bytes()) != wavHeaderSize {
		t.Errorf("empty wav = %d bytes, want %d", len(enc.Bytes()), wavHeaderSize)
	}
}

func TestNewFormatFactory(t *testing.T) {
	for _, tt := range []struct{ format, ext string }{
		{"wav", "wav"},
		{"flac", "flac"},
	} {
		enc, ext, err := New(tt.format)
		if err != nil {
			t.Fatalf("New(%q): %v", tt.format, err)
		}
		if enc == nil || ext != tt.ext {
			t.Errorf("New(%q) = %v, %q", tt.format, enc, ext)
		}
	}
	if _, _, err := New("mp3"); err == nil {
		t.Error("expected error for unsupported format")
	}
}
