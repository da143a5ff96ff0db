package encoder

import (
	"bytes"
	"encoding/binary"
)

const wavHeaderSize = 44

// WavEncoder writes uncompressed PCM with a RIFF header. The header is
// written with zero sizes up front and patched on Close, so Bytes is only
// valid after Close.
type WavEncoder struct {
	encodeStats
	buf    bytes.Buffer
	closed bool
}

func NewWav() *WavEncoder {
	e := &WavEncoder{}
	e.writeHeader(0)
	return e
}

func (e *WavEncoder) writeHeader(dataSize uint32) {
	var h [wavHeaderSize]byte
	copy(h[0:4], "RIFF")
	binary.LittleEndian.PutUint32(h[4:8], 36+dataSize)
	copy(h[8:12], "WAVE")

	copy(h[12:16], "fmt ")
	binary.LittleEndian.PutUint32(h[16:20], 16) // PCM fmt chunk size
	binary.LittleEndian.PutUint16(h[20:22], 1)  // PCM
	binary.LittleEndian.PutUint16(h[22:24], Channels)
	binary.LittleEndian.PutUint32(h[24:28], SampleRate)
	binary.LittleEndian.PutUint32(h[28:32], SampleRate*Channels*BitsPerSample/8)
	binary.LittleEndian.PutUint16(h[32:34], Channels*BitsPerSample/8)
	binary.LittleEndian.PutUint16(h[34:36], BitsPerSample)

	copy(h[36:40], "data")
	binary.LittleEndian.PutUint32(h[40:44], dataSize)

	e.buf.Write(h[:])
}

func (e *WavEncoder) EncodeBlock(block []int16) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	raw := make([]byte, len(block)*2)
	for i, s := range block {
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(s))
	}
	e.buf.Write(raw)
	e.totalFrames += uint64(len(block))
	return nil
}

func (e *WavEncoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true

	// Bytes() aliases the buffer, so the sizes can be patched in place.
	b := e.buf.Bytes()
	dataSize := uint32(len(b) - wavHeaderSize)
	binary.LittleEndian.PutUint32(b[4:8], 36+dataSize)
	binary.LittleEndian.PutUint32(b[40:44], dataSize)
	return nil
}

func (e *WavEncoder) Bytes() []byte {
	return e.buf.Bytes()
}
