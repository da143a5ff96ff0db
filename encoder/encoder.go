package encoder

import (
	"fmt"
	"sync"
	"time"
)

const (
	SampleRate    = 16000
	Channels      = 1
	BitsPerSample = 16
	BlockSize     = 4096
)

type Encoder interface {
	EncodeBlock(block []int16) error
	Close() error
	Bytes() []byte
	TotalFrames() uint64
	AddEncodeTime(d time.Duration)
	EncodeTime() time.Duration
}

// encodeStats tracks what every encoder reports regardless of codec: how
// many frames went in and how long encoding took. The mutex also guards the
// owning encoder's buffer, since the capture callback and the stop path run
// on different goroutines.
type encodeStats struct {
	mu          sync.Mutex
	totalFrames uint64
	encodeTime  time.Duration
}

func (s *encodeStats) TotalFrames() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalFrames
}

func (s *encodeStats) AddEncodeTime(d time.Duration) {
	s.mu.Lock()
	s.encodeTime += d
	s.mu.Unlock()
}

func (s *encodeStats) EncodeTime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.encodeTime
}

// New returns an encoder for the configured audio format along with the
// file extension its output should be saved under.
func New(format string) (Encoder, string, error) {
	switch format {
	case "flac":
		enc, err := NewFlac()
		return enc, "flac", err
	case "wav":
		return NewWav(), "wav", nil
	default:
		return nil, "", fmt.Errorf("unknown audio format %q (use wav or flac)", format)
	}
}
