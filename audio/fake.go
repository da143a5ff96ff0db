package audio

import (
	"sync"
	"time"
)

const fakeChunkFrames = 1024

// FakeSystem plays a fixed PCM clip through the Stream interface. Start
// delivers the whole clip synchronously, then emits silence until Stop, which
// mimics a speaker who finishes the memo and leaves the mic open.
type FakeSystem struct {
	pcm []byte
}

func NewFakeSystem(pcm []byte) *FakeSystem {
	return &FakeSystem{pcm: pcm}
}

func (f *FakeSystem) Inputs() ([]Device, error) {
	return []Device{{ID: "fake", Name: "fake mic"}}, nil
}

func (f *FakeSystem) OpenStream(_ *Device, _ StreamConfig) (Stream, error) {
	return &FakeStream{pcm: f.pcm}, nil
}

func (f *FakeSystem) Close() {}

type FakeStream struct {
	pcm []byte

	mu   sync.Mutex
	cb   PCMCallback
	stop chan struct{}
	done chan struct{}
}

func (f *FakeStream) SetCallback(cb PCMCallback) {
	f.mu.Lock()
	f.cb = cb
	f.mu.Unlock()
}

func (f *FakeStream) ClearCallback() {
	f.mu.Lock()
	f.cb = nil
	f.mu.Unlock()
}

func (f *FakeStream) loadCallback() PCMCallback {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cb
}

func (f *FakeStream) Start() error {
	f.stop = make(chan struct{})
	f.done = make(chan struct{})

	chunkBytes := fakeChunkFrames * 2
	if cb := f.loadCallback(); cb != nil {
		for pos := 0; pos < len(f.pcm); pos += chunkBytes {
			end := min(pos+chunkBytes, len(f.pcm))
			chunk := make([]byte, end-pos)
			copy(chunk, f.pcm[pos:end])
			cb(chunk, uint32(len(chunk)/2))
		}
	}

	go func() {
		defer close(f.done)
		silence := make([]byte, chunkBytes)
		for {
			select {
			case <-f.stop:
				return
			case <-time.After(time.Millisecond):
			}
			if cb := f.loadCallback(); cb != nil {
				cb(silence, fakeChunkFrames)
			}
		}
	}()

	return nil
}

func (f *FakeStream) Stop() {
	if f.stop == nil {
		return
	}
	select {
	case <-f.stop:
	default:
		close(f.stop)
	}
	<-f.done
}

func (f *FakeStream) Close() {
	f.Stop()
}
