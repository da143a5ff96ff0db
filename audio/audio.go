// Package audio captures microphone input for voice memos: 16-bit mono PCM
// pulled from PulseAudio on linux and miniaudio elsewhere, delivered to a
// callback in whatever chunk size the platform produces.
package audio

import "strings"

// PCMCallback receives raw little-endian s16 mono samples. frames is the
// sample count, len(pcm) is frames*2.
type PCMCallback func(pcm []byte, frames uint32)

// StreamConfig is the capture format requested from the platform.
type StreamConfig struct {
	SampleRate uint32
	Channels   uint32
}

// Device is one capture-capable input.
type Device struct {
	ID   string // opaque platform identifier
	Name string
}

// System is a handle on the platform audio layer. Open it once per process
// and close it after the last stream is done.
type System interface {
	Inputs() ([]Device, error)
	OpenStream(device *Device, cfg StreamConfig) (Stream, error)
	Close()
}

// Stream is a single capture stream. The callback may be set or cleared at
// any time, including while the stream is running.
type Stream interface {
	Start() error
	Stop()
	Close()
	SetCallback(cb PCMCallback)
	ClearCallback()
}

// Bluetooth mics drop to the low-bitrate HFP profile while capturing, which
// audibly hurts transcription. Detection is by name because neither backend
// exposes the transport.
var btKeywords = []string{
	"bluetooth", " bt ", " bt)", " bt]",
	"airpods", "beats", "powerbeats",
	"bose", "jabra", "jbl ",
	"wh-1000", "wf-1000", "sony wh-", "sony wf-",
	"galaxy buds", "pixel buds",
	"sennheiser momentum", "plantronics",
	"tozo", "anker soundcore", "skullcandy",
}

func IsBluetooth(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range btKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
