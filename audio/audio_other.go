//go:build !linux

package audio

import (
	"encoding/hex"
	"fmt"
	"sync/atomic"

	"github.com/gen2brain/malgo"
)

type malgoSystem struct {
	ctx *malgo.AllocatedContext
}

func Open() (System, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, err
	}
	return &malgoSystem{ctx: ctx}, nil
}

func (m *malgoSystem) Inputs() ([]Device, error) {
	devices, err := m.ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("malgo devices: %w", err)
	}
	var result []Device
	for _, d := range devices {
		result = append(result, Device{
			ID:   hex.EncodeToString(d.ID.Pointer()[:]),
			Name: d.Name(),
		})
	}
	return result, nil
}

// OpenStream initializes the miniaudio device up front; malgo takes its data
// callback at init time, so the stream routes it through an atomic pointer
// that SetCallback/ClearCallback swap later.
func (m *malgoSystem) OpenStream(device *Device, cfg StreamConfig) (Stream, error) {
	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = cfg.Channels
	deviceConfig.SampleRate = cfg.SampleRate

	if device != nil {
		idBytes, err := hex.DecodeString(device.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid device ID: %w", err)
		}
		var devID malgo.DeviceID
		copy(devID[:], idBytes)
		deviceConfig.Capture.DeviceID = devID.Pointer()
	}

	stream := &malgoStream{}
	callbacks := malgo.DeviceCallbacks{
		Data: func(_, pcm []byte, frames uint32) {
			if cb := stream.callback.Load(); cb != nil {
				(*cb)(pcm, frames)
			}
		},
	}

	dev, err := malgo.InitDevice(m.ctx.Context, deviceConfig, callbacks)
	if err != nil {
		return nil, err
	}
	stream.device = dev
	return stream, nil
}

func (m *malgoSystem) Close() {
	m.ctx.Uninit()
	m.ctx.Free()
}

type malgoStream struct {
	device   *malgo.Device
	callback atomic.Pointer[PCMCallback]
}

func (s *malgoStream) Start() error {
	return s.device.Start()
}

func (s *malgoStream) Stop() {
	s.device.Stop()
}

func (s *malgoStream) Close() {
	s.device.Uninit()
}

func (s *malgoStream) SetCallback(cb PCMCallback) {
	s.callback.Store(&cb)
}

func (s *malgoStream) ClearCallback() {
	s.callback.Store(nil)
}
