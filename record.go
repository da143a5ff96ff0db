package main

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"voxnote/audio"
	"voxnote/config"
	"voxnote/encoder"
	"voxnote/log"
	"voxnote/shutdown"
)

// recordToFile captures microphone audio until Enter or an interrupt, then
// encodes it and writes it under the configured audio directory. Returns
// the file path and the recorded duration in whole seconds; an empty path
// means the capture was too short to keep.
func recordToFile(cfg *config.Config, deviceName string, setup bool) (string, int, error) {
	sys, err := audio.Open()
	if err != nil {
		return "", 0, fmt.Errorf("initializing audio: %w", err)
	}
	defer sys.Close()

	device, err := pickDevice(sys, deviceName, setup)
	if err != nil {
		return "", 0, err
	}
	if device != nil {
		fmt.Printf("Using device: %s\n", device.Name)
		if audio.IsBluetooth(device.Name) {
			fmt.Println("Warning: bluetooth microphones record at lower quality")
		}
	}

	enc, ext, err := encoder.New(cfg.Format)
	if err != nil {
		return "", 0, err
	}

	stream, err := sys.OpenStream(device, audio.StreamConfig{
		SampleRate: encoder.SampleRate,
		Channels:   encoder.Channels,
	})
	if err != nil {
		return "", 0, fmt.Errorf("initializing capture device: %w", err)
	}
	defer stream.Close()

	var mu sync.Mutex
	var pending []int16
	var totalFrames uint64
	var encodeErr error
	stopped := false

	stream.SetCallback(func(pcm []byte, frames uint32) {
		mu.Lock()
		defer mu.Unlock()
		if stopped {
			return
		}
		totalFrames += uint64(frames)
		for i := 0; i+1 < len(pcm); i += 2 {
			pending = append(pending, int16(binary.LittleEndian.Uint16(pcm[i:])))
		}
		for len(pending) >= encoder.BlockSize {
			encStart := time.Now()
			if err := enc.EncodeBlock(pending[:encoder.BlockSize]); err != nil && encodeErr == nil {
				encodeErr = err
			}
			enc.AddEncodeTime(time.Since(encStart))
			pending = pending[encoder.BlockSize:]
		}
	})

	if err := stream.Start(); err != nil {
		stream.ClearCallback()
		return "", 0, fmt.Errorf("starting capture: %w", err)
	}

	fmt.Println("Recording... press Enter to stop.")
	waitForStop()

	stream.Stop()
	stream.ClearCallback()

	mu.Lock()
	stopped = true
	if encodeErr == nil && len(pending) > 0 {
		encodeErr = enc.EncodeBlock(pending)
	}
	frames := totalFrames
	mu.Unlock()

	if encodeErr != nil {
		return "", 0, fmt.Errorf("encoding audio: %w", encodeErr)
	}
	if err := enc.Close(); err != nil {
		return "", 0, fmt.Errorf("finalizing audio: %w", err)
	}

	durationS, keep := recordingDuration(frames)
	if !keep {
		return "", 0, nil
	}

	if err := os.MkdirAll(cfg.AudioDir, 0o755); err != nil {
		return "", 0, fmt.Errorf("creating audio dir: %w", err)
	}
	path := filepath.Join(cfg.AudioDir, fmt.Sprintf("voice_note_%d.%s", time.Now().UnixMilli(), ext))
	if err := os.WriteFile(path, enc.Bytes(), 0o600); err != nil {
		return "", 0, fmt.Errorf("writing audio file: %w", err)
	}
	log.Info("recording_saved: " + path)
	return path, durationS, nil
}

// recordingDuration converts captured frames to whole seconds and reports
// whether the capture is long enough to keep. Sub-100ms captures are key
// taps, not memos; anything longer is kept even when it truncates to zero
// whole seconds.
func recordingDuration(frames uint64) (int, bool) {
	if frames < encoder.SampleRate/10 {
		return 0, false
	}
	return int(frames / encoder.SampleRate), true
}

func pickDevice(sys audio.System, deviceName string, setup bool) (*audio.Device, error) {
	if deviceName != "" {
		devices, err := sys.Inputs()
		if err != nil {
			return nil, fmt.Errorf("enumerating devices: %w", err)
		}
		for i := range devices {
			if devices[i].Name == deviceName {
				return &devices[i], nil
			}
		}
		return nil, fmt.Errorf("device %q not found", deviceName)
	}
	if setup {
		device, err := audio.SelectDevice(sys)
		if err != nil {
			log.Warnf("device selection failed: %v", err)
			fmt.Printf("Warning: device selection failed: %v\n", err)
			fmt.Println("Falling back to default device")
			return nil, nil
		}
		return device, nil
	}
	return nil, nil
}

// waitForStop blocks until Enter is pressed or a termination signal lands.
func waitForStop() {
	enter := make(chan struct{})
	go func() {
		bufio.NewReader(os.Stdin).ReadString('\n')
		close(enter)
	}()

	select {
	case <-enter:
	case <-shutdown.Signals():
		fmt.Println()
	}
}
