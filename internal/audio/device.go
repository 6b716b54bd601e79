// Package audio wraps the microphone (malgo) and MP3 encoding (shine-mp3)
// used by the capture adapters.
package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/alkime/monshin/pkg/channels"
	"github.com/alkime/monshin/pkg/collections"
	"github.com/gen2brain/malgo"
)

// ErrDeviceUnavailable is returned when no capture device can be opened.
var ErrDeviceUnavailable = errors.New("audio capture device unavailable")

// DataPacket is one chunk of S16LE PCM delivered by the device callback.
type DataPacket = []byte

// DeviceConfig describes the PCM format requested from the microphone.
type DeviceConfig struct {
	Format          malgo.FormatType
	CaptureChannels int
	SampleRate      int
}

// DefaultDeviceConfig is 16 kHz mono S16, Whisper's native format.
func DefaultDeviceConfig() *DeviceConfig {
	return &DeviceConfig{
		Format:          malgo.FormatS16,
		CaptureChannels: DefaultChannels,
		SampleRate:      DefaultSampleRate,
	}
}

// Device is a capture-only microphone handle. It is a scoped resource:
// Capture acquires it and Release must be called on every exit path.
type Device interface {
	// EnumerateDevices lists available capture devices.
	// It ignores any device configuration passed in.
	EnumerateDevices(ctx context.Context) ([]Info, error)

	// Capture acquires the microphone and starts delivering packets into a
	// fresh channel. Packets are dropped, not queued, when the reader lags.
	Capture(ctx context.Context) (<-chan DataPacket, error)

	// IsStarted returns whether the device is currently capturing.
	IsStarted() bool

	// Release stops the device, frees it and closes the packet channel.
	// Safe to call more than once and on a device that never started.
	Release()
}

type device struct {
	conf *DeviceConfig

	mu       sync.Mutex
	mgCtx    *malgo.AllocatedContext
	mgDevice *malgo.Device
	dataC    chan DataPacket
}

// NewDevice creates a device handle. Nothing is acquired until Capture.
func NewDevice(conf *DeviceConfig) Device {
	if conf == nil {
		conf = DefaultDeviceConfig()
	}

	return &device{conf: conf}
}

func (d *device) EnumerateDevices(_ context.Context) ([]Info, error) {
	// Initialize an empty context. This is fine for just enumerating the
	// available devices.
	devCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}
	defer uninitializeContext(devCtx)

	captureDevices, err := devCtx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("failed to get capture devices: %w", err)
	}

	return collections.Apply(captureDevices, malgoDeviceInfoToDeviceInfo), nil
}

func (d *device) Capture(_ context.Context) (<-chan DataPacket, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.mgDevice != nil {
		return nil, errors.New("device already capturing")
	}

	dataC := make(chan DataPacket, 64)

	mgCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to initialize malgo context: %w", ErrDeviceUnavailable, err)
	}

	devCnf := malgo.DefaultDeviceConfig(malgo.Capture)
	devCnf.Capture.Format = d.conf.Format
	devCnf.Capture.Channels = uint32(d.conf.CaptureChannels)
	devCnf.SampleRate = uint32(d.conf.SampleRate)

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, samples []byte, _ uint32) {
			// malgo reuses the sample buffer between callbacks.
			packet := make([]byte, len(samples))
			copy(packet, samples)
			_ = channels.SendNonBlock(dataC, packet)
		},
	}

	mgDevice, err := malgo.InitDevice(mgCtx.Context, devCnf, callbacks)
	if err != nil {
		uninitializeContext(mgCtx)
		return nil, fmt.Errorf("%w: failed to initialize malgo device: %w", ErrDeviceUnavailable, err)
	}

	if err := mgDevice.Start(); err != nil {
		mgDevice.Uninit()
		uninitializeContext(mgCtx)
		return nil, fmt.Errorf("%w: failed to start malgo device: %w", ErrDeviceUnavailable, err)
	}

	d.mgCtx, d.mgDevice, d.dataC = mgCtx, mgDevice, dataC

	return dataC, nil
}

func (d *device) IsStarted() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.mgDevice != nil && d.mgDevice.IsStarted()
}

func (d *device) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.mgDevice == nil {
		return
	}

	if err := d.mgDevice.Stop(); err != nil {
		slog.Warn("failed to stop malgo device", "error", err)
	}
	// Uninit waits for the data callback to return, so closing after it is safe.
	d.mgDevice.Uninit()
	uninitializeContext(d.mgCtx)
	close(d.dataC)

	d.mgDevice, d.mgCtx, d.dataC = nil, nil, nil
}

// Info describes one capture device.
type Info struct {
	Name        string
	IsDefault   bool
	FormatCount int
	Formats     []string
}

func malgoDeviceInfoToDeviceInfo(mdi malgo.DeviceInfo) Info {
	formats := make([]string, len(mdi.Formats))
	for i, mf := range mdi.Formats {
		formats[i] = fmt.Sprintf("(SampleSizeBytes: %d, Channels: %d, SampleRate: %d)",
			malgo.SampleSizeInBytes(mf.Format),
			mf.Channels, mf.SampleRate)
	}
	return Info{
		Name:        mdi.Name(),
		IsDefault:   mdi.IsDefault != 0,
		FormatCount: int(mdi.FormatCount),
		Formats:     formats,
	}
}

func uninitializeContext(deviceCtx *malgo.AllocatedContext) {
	if deviceCtx == nil {
		return
	}

	if err := deviceCtx.Uninit(); err != nil {
		slog.Error("failed to uninitialize malgo context", "error", err)
	}
	deviceCtx.Free()
}
