// Package capability implements intake.CapabilityProvider for the places
// the intake flow runs: a browser seen through its User-Agent, the local
// terminal, and fixed answers.
package capability

import (
	"context"
	"log/slog"
	"regexp"
	"runtime"
	"sync"

	"github.com/alkime/monshin/internal/audio"
)

var (
	iosPattern     = regexp.MustCompile(`iPad|iPhone|iPod`)
	safariPattern  = regexp.MustCompile(`Safari`)
	chromePattern  = regexp.MustCompile(`Chrome`)
	androidPattern = regexp.MustCompile(`Android`)
	firefoxPattern = regexp.MustCompile(`Firefox|FxiOS`)
	livePattern    = regexp.MustCompile(`Chrome|Chromium|Edg/|Safari`)
)

// UserAgent classifies a browser by its User-Agent header.
type UserAgent struct {
	ua string
}

func NewUserAgent(ua string) UserAgent { return UserAgent{ua: ua} }

func (u UserAgent) Platform() string {
	switch {
	case iosPattern.MatchString(u.ua):
		return "ios"
	case androidPattern.MatchString(u.ua):
		return "android"
	case u.ua == "":
		return "unknown"
	default:
		return "desktop"
	}
}

// MobileWithoutLiveRecognition is iOS Safari: iOS device, Safari token,
// no Chrome token.
func (u UserAgent) MobileWithoutLiveRecognition() bool {
	return iosPattern.MatchString(u.ua) &&
		safariPattern.MatchString(u.ua) &&
		!chromePattern.MatchString(u.ua)
}

// LiveRecognitionSupported guesses from the engine. Firefox ships no
// speech recognition; Chromium and WebKit do.
func (u UserAgent) LiveRecognitionSupported() bool {
	if firefoxPattern.MatchString(u.ua) {
		return false
	}

	return livePattern.MatchString(u.ua)
}

// DeviceLister is the part of audio.Device the terminal probe needs.
type DeviceLister interface {
	EnumerateDevices(ctx context.Context) ([]audio.Info, error)
}

// Terminal probes the local machine once, on first use.
type Terminal struct {
	lister      DeviceLister
	liveEnabled bool

	once      sync.Once
	hasDevice bool
}

// NewTerminal supports live recognition only when liveEnabled and a
// capture device is present.
func NewTerminal(lister DeviceLister, liveEnabled bool) *Terminal {
	return &Terminal{lister: lister, liveEnabled: liveEnabled}
}

func (t *Terminal) Platform() string { return runtime.GOOS + "/terminal" }

func (t *Terminal) MobileWithoutLiveRecognition() bool { return false }

func (t *Terminal) LiveRecognitionSupported() bool {
	t.once.Do(func() {
		devices, err := t.lister.EnumerateDevices(context.Background())
		if err != nil {
			slog.Warn("capture device probe failed", "error", err)
			return
		}

		t.hasDevice = len(devices) > 0
		slog.Info("capture device probe", "devices", len(devices))
	})

	return t.liveEnabled && t.hasDevice
}

// Static returns fixed answers.
type Static struct {
	Name   string
	Mobile bool
	Live   bool
}

func (s Static) Platform() string                   { return s.Name }
func (s Static) MobileWithoutLiveRecognition() bool { return s.Mobile }
func (s Static) LiveRecognitionSupported() bool     { return s.Live }
