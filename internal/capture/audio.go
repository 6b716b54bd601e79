package capture

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// MaxAudioBytes is the largest payload accepted for transcription.
const MaxAudioBytes = 25 * 1024 * 1024

var (
	ErrAudioTooLarge = errors.New("audio too large")
	ErrNotAudio      = errors.New("not an audio file")
	ErrEmptyAudio    = errors.New("no audio captured")
)

// Audio is one assembled recording or selected file.
type Audio struct {
	Name      string
	MediaType string
	Data      []byte
}

// Size returns the payload length in bytes.
func (a Audio) Size() int64 { return int64(len(a.Data)) }

// CheckSize rejects payloads above MaxAudioBytes. Exactly the limit passes.
func CheckSize(n int64) error {
	if n > MaxAudioBytes {
		return fmt.Errorf("%w: %s exceeds %s", ErrAudioTooLarge,
			humanize.IBytes(uint64(n)), humanize.IBytes(MaxAudioBytes))
	}

	return nil
}

// containers that carry audio but are reported under video/ by sniffers.
var audioContainers = map[string]bool{
	"video/webm": true,
	"video/mp4":  true,
	"video/ogg":  true,
}

// IsAudioMediaType reports whether a media type names audio content.
// Parameters such as "; codecs=opus" are ignored.
func IsAudioMediaType(mediaType string) bool {
	mt, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(mediaType)), ";")
	mt = strings.TrimSpace(mt)

	return strings.HasPrefix(mt, "audio/") || audioContainers[mt]
}
