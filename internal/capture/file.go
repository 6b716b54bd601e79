package capture

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"
)

// declared media types by extension, limited to formats Whisper accepts.
var audioExtensions = map[string]string{
	".mp3":  "audio/mpeg",
	".mpga": "audio/mpeg",
	".mpeg": "audio/mpeg",
	".m4a":  "audio/mp4",
	".mp4":  "audio/mp4",
	".wav":  "audio/wav",
	".webm": "audio/webm",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".flac": "audio/flac",
}

// FileSource is the file-selection entry point of the recording adapter.
type FileSource struct {
	fs afero.Fs
}

// NewFileSource reads from fs. Pass afero.NewOsFs() for the real disk.
func NewFileSource(fs afero.Fs) *FileSource {
	return &FileSource{fs: fs}
}

// Open loads path as an Audio. The file is rejected with ErrNotAudio unless
// its extension declares an audio type or its content sniffs as audio, and
// with ErrAudioTooLarge before it is read when it exceeds MaxAudioBytes.
func (s *FileSource) Open(path string) (Audio, error) {
	info, err := s.fs.Stat(path)
	if err != nil {
		return Audio{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if info.IsDir() {
		return Audio{}, fmt.Errorf("%w: %s is a directory", ErrNotAudio, path)
	}

	if err := CheckSize(info.Size()); err != nil {
		return Audio{}, err
	}

	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return Audio{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	mediaType, ok := detectAudioType(path, data)
	if !ok {
		return Audio{}, fmt.Errorf("%w: %s", ErrNotAudio, path)
	}

	return Audio{
		Name:      filepath.Base(path),
		MediaType: mediaType,
		Data:      data,
	}, nil
}

func detectAudioType(path string, data []byte) (string, bool) {
	if declared, ok := audioExtensions[strings.ToLower(filepath.Ext(path))]; ok {
		return declared, true
	}

	sniffed := mimetype.Detect(data)
	for m := sniffed; m != nil; m = m.Parent() {
		if IsAudioMediaType(m.String()) {
			return m.String(), true
		}
	}

	return "", false
}
