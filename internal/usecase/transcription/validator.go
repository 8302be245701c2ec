package transcription

import (
	"strings"

	apperrors "github.com/innoviahub/meeting-transcription/errors"
	"github.com/innoviahub/meeting-transcription/internal/domain/entities"
)

// MaxAudioBytes is the hard upload ceiling: 25 MiB.
const MaxAudioBytes int64 = 25 * 1024 * 1024

// allowedContentTypes is matched exactly after lowercasing and trimming.
// Anything else is refused; the payload is never sniffed.
var allowedContentTypes = func() map[string]struct{} {
	m := make(map[string]struct{})
	for _, ct := range AllowedContentTypes() {
		m[ct] = struct{}{}
	}
	return m
}()

// AllowedContentTypes lists the accepted declared content types.
func AllowedContentTypes() []string {
	return []string{"audio/webm", "audio/wav", "audio/mp3", "audio/mpeg"}
}

// IngestValidator rejects uploads before any network call is made.
type IngestValidator struct {
	maxBytes int64
}

// NewIngestValidator creates a validator with the 25 MiB ceiling.
func NewIngestValidator() *IngestValidator {
	return &IngestValidator{maxBytes: MaxAudioBytes}
}

// Validate returns nil when audio may enter the pipeline. The checks run in
// order: empty input, content type, size. A type outside the allow-list is
// therefore reported regardless of size.
func (v *IngestValidator) Validate(audio entities.UploadedAudio) error {
	if len(audio.Data) == 0 {
		return apperrors.ErrEmptyInput()
	}

	contentType := strings.ToLower(strings.TrimSpace(audio.ContentType))
	if _, ok := allowedContentTypes[contentType]; !ok {
		return apperrors.ErrUnsupportedType(audio.ContentType).
			WithDetail("allowed", strings.Join(AllowedContentTypes(), ","))
	}

	if audio.Size > v.maxBytes || int64(len(audio.Data)) > v.maxBytes {
		return apperrors.ErrTooLarge(v.maxBytes)
	}

	return nil
}
