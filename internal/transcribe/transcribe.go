// Package transcribe converts audio message references into plain text for the
// extraction pipeline. Implementations must return non-empty text or fail
// explicitly; the extraction engines treat transcription output exactly like a
// text message.
package transcribe

import "context"

// Transcriber turns an audio reference (http(s) URL or gs:// URI) into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioRef string) (string, error)
}
