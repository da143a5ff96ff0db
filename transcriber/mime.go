package transcriber

import (
	"path/filepath"
	"strings"
)

// mimeForFile maps an audio file extension to the MIME type declared on
// the multipart upload. Unknown extensions fall back to audio/mp4.
func mimeForFile(path string) string {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "wav":
		return "audio/wav"
	case "webm":
		return "audio/webm"
	case "mp3":
		return "audio/mpeg"
	case "m4a", "mp4":
		return "audio/mp4"
	case "ogg":
		return "audio/ogg"
	case "flac":
		return "audio/flac"
	default:
		return "audio/mp4"
	}
}
