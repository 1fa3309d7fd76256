// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package preview

import (
	"mime"
	"net/http"
	"path"
	"strings"
)

// Kind is how an attachment is previewed.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
	KindText  Kind = "text"
	// KindFile is a generic file with no inline preview.
	KindFile Kind = "file"
)

// Previewable reports whether k has an inline preview.
func (k Kind) Previewable() bool {
	switch k {
	case KindImage, KindVideo, KindAudio, KindText:
		return true
	}
	return false
}

// Types that can script or restyle the host page never preview, even
// though their top-level type looks previewable.
var blockedTypes = map[string]bool{
	"image/svg+xml":         true,
	"text/html":             true,
	"application/xhtml+xml": true,
	"text/javascript":       true,
	"text/css":              true,
}

var textTypes = map[string]bool{
	"application/json": true,
	"text/plain":       true,
	"text/markdown":    true,
	"text/csv":         true,
}

var extensionKinds = map[string]Kind{
	".png": KindImage, ".jpg": KindImage, ".jpeg": KindImage, ".gif": KindImage,
	".webp": KindImage, ".bmp": KindImage, ".avif": KindImage,
	".mp4": KindVideo, ".webm": KindVideo, ".mov": KindVideo, ".m4v": KindVideo,
	".mp3": KindAudio, ".ogg": KindAudio, ".oga": KindAudio, ".wav": KindAudio,
	".flac": KindAudio, ".m4a": KindAudio, ".opus": KindAudio,
	".txt": KindText, ".md": KindText, ".log": KindText, ".csv": KindText, ".json": KindText,
}

// mediaType returns the lowercase type/subtype of a Content-Type
// value, without parameters. Unparseable input yields "".
func mediaType(contentType string) string {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return ""
	}
	parsed, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed)
}

func kindOfType(mediaType string) Kind {
	switch {
	case mediaType == "" || blockedTypes[mediaType]:
		return KindFile
	case textTypes[mediaType]:
		return KindText
	case strings.HasPrefix(mediaType, "image/"):
		return KindImage
	case strings.HasPrefix(mediaType, "video/"):
		return KindVideo
	case strings.HasPrefix(mediaType, "audio/"):
		return KindAudio
	}
	return KindFile
}

// ResolveKind picks a preview kind from the declared MIME type, falling
// back to the filename extension when the hint is empty or generic.
// SVG and HTML are never previewable.
func ResolveKind(mimeHint, filename string) Kind {
	hint := mediaType(mimeHint)
	if blockedTypes[hint] {
		return KindFile
	}
	if hint != "" && hint != "application/octet-stream" {
		if kind := kindOfType(hint); kind != KindFile {
			return kind
		}
	}
	extension := strings.ToLower(path.Ext(filename))
	if kind, ok := extensionKinds[extension]; ok {
		return kind
	}
	return KindFile
}

// ResolveFetched decides the preview kind and MIME type of fetched
// bytes. The content is sniffed and wins over the declared type where
// they disagree: bytes that sniff as HTML never preview, and a
// declared image whose bytes are not an image is a generic file. A
// declared SVG or HTML type never previews whatever the bytes are.
func ResolveFetched(declared string, body []byte) (Kind, string) {
	sniffed := mediaType(http.DetectContentType(body))
	declaredType := mediaType(declared)
	declaredKind := ResolveKind(declaredType, "")

	switch {
	case blockedTypes[declaredType]:
		return KindFile, declaredType
	case blockedTypes[sniffed]:
		return KindFile, sniffed
	case strings.HasPrefix(sniffed, "image/"):
		return KindImage, sniffed
	case declaredKind == KindImage:
		return KindFile, sniffed
	}

	sniffedKind := kindOfType(sniffed)
	switch declaredKind {
	case KindVideo, KindAudio:
		if sniffedKind == KindVideo || sniffedKind == KindAudio {
			return sniffedKind, sniffed
		}
		// Many containers are not recognised by the sniffer.
		if sniffed == "application/octet-stream" || sniffed == "application/ogg" {
			return declaredKind, declaredType
		}
		return KindFile, sniffed
	case KindText:
		if sniffed == "text/plain" {
			return KindText, declaredType
		}
		return KindFile, sniffed
	}

	switch sniffedKind {
	case KindVideo, KindAudio, KindText:
		return sniffedKind, sniffed
	}
	return KindFile, sniffed
}
