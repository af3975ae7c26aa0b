//
// Inkwell is pleased to support the open source community by making aikit available.
//
// Copyright (C) 2026 Inkwell.  All rights reserved.
//
// aikit is licensed under the Apache License Version 2.0.
//
//

package files

// supportedMIMETypes is the fixed allowlist of media types the provider
// accepts for file uploads.
var supportedMIMETypes = func() map[string]struct{} {
	types := []string{
		// Images.
		"image/jpeg", "image/png", "image/webp", "image/heic", "image/heif", "image/gif",
		// Video.
		"video/mp4", "video/mpeg", "video/quicktime", "video/x-msvideo",
		"video/x-flv", "video/webm", "video/x-ms-wmv", "video/3gpp",
		// Audio.
		"audio/wav", "audio/mp3", "audio/mpeg", "audio/aiff", "audio/aac",
		"audio/ogg", "audio/flac",
		// Documents.
		"application/pdf", "application/rtf", "application/json",
		"text/plain", "text/html", "text/css", "text/markdown", "text/csv",
		"text/xml", "text/javascript", "text/x-python",
	}
	m := make(map[string]struct{}, len(types))
	for _, t := range types {
		m[t] = struct{}{}
	}
	return m
}()

// IsSupportedMIMEType reports whether uploads of the given media type are
// accepted.
func IsSupportedMIMEType(mimeType string) bool {
	_, ok := supportedMIMETypes[mimeType]
	return ok
}
