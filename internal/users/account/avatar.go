// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/taibuivan/yomira-id/internal/platform/apperr"
	"github.com/taibuivan/yomira-id/internal/platform/validate"
	"github.com/taibuivan/yomira-id/internal/users/auth"
)

// # Avatar Input

// MaxAvatarBytes bounds a decoded avatar upload.
const MaxAvatarBytes = 2 << 20

// avatarTypes maps accepted image types to the object key extension.
var avatarTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// dataURLPrefix starts every inline upload.
const dataURLPrefix = "data:"

// IsDataURL reports whether value is an inline upload rather than a link.
func IsDataURL(value string) bool {
	return strings.HasPrefix(value, dataURLPrefix)
}

// avatarUpload is a decoded inline image.
type avatarUpload struct {
	ContentType string
	Extension   string
	Data        []byte
}

/*
decodeDataURL parses "data:image/<type>;base64,<payload>".

The declared type must be an accepted image type and must match the sniffed
content; the payload must decode to at most [MaxAvatarBytes].
*/
func decodeDataURL(value string) (*avatarUpload, error) {
	header, payload, found := strings.Cut(strings.TrimPrefix(value, dataURLPrefix), ",")
	contentType, encoding, _ := strings.Cut(header, ";")
	if !found || encoding != "base64" {
		return nil, imageError("Image must be a base64 data URL")
	}

	extension, accepted := avatarTypes[contentType]
	if !accepted {
		return nil, imageError("Image must be PNG, JPEG, GIF or WebP")
	}

	// Reject before decoding when the encoded form is already too big.
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxAvatarBytes+2 {
		return nil, apperr.TooLarge("Image must be at most 2 MB")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, imageError("Image data is not valid base64")
	}
	if len(data) > MaxAvatarBytes {
		return nil, apperr.TooLarge("Image must be at most 2 MB")
	}
	if sniffed := http.DetectContentType(data); sniffed != contentType {
		return nil, imageError("Image content does not match its type")
	}

	return &avatarUpload{ContentType: contentType, Extension: extension, Data: data}, nil
}

// validateImageLink accepts absolute http(s) links only.
func validateImageLink(value string) error {
	return (&validate.Validator{}).URL(auth.FieldImage, value).Err()
}

func imageError(message string) error {
	return validate.RequiredError(auth.FieldImage, message)
}
