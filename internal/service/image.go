package service

import (
	"fmt"
	"strings"

	"github.com/OmerBirol/lenslight-tr/internal/apperr"
)

// Accepted image payload prefixes. Payloads arrive pre-encoded as base64
// data URIs from the client.
var imagePrefixes = []string{
	"data:image/jpeg;base64,",
	"data:image/jpg;base64,",
	"data:image/png;base64,",
	"data:image/webp;base64,",
}

// validateImageData checks the data-URI prefix and the approximate decoded
// size against the configured bound, before any upload or store write.
func validateImageData(data string, maxBytes int64) error {
	var encoded string
	for _, prefix := range imagePrefixes {
		if strings.HasPrefix(data, prefix) {
			encoded = data[len(prefix):]
			break
		}
	}
	if encoded == "" {
		if data == "" || !strings.HasPrefix(data, "data:image/") {
			return apperr.Invalid(apperr.CodeUnsupportedImage, "image must be a jpeg, png or webp data uri")
		}
		return apperr.Invalid(apperr.CodeUnsupportedImage, "unsupported image type")
	}

	// approximate decoded size from the encoded payload length
	approx := int64(len(encoded)) * 3 / 4
	if approx > maxBytes {
		return apperr.Invalid(apperr.CodeImageTooLarge,
			fmt.Sprintf("image exceeds the %d byte limit", maxBytes))
	}

	return nil
}
