package saml2

import (
	"bytes"
	"compress/flate"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/dgsspa/spid-sp/internal/core/domain"
)

// maxInflatedMessageSize bounds DEFLATE expansion of inbound redirect
// payloads. Real SAML messages are a few KiB; anything past this is a
// decompression bomb.
const maxInflatedMessageSize = 5 << 20

// DeflateAndEncode compresses a SAML message with raw DEFLATE (no zlib
// header) and base64-encodes it, as required by the HTTP-Redirect binding.
func DeflateAndEncode(message string) (string, error) {
	var compressed bytes.Buffer
	w, err := flate.NewWriter(&compressed, flate.BestCompression)
	if err != nil {
		return "", err
	}
	if _, err := io.WriteString(w, message); err != nil {
		w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(compressed.Bytes()), nil
}

// DecodeMessage base64-decodes an inbound SAML message body. Redirect
// binding payloads are additionally DEFLATE-compressed while POST binding
// payloads are plain XML, so inflation is attempted and skipped when the
// content is not compressed.
func DecodeMessage(body string) ([]byte, error) {
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(body))
	if err != nil {
		return nil, domain.MalformedDocumentError(err)
	}
	limited := io.LimitReader(flate.NewReader(bytes.NewReader(decoded)), maxInflatedMessageSize+1)
	inflated, err := io.ReadAll(limited)
	if err != nil {
		return decoded, nil
	}
	if len(inflated) > maxInflatedMessageSize {
		return nil, domain.MalformedDocumentError(
			fmt.Errorf("inflated message exceeds %d bytes", maxInflatedMessageSize))
	}
	return inflated, nil
}
