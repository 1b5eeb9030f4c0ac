package saml2

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/dgsspa/spid-sp/internal/core/domain"
)

func TestDeflateAndEncodeRoundTrip(t *testing.T) {
	message := `<samlp:AuthnRequest ID="_abc">content</samlp:AuthnRequest>`

	encoded, err := DeflateAndEncode(message)
	if err != nil {
		t.Fatalf("DeflateAndEncode: %v", err)
	}
	decoded, err := DecodeMessage(encoded)
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if string(decoded) != message {
		t.Errorf("round trip = %q, want %q", decoded, message)
	}
}

func TestDecodeMessagePlainBase64(t *testing.T) {
	// POST binding bodies are base64 only, never deflated.
	message := `<samlp:Response ID="_abc"></samlp:Response>`
	body := base64.StdEncoding.EncodeToString([]byte(message))

	decoded, err := DecodeMessage(body)
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if string(decoded) != message {
		t.Errorf("DecodeMessage = %q, want %q", decoded, message)
	}
}

func TestDecodeMessageInvalidBase64(t *testing.T) {
	if _, err := DecodeMessage("not*base64!"); err == nil {
		t.Error("DecodeMessage(garbage) error = nil, want error")
	}
}

func TestDecodeMessageInflationCap(t *testing.T) {
	// A tiny compressed body expanding past the inflation ceiling must be
	// rejected, not buffered.
	huge := strings.Repeat("a", maxInflatedMessageSize+1)
	encoded, err := DeflateAndEncode(huge)
	if err != nil {
		t.Fatalf("DeflateAndEncode: %v", err)
	}

	_, err = DecodeMessage(encoded)
	if err == nil {
		t.Fatal("DecodeMessage(bomb) error = nil, want error")
	}
	var appErr *domain.AppError
	if !errors.As(err, &appErr) || appErr.Code != domain.ErrCodeMalformedDocument {
		t.Errorf("error = %v, want malformed_document", err)
	}
}
