package saml2

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"net/url"
	"strings"

	"github.com/dgsspa/spid-sp/internal/core/domain"
)

// QueryParamsSigner produces the signed query string of the HTTP-Redirect
// binding. The signature covers the URL-escaped parameters in the fixed
// order SAMLRequest, RelayState, SigAlg; RelayState is absent from both the
// signed payload and the final query string when empty.
type QueryParamsSigner struct {
	samlMessage     string
	privateKey      *rsa.PrivateKey
	signatureMethod string
	relayState      string
}

func NewQueryParamsSigner(samlMessage string, privateKey *rsa.PrivateKey, signatureMethod, relayState string) (*QueryParamsSigner, error) {
	if !domain.ValidSignatureMethod(signatureMethod) {
		return nil, domain.UnknownSignatureMethodError(signatureMethod)
	}
	return &QueryParamsSigner{
		samlMessage:     strings.ReplaceAll(samlMessage, "\n", ""),
		privateKey:      privateKey,
		signatureMethod: signatureMethod,
		relayState:      relayState,
	}, nil
}

// QueryString returns the complete signed query string, without the
// leading "?".
func (s *QueryParamsSigner) QueryString() (string, error) {
	payload, err := s.payload()
	if err != nil {
		return "", err
	}
	sig, err := s.sign(payload)
	if err != nil {
		return "", err
	}
	return payload + "&Signature=" + url.QueryEscape(sig), nil
}

func (s *QueryParamsSigner) payload() (string, error) {
	encoded, err := DeflateAndEncode(s.samlMessage)
	if err != nil {
		return "", err
	}
	parts := []string{"SAMLRequest=" + url.QueryEscape(encoded)}
	if s.relayState != "" {
		parts = append(parts, "RelayState="+url.QueryEscape(s.relayState))
	}
	parts = append(parts, "SigAlg="+url.QueryEscape(s.signatureMethod))
	return strings.Join(parts, "&"), nil
}

func (s *QueryParamsSigner) sign(payload string) (string, error) {
	hash, err := SignatureHash(s.signatureMethod)
	if err != nil {
		return "", err
	}
	h := hash.New()
	h.Write([]byte(payload))
	sig, err := rsa.SignPKCS1v15(rand.Reader, s.privateKey, hash, h.Sum(nil))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

// VerifySignedQueryString checks the Signature parameter of a redirect
// binding query string against the given certificate. The query string must
// be in raw (still escaped) form since the signature covers escaped bytes.
func VerifySignedQueryString(query string, cert *x509.Certificate) (bool, error) {
	sigIdx := strings.LastIndex(query, "&Signature=")
	if sigIdx < 0 {
		return false, nil
	}
	payload := query[:sigIdx]
	sigEscaped := query[sigIdx+len("&Signature="):]

	sigB64, err := url.QueryUnescape(sigEscaped)
	if err != nil {
		return false, domain.MalformedDocumentError(err)
	}
	sig, err := base64.StdEncoding.DecodeString(sigB64)
	if err != nil {
		return false, domain.MalformedDocumentError(err)
	}

	sigAlg := ""
	for _, part := range strings.Split(payload, "&") {
		if strings.HasPrefix(part, "SigAlg=") {
			sigAlg, err = url.QueryUnescape(strings.TrimPrefix(part, "SigAlg="))
			if err != nil {
				return false, domain.MalformedDocumentError(err)
			}
		}
	}
	hash, err := SignatureHash(sigAlg)
	if err != nil {
		return false, err
	}

	pub, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return false, nil
	}
	h := hash.New()
	h.Write([]byte(payload))
	if err := rsa.VerifyPKCS1v15(pub, hash, h.Sum(nil), sig); err != nil {
		return false, nil
	}
	return true, nil
}
