package ports

import "crypto/x509"

// DocumentSigner signs XML documents with an enveloped signature.
// This is a port interface - implementations are adapters.
type DocumentSigner interface {
	// Sign adds an enveloped XML signature to the document root and
	// returns the signed XML bytes.
	Sign(data []byte) ([]byte, error)
}

// DocumentVerifier verifies the enveloped XML signature of a document
// against a certificate. A signature mismatch is a validation outcome,
// not an error: only malformed input produces a non-nil error.
type DocumentVerifier interface {
	Verify(data []byte, cert *x509.Certificate) (bool, error)
}
