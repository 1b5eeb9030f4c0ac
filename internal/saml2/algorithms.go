// Package saml2 implements the SPID profile of SAML2 for the service
// provider role: request and metadata builders, XML signatures, the
// redirect-binding query signer, response parsers and validators.
package saml2

import (
	"crypto"
	_ "crypto/sha256"
	_ "crypto/sha512"

	"github.com/dgsspa/spid-sp/internal/core/domain"
)

var digestHashes = map[string]crypto.Hash{
	domain.SHA256: crypto.SHA256,
	domain.SHA384: crypto.SHA384,
	domain.SHA512: crypto.SHA512,
}

var signatureHashes = map[string]crypto.Hash{
	domain.RSASHA256: crypto.SHA256,
	domain.RSASHA384: crypto.SHA384,
	domain.RSASHA512: crypto.SHA512,
}

// DigestHash resolves a digest method URI to its hash primitive. The set
// is closed and intentionally small: the SPID profile constrains it.
func DigestHash(method string) (crypto.Hash, error) {
	h, ok := digestHashes[method]
	if !ok {
		return 0, domain.UnknownDigestMethodError(method)
	}
	return h, nil
}

// SignatureHash resolves a signature method URI to its hash primitive.
func SignatureHash(method string) (crypto.Hash, error) {
	h, ok := signatureHashes[method]
	if !ok {
		return 0, domain.UnknownSignatureMethodError(method)
	}
	return h, nil
}
