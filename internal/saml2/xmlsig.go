package saml2

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"

	"github.com/beevik/etree"
	dsig "github.com/russellhaering/goxmldsig"

	"github.com/dgsspa/spid-sp/internal/core/domain"
)

const (
	dsNamespace        = "http://www.w3.org/2000/09/xmldsig#"
	excC14NAlgorithm   = "http://www.w3.org/2001/10/xml-exc-c14n#"
	envelopedTransform = "http://www.w3.org/2000/09/xmldsig#enveloped-signature"
)

// XMLSigner builds enveloped ds:Signature elements: exclusive c14n,
// enveloped-signature + exc-c14n transforms, the configured digest method
// over the referenced element and the configured signature method over
// SignedInfo, with the certificate embedded in KeyInfo.
type XMLSigner struct {
	privateKey      *rsa.PrivateKey
	certificate     *x509.Certificate
	digestMethod    string
	signatureMethod string
}

// NewXMLSigner resolves the configured methods against the algorithm
// registry and returns a signer.
func NewXMLSigner(key *rsa.PrivateKey, cert *x509.Certificate, digestMethod, signatureMethod string) (*XMLSigner, error) {
	if _, err := DigestHash(digestMethod); err != nil {
		return nil, err
	}
	if _, err := SignatureHash(signatureMethod); err != nil {
		return nil, err
	}
	return &XMLSigner{
		privateKey:      key,
		certificate:     cert,
		digestMethod:    digestMethod,
		signatureMethod: signatureMethod,
	}, nil
}

// SignElement computes digest and signature for el, which must carry an ID
// attribute equal to referenceID, and inserts the resulting ds:Signature
// as the element's first child. The element is modified in place.
func (s *XMLSigner) SignElement(el *etree.Element, referenceID string) error {
	digestValue, err := s.digestElement(el)
	if err != nil {
		return err
	}

	sig := s.signatureSkeleton(referenceID)
	sig.FindElement("./SignedInfo/Reference/DigestValue").SetText(digestValue)

	signatureValue, err := s.signSignedInfo(sig.FindElement("./SignedInfo"))
	if err != nil {
		return err
	}
	sig.FindElement("./SignatureValue").SetText(signatureValue)

	el.InsertChildAt(0, sig)
	return nil
}

// Sign parses data, signs its root element and returns the signed
// document. Implements ports.DocumentSigner.
func (s *XMLSigner) Sign(data []byte) ([]byte, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, domain.MalformedDocumentError(err)
	}
	root := doc.Root()
	if root == nil {
		return nil, domain.MalformedDocumentError(nil)
	}
	id := root.SelectAttrValue("ID", "")
	if id == "" {
		return nil, domain.ConfigError("document root has no ID attribute to reference")
	}
	if err := s.SignElement(root, id); err != nil {
		return nil, err
	}
	return doc.WriteToBytes()
}

// digestElement canonicalizes el with exclusive c14n and hashes it with
// the configured digest method. The signature is not attached yet, which
// matches the enveloped-signature transform.
func (s *XMLSigner) digestElement(el *etree.Element) (string, error) {
	canonicalizer := dsig.MakeC14N10ExclusiveCanonicalizerWithPrefixList("")
	canon, err := canonicalizer.Canonicalize(el)
	if err != nil {
		return "", err
	}
	hash, err := DigestHash(s.digestMethod)
	if err != nil {
		return "", err
	}
	h := hash.New()
	h.Write(canon)
	return base64.StdEncoding.EncodeToString(h.Sum(nil)), nil
}

// signSignedInfo canonicalizes SignedInfo and signs it with the private
// key. SignedInfo is copied and given the ds namespace declaration so the
// standalone canonicalization sees the same bytes a verifier will.
func (s *XMLSigner) signSignedInfo(signedInfo *etree.Element) (string, error) {
	detached := signedInfo.Copy()
	detached.CreateAttr("xmlns:ds", dsNamespace)

	canonicalizer := dsig.MakeC14N10ExclusiveCanonicalizerWithPrefixList("")
	canon, err := canonicalizer.Canonicalize(detached)
	if err != nil {
		return "", err
	}

	hash, err := SignatureHash(s.signatureMethod)
	if err != nil {
		return "", err
	}
	h := hash.New()
	h.Write(canon)
	raw, err := rsa.SignPKCS1v15(rand.Reader, s.privateKey, hash, h.Sum(nil))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

func (s *XMLSigner) signatureSkeleton(referenceID string) *etree.Element {
	sig := etree.NewElement("ds:Signature")
	sig.CreateAttr("xmlns:ds", dsNamespace)

	signedInfo := sig.CreateElement("ds:SignedInfo")
	signedInfo.CreateElement("ds:CanonicalizationMethod").
		CreateAttr("Algorithm", excC14NAlgorithm)
	signedInfo.CreateElement("ds:SignatureMethod").
		CreateAttr("Algorithm", s.signatureMethod)

	reference := signedInfo.CreateElement("ds:Reference")
	reference.CreateAttr("URI", "#"+referenceID)
	transforms := reference.CreateElement("ds:Transforms")
	transforms.CreateElement("ds:Transform").
		CreateAttr("Algorithm", envelopedTransform)
	transforms.CreateElement("ds:Transform").
		CreateAttr("Algorithm", excC14NAlgorithm)
	reference.CreateElement("ds:DigestMethod").
		CreateAttr("Algorithm", s.digestMethod)
	reference.CreateElement("ds:DigestValue")

	sig.CreateElement("ds:SignatureValue")

	keyInfo := sig.CreateElement("ds:KeyInfo")
	keyInfo.CreateElement("ds:X509Data").
		CreateElement("ds:X509Certificate").
		SetText(base64.StdEncoding.EncodeToString(s.certificate.Raw))

	return sig
}

// XMLVerifier verifies enveloped XML signatures against a certificate.
type XMLVerifier struct{}

// NewXMLVerifier returns a verifier.
func NewXMLVerifier() *XMLVerifier { return &XMLVerifier{} }

// Verify checks the enveloped signature of data against cert. A signature
// mismatch returns (false, nil); only malformed XML is an error.
func (v *XMLVerifier) Verify(data []byte, cert *x509.Certificate) (bool, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return false, domain.MalformedDocumentError(err)
	}
	root := doc.Root()
	if root == nil {
		return false, domain.MalformedDocumentError(nil)
	}

	ctx := dsig.NewDefaultValidationContext(&dsig.MemoryX509CertificateStore{
		Roots: []*x509.Certificate{cert},
	})
	if _, err := ctx.Validate(root); err != nil {
		return false, nil
	}
	return true, nil
}
