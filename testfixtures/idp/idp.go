// Package idp provides a fixture SAML Identity Provider for tests: a
// generated key pair, metadata for the registry and signed responses that
// verify against the fixture certificate.
package idp

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/beevik/etree"

	"github.com/dgsspa/spid-sp/internal/core/domain"
	"github.com/dgsspa/spid-sp/internal/saml2"
)

// TestIdP is a fixture identity provider.
type TestIdP struct {
	EntityID    string
	Key         *rsa.PrivateKey
	Certificate *x509.Certificate
}

// New generates a fixture IdP with a fresh 2048-bit key pair.
func New(t testing.TB, entityID string) *TestIdP {
	t.Helper()

	key, cert, err := generateSelfSignedCert(entityID)
	if err != nil {
		t.Fatalf("generating fixture idp certificate: %v", err)
	}
	return &TestIdP{
		EntityID:    entityID,
		Key:         key,
		Certificate: cert,
	}
}

// Metadata returns a standalone EntityDescriptor for this IdP with
// redirect-binding SSO and SLO endpoints.
func (i *TestIdP) Metadata() []byte {
	doc := etree.NewDocument()
	ed := doc.CreateElement("md:EntityDescriptor")
	ed.CreateAttr("xmlns:md", "urn:oasis:names:tc:SAML:2.0:metadata")
	ed.CreateAttr("entityID", i.EntityID)

	desc := ed.CreateElement("md:IDPSSODescriptor")
	desc.CreateAttr("protocolSupportEnumeration", "urn:oasis:names:tc:SAML:2.0:protocol")

	kd := desc.CreateElement("md:KeyDescriptor")
	kd.CreateAttr("use", "signing")
	ki := kd.CreateElement("ds:KeyInfo")
	ki.CreateAttr("xmlns:ds", "http://www.w3.org/2000/09/xmldsig#")
	certEl := ki.CreateElement("ds:X509Data").CreateElement("ds:X509Certificate")
	certEl.SetText(base64.StdEncoding.EncodeToString(i.Certificate.Raw))

	slo := desc.CreateElement("md:SingleLogoutService")
	slo.CreateAttr("Binding", domain.BindingHTTPRedirect)
	slo.CreateAttr("Location", i.EntityID+"/slo")

	sso := desc.CreateElement("md:SingleSignOnService")
	sso.CreateAttr("Binding", domain.BindingHTTPRedirect)
	sso.CreateAttr("Location", i.EntityID+"/sso")

	out, _ := doc.WriteToBytes()
	return out
}

// WriteMetadataDir writes the IdP metadata into a fresh temp directory
// usable as a registry source.
func (i *TestIdP) WriteMetadataDir(t testing.TB) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "fixture-idp.xml"), i.Metadata(), 0o600); err != nil {
		t.Fatalf("writing fixture idp metadata: %v", err)
	}
	return dir
}

// ResponseParams parameterizes a fixture SSO response. Zero values mean
// "success now": status Success and a validity window around time.Now.
type ResponseParams struct {
	InResponseTo string
	Destination  string
	Audience     string
	SessionIndex string
	NameID       string

	StatusCode string

	// AttributeNames fixes the emission order; values come from Attributes.
	AttributeNames []string
	Attributes     map[string]string

	NotBefore    time.Time
	NotOnOrAfter time.Time
	Now          time.Time
}

// SignedResponse builds a signed response document. The signature is
// enveloped in the root element and verifies against Certificate.
func (i *TestIdP) SignedResponse(t testing.TB, p ResponseParams) string {
	t.Helper()

	doc := etree.NewDocument()
	root := i.responseElement(doc, p)

	signer, err := saml2.NewXMLSigner(i.Key, i.Certificate, domain.SHA256, domain.RSASHA256)
	if err != nil {
		t.Fatalf("building fixture signer: %v", err)
	}
	if err := signer.SignElement(root, root.SelectAttrValue("ID", "")); err != nil {
		t.Fatalf("signing fixture response: %v", err)
	}

	out, err := doc.WriteToString()
	if err != nil {
		t.Fatalf("serializing fixture response: %v", err)
	}
	return out
}

// SignedResponseBase64 returns the response as a POST-binding body.
func (i *TestIdP) SignedResponseBase64(t testing.TB, p ResponseParams) string {
	t.Helper()
	return base64.StdEncoding.EncodeToString([]byte(i.SignedResponse(t, p)))
}

func (i *TestIdP) responseElement(doc *etree.Document, p ResponseParams) *etree.Element {
	now := p.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	notBefore := p.NotBefore
	if notBefore.IsZero() {
		notBefore = now.Add(-5 * time.Minute)
	}
	notOnOrAfter := p.NotOnOrAfter
	if notOnOrAfter.IsZero() {
		notOnOrAfter = now.Add(5 * time.Minute)
	}
	statusCode := p.StatusCode
	if statusCode == "" {
		statusCode = domain.StatusSuccess
	}
	nameID := p.NameID
	if nameID == "" {
		nameID = "fixture-name-id"
	}

	root := doc.CreateElement("samlp:Response")
	root.CreateAttr("xmlns:samlp", "urn:oasis:names:tc:SAML:2.0:protocol")
	root.CreateAttr("xmlns:saml", "urn:oasis:names:tc:SAML:2.0:assertion")
	root.CreateAttr("ID", "_fixture-response")
	root.CreateAttr("Version", "2.0")
	root.CreateAttr("IssueInstant", now.Format(time.RFC3339))
	root.CreateAttr("InResponseTo", p.InResponseTo)
	root.CreateAttr("Destination", p.Destination)

	issuer := root.CreateElement("saml:Issuer")
	issuer.SetText(i.EntityID)

	status := root.CreateElement("samlp:Status")
	status.CreateElement("samlp:StatusCode").CreateAttr("Value", statusCode)

	assertion := root.CreateElement("saml:Assertion")
	assertion.CreateAttr("ID", "_fixture-assertion")
	assertion.CreateAttr("Version", "2.0")
	assertion.CreateAttr("IssueInstant", now.Format(time.RFC3339))

	assertionIssuer := assertion.CreateElement("saml:Issuer")
	assertionIssuer.SetText(i.EntityID)

	subject := assertion.CreateElement("saml:Subject")
	subjNameID := subject.CreateElement("saml:NameID")
	subjNameID.CreateAttr("Format", domain.NameIDFormatTransient)
	subjNameID.SetText(nameID)

	conditions := assertion.CreateElement("saml:Conditions")
	conditions.CreateAttr("NotBefore", notBefore.UTC().Format(time.RFC3339))
	conditions.CreateAttr("NotOnOrAfter", notOnOrAfter.UTC().Format(time.RFC3339))
	audience := conditions.CreateElement("saml:AudienceRestriction").CreateElement("saml:Audience")
	audience.SetText(p.Audience)

	authnStatement := assertion.CreateElement("saml:AuthnStatement")
	authnStatement.CreateAttr("AuthnInstant", now.Format(time.RFC3339))
	authnStatement.CreateAttr("SessionIndex", p.SessionIndex)
	ctx := authnStatement.CreateElement("saml:AuthnContext").CreateElement("saml:AuthnContextClassRef")
	ctx.SetText(domain.SpidL2)

	if len(p.AttributeNames) > 0 {
		stmt := assertion.CreateElement("saml:AttributeStatement")
		for _, name := range p.AttributeNames {
			attr := stmt.CreateElement("saml:Attribute")
			attr.CreateAttr("Name", name)
			attr.CreateElement("saml:AttributeValue").SetText(p.Attributes[name])
		}
	}

	return root
}

// GenerateKeyPair returns a fresh self-signed key pair, usable as SP key
// material in tests.
func GenerateKeyPair(t testing.TB, commonName string) (*rsa.PrivateKey, *x509.Certificate) {
	t.Helper()
	key, cert, err := generateSelfSignedCert(commonName)
	if err != nil {
		t.Fatalf("generating key pair: %v", err)
	}
	return key, cert
}

func generateSelfSignedCert(entityID string) (*rsa.PrivateKey, *x509.Certificate, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, nil, err
	}

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject: pkix.Name{
			CommonName:   entityID,
			Organization: []string{"Fixture IdP"},
		},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return nil, nil, err
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, nil, err
	}
	return key, cert, nil
}
