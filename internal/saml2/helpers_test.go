package saml2

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"

	"github.com/beevik/etree"

	"github.com/dgsspa/spid-sp/internal/core/domain"
)

func testKeyPair(t testing.TB) (*rsa.PrivateKey, *x509.Certificate) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}
	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject: pkix.Name{
			CommonName:   "test",
			Organization: []string{"Test"},
		},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("creating certificate: %v", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("parsing certificate: %v", err)
	}
	return key, cert
}

func testParams(t testing.TB) ServiceProviderParams {
	t.Helper()

	key, cert := testKeyPair(t)
	return ServiceProviderParams{
		Host:        "https://service.provider",
		PrivateKey:  key,
		Certificate: cert,
		AttributeServices: []domain.AttributeService{
			{Name: "Service 1", Fields: []domain.AttributeField{domain.Email, domain.FamilyName}},
		},
		Organization: Organization{
			Name:        "Organization name",
			DisplayName: "Organization display name",
			URL:         "https://organization.org",
		},
		ContactPerson: ContactPerson{
			Public:    true,
			PublicSet: true,
			IPACode:   "ipa_code",
			Email:     "email@example.com",
		},
	}
}

func testServiceProvider(t testing.TB) *ServiceProvider {
	t.Helper()

	sp, err := NewServiceProvider(testParams(t))
	if err != nil {
		t.Fatalf("building service provider: %v", err)
	}
	return sp
}

func testIdP(t testing.TB) (*domain.IdentityProvider, *rsa.PrivateKey) {
	t.Helper()

	key, cert := testKeyPair(t)
	return &domain.IdentityProvider{
		EntityID:     "https://identity.provider",
		SSOTargetURL: "https://identity.provider/sso",
		SLOTargetURL: "https://identity.provider/slo",
		Certificate:  cert,
	}, key
}

func testSettings(t testing.TB, opts ...SettingsOption) (*Settings, *rsa.PrivateKey) {
	t.Helper()

	idp, idpKey := testIdP(t)
	settings, err := NewSettings(testServiceProvider(t), idp, opts...)
	if err != nil {
		t.Fatalf("building settings: %v", err)
	}
	return settings, idpKey
}

// fixtureResponseParams parameterizes the signed response fixture.
type fixtureResponseParams struct {
	inResponseTo string
	destination  string
	audience     string
	issuer       string
	sessionIndex string
	statusCode   string
	notBefore    time.Time
	notOnOrAfter time.Time
	attributes   [][2]string
}

// buildSignedResponse assembles a response document signed with the given
// IdP key so that it passes the full validator chain.
func buildSignedResponse(t testing.TB, idpKey *rsa.PrivateKey, idpCert *x509.Certificate, p fixtureResponseParams) string {
	t.Helper()

	now := time.Now().UTC()
	if p.statusCode == "" {
		p.statusCode = domain.StatusSuccess
	}
	if p.notBefore.IsZero() {
		p.notBefore = now.Add(-5 * time.Minute)
	}
	if p.notOnOrAfter.IsZero() {
		p.notOnOrAfter = now.Add(5 * time.Minute)
	}

	doc := etree.NewDocument()
	root := doc.CreateElement("samlp:Response")
	root.CreateAttr("xmlns:samlp", samlpNamespace)
	root.CreateAttr("xmlns:saml", samlNamespace)
	root.CreateAttr("ID", "_test-response")
	root.CreateAttr("Version", "2.0")
	root.CreateAttr("IssueInstant", now.Format(time.RFC3339))
	root.CreateAttr("InResponseTo", p.inResponseTo)
	root.CreateAttr("Destination", p.destination)

	root.CreateElement("saml:Issuer").SetText(p.issuer)

	status := root.CreateElement("samlp:Status")
	status.CreateElement("samlp:StatusCode").CreateAttr("Value", p.statusCode)

	assertion := root.CreateElement("saml:Assertion")
	assertion.CreateAttr("ID", "_test-assertion")
	assertion.CreateAttr("Version", "2.0")
	assertion.CreateAttr("IssueInstant", now.Format(time.RFC3339))
	assertion.CreateElement("saml:Issuer").SetText(p.issuer)

	subject := assertion.CreateElement("saml:Subject")
	nameID := subject.CreateElement("saml:NameID")
	nameID.CreateAttr("Format", domain.NameIDFormatTransient)
	nameID.SetText("a-name-id")

	conditions := assertion.CreateElement("saml:Conditions")
	conditions.CreateAttr("NotBefore", p.notBefore.UTC().Format(time.RFC3339))
	conditions.CreateAttr("NotOnOrAfter", p.notOnOrAfter.UTC().Format(time.RFC3339))
	conditions.CreateElement("saml:AudienceRestriction").
		CreateElement("saml:Audience").SetText(p.audience)

	authnStatement := assertion.CreateElement("saml:AuthnStatement")
	authnStatement.CreateAttr("AuthnInstant", now.Format(time.RFC3339))
	authnStatement.CreateAttr("SessionIndex", p.sessionIndex)

	if len(p.attributes) > 0 {
		stmt := assertion.CreateElement("saml:AttributeStatement")
		for _, kv := range p.attributes {
			attr := stmt.CreateElement("saml:Attribute")
			attr.CreateAttr("Name", kv[0])
			attr.CreateElement("saml:AttributeValue").SetText(kv[1])
		}
	}

	signer, err := NewXMLSigner(idpKey, idpCert, domain.SHA256, domain.RSASHA256)
	if err != nil {
		t.Fatalf("building signer: %v", err)
	}
	if err := signer.SignElement(root, "_test-response"); err != nil {
		t.Fatalf("signing response: %v", err)
	}

	out, err := doc.WriteToString()
	if err != nil {
		t.Fatalf("serializing response: %v", err)
	}
	return out
}
