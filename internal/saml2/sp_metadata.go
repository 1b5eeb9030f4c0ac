package saml2

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"

	"github.com/beevik/etree"

	"github.com/dgsspa/spid-sp/internal/core/domain"
)

const (
	mdNamespace    = "urn:oasis:names:tc:SAML:2.0:metadata"
	spidNamespace  = "https://spid.gov.it/saml-extensions"
	cieNamespace   = "https://www.cartaidentita.interno.gov.it/saml-extensions"
	samlpNamespace = "urn:oasis:names:tc:SAML:2.0:protocol"
	samlNamespace  = "urn:oasis:names:tc:SAML:2.0:assertion"
)

// SPMetadata builds the signed SPID metadata document for a service
// provider. Output is always the signed document: metadata is never
// exposed unsigned. The CIE variant differs only in namespace and
// contact person layout.
type SPMetadata struct {
	settings *Settings
	signer   *XMLSigner
	cie      bool
}

// NewSPMetadata returns a SPID metadata builder for settings.
func NewSPMetadata(settings *Settings) (*SPMetadata, error) {
	return newMetadata(settings, false)
}

// NewCieMetadata returns the CIE-variant metadata builder.
func NewCieMetadata(settings *Settings) (*SPMetadata, error) {
	return newMetadata(settings, true)
}

func newMetadata(settings *Settings, cie bool) (*SPMetadata, error) {
	sp := settings.SP()
	signer, err := NewXMLSigner(sp.PrivateKey(), sp.Certificate(),
		sp.DigestMethod(), sp.SignatureMethod())
	if err != nil {
		return nil, err
	}
	return &SPMetadata{settings: settings, signer: signer, cie: cie}, nil
}

// Build returns the signed EntityDescriptor document.
func (m *SPMetadata) Build() ([]byte, error) {
	id := m.descriptorID()
	descriptor := m.entityDescriptor(id)

	if err := m.signer.SignElement(descriptor, id); err != nil {
		return nil, err
	}

	doc := etree.NewDocument()
	doc.SetRoot(descriptor)
	return doc.WriteToBytes()
}

// descriptorID derives the document id from the entity id with a fixed
// digest, deliberately decoupled from the configured digest method so the
// id stays stable across configuration changes.
func (m *SPMetadata) descriptorID() string {
	sum := md5.Sum([]byte(m.settings.SP().EntityID()))
	return "_" + hex.EncodeToString(sum[:])
}

func (m *SPMetadata) entityDescriptor(id string) *etree.Element {
	sp := m.settings.SP()

	descriptor := etree.NewElement("md:EntityDescriptor")
	descriptor.CreateAttr("xmlns:ds", dsNamespace)
	descriptor.CreateAttr("xmlns:md", mdNamespace)
	if m.cie {
		descriptor.CreateAttr("xmlns:cie", cieNamespace)
	} else {
		descriptor.CreateAttr("xmlns:spid", spidNamespace)
	}
	descriptor.CreateAttr("entityID", sp.EntityID())
	descriptor.CreateAttr("ID", id)

	descriptor.AddChild(m.spSSODescriptor())
	descriptor.AddChild(m.organization())
	descriptor.AddChild(m.contactPerson())
	return descriptor
}

func (m *SPMetadata) spSSODescriptor() *etree.Element {
	sp := m.settings.SP()

	sso := etree.NewElement("md:SPSSODescriptor")
	sso.CreateAttr("protocolSupportEnumeration", samlpNamespace)
	sso.CreateAttr("AuthnRequestsSigned", "true")
	sso.CreateAttr("WantAssertionsSigned", "true")

	sso.AddChild(m.keyDescriptor())

	slo := sso.CreateElement("md:SingleLogoutService")
	slo.CreateAttr("Binding", sp.SLOBinding())
	slo.CreateAttr("Location", sp.SLOURL())

	acs := sso.CreateElement("md:AssertionConsumerService")
	acs.CreateAttr("Binding", sp.ACSBinding())
	acs.CreateAttr("Location", sp.ACSURL())
	acs.CreateAttr("index", "0")
	acs.CreateAttr("isDefault", "true")

	for i, svc := range sp.AttributeServices() {
		sso.AddChild(attributeConsumingService(i, svc))
	}
	return sso
}

func (m *SPMetadata) keyDescriptor() *etree.Element {
	kd := etree.NewElement("md:KeyDescriptor")
	kd.CreateAttr("use", "signing")
	kd.CreateElement("ds:KeyInfo").
		CreateElement("ds:X509Data").
		CreateElement("ds:X509Certificate").
		SetText(m.settings.SP().CertificateBase64())
	return kd
}

func attributeConsumingService(index int, svc domain.AttributeService) *etree.Element {
	acs := etree.NewElement("md:AttributeConsumingService")
	acs.CreateAttr("index", strconv.Itoa(index))

	name := acs.CreateElement("md:ServiceName")
	name.CreateAttr("xml:lang", "it")
	name.SetText(svc.Name)

	for _, field := range svc.Fields {
		wire, ok := field.WireName()
		if !ok {
			continue
		}
		acs.CreateElement("md:RequestedAttribute").CreateAttr("Name", wire)
	}
	return acs
}

func (m *SPMetadata) organization() *etree.Element {
	cfg := m.settings.SP().Organization()

	org := etree.NewElement("md:Organization")
	name := org.CreateElement("md:OrganizationName")
	name.CreateAttr("xml:lang", "it")
	name.SetText(cfg.Name)
	display := org.CreateElement("md:OrganizationDisplayName")
	display.CreateAttr("xml:lang", "it")
	display.SetText(cfg.DisplayName)
	url := org.CreateElement("md:OrganizationURL")
	url.CreateAttr("xml:lang", "it")
	url.SetText(cfg.URL)
	return org
}

func (m *SPMetadata) contactPerson() *etree.Element {
	cfg := m.settings.SP().ContactPerson()

	cp := etree.NewElement("md:ContactPerson")
	if m.cie {
		cp.CreateAttr("contactType", "administrative")
		ext := cp.CreateElement("md:Extensions")
		ext.CreateElement("cie:IPACode").SetText(cfg.IPACode)
		ext.CreateElement("cie:Municipality").SetText(cfg.Municipality)
		ext.CreateElement("cie:Public")
		cp.CreateElement("md:Company").SetText(cfg.Company)
	} else {
		cp.CreateAttr("contactType", "other")
		ext := cp.CreateElement("md:Extensions")
		ext.CreateElement("spid:IPACode").SetText(cfg.IPACode)
		ext.CreateElement("spid:Public")
	}
	cp.CreateElement("md:EmailAddress").SetText(cfg.Email)
	return cp
}
