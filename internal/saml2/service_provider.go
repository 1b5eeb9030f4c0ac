package saml2

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"net/url"
	"strings"

	"github.com/dgsspa/spid-sp/internal/core/domain"
)

// Organization is the md:Organization block of the SP metadata.
type Organization struct {
	Name        string `yaml:"name"`
	DisplayName string `yaml:"display_name"`
	URL         string `yaml:"url"`
}

// ContactPerson is the md:ContactPerson block of the SP metadata.
// Municipality and Company are required only when CIE metadata is enabled.
type ContactPerson struct {
	Public       bool   `yaml:"public"`
	PublicSet    bool   `yaml:"-"`
	IPACode      string `yaml:"ipa_code"`
	Email        string `yaml:"email"`
	Municipality string `yaml:"municipality"`
	Company      string `yaml:"company"`
}

// ServiceProviderParams collects everything needed to build a
// ServiceProvider. Zero-value bindings and methods get SPID defaults.
type ServiceProviderParams struct {
	Host            string
	ACSPath         string
	ACSBinding      string
	SLOPath         string
	SLOBinding      string
	MetadataPath    string
	CieMetadataPath string
	DigestMethod    string
	SignatureMethod string
	PrivateKey      *rsa.PrivateKey
	Certificate     *x509.Certificate

	AttributeServices []domain.AttributeService
	Organization      Organization
	ContactPerson     ContactPerson
}

// ServiceProvider is the validated, immutable service provider
// configuration. Construction fails fatally if any invariant is violated;
// afterwards the value is read-only.
type ServiceProvider struct {
	host            string
	acsPath         string
	acsBinding      string
	sloPath         string
	sloBinding      string
	metadataPath    string
	cieMetadataPath string
	digestMethod    string
	signatureMethod string
	privateKey      *rsa.PrivateKey
	certificate     *x509.Certificate

	attributeServices []domain.AttributeService
	organization      Organization
	contactPerson     ContactPerson
}

// NewServiceProvider validates params and builds a ServiceProvider.
func NewServiceProvider(p ServiceProviderParams) (*ServiceProvider, error) {
	sp := &ServiceProvider{
		host:            p.Host,
		acsPath:         p.ACSPath,
		acsBinding:      p.ACSBinding,
		sloPath:         p.SLOPath,
		sloBinding:      p.SLOBinding,
		metadataPath:    p.MetadataPath,
		cieMetadataPath: p.CieMetadataPath,
		digestMethod:    p.DigestMethod,
		signatureMethod: p.SignatureMethod,
		privateKey:      p.PrivateKey,
		certificate:     p.Certificate,

		attributeServices: append([]domain.AttributeService(nil), p.AttributeServices...),
		organization:      p.Organization,
		contactPerson:     p.ContactPerson,
	}
	sp.applyDefaults()

	if err := sp.validateMethods(); err != nil {
		return nil, err
	}
	if err := sp.validateAttributeServices(); err != nil {
		return nil, err
	}
	if err := sp.validateOrganization(); err != nil {
		return nil, err
	}
	if err := sp.validateContactPerson(); err != nil {
		return nil, err
	}
	if err := sp.validateKeyPair(); err != nil {
		return nil, err
	}
	return sp, nil
}

func (sp *ServiceProvider) applyDefaults() {
	if sp.metadataPath == "" {
		sp.metadataPath = "/spid/metadata"
	}
	if sp.acsPath == "" {
		sp.acsPath = "/spid/sso"
	}
	if sp.sloPath == "" {
		sp.sloPath = "/spid/slo"
	}
	if sp.acsBinding == "" {
		sp.acsBinding = domain.BindingHTTPPost
	}
	if sp.sloBinding == "" {
		sp.sloBinding = domain.BindingHTTPRedirect
	}
	if sp.digestMethod == "" {
		sp.digestMethod = domain.SHA256
	}
	if sp.signatureMethod == "" {
		sp.signatureMethod = domain.RSASHA256
	}
}

func (sp *ServiceProvider) validateMethods() error {
	if !domain.ValidDigestMethod(sp.digestMethod) {
		return domain.UnknownDigestMethodError(sp.digestMethod)
	}
	if !domain.ValidSignatureMethod(sp.signatureMethod) {
		return domain.UnknownSignatureMethodError(sp.signatureMethod)
	}
	return nil
}

func (sp *ServiceProvider) validateAttributeServices() error {
	if len(sp.attributeServices) == 0 {
		return domain.MissingAttributeServicesError()
	}
	var invalid []string
	for _, svc := range sp.attributeServices {
		if svc.Name == "" || len(svc.Fields) == 0 {
			return domain.MissingAttributeServicesError()
		}
		for _, f := range svc.Fields {
			if !f.Valid() {
				invalid = append(invalid, string(f))
			}
		}
	}
	if len(invalid) > 0 {
		return domain.UnknownAttributeFieldError(invalid)
	}
	return nil
}

func (sp *ServiceProvider) validateOrganization() error {
	var missing []string
	if sp.organization.Name == "" {
		missing = append(missing, "name")
	}
	if sp.organization.DisplayName == "" {
		missing = append(missing, "display_name")
	}
	if sp.organization.URL == "" {
		missing = append(missing, "url")
	}
	if len(missing) > 0 {
		return domain.InvalidOrganizationError(missing)
	}
	return nil
}

func (sp *ServiceProvider) validateContactPerson() error {
	var missing []string
	if !sp.contactPerson.PublicSet {
		missing = append(missing, "public")
	}
	if sp.contactPerson.IPACode == "" {
		missing = append(missing, "ipa_code")
	}
	if sp.contactPerson.Email == "" {
		missing = append(missing, "email")
	}
	if sp.cieMetadataPath != "" {
		if sp.contactPerson.Municipality == "" {
			missing = append(missing, "municipality")
		}
		if sp.contactPerson.Company == "" {
			missing = append(missing, "company")
		}
	}
	if len(missing) > 0 {
		return domain.InvalidContactPersonError(
			"the following required contact person keys are missing: " +
				strings.Join(missing, ", "))
	}
	if !sp.contactPerson.Public {
		return domain.InvalidContactPersonError("the `public` key must be true")
	}
	return nil
}

func (sp *ServiceProvider) validateKeyPair() error {
	if sp.privateKey == nil || sp.certificate == nil {
		return domain.ConfigError("private key and certificate are required")
	}
	if bits := sp.privateKey.N.BitLen(); bits < 1024 {
		return domain.PrivateKeyTooShortError(bits)
	}
	pub, ok := sp.certificate.PublicKey.(*rsa.PublicKey)
	if !ok || !pub.Equal(sp.privateKey.Public()) {
		return domain.CertificateKeyMismatchError()
	}
	return nil
}

// EntityID is the SP entity id. SPID uses the host as entity id.
func (sp *ServiceProvider) EntityID() string { return sp.host }

// ACSURL is the absolute assertion consumer service URL.
func (sp *ServiceProvider) ACSURL() string { return sp.join(sp.acsPath) }

// SLOURL is the absolute single logout service URL.
func (sp *ServiceProvider) SLOURL() string { return sp.join(sp.sloPath) }

// MetadataURL is the absolute metadata URL.
func (sp *ServiceProvider) MetadataURL() string { return sp.join(sp.metadataPath) }

// CieMetadataPath is the configured CIE metadata path, empty when the
// CIE variant is disabled.
func (sp *ServiceProvider) CieMetadataPath() string { return sp.cieMetadataPath }

// CieEnabled reports whether the CIE metadata variant is configured.
func (sp *ServiceProvider) CieEnabled() bool { return sp.cieMetadataPath != "" }

func (sp *ServiceProvider) join(path string) string {
	u, err := url.Parse(sp.host)
	if err != nil {
		return sp.host + path
	}
	ref, err := url.Parse(path)
	if err != nil {
		return sp.host + path
	}
	return u.ResolveReference(ref).String()
}

// ACSBinding returns the assertion consumer service binding URI.
func (sp *ServiceProvider) ACSBinding() string { return sp.acsBinding }

// SLOBinding returns the single logout service binding URI.
func (sp *ServiceProvider) SLOBinding() string { return sp.sloBinding }

// DigestMethod returns the configured digest method URI.
func (sp *ServiceProvider) DigestMethod() string { return sp.digestMethod }

// SignatureMethod returns the configured signature method URI.
func (sp *ServiceProvider) SignatureMethod() string { return sp.signatureMethod }

// PrivateKey returns the SP signing key.
func (sp *ServiceProvider) PrivateKey() *rsa.PrivateKey { return sp.privateKey }

// Certificate returns the SP signing certificate.
func (sp *ServiceProvider) Certificate() *x509.Certificate { return sp.certificate }

// AttributeServices returns a copy of the configured attribute services.
func (sp *ServiceProvider) AttributeServices() []domain.AttributeService {
	return append([]domain.AttributeService(nil), sp.attributeServices...)
}

// Organization returns the organization block.
func (sp *ServiceProvider) Organization() Organization { return sp.organization }

// ContactPerson returns the contact person block.
func (sp *ServiceProvider) ContactPerson() ContactPerson { return sp.contactPerson }

// CertificateBase64 returns the SP certificate DER, base64 encoded as it
// appears inside KeyInfo elements.
func (sp *ServiceProvider) CertificateBase64() string {
	return base64.StdEncoding.EncodeToString(sp.certificate.Raw)
}
