package spidsp

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dgsspa/spid-sp/internal/core/domain"
	"github.com/dgsspa/spid-sp/internal/saml2"
)

// ContactPersonConfig mirrors ContactPerson with a pointer Public so that
// a missing key is distinguishable from an explicit false.
type ContactPersonConfig struct {
	Public       *bool  `yaml:"public"`
	IPACode      string `yaml:"ipa_code"`
	Email        string `yaml:"email"`
	Municipality string `yaml:"municipality"`
	Company      string `yaml:"company"`
}

// Config is the YAML configuration surface of the service provider.
type Config struct {
	Host string `yaml:"host"`

	ACSPath         string `yaml:"acs_path"`
	ACSBinding      string `yaml:"acs_binding"`
	SLOPath         string `yaml:"slo_path"`
	SLOBinding      string `yaml:"slo_binding"`
	MetadataPath    string `yaml:"metadata_path"`
	CieMetadataPath string `yaml:"cie_metadata_path"`

	DigestMethod    string `yaml:"digest_method"`
	SignatureMethod string `yaml:"signature_method"`

	// Key material may be given inline as PEM or as a file path.
	PrivateKeyPEM   string `yaml:"private_key_pem"`
	PrivateKeyPath  string `yaml:"private_key_path"`
	CertificatePEM  string `yaml:"certificate_pem"`
	CertificatePath string `yaml:"certificate_path"`

	AttributeServices []AttributeService  `yaml:"attribute_services"`
	Organization      Organization        `yaml:"organization"`
	ContactPerson     ContactPersonConfig `yaml:"contact_person"`

	IdPMetadataDirPath string `yaml:"idp_metadata_dir_path"`

	AuthnContext    string `yaml:"authn_context"`
	AuthnComparison string `yaml:"authn_context_comparison"`
	AttributeIndex  int    `yaml:"attribute_index"`

	// SessionDuration is a Go duration string, for example "24h".
	SessionDuration string `yaml:"session_duration"`

	MetricsEnabled bool `yaml:"metrics_enabled"`
}

func (c *Config) sessionDuration() (time.Duration, error) {
	if c.SessionDuration == "" {
		return 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(c.SessionDuration)
	if err != nil {
		return 0, domain.ConfigError(fmt.Sprintf("parsing session_duration: %v", err))
	}
	return d, nil
}

// LoadConfig reads and parses a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.ConfigError(fmt.Sprintf("reading config file: %v", err))
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML configuration bytes.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, domain.ConfigError(fmt.Sprintf("parsing config: %v", err))
	}
	return &cfg, nil
}

// serviceProvider builds the validated protocol-layer service provider
// from the configuration.
func (c *Config) serviceProvider() (*saml2.ServiceProvider, error) {
	if c.Host == "" {
		return nil, domain.ConfigError("host is required")
	}

	key, err := c.privateKey()
	if err != nil {
		return nil, err
	}
	cert, err := c.certificate()
	if err != nil {
		return nil, err
	}

	cp := saml2.ContactPerson{
		IPACode:      c.ContactPerson.IPACode,
		Email:        c.ContactPerson.Email,
		Municipality: c.ContactPerson.Municipality,
		Company:      c.ContactPerson.Company,
	}
	if c.ContactPerson.Public != nil {
		cp.Public = *c.ContactPerson.Public
		cp.PublicSet = true
	}

	return saml2.NewServiceProvider(saml2.ServiceProviderParams{
		Host:              c.Host,
		ACSPath:           c.ACSPath,
		ACSBinding:        c.ACSBinding,
		SLOPath:           c.SLOPath,
		SLOBinding:        c.SLOBinding,
		MetadataPath:      c.MetadataPath,
		CieMetadataPath:   c.CieMetadataPath,
		DigestMethod:      c.DigestMethod,
		SignatureMethod:   c.SignatureMethod,
		PrivateKey:        key,
		Certificate:       cert,
		AttributeServices: c.AttributeServices,
		Organization:      c.Organization,
		ContactPerson:     cp,
	})
}

func (c *Config) privateKey() (*rsa.PrivateKey, error) {
	data, err := c.pemData(c.PrivateKeyPEM, c.PrivateKeyPath, "private key")
	if err != nil {
		return nil, err
	}
	return parsePrivateKeyPEM(data)
}

func (c *Config) certificate() (*x509.Certificate, error) {
	data, err := c.pemData(c.CertificatePEM, c.CertificatePath, "certificate")
	if err != nil {
		return nil, err
	}
	return parseCertificatePEM(data)
}

func (c *Config) pemData(inline, path, what string) ([]byte, error) {
	if inline != "" {
		return []byte(inline), nil
	}
	if path == "" {
		return nil, domain.ConfigError(what + " is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.ConfigError(fmt.Sprintf("reading %s: %v", what, err))
	}
	return data, nil
}

func parsePrivateKeyPEM(data []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("no PEM block in private key")
	}

	// Try PKCS8 first (modern format), then PKCS1 (legacy RSA format)
	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, errors.New("private key is not RSA")
		}
		return rsaKey, nil
	}
	rsaKey, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return rsaKey, nil
}

func parseCertificatePEM(data []byte) (*x509.Certificate, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("no PEM block in certificate")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse certificate: %w", err)
	}
	return cert, nil
}
