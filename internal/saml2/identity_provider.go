package saml2

import (
	"crypto/x509"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/crewjam/saml"

	"github.com/dgsspa/spid-sp/internal/core/domain"
)

// ParseIdPMetadata parses a SAML metadata document into identity providers.
// The document may be a single EntityDescriptor or an EntitiesDescriptor
// wrapping several.
func ParseIdPMetadata(data []byte) ([]*domain.IdentityProvider, error) {
	// Try EntitiesDescriptor first (aggregate metadata)
	var entities saml.EntitiesDescriptor
	if err := xml.Unmarshal(data, &entities); err == nil && len(entities.EntityDescriptors) > 0 {
		idps := make([]*domain.IdentityProvider, 0, len(entities.EntityDescriptors))
		for i := range entities.EntityDescriptors {
			idp, err := identityProviderFromDescriptor(&entities.EntityDescriptors[i])
			if err != nil {
				return nil, err
			}
			idps = append(idps, idp)
		}
		return idps, nil
	}

	// Fall back to single EntityDescriptor
	var ed saml.EntityDescriptor
	if err := xml.Unmarshal(data, &ed); err != nil {
		return nil, domain.MalformedDocumentError(err)
	}
	idp, err := identityProviderFromDescriptor(&ed)
	if err != nil {
		return nil, err
	}
	return []*domain.IdentityProvider{idp}, nil
}

func identityProviderFromDescriptor(ed *saml.EntityDescriptor) (*domain.IdentityProvider, error) {
	if ed.EntityID == "" {
		return nil, domain.MalformedDocumentError(fmt.Errorf("missing entityID attribute"))
	}
	if len(ed.IDPSSODescriptors) == 0 {
		return nil, domain.MalformedDocumentError(fmt.Errorf("no IDPSSODescriptor found for %s", ed.EntityID))
	}
	desc := ed.IDPSSODescriptors[0]

	idp := &domain.IdentityProvider{EntityID: ed.EntityID}

	// SPID IdPs serve the redirect binding; fall back to POST if that is
	// all the descriptor advertises.
	for _, sso := range desc.SingleSignOnServices {
		if sso.Binding == saml.HTTPRedirectBinding {
			idp.SSOTargetURL = sso.Location
			break
		}
		if sso.Binding == saml.HTTPPostBinding && idp.SSOTargetURL == "" {
			idp.SSOTargetURL = sso.Location
		}
	}
	for _, slo := range desc.SingleLogoutServices {
		if slo.Binding == saml.HTTPRedirectBinding {
			idp.SLOTargetURL = slo.Location
			break
		}
		if slo.Binding == saml.HTTPPostBinding && idp.SLOTargetURL == "" {
			idp.SLOTargetURL = slo.Location
		}
	}

	for _, kd := range desc.KeyDescriptors {
		if kd.Use != "signing" && kd.Use != "" {
			continue
		}
		for _, cert := range kd.KeyInfo.X509Data.X509Certificates {
			parsed, err := parseCertificateData(cert.Data)
			if err != nil {
				return nil, domain.MalformedDocumentError(err)
			}
			idp.Certificate = parsed
			break
		}
		if idp.Certificate != nil {
			break
		}
	}

	return idp, nil
}

func parseCertificateData(data string) (*x509.Certificate, error) {
	b64 := strings.Join(strings.Fields(data), "")
	der, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("decoding certificate: %w", err)
	}
	return x509.ParseCertificate(der)
}
