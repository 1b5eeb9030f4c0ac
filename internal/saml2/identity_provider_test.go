package saml2

import (
	"encoding/base64"
	"fmt"
	"testing"
)

func fixtureEntityDescriptor(t *testing.T, entityID string) string {
	t.Helper()
	_, cert := testKeyPair(t)
	return fmt.Sprintf(`<md:EntityDescriptor xmlns:md="urn:oasis:names:tc:SAML:2.0:metadata" entityID=%q>
  <md:IDPSSODescriptor protocolSupportEnumeration="urn:oasis:names:tc:SAML:2.0:protocol">
    <md:KeyDescriptor use="signing">
      <ds:KeyInfo xmlns:ds="http://www.w3.org/2000/09/xmldsig#">
        <ds:X509Data><ds:X509Certificate>%s</ds:X509Certificate></ds:X509Data>
      </ds:KeyInfo>
    </md:KeyDescriptor>
    <md:SingleLogoutService Binding="urn:oasis:names:tc:SAML:2.0:bindings:HTTP-Redirect" Location="%s/slo"/>
    <md:SingleSignOnService Binding="urn:oasis:names:tc:SAML:2.0:bindings:HTTP-Redirect" Location="%s/sso"/>
  </md:IDPSSODescriptor>
</md:EntityDescriptor>`,
		entityID, base64.StdEncoding.EncodeToString(cert.Raw), entityID, entityID)
}

func TestParseIdPMetadataSingleDescriptor(t *testing.T) {
	data := fixtureEntityDescriptor(t, "https://identity.provider")

	idps, err := ParseIdPMetadata([]byte(data))
	if err != nil {
		t.Fatalf("ParseIdPMetadata: %v", err)
	}
	if len(idps) != 1 {
		t.Fatalf("len(idps) = %d, want 1", len(idps))
	}
	idp := idps[0]
	if idp.EntityID != "https://identity.provider" {
		t.Errorf("EntityID = %q", idp.EntityID)
	}
	if idp.SSOTargetURL != "https://identity.provider/sso" {
		t.Errorf("SSOTargetURL = %q", idp.SSOTargetURL)
	}
	if idp.SLOTargetURL != "https://identity.provider/slo" {
		t.Errorf("SLOTargetURL = %q", idp.SLOTargetURL)
	}
	if idp.Certificate == nil {
		t.Error("Certificate = nil, want signing certificate")
	}
}

func TestParseIdPMetadataEntitiesDescriptor(t *testing.T) {
	aggregate := `<md:EntitiesDescriptor xmlns:md="urn:oasis:names:tc:SAML:2.0:metadata">` +
		fixtureEntityDescriptor(t, "https://idp.one") +
		fixtureEntityDescriptor(t, "https://idp.two") +
		`</md:EntitiesDescriptor>`

	idps, err := ParseIdPMetadata([]byte(aggregate))
	if err != nil {
		t.Fatalf("ParseIdPMetadata: %v", err)
	}
	if len(idps) != 2 {
		t.Fatalf("len(idps) = %d, want 2", len(idps))
	}
	got := map[string]bool{}
	for _, idp := range idps {
		got[idp.EntityID] = true
	}
	if !got["https://idp.one"] || !got["https://idp.two"] {
		t.Errorf("entity ids = %v", got)
	}
}

func TestParseIdPMetadataMalformed(t *testing.T) {
	if _, err := ParseIdPMetadata([]byte("<not-metadata")); err == nil {
		t.Error("ParseIdPMetadata(malformed) error = nil, want error")
	}
	if _, err := ParseIdPMetadata([]byte(`<md:EntityDescriptor xmlns:md="urn:oasis:names:tc:SAML:2.0:metadata" entityID="https://x"/>`)); err == nil {
		t.Error("ParseIdPMetadata(no IDPSSODescriptor) error = nil, want error")
	}
}
