package saml2

import (
	"encoding/base64"
	"reflect"
	"testing"
	"time"
)

func TestParseResponseFields(t *testing.T) {
	idp, idpKey := testIdP(t)
	xml := buildSignedResponse(t, idpKey, idp.Certificate, fixtureResponseParams{
		inResponseTo: "_request-1",
		destination:  "https://service.provider/spid/sso",
		audience:     "https://service.provider",
		issuer:       idp.EntityID,
		sessionIndex: "_be9967abd904ddcae3c0eb4189adbe3f71e327cf93",
		attributes: [][2]string{
			{"spidCode", "ABCDEFGHILMNOPQ"},
			{"familyName", "Rossi"},
		},
	})

	r, err := ParseResponse(xml)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}

	if r.InResponseTo() != "_request-1" {
		t.Errorf("InResponseTo = %q", r.InResponseTo())
	}
	if r.Destination() != "https://service.provider/spid/sso" {
		t.Errorf("Destination = %q", r.Destination())
	}
	if r.Issuer() != "https://identity.provider" {
		t.Errorf("Issuer = %q", r.Issuer())
	}
	if r.AssertionIssuer() != "https://identity.provider" {
		t.Errorf("AssertionIssuer = %q", r.AssertionIssuer())
	}
	if r.Audience() != "https://service.provider" {
		t.Errorf("Audience = %q", r.Audience())
	}
	if r.SessionIndex() != "_be9967abd904ddcae3c0eb4189adbe3f71e327cf93" {
		t.Errorf("SessionIndex = %q", r.SessionIndex())
	}
	if !r.Success() {
		t.Errorf("Success = false, StatusCode = %q", r.StatusCode())
	}
	if r.NameID() != "a-name-id" {
		t.Errorf("NameID = %q", r.NameID())
	}

	notBefore, notOnOrAfter, ok := r.Conditions()
	if !ok {
		t.Fatal("Conditions() not present")
	}
	if !notBefore.Before(notOnOrAfter) {
		t.Errorf("NotBefore %v not before NotOnOrAfter %v", notBefore, notOnOrAfter)
	}

	want := map[string]string{"spid_code": "ABCDEFGHILMNOPQ", "family_name": "Rossi"}
	if !reflect.DeepEqual(r.Attributes(), want) {
		t.Errorf("Attributes() = %v, want %v", r.Attributes(), want)
	}
	names, values := r.RawAttributes()
	if !reflect.DeepEqual(names, []string{"spidCode", "familyName"}) {
		t.Errorf("RawAttributes order = %v", names)
	}
	if values["spidCode"] != "ABCDEFGHILMNOPQ" {
		t.Errorf("RawAttributes[spidCode] = %q", values["spidCode"])
	}

	if r.Certificate() == nil {
		t.Fatal("Certificate() = nil, want embedded certificate")
	}
	if !r.Certificate().Equal(idp.Certificate) {
		t.Error("embedded certificate differs from idp certificate")
	}
}

func TestParseResponseBase64Body(t *testing.T) {
	idp, idpKey := testIdP(t)
	xml := buildSignedResponse(t, idpKey, idp.Certificate, fixtureResponseParams{
		issuer: idp.EntityID,
	})
	body := base64.StdEncoding.EncodeToString([]byte(xml))

	r, err := ParseResponse(body)
	if err != nil {
		t.Fatalf("ParseResponse(base64): %v", err)
	}
	if r.Issuer() != idp.EntityID {
		t.Errorf("Issuer = %q", r.Issuer())
	}
}

func TestParseResponseStatusFailure(t *testing.T) {
	xml := `<samlp:Response xmlns:samlp="urn:oasis:names:tc:SAML:2.0:protocol"
  xmlns:saml="urn:oasis:names:tc:SAML:2.0:assertion" ID="_r1" Version="2.0">
  <saml:Issuer>https://identity.provider</saml:Issuer>
  <samlp:Status>
    <samlp:StatusCode Value="urn:oasis:names:tc:SAML:2.0:status:Responder">
      <samlp:StatusCode Value="urn:oasis:names:tc:SAML:2.0:status:AuthnFailed"/>
    </samlp:StatusCode>
    <samlp:StatusMessage>ErrorCode nr19</samlp:StatusMessage>
  </samlp:Status>
</samlp:Response>`

	r, err := ParseResponse(xml)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if r.Success() {
		t.Error("Success = true for responder status")
	}
	if r.StatusCode() != "urn:oasis:names:tc:SAML:2.0:status:Responder" {
		t.Errorf("StatusCode = %q", r.StatusCode())
	}
	if r.StatusMessage() != "ErrorCode nr19" {
		t.Errorf("StatusMessage = %q", r.StatusMessage())
	}
	if r.StatusDetail() != "urn:oasis:names:tc:SAML:2.0:status:AuthnFailed" {
		t.Errorf("StatusDetail = %q", r.StatusDetail())
	}
}

func TestParseResponseMissingNodes(t *testing.T) {
	xml := `<samlp:Response xmlns:samlp="urn:oasis:names:tc:SAML:2.0:protocol" ID="_r1" Version="2.0"/>`

	r, err := ParseResponse(xml)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if r.Issuer() != "" || r.SessionIndex() != "" || r.Audience() != "" {
		t.Error("absent nodes must parse to empty values")
	}
	if _, _, ok := r.Conditions(); ok {
		t.Error("Conditions() present without conditions element")
	}
	if len(r.Attributes()) != 0 {
		t.Errorf("Attributes() = %v, want empty", r.Attributes())
	}
}

func TestParseResponseMalformed(t *testing.T) {
	if _, err := ParseResponse("<samlp:Response"); err == nil {
		t.Error("ParseResponse(malformed) error = nil, want parse error")
	}
	if _, err := ParseResponse("<saml:Assertion xmlns:saml=\"urn:oasis:names:tc:SAML:2.0:assertion\"/>"); err == nil {
		t.Error("ParseResponse(non-response root) error = nil, want parse error")
	}
}

func TestParseResponseTimeFormats(t *testing.T) {
	idp, idpKey := testIdP(t)
	notBefore := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	notOnOrAfter := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	xml := buildSignedResponse(t, idpKey, idp.Certificate, fixtureResponseParams{
		issuer:       idp.EntityID,
		notBefore:    notBefore,
		notOnOrAfter: notOnOrAfter,
	})

	r, err := ParseResponse(xml)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	gotBefore, gotAfter, ok := r.Conditions()
	if !ok {
		t.Fatal("Conditions() not present")
	}
	if !gotBefore.Equal(notBefore) || !gotAfter.Equal(notOnOrAfter) {
		t.Errorf("Conditions() = %v/%v, want %v/%v", gotBefore, gotAfter, notBefore, notOnOrAfter)
	}
}
