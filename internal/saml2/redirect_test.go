package saml2

import (
	"net/url"
	"strings"
	"testing"

	"github.com/dgsspa/spid-sp/internal/core/domain"
)

func TestQueryStringParamOrder(t *testing.T) {
	key, _ := testKeyPair(t)
	signer, err := NewQueryParamsSigner("<samlp:AuthnRequest/>", key, domain.RSASHA256, "opaque-state")
	if err != nil {
		t.Fatalf("NewQueryParamsSigner: %v", err)
	}

	qs, err := signer.QueryString()
	if err != nil {
		t.Fatalf("QueryString: %v", err)
	}

	var keys []string
	for _, part := range strings.Split(qs, "&") {
		keys = append(keys, strings.SplitN(part, "=", 2)[0])
	}
	want := []string{"SAMLRequest", "RelayState", "SigAlg", "Signature"}
	if len(keys) != len(want) {
		t.Fatalf("query params = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("param %d = %q, want %q", i, keys[i], want[i])
		}
	}

	values, err := url.ParseQuery(qs)
	if err != nil {
		t.Fatalf("parsing query string: %v", err)
	}
	if got := values.Get("SigAlg"); got != domain.RSASHA256 {
		t.Errorf("SigAlg = %q, want rsa-sha256", got)
	}
	if got := values.Get("RelayState"); got != "opaque-state" {
		t.Errorf("RelayState = %q", got)
	}
}

func TestQueryStringOmitsEmptyRelayState(t *testing.T) {
	key, _ := testKeyPair(t)
	signer, err := NewQueryParamsSigner("<samlp:AuthnRequest/>", key, domain.RSASHA256, "")
	if err != nil {
		t.Fatalf("NewQueryParamsSigner: %v", err)
	}
	qs, err := signer.QueryString()
	if err != nil {
		t.Fatalf("QueryString: %v", err)
	}
	if strings.Contains(qs, "RelayState") {
		t.Errorf("query string %q contains RelayState, want omitted", qs)
	}
}

func TestQueryStringSignatureVerifies(t *testing.T) {
	key, cert := testKeyPair(t)
	signer, err := NewQueryParamsSigner("<samlp:AuthnRequest ID=\"_1\"/>", key, domain.RSASHA256, "state")
	if err != nil {
		t.Fatalf("NewQueryParamsSigner: %v", err)
	}
	qs, err := signer.QueryString()
	if err != nil {
		t.Fatalf("QueryString: %v", err)
	}

	valid, err := VerifySignedQueryString(qs, cert)
	if err != nil {
		t.Fatalf("VerifySignedQueryString: %v", err)
	}
	if !valid {
		t.Error("signature does not verify")
	}
}

func TestQueryStringTamperInvalidatesSignature(t *testing.T) {
	key, cert := testKeyPair(t)
	signer, err := NewQueryParamsSigner("<samlp:AuthnRequest ID=\"_1\"/>", key, domain.RSASHA256, "state")
	if err != nil {
		t.Fatalf("NewQueryParamsSigner: %v", err)
	}
	qs, err := signer.QueryString()
	if err != nil {
		t.Fatalf("QueryString: %v", err)
	}

	tampered := strings.Replace(qs, "RelayState=state", "RelayState=other", 1)
	valid, err := VerifySignedQueryString(tampered, cert)
	if err != nil {
		t.Fatalf("VerifySignedQueryString: %v", err)
	}
	if valid {
		t.Error("tampered query string still verifies")
	}
}

func TestQueryStringNewlinesStripped(t *testing.T) {
	key, _ := testKeyPair(t)
	signer, err := NewQueryParamsSigner("<samlp:AuthnRequest\nID=\"_1\"/>\n", key, domain.RSASHA256, "")
	if err != nil {
		t.Fatalf("NewQueryParamsSigner: %v", err)
	}
	qs, err := signer.QueryString()
	if err != nil {
		t.Fatalf("QueryString: %v", err)
	}

	values, _ := url.ParseQuery(qs)
	decoded, err := DecodeMessage(values.Get("SAMLRequest"))
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if strings.Contains(string(decoded), "\n") {
		t.Errorf("decoded message %q contains newline", decoded)
	}
}

func TestNewQueryParamsSignerUnknownMethod(t *testing.T) {
	key, _ := testKeyPair(t)
	if _, err := NewQueryParamsSigner("<x/>", key, "rsa-sha1", ""); err == nil {
		t.Error("NewQueryParamsSigner(rsa-sha1) error = nil, want error")
	}
}
