package domain

import "testing"

func TestValidDigestMethod(t *testing.T) {
	for _, method := range DigestMethods() {
		if !ValidDigestMethod(method) {
			t.Errorf("ValidDigestMethod(%q) = false, want true", method)
		}
	}
	if ValidDigestMethod("http://www.w3.org/2000/09/xmldsig#sha1") {
		t.Error("ValidDigestMethod(sha1) = true, want false")
	}
}

func TestValidSignatureMethod(t *testing.T) {
	for _, method := range SignatureMethods() {
		if !ValidSignatureMethod(method) {
			t.Errorf("ValidSignatureMethod(%q) = false, want true", method)
		}
	}
	if ValidSignatureMethod("http://www.w3.org/2000/09/xmldsig#rsa-sha1") {
		t.Error("ValidSignatureMethod(rsa-sha1) = true, want false")
	}
}

func TestValidAuthnContext(t *testing.T) {
	for _, context := range AuthnContexts() {
		if !ValidAuthnContext(context) {
			t.Errorf("ValidAuthnContext(%q) = false, want true", context)
		}
	}
	if ValidAuthnContext("https://www.spid.gov.it/SpidL4") {
		t.Error("ValidAuthnContext(SpidL4) = true, want false")
	}
}

func TestComparisonValid(t *testing.T) {
	for _, c := range []Comparison{ComparisonExact, ComparisonMinimum, ComparisonBetter, ComparisonMaximum} {
		if !c.Valid() {
			t.Errorf("Comparison(%q).Valid() = false, want true", c)
		}
	}
	if Comparison("strict").Valid() {
		t.Error("Comparison(\"strict\").Valid() = true, want false")
	}
}
