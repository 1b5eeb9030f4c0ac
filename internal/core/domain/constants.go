package domain

// SAML 2.0 binding URIs supported by the SPID profile.
const (
	BindingHTTPPost     = "urn:oasis:names:tc:SAML:2.0:bindings:HTTP-POST"
	BindingHTTPRedirect = "urn:oasis:names:tc:SAML:2.0:bindings:HTTP-Redirect"
)

// XML-DSig digest method URIs allowed by the SPID profile.
const (
	SHA256 = "http://www.w3.org/2001/04/xmlenc#sha256"
	SHA384 = "http://www.w3.org/2001/04/xmldsig-more#sha384"
	SHA512 = "http://www.w3.org/2001/04/xmlenc#sha512"
)

// XML-DSig signature method URIs allowed by the SPID profile.
const (
	RSASHA256 = "http://www.w3.org/2001/04/xmldsig-more#rsa-sha256"
	RSASHA384 = "http://www.w3.org/2001/04/xmldsig-more#rsa-sha384"
	RSASHA512 = "http://www.w3.org/2001/04/xmldsig-more#rsa-sha512"
)

// SPID authentication context class references, in increasing level of
// assurance. L1 is the lowest level and never forces re-authentication.
const (
	SpidL1 = "https://www.spid.gov.it/SpidL1"
	SpidL2 = "https://www.spid.gov.it/SpidL2"
	SpidL3 = "https://www.spid.gov.it/SpidL3"
)

// StatusSuccess is the SAML status code of a successful response.
const StatusSuccess = "urn:oasis:names:tc:SAML:2.0:status:Success"

// NameID format URIs used in SPID messages.
const (
	NameIDFormatEntity    = "urn:oasis:names:tc:SAML:2.0:nameid-format:entity"
	NameIDFormatTransient = "urn:oasis:names:tc:SAML:2.0:nameid-format:transient"
)

// Comparison is the RequestedAuthnContext comparison method.
type Comparison string

const (
	ComparisonExact   Comparison = "exact"
	ComparisonMinimum Comparison = "minimum"
	ComparisonBetter  Comparison = "better"
	ComparisonMaximum Comparison = "maximum"
)

// Valid reports whether the comparison method is one of the SAML-defined
// values.
func (c Comparison) Valid() bool {
	switch c {
	case ComparisonExact, ComparisonMinimum, ComparisonBetter, ComparisonMaximum:
		return true
	}
	return false
}

// DigestMethods returns the closed set of digest method URIs the SPID
// profile allows.
func DigestMethods() []string {
	return []string{SHA256, SHA384, SHA512}
}

// SignatureMethods returns the closed set of signature method URIs the
// SPID profile allows.
func SignatureMethods() []string {
	return []string{RSASHA256, RSASHA384, RSASHA512}
}

// AuthnContexts returns the SPID authentication context class references.
func AuthnContexts() []string {
	return []string{SpidL1, SpidL2, SpidL3}
}

// ValidDigestMethod reports whether method is in the allowed digest set.
func ValidDigestMethod(method string) bool {
	return method == SHA256 || method == SHA384 || method == SHA512
}

// ValidSignatureMethod reports whether method is in the allowed signature set.
func ValidSignatureMethod(method string) bool {
	return method == RSASHA256 || method == RSASHA384 || method == RSASHA512
}

// ValidAuthnContext reports whether context is one of SpidL1/L2/L3.
func ValidAuthnContext(context string) bool {
	return context == SpidL1 || context == SpidL2 || context == SpidL3
}
