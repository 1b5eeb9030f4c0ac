package saml2

import (
	"crypto/x509"
	"encoding/base64"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/dgsspa/spid-sp/internal/core/domain"
)

// Response is the parsed view of an IdP SSO response. All fields are read
// once at parse time; validation happens separately so that a validator can
// report every failing check instead of stopping at the first bad element.
type Response struct {
	raw []byte

	id           string
	inResponseTo string
	destination  string
	issueInstant string

	statusCode    string
	statusMessage string
	statusDetail  string

	issuer          string
	assertionIssuer string
	nameID          string
	sessionIndex    string

	notBefore    time.Time
	notOnOrAfter time.Time
	hasNotBefore bool
	hasNotAfter  bool
	audience     string

	attributeNames  []string
	attributeValues map[string]string

	certificate *x509.Certificate
}

// ParseResponse accepts either the raw XML or the body as delivered by the
// binding (base64, optionally deflated).
func ParseResponse(body string) (*Response, error) {
	data, err := DecodeMessage(body)
	if err != nil {
		data = []byte(body)
	}
	doc, err := parseDocument(data)
	if err != nil {
		return nil, err
	}
	root := doc.Root()
	if root.Tag != "Response" {
		return nil, domain.MalformedDocumentError(nil)
	}

	r := &Response{
		raw:             data,
		id:              attrValue(root, "ID"),
		inResponseTo:    attrValue(root, "InResponseTo"),
		destination:     attrValue(root, "Destination"),
		issueInstant:    attrValue(root, "IssueInstant"),
		issuer:          elementText(childNamed(root, "Issuer")),
		attributeValues: map[string]string{},
	}

	if status := childNamed(root, "Status"); status != nil {
		code := childNamed(status, "StatusCode")
		r.statusCode = attrValue(code, "Value")
		// SPID IdPs report the specific failure on the nested StatusCode.
		if nested := childNamed(code, "StatusCode"); nested != nil {
			r.statusDetail = attrValue(nested, "Value")
		}
		r.statusMessage = elementText(childNamed(status, "StatusMessage"))
		if r.statusDetail == "" {
			r.statusDetail = elementText(childNamed(status, "StatusDetail"))
		}
	}

	if assertion := childNamed(root, "Assertion"); assertion != nil {
		r.parseAssertion(assertion)
	}

	if der := responseCertificate(root); der != nil {
		// A corrupt embedded certificate is not fatal here. The certificate
		// check of the validator reports it as a mismatch.
		if cert, err := x509.ParseCertificate(der); err == nil {
			r.certificate = cert
		}
	}
	return r, nil
}

func (r *Response) parseAssertion(assertion *etree.Element) {
	r.assertionIssuer = elementText(childNamed(assertion, "Issuer"))

	if subject := childNamed(assertion, "Subject"); subject != nil {
		r.nameID = elementText(childNamed(subject, "NameID"))
	}

	if conditions := childNamed(assertion, "Conditions"); conditions != nil {
		if v := attrValue(conditions, "NotBefore"); v != "" {
			if t, err := time.Parse(time.RFC3339, v); err == nil {
				r.notBefore = t
				r.hasNotBefore = true
			}
		}
		if v := attrValue(conditions, "NotOnOrAfter"); v != "" {
			if t, err := time.Parse(time.RFC3339, v); err == nil {
				r.notOnOrAfter = t
				r.hasNotAfter = true
			}
		}
		r.audience = elementText(descend(conditions, "AudienceRestriction", "Audience"))
	}

	if authnStatement := childNamed(assertion, "AuthnStatement"); authnStatement != nil {
		r.sessionIndex = attrValue(authnStatement, "SessionIndex")
	}

	if attrStatement := childNamed(assertion, "AttributeStatement"); attrStatement != nil {
		for _, attr := range childrenNamed(attrStatement, "Attribute") {
			name := attrValue(attr, "Name")
			if name == "" {
				continue
			}
			if _, seen := r.attributeValues[name]; !seen {
				r.attributeNames = append(r.attributeNames, name)
			}
			r.attributeValues[name] = elementText(childNamed(attr, "AttributeValue"))
		}
	}
}

// responseCertificate returns the DER bytes of the first X509Certificate
// found under a ds:Signature, preferring the assertion signature.
func responseCertificate(root *etree.Element) []byte {
	candidates := []*etree.Element{childNamed(root, "Assertion"), root}
	for _, parent := range candidates {
		cert := descend(parent, "Signature", "KeyInfo", "X509Data", "X509Certificate")
		if cert == nil {
			continue
		}
		b64 := strings.Join(strings.Fields(cert.Text()), "")
		der, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			continue
		}
		return der
	}
	return nil
}

func (r *Response) Raw() []byte           { return r.raw }
func (r *Response) ID() string            { return r.id }
func (r *Response) InResponseTo() string  { return r.inResponseTo }
func (r *Response) Destination() string   { return r.destination }
func (r *Response) IssueInstant() string  { return r.issueInstant }
func (r *Response) StatusCode() string    { return r.statusCode }
func (r *Response) StatusMessage() string { return r.statusMessage }
func (r *Response) StatusDetail() string  { return r.statusDetail }

// Success reports whether the top-level status code is the SAML success URN.
func (r *Response) Success() bool { return r.statusCode == domain.StatusSuccess }

func (r *Response) Issuer() string          { return r.issuer }
func (r *Response) AssertionIssuer() string { return r.assertionIssuer }
func (r *Response) NameID() string          { return r.nameID }
func (r *Response) SessionIndex() string    { return r.sessionIndex }
func (r *Response) Audience() string        { return r.audience }

func (r *Response) Conditions() (notBefore, notOnOrAfter time.Time, ok bool) {
	return r.notBefore, r.notOnOrAfter, r.hasNotBefore && r.hasNotAfter
}

// Certificate is the signing certificate embedded in the response, or nil.
func (r *Response) Certificate() *x509.Certificate { return r.certificate }

// Attributes returns name/value pairs in document order with SPID wire names
// normalized to snake_case.
func (r *Response) Attributes() map[string]string {
	out := make(map[string]string, len(r.attributeValues))
	for name, value := range r.attributeValues {
		out[domain.NormalizeAttributeName(name)] = value
	}
	return out
}

// RawAttributes preserves the wire names and document order.
func (r *Response) RawAttributes() ([]string, map[string]string) {
	names := make([]string, len(r.attributeNames))
	copy(names, r.attributeNames)
	values := make(map[string]string, len(r.attributeValues))
	for k, v := range r.attributeValues {
		values[k] = v
	}
	return names, values
}
