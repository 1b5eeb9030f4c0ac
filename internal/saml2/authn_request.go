package saml2

import (
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/google/uuid"

	"github.com/dgsspa/spid-sp/internal/core/domain"
)

// AuthnRequest is the transient document of one outbound authentication
// request. It is never signed at the XML level: the redirect binding's
// query-string signature covers it instead.
type AuthnRequest struct {
	settings     *Settings
	id           string
	issueInstant time.Time
}

// NewAuthnRequest builds an authentication request for settings, with a
// fresh "_"-prefixed UUID and the given issue instant.
func NewAuthnRequest(settings *Settings, issueInstant time.Time) *AuthnRequest {
	return &AuthnRequest{
		settings:     settings,
		id:           "_" + uuid.NewString(),
		issueInstant: issueInstant.UTC(),
	}
}

// ID returns the request id, used later to match InResponseTo.
func (r *AuthnRequest) ID() string { return r.id }

// IssueInstant returns the UTC issue instant.
func (r *AuthnRequest) IssueInstant() time.Time { return r.issueInstant }

// Element builds the samlp:AuthnRequest element.
func (r *AuthnRequest) Element() *etree.Element {
	sp := r.settings.SP()

	req := etree.NewElement("samlp:AuthnRequest")
	req.CreateAttr("xmlns:samlp", samlpNamespace)
	req.CreateAttr("xmlns:saml", samlNamespace)
	req.CreateAttr("ID", r.id)
	req.CreateAttr("Version", "2.0")
	req.CreateAttr("IssueInstant", r.issueInstant.Format(time.RFC3339))
	req.CreateAttr("Destination", r.settings.IdPSSOTargetURL())
	// L1 is the only context that never forces re-authentication.
	if r.settings.AuthnContext() != domain.SpidL1 {
		req.CreateAttr("ForceAuthn", "true")
	}
	req.CreateAttr("ProtocolBinding", sp.ACSBinding())
	req.CreateAttr("AssertionConsumerServiceIndex", "0")
	req.CreateAttr("AttributeConsumingServiceIndex", strconv.Itoa(r.settings.AttributeIndex()))

	issuer := req.CreateElement("saml:Issuer")
	issuer.CreateAttr("Format", domain.NameIDFormatEntity)
	issuer.CreateAttr("NameQualifier", sp.EntityID())
	issuer.SetText(sp.EntityID())

	// No AllowCreate: SPID forbids it on the transient format.
	nameIDPolicy := req.CreateElement("samlp:NameIDPolicy")
	nameIDPolicy.CreateAttr("Format", domain.NameIDFormatTransient)

	rac := req.CreateElement("samlp:RequestedAuthnContext")
	rac.CreateAttr("Comparison", string(r.settings.Comparison()))
	rac.CreateElement("saml:AuthnContextClassRef").SetText(r.settings.AuthnContext())

	return req
}

// Marshal returns the request as an XML string.
func (r *AuthnRequest) Marshal() (string, error) {
	doc := etree.NewDocument()
	doc.SetRoot(r.Element())
	return doc.WriteToString()
}
