package saml2

import (
	"time"

	"github.com/beevik/etree"
	"github.com/google/uuid"

	"github.com/dgsspa/spid-sp/internal/core/domain"
)

// LogoutRequest is the transient document of one outbound logout request.
// Like AuthnRequest it relies on the redirect binding's query-string
// signature instead of an XML signature.
type LogoutRequest struct {
	settings     *Settings
	sessionIndex string
	id           string
	issueInstant time.Time
}

// NewLogoutRequest builds a logout request carrying the session index
// obtained at login.
func NewLogoutRequest(settings *Settings, sessionIndex string, issueInstant time.Time) *LogoutRequest {
	return &LogoutRequest{
		settings:     settings,
		sessionIndex: sessionIndex,
		id:           "_" + uuid.NewString(),
		issueInstant: issueInstant.UTC(),
	}
}

// ID returns the request id.
func (r *LogoutRequest) ID() string { return r.id }

// Element builds the samlp:LogoutRequest element.
func (r *LogoutRequest) Element() *etree.Element {
	sp := r.settings.SP()

	req := etree.NewElement("samlp:LogoutRequest")
	req.CreateAttr("xmlns:samlp", samlpNamespace)
	req.CreateAttr("xmlns:saml", samlNamespace)
	req.CreateAttr("ID", r.id)
	req.CreateAttr("Version", "2.0")
	req.CreateAttr("IssueInstant", r.issueInstant.Format(time.RFC3339))
	req.CreateAttr("Destination", r.settings.IdPSLOTargetURL())

	issuer := req.CreateElement("saml:Issuer")
	issuer.CreateAttr("Format", domain.NameIDFormatEntity)
	issuer.CreateAttr("NameQualifier", sp.EntityID())
	issuer.SetText(sp.EntityID())

	nameID := req.CreateElement("saml:NameID")
	nameID.CreateAttr("Format", domain.NameIDFormatTransient)
	nameID.CreateAttr("NameQualifier", r.settings.IdPEntityID())
	nameID.SetText("a-name-identifier-value")

	req.CreateElement("samlp:SessionIndex").SetText(r.sessionIndex)

	return req
}

// Marshal returns the request as an XML string.
func (r *LogoutRequest) Marshal() (string, error) {
	doc := etree.NewDocument()
	doc.SetRoot(r.Element())
	return doc.WriteToString()
}
