package saml2

import (
	"time"

	"github.com/beevik/etree"
	"github.com/google/uuid"

	"github.com/dgsspa/spid-sp/internal/core/domain"
)

// IdPLogoutResponse is the signed LogoutResponse the SP produces after a
// valid IdP-initiated logout request.
type IdPLogoutResponse struct {
	settings     *Settings
	inResponseTo string
	id           string
	issueInstant time.Time
}

// NewIdPLogoutResponse builds a success response to the inbound logout
// request identified by inResponseTo.
func NewIdPLogoutResponse(settings *Settings, inResponseTo string, issueInstant time.Time) *IdPLogoutResponse {
	return &IdPLogoutResponse{
		settings:     settings,
		inResponseTo: inResponseTo,
		id:           "_" + uuid.NewString(),
		issueInstant: issueInstant.UTC(),
	}
}

// ID returns the response id.
func (r *IdPLogoutResponse) ID() string { return r.id }

// Element builds the samlp:LogoutResponse element.
func (r *IdPLogoutResponse) Element() *etree.Element {
	sp := r.settings.SP()

	resp := etree.NewElement("samlp:LogoutResponse")
	resp.CreateAttr("xmlns:samlp", samlpNamespace)
	resp.CreateAttr("xmlns:saml", samlNamespace)
	resp.CreateAttr("ID", r.id)
	resp.CreateAttr("Version", "2.0")
	resp.CreateAttr("IssueInstant", r.issueInstant.Format(time.RFC3339))
	resp.CreateAttr("InResponseTo", r.inResponseTo)
	resp.CreateAttr("Destination", r.settings.IdPSLOTargetURL())

	issuer := resp.CreateElement("saml:Issuer")
	issuer.CreateAttr("Format", domain.NameIDFormatEntity)
	issuer.CreateAttr("NameQualifier", sp.EntityID())
	issuer.SetText(sp.EntityID())

	resp.CreateElement("samlp:Status").
		CreateElement("samlp:StatusCode").
		CreateAttr("Value", domain.StatusSuccess)

	return resp
}

// MarshalSigned returns the response as signed XML.
func (r *IdPLogoutResponse) MarshalSigned() ([]byte, error) {
	sp := r.settings.SP()
	signer, err := NewXMLSigner(sp.PrivateKey(), sp.Certificate(),
		sp.DigestMethod(), sp.SignatureMethod())
	if err != nil {
		return nil, err
	}

	el := r.Element()
	if err := signer.SignElement(el, r.id); err != nil {
		return nil, err
	}
	doc := etree.NewDocument()
	doc.SetRoot(el)
	return doc.WriteToBytes()
}
