package saml2

import (
	"github.com/dgsspa/spid-sp/internal/core/domain"
)

// IdPLogoutRequest is the parsed view of an IdP-initiated logout request.
// The SP answers it with an IdPLogoutResponse referencing the request ID.
type IdPLogoutRequest struct {
	raw []byte

	id           string
	destination  string
	issuer       string
	nameID       string
	sessionIndex string
}

func ParseIdPLogoutRequest(body string) (*IdPLogoutRequest, error) {
	data, err := DecodeMessage(body)
	if err != nil {
		data = []byte(body)
	}
	doc, err := parseDocument(data)
	if err != nil {
		return nil, err
	}
	root := doc.Root()
	if root.Tag != "LogoutRequest" {
		return nil, domain.MalformedDocumentError(nil)
	}
	return &IdPLogoutRequest{
		raw:          data,
		id:           attrValue(root, "ID"),
		destination:  attrValue(root, "Destination"),
		issuer:       elementText(childNamed(root, "Issuer")),
		nameID:       elementText(childNamed(root, "NameID")),
		sessionIndex: elementText(childNamed(root, "SessionIndex")),
	}, nil
}

func (r *IdPLogoutRequest) Raw() []byte          { return r.raw }
func (r *IdPLogoutRequest) ID() string           { return r.id }
func (r *IdPLogoutRequest) Destination() string  { return r.destination }
func (r *IdPLogoutRequest) Issuer() string       { return r.issuer }
func (r *IdPLogoutRequest) NameID() string       { return r.nameID }
func (r *IdPLogoutRequest) SessionIndex() string { return r.sessionIndex }
