package saml2

import (
	"github.com/dgsspa/spid-sp/internal/core/domain"
)

// LogoutResponse is the parsed view of an IdP response to an SP-initiated
// logout.
type LogoutResponse struct {
	raw []byte

	id           string
	inResponseTo string
	destination  string
	issuer       string
	statusCode   string
}

func ParseLogoutResponse(body string) (*LogoutResponse, error) {
	data, err := DecodeMessage(body)
	if err != nil {
		data = []byte(body)
	}
	doc, err := parseDocument(data)
	if err != nil {
		return nil, err
	}
	root := doc.Root()
	if root.Tag != "LogoutResponse" {
		return nil, domain.MalformedDocumentError(nil)
	}
	return &LogoutResponse{
		raw:          data,
		id:           attrValue(root, "ID"),
		inResponseTo: attrValue(root, "InResponseTo"),
		destination:  attrValue(root, "Destination"),
		issuer:       elementText(childNamed(root, "Issuer")),
		statusCode:   attrValue(descend(root, "Status", "StatusCode"), "Value"),
	}, nil
}

func (r *LogoutResponse) Raw() []byte          { return r.raw }
func (r *LogoutResponse) ID() string           { return r.id }
func (r *LogoutResponse) InResponseTo() string { return r.inResponseTo }
func (r *LogoutResponse) Destination() string  { return r.destination }
func (r *LogoutResponse) Issuer() string       { return r.issuer }
func (r *LogoutResponse) StatusCode() string   { return r.statusCode }

func (r *LogoutResponse) Success() bool { return r.statusCode == domain.StatusSuccess }
