package saml2

import (
	"bytes"
	"strings"

	"github.com/beevik/etree"
	xrv "github.com/mattermost/xml-roundtrip-validator"

	"github.com/dgsspa/spid-sp/internal/core/domain"
)

// parseDocument runs the round-trip validator before handing the bytes to
// etree. IdP responses are untrusted input and etree alone accepts documents
// that encoding/xml would re-serialize differently.
func parseDocument(data []byte) (*etree.Document, error) {
	if err := xrv.Validate(bytes.NewReader(data)); err != nil {
		return nil, domain.MalformedDocumentError(err)
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, domain.MalformedDocumentError(err)
	}
	if doc.Root() == nil {
		return nil, domain.MalformedDocumentError(nil)
	}
	return doc, nil
}

// childNamed matches on the local name only. IdPs prefix the SAML namespaces
// as saml/samlp, saml2/saml2p or not at all, so prefixes carry no information.
func childNamed(el *etree.Element, name string) *etree.Element {
	if el == nil {
		return nil
	}
	for _, c := range el.ChildElements() {
		if c.Tag == name {
			return c
		}
	}
	return nil
}

func childrenNamed(el *etree.Element, names ...string) []*etree.Element {
	if el == nil {
		return nil
	}
	var out []*etree.Element
	for _, c := range el.ChildElements() {
		for _, n := range names {
			if c.Tag == n {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

func descend(el *etree.Element, path ...string) *etree.Element {
	for _, name := range path {
		el = childNamed(el, name)
		if el == nil {
			return nil
		}
	}
	return el
}

func elementText(el *etree.Element) string {
	if el == nil {
		return ""
	}
	return strings.TrimSpace(el.Text())
}

func attrValue(el *etree.Element, name string) string {
	if el == nil {
		return ""
	}
	return el.SelectAttrValue(name, "")
}
