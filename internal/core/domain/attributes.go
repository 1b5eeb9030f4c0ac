package domain

import "strings"

// AttributeField is one of the identity attributes a service provider may
// request from a SPID identity provider. The enumeration is fixed by the
// SPID attribute set.
type AttributeField string

const (
	SpidCode         AttributeField = "spid_code"
	Name             AttributeField = "name"
	FamilyName       AttributeField = "family_name"
	PlaceOfBirth     AttributeField = "place_of_birth"
	DateOfBirth      AttributeField = "date_of_birth"
	Gender           AttributeField = "gender"
	CompanyName      AttributeField = "company_name"
	RegisteredOffice AttributeField = "registered_office"
	FiscalNumber     AttributeField = "fiscal_number"
	IvaCode          AttributeField = "iva_code"
	IDCard           AttributeField = "id_card"
	MobilePhone      AttributeField = "mobile_phone"
	Email            AttributeField = "email"
	Address          AttributeField = "address"
	DigitalAddress   AttributeField = "digital_address"
)

// attributeWireNames is the bidirectional mapping between the fixed
// attribute enumeration and the camelCase names used on the wire, checked
// at both metadata-generation and response-parsing time.
var attributeWireNames = map[AttributeField]string{
	SpidCode:         "spidCode",
	Name:             "name",
	FamilyName:       "familyName",
	PlaceOfBirth:     "placeOfBirth",
	DateOfBirth:      "dateOfBirth",
	Gender:           "gender",
	CompanyName:      "companyName",
	RegisteredOffice: "registeredOffice",
	FiscalNumber:     "fiscalNumber",
	IvaCode:          "ivaCode",
	IDCard:           "idCard",
	MobilePhone:      "mobilePhone",
	Email:            "email",
	Address:          "address",
	DigitalAddress:   "digitalAddress",
}

var wireNameFields = func() map[string]AttributeField {
	m := make(map[string]AttributeField, len(attributeWireNames))
	for field, wire := range attributeWireNames {
		m[wire] = field
	}
	return m
}()

// AttributeFields returns the full attribute enumeration in a stable order.
func AttributeFields() []AttributeField {
	return []AttributeField{
		SpidCode, Name, FamilyName, PlaceOfBirth, DateOfBirth, Gender,
		CompanyName, RegisteredOffice, FiscalNumber, IvaCode, IDCard,
		MobilePhone, Email, Address, DigitalAddress,
	}
}

// Valid reports whether the field is part of the SPID attribute set.
func (f AttributeField) Valid() bool {
	_, ok := attributeWireNames[f]
	return ok
}

// WireName returns the camelCase name the field has on the wire.
func (f AttributeField) WireName() (string, bool) {
	wire, ok := attributeWireNames[f]
	return wire, ok
}

// FieldForWireName resolves a wire name back to its attribute field.
func FieldForWireName(wire string) (AttributeField, bool) {
	f, ok := wireNameFields[wire]
	return f, ok
}

// NormalizeAttributeName maps an attribute name as received on the wire to
// its snake_case key. Names outside the SPID set are converted by the
// generic camelCase rule so callers still get a usable key.
func NormalizeAttributeName(wire string) string {
	if f, ok := wireNameFields[wire]; ok {
		return string(f)
	}
	return underscore(wire)
}

func underscore(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// AttributeService describes one AttributeConsumingService entry of the SP
// metadata: a service name plus the ordered list of requested fields.
type AttributeService struct {
	Name   string           `yaml:"name"`
	Fields []AttributeField `yaml:"fields"`
}
