package saml2

import (
	"bytes"
	"fmt"

	"github.com/jonboulle/clockwork"

	"github.com/dgsspa/spid-sp/internal/core/domain"
	"github.com/dgsspa/spid-sp/internal/core/ports"
)

// ResponseValidator runs the acceptance checks for an SSO response. The
// status gate short-circuits; every other check runs regardless of earlier
// failures so that callers can report all mismatches at once.
type ResponseValidator struct {
	response  *Response
	settings  *Settings
	requestID string
	clock     clockwork.Clock
	verifier  ports.DocumentVerifier
	result    *domain.ValidationResult
}

func NewResponseValidator(response *Response, settings *Settings, requestID string, clock clockwork.Clock, verifier ports.DocumentVerifier) *ResponseValidator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if verifier == nil {
		verifier = NewXMLVerifier()
	}
	return &ResponseValidator{
		response:  response,
		settings:  settings,
		requestID: requestID,
		clock:     clock,
		verifier:  verifier,
		result:    domain.NewValidationResult(),
	}
}

func (v *ResponseValidator) Result() *domain.ValidationResult { return v.result }

func (v *ResponseValidator) Validate() bool {
	if !v.success() {
		return false
	}

	checks := []func() bool{
		v.matchesRequestID,
		v.issuer,
		v.assertionIssuer,
		v.certificate,
		v.destination,
		v.conditions,
		v.audience,
		v.signature,
	}
	valid := true
	for _, check := range checks {
		if !check() {
			valid = false
		}
	}
	return valid
}

func (v *ResponseValidator) success() bool {
	if v.response.Success() {
		return true
	}
	v.result.SetStatusFailure(
		v.response.StatusCode(),
		v.response.StatusMessage(),
		v.response.StatusDetail(),
	)
	return false
}

// An unsolicited response carries no InResponseTo; an empty requestID
// means no matching in-flight request. Neither may pass correlation.
func (v *ResponseValidator) matchesRequestID() bool {
	if v.requestID != "" && v.response.InResponseTo() == v.requestID {
		return true
	}
	v.result.Add("request_uuid_mismatch", "Request uuid not belongs to current session")
	return false
}

func (v *ResponseValidator) issuer() bool {
	if v.response.Issuer() == v.settings.IdPEntityID() {
		return true
	}
	v.result.Add("issuer", fmt.Sprintf(
		"Response Issuer is '%s' but was expected '%s'",
		v.response.Issuer(), v.settings.IdPEntityID(),
	))
	return false
}

func (v *ResponseValidator) assertionIssuer() bool {
	if v.response.AssertionIssuer() == v.settings.IdPEntityID() {
		return true
	}
	v.result.Add("assertion_issuer", fmt.Sprintf(
		"Response Assertion Issuer is '%s' but was expected '%s'",
		v.response.AssertionIssuer(), v.settings.IdPEntityID(),
	))
	return false
}

func (v *ResponseValidator) certificate() bool {
	idp := v.settings.IdP()
	got := v.response.Certificate()
	if idp != nil && idp.Certificate != nil && got != nil &&
		bytes.Equal(got.Raw, idp.Certificate.Raw) {
		return true
	}
	v.result.Add("certificate", "Certificates mismatch")
	return false
}

func (v *ResponseValidator) destination() bool {
	acsURL := v.settings.SP().ACSURL()
	if v.response.Destination() == acsURL {
		return true
	}
	if v.response.Destination() == v.settings.SP().EntityID() {
		return true
	}
	v.result.Add("destination", fmt.Sprintf(
		"Response Destination is '%s' but was expected '%s'",
		v.response.Destination(), acsURL,
	))
	return false
}

func (v *ResponseValidator) conditions() bool {
	notBefore, notOnOrAfter, ok := v.response.Conditions()
	if ok {
		now := v.clock.Now().UTC()
		if !now.Before(notBefore) && now.Before(notOnOrAfter) {
			return true
		}
	}
	v.result.Add("conditions", "Response was out of time")
	return false
}

func (v *ResponseValidator) audience() bool {
	if v.response.Audience() == v.settings.SP().EntityID() {
		return true
	}
	v.result.Add("audience", fmt.Sprintf(
		"Response Audience is '%s' but was expected '%s'",
		v.response.Audience(), v.settings.SP().EntityID(),
	))
	return false
}

func (v *ResponseValidator) signature() bool {
	idp := v.settings.IdP()
	if idp != nil && idp.Certificate != nil {
		valid, err := v.verifier.Verify(v.response.Raw(), idp.Certificate)
		if err == nil && valid {
			return true
		}
	}
	v.result.Add("signature", "Signature mismatch")
	return false
}

// LogoutResponseValidator checks an IdP answer to an SP-initiated logout.
type LogoutResponseValidator struct {
	response  *LogoutResponse
	settings  *Settings
	requestID string
	verifier  ports.DocumentVerifier
	result    *domain.ValidationResult
}

func NewLogoutResponseValidator(response *LogoutResponse, settings *Settings, requestID string, verifier ports.DocumentVerifier) *LogoutResponseValidator {
	if verifier == nil {
		verifier = NewXMLVerifier()
	}
	return &LogoutResponseValidator{
		response:  response,
		settings:  settings,
		requestID: requestID,
		verifier:  verifier,
		result:    domain.NewValidationResult(),
	}
}

func (v *LogoutResponseValidator) Result() *domain.ValidationResult { return v.result }

func (v *LogoutResponseValidator) Validate() bool {
	if !v.response.Success() {
		v.result.SetStatusFailure(v.response.StatusCode(), "", "")
		return false
	}

	valid := true

	if v.requestID == "" || v.response.InResponseTo() != v.requestID {
		v.result.Add("request_uuid_mismatch", "Request uuid not belongs to current session")
		valid = false
	}

	if v.response.Issuer() != v.settings.IdPEntityID() {
		v.result.Add("issuer", fmt.Sprintf(
			"Response Issuer is '%s' but was expected '%s'",
			v.response.Issuer(), v.settings.IdPEntityID(),
		))
		valid = false
	}

	sloURL := v.settings.SP().SLOURL()
	if v.response.Destination() != sloURL &&
		v.response.Destination() != v.settings.SP().EntityID() {
		v.result.Add("destination", fmt.Sprintf(
			"Response Destination is '%s' but was expected '%s'",
			v.response.Destination(), sloURL,
		))
		valid = false
	}

	if !v.signedByIdP(v.response.Raw()) {
		v.result.Add("signature", "Signature mismatch")
		valid = false
	}

	return valid
}

func (v *LogoutResponseValidator) signedByIdP(raw []byte) bool {
	idp := v.settings.IdP()
	if idp == nil || idp.Certificate == nil {
		return false
	}
	valid, err := v.verifier.Verify(raw, idp.Certificate)
	return err == nil && valid
}

// IdPLogoutRequestValidator checks an IdP-initiated logout request before
// the SP terminates the local session and answers it.
type IdPLogoutRequestValidator struct {
	request  *IdPLogoutRequest
	settings *Settings
	result   *domain.ValidationResult
}

func NewIdPLogoutRequestValidator(request *IdPLogoutRequest, settings *Settings) *IdPLogoutRequestValidator {
	return &IdPLogoutRequestValidator{
		request:  request,
		settings: settings,
		result:   domain.NewValidationResult(),
	}
}

func (v *IdPLogoutRequestValidator) Result() *domain.ValidationResult { return v.result }

func (v *IdPLogoutRequestValidator) Validate() bool {
	valid := true

	if v.request.Issuer() != v.settings.IdPEntityID() {
		v.result.Add("issuer", fmt.Sprintf(
			"Request Issuer is '%s' but was expected '%s'",
			v.request.Issuer(), v.settings.IdPEntityID(),
		))
		valid = false
	}

	sloURL := v.settings.SP().SLOURL()
	if v.request.Destination() != sloURL &&
		v.request.Destination() != v.settings.SP().EntityID() {
		v.result.Add("destination", fmt.Sprintf(
			"Request Destination is '%s' but was expected '%s'",
			v.request.Destination(), sloURL,
		))
		valid = false
	}

	if v.request.SessionIndex() == "" {
		v.result.Add("session_index", "Request has no session index")
		valid = false
	}

	return valid
}
