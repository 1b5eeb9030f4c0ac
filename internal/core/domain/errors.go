package domain

import (
	"fmt"
	"strings"
)

// ErrorCode represents categorized error types.
// These codes are stable and can be used for programmatic error handling.
type ErrorCode string

const (
	ErrCodeUnknownDigestMethod      ErrorCode = "unknown_digest_method"
	ErrCodeUnknownSignatureMethod   ErrorCode = "unknown_signature_method"
	ErrCodeUnknownAuthnContext      ErrorCode = "unknown_authn_context"
	ErrCodeUnknownAuthnComparison   ErrorCode = "unknown_authn_comparison"
	ErrCodeUnknownAttributeField    ErrorCode = "unknown_attribute_field"
	ErrCodeMissingAttributeServices ErrorCode = "missing_attribute_services"
	ErrCodePrivateKeyTooShort       ErrorCode = "private_key_too_short"
	ErrCodeCertificateKeyMismatch   ErrorCode = "certificate_key_mismatch"
	ErrCodeInvalidOrganization      ErrorCode = "invalid_organization"
	ErrCodeInvalidContactPerson     ErrorCode = "invalid_contact_person"
	ErrCodeIdPNotFound              ErrorCode = "idp_not_found"
	ErrCodeMalformedDocument        ErrorCode = "malformed_document"
	ErrCodeConfigMissing            ErrorCode = "config_missing"
)

// String returns the error code as a string.
func (c ErrorCode) String() string {
	return string(c)
}

// AppError is a structured error with code, message, and optional cause.
// Construction failures are fatal to the construction call; callers must
// treat configuration and request building as fallible.
type AppError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// UnknownDigestMethodError reports a digest method outside the SPID set.
func UnknownDigestMethodError(method string) *AppError {
	return &AppError{
		Code: ErrCodeUnknownDigestMethod,
		Message: fmt.Sprintf("provided digest method %q is not valid: use one of %s",
			method, strings.Join(DigestMethods(), ", ")),
	}
}

// UnknownSignatureMethodError reports a signature method outside the SPID set.
func UnknownSignatureMethodError(method string) *AppError {
	return &AppError{
		Code: ErrCodeUnknownSignatureMethod,
		Message: fmt.Sprintf("provided signature method %q is not valid: use one of %s",
			method, strings.Join(SignatureMethods(), ", ")),
	}
}

// UnknownAuthnContextError reports an authentication context outside L1/L2/L3.
func UnknownAuthnContextError(context string) *AppError {
	return &AppError{
		Code: ErrCodeUnknownAuthnContext,
		Message: fmt.Sprintf("provided authn context %q is not valid: use one of %s",
			context, strings.Join(AuthnContexts(), ", ")),
	}
}

// UnknownAuthnComparisonError reports an invalid comparison method.
func UnknownAuthnComparisonError(comparison string) *AppError {
	return &AppError{
		Code:    ErrCodeUnknownAuthnComparison,
		Message: fmt.Sprintf("provided comparison %q is not valid: use one of exact, minimum, better, maximum", comparison),
	}
}

// UnknownAttributeFieldError reports attribute services containing fields
// outside the SPID attribute enumeration.
func UnknownAttributeFieldError(fields []string) *AppError {
	return &AppError{
		Code: ErrCodeUnknownAttributeField,
		Message: fmt.Sprintf("provided attribute fields are not valid: %s",
			strings.Join(fields, ", ")),
	}
}

// MissingAttributeServicesError reports an empty attribute services list.
func MissingAttributeServicesError() *AppError {
	return &AppError{
		Code:    ErrCodeMissingAttributeServices,
		Message: "provide at least one attribute service",
	}
}

// PrivateKeyTooShortError reports a key below the 1024-bit minimum.
func PrivateKeyTooShortError(bits int) *AppError {
	return &AppError{
		Code:    ErrCodePrivateKeyTooShort,
		Message: fmt.Sprintf("private key is too short (%d bits): provide at least 1024 bits", bits),
	}
}

// CertificateKeyMismatchError reports a certificate whose public key does
// not belong to the configured private key.
func CertificateKeyMismatchError() *AppError {
	return &AppError{
		Code:    ErrCodeCertificateKeyMismatch,
		Message: "provide a certificate that belongs to the configured private key",
	}
}

// InvalidOrganizationError names the missing organization keys.
func InvalidOrganizationError(missing []string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidOrganization,
		Message: fmt.Sprintf("the following required organization keys are missing: %s",
			strings.Join(missing, ", ")),
	}
}

// InvalidContactPersonError reports a broken contact person configuration.
func InvalidContactPersonError(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidContactPerson, Message: message}
}

// IdPNotFoundError reports an entity id absent from the registry.
func IdPNotFoundError(entityID string) *AppError {
	return &AppError{
		Code:    ErrCodeIdPNotFound,
		Message: fmt.Sprintf("the identity provider %q was not found", entityID),
	}
}

// MalformedDocumentError wraps an XML parse failure. Parse errors are
// fatal and distinct from validation errors: they indicate the input could
// not even be interpreted as SAML.
func MalformedDocumentError(cause error) *AppError {
	return &AppError{
		Code:    ErrCodeMalformedDocument,
		Message: "the SAML message could not be parsed",
		Cause:   cause,
	}
}

// ConfigError creates a configuration error.
func ConfigError(message string) *AppError {
	return &AppError{Code: ErrCodeConfigMissing, Message: message}
}
