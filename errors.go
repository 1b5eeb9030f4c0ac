package spidsp

import (
	"github.com/dgsspa/spid-sp/internal/core/domain"
)

// Re-export error types from domain package
type ErrorCode = domain.ErrorCode
type AppError = domain.AppError

// Re-export error code constants
const (
	ErrCodeUnknownDigestMethod      = domain.ErrCodeUnknownDigestMethod
	ErrCodeUnknownSignatureMethod   = domain.ErrCodeUnknownSignatureMethod
	ErrCodeUnknownAuthnContext      = domain.ErrCodeUnknownAuthnContext
	ErrCodeUnknownAuthnComparison   = domain.ErrCodeUnknownAuthnComparison
	ErrCodeUnknownAttributeField    = domain.ErrCodeUnknownAttributeField
	ErrCodeMissingAttributeServices = domain.ErrCodeMissingAttributeServices
	ErrCodePrivateKeyTooShort       = domain.ErrCodePrivateKeyTooShort
	ErrCodeCertificateKeyMismatch   = domain.ErrCodeCertificateKeyMismatch
	ErrCodeInvalidOrganization      = domain.ErrCodeInvalidOrganization
	ErrCodeInvalidContactPerson     = domain.ErrCodeInvalidContactPerson
	ErrCodeIdPNotFound              = domain.ErrCodeIdPNotFound
	ErrCodeMalformedDocument        = domain.ErrCodeMalformedDocument
	ErrCodeConfigMissing            = domain.ErrCodeConfigMissing
)

// Re-export error constructors
var (
	UnknownDigestMethodError    = domain.UnknownDigestMethodError
	UnknownSignatureMethodError = domain.UnknownSignatureMethodError
	UnknownAuthnContextError    = domain.UnknownAuthnContextError
	IdPNotFoundError            = domain.IdPNotFoundError
	MalformedDocumentError      = domain.MalformedDocumentError
	ConfigError                 = domain.ConfigError
)
