package domain

// StatusFailure carries the status triple of a SAML response that itself
// reported failure. It short-circuits the remaining validation checks.
type StatusFailure struct {
	Code    string
	Message string
	Detail  string
}

// ValidationResult accumulates named validation errors in insertion order.
// An empty result signifies success. Validation failures are never raised
// as errors: all checks run and collect, so a caller can render every
// mismatch at once.
type ValidationResult struct {
	keys   []string
	errors map[string]string
	status *StatusFailure
}

// NewValidationResult returns an empty result.
func NewValidationResult() *ValidationResult {
	return &ValidationResult{errors: make(map[string]string)}
}

// Add records a named error. Re-adding an existing key overwrites the
// message but keeps the original position.
func (r *ValidationResult) Add(key, message string) {
	if _, ok := r.errors[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.errors[key] = message
}

// SetStatusFailure records the status triple of an unsuccessful response
// under the "authentication" key.
func (r *ValidationResult) SetStatusFailure(code, message, detail string) {
	r.status = &StatusFailure{Code: code, Message: message, Detail: detail}
	r.Add("authentication",
		"authentication failed with status code '"+code+"' ("+message+")")
}

// StatusFailure returns the recorded status triple, or nil when the
// response reported success.
func (r *ValidationResult) StatusFailure() *StatusFailure {
	return r.status
}

// Valid reports whether no errors were collected.
func (r *ValidationResult) Valid() bool {
	return len(r.keys) == 0
}

// Keys returns the error keys in insertion order.
func (r *ValidationResult) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Errors returns a copy of the error map.
func (r *ValidationResult) Errors() map[string]string {
	out := make(map[string]string, len(r.errors))
	for k, v := range r.errors {
		out[k] = v
	}
	return out
}

// Message returns the message recorded under key, or "".
func (r *ValidationResult) Message(key string) string {
	return r.errors[key]
}
