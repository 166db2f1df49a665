package httputil

// Machine-readable error codes returned alongside human-readable messages.
// Clients should branch on these, not on message text.
const (
	CodeInvalidRequestBody = "invalid_request_body"
	CodeInternalError      = "internal_error"
	CodeTooManyRequests    = "too_many_requests"

	CodeEmailAlreadyExists = "email_already_exists"
	CodeEmailRequired      = "email_required"
	CodeInvalidEmailFormat = "invalid_email_format"
	CodePasswordRequired   = "password_required"
	CodePasswordTooShort   = "password_too_short"
	CodeInvalidCredentials = "invalid_credentials"

	CodeMissingAuth          = "missing_auth"
	CodeInvalidAuthHeader    = "invalid_auth_header"
	CodeInvalidToken         = "invalid_token"
	CodeTokenExpired         = "token_expired"
	CodeRefreshTokenRequired = "refresh_token_required"
	CodeInvalidRefreshToken  = "invalid_refresh_token"
	CodeInvalidResetToken    = "invalid_reset_token"

	CodeUserNotFound    = "user_not_found"
	CodeContactNotFound = "contact_not_found"
	CodeUploadFailed    = "upload_failed"
)
