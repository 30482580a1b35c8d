package goerror

import "errors"

// Reason is a machine readable sub-classification of authentication and secret failures.
type Reason string

const (
	ReasonNone                     Reason = ""
	ReasonMissingOrMalformedHeader Reason = "missing_or_malformed_header"
	ReasonInvalidToken             Reason = "invalid_token"
	ReasonExpiredToken             Reason = "expired_token"
	ReasonInvalidCredentials       Reason = "invalid_credentials"
	ReasonMalformedSecretOrCode    Reason = "malformed_secret_or_code"
)

func (r Reason) String() string { return string(r) }

// NewUnauthorized builds a 401 carrying reason.
func NewUnauthorized(reason Reason, msg string) error {
	return &Error{msg: msg, errType: TypeBusiness, code: CodeUnauthorized, reason: reason}
}

// NewMalformed builds a 400 for a secret, code or stored hash that fails structural parsing.
func NewMalformed(msg string, cause error) error {
	return &Error{
		err:     cause,
		msg:     msg,
		errType: TypeValidation,
		code:    CodeInvalidFormat,
		reason:  ReasonMalformedSecretOrCode,
	}
}

// ReasonOf returns the reason of the first *Error in err's chain.
func ReasonOf(err error) Reason {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.reason
	}
	return ReasonNone
}

// CodeOf returns the code of the first *Error in err's chain, CodeInternal otherwise.
func CodeOf(err error) Code {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.code
	}
	return CodeInternal
}
