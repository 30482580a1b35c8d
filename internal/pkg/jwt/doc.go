// Package jwt issues and validates the stateless session tokens.
//
// A token carries {sub, iss, iat, exp} only and is signed with an HMAC key
// that is fetched from a KeySource on every call, so a rotated key applies to
// the next request without a restart. Nothing is stored server side: a token
// is valid until it expires.
package jwt
