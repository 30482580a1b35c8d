// Package mfa supports the second factor: sealing TOTP seeds at rest and
// generating one-time recovery codes.
package mfa
