// Package clock abstracts the wall clock.
//
// Token expiry and TOTP time steps are computed from a Clocker so tests can pin
// the exact second they run at.
package clock
