// Package otp implements time-based one-time passwords (RFC 6238) for the
// second login factor.
//
// A code is accepted only for the exact time step it was generated in. There
// is no look-back or look-ahead window.
package otp
