// Package hash holds the one-way primitives: password hashing, deterministic
// key derivation for the vault cipher, and keyed digests for recovery codes.
//
// Stored password hashes are PHC strings. The algorithm tag at the front of the
// string decides which implementation verifies it, so hashes written by an
// older algorithm keep working until the owner logs in and is rehashed.
package hash
