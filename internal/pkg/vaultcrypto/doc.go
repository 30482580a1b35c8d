// Package vaultcrypto protects the third party passwords stored in the vault.
//
// An encrypted secret is "{salt}:{base64 payload}". The key is the raw
// Argon2id digest of "{owner}:{process secret}" under the salt, so only the
// owner, with the same process secret, can reverse it. Nothing public, such
// as the salt or the Argon2id parameters, enters the key bytes.
//
// ModeXOR XORs the plaintext with the cycled digest. It is reversible
// obfuscation without integrity protection: flipping a payload byte flips the
// same plaintext byte, and the keystream repeats every 32 bytes. ModeAESGCM
// keeps the outer format and seals the payload with AES-256-GCM instead, with
// the owner as additional data.
//
// The format carries no mode marker. Switching modes on a populated database
// needs a migration that decrypts every row under the old mode and encrypts it
// under the new one. Until then ModeAESGCM reports ErrDecrypt for XOR rows, and
// ModeXOR turns AES-GCM rows into unrelated bytes or ErrNotText.
package vaultcrypto
