// Package secure keeps credentials typed at a prompt out of ordinary heap
// memory for as long as the CLI holds them.
//
// Credentials are sealed in a memguard enclave (encrypted at rest, mlocked
// where the platform allows) and only revealed at the point they are handed
// to the AWS SDK or written to the configuration file.
//
//	cred := secure.NewCredential(passwordBytes) // passwordBytes is wiped
//	defer cred.Destroy()
//	key, err := cred.Reveal()
//
// main calls Init once at startup and Purge on exit so every enclave is
// wiped even when the process is interrupted.
//
// Revealed strings are ordinary Go memory and cannot be wiped. Keep the
// window between Reveal and use short.
package secure
