package secure

import (
	"sync"

	"github.com/awnumar/memguard"
)

// Credential holds one secret value sealed in a memguard enclave.
type Credential struct {
	mu      sync.RWMutex
	enclave *memguard.Enclave
	empty   bool
}

// NewCredential seals data. The input slice is wiped before returning.
func NewCredential(data []byte) *Credential {
	if len(data) == 0 {
		return &Credential{empty: true}
	}
	// NewEnclave wipes its source.
	return &Credential{enclave: memguard.NewEnclave(data)}
}

// Empty reports whether the credential holds no value.
func (c *Credential) Empty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.empty || c.enclave == nil
}

// Reveal decrypts the credential into a string. A destroyed or empty
// credential reveals "".
func (c *Credential) Reveal() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.empty || c.enclave == nil {
		return "", nil
	}

	locked, err := c.enclave.Open()
	if err != nil {
		return "", err
	}
	defer locked.Destroy()

	return string(locked.Bytes()), nil
}

// Destroy drops the enclave. Safe to call more than once.
func (c *Credential) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enclave = nil
	c.empty = true
}

// Wipe zeroes b in place.
func Wipe(b []byte) {
	memguard.WipeBytes(b)
}

// Init installs the interrupt handler that purges all protected memory
// before exiting.
func Init() {
	memguard.CatchInterrupt()
}

// Purge wipes all protected memory. Call it on the way out of main.
func Purge() {
	memguard.Purge()
}
