package cryptox

import (
	"github.com/awnumar/memguard"
)

// Key is a derived AES-256 key.
type Key struct {
	enclave *memguard.Enclave
}

// newKey seals raw into an enclave. raw is wiped.
func newKey(raw []byte) *Key {
	return &Key{enclave: memguard.NewEnclave(raw)}
}

// use unseals the key into locked memory, hands it to fn and destroys the
// buffer when fn returns. fn must not retain raw.
func (k *Key) use(fn func(raw []byte) error) error {
	if k == nil || k.enclave == nil {
		return errNilKey
	}
	buf, err := k.enclave.Open()
	if err != nil {
		return err
	}
	defer buf.Destroy()

	return fn(buf.Bytes())
}

// String never includes key bytes.
func (k *Key) String() string { return "cryptox.Key(redacted)" }

// GoString keeps %#v as redacted as %v.
func (k *Key) GoString() string { return k.String() }

// MarshalJSON always fails so a key cannot end up in a JSON document.
func (k *Key) MarshalJSON() ([]byte, error) { return nil, errKeyNotExportable }

// MarshalText always fails for the same reason as MarshalJSON.
func (k *Key) MarshalText() ([]byte, error) { return nil, errKeyNotExportable }
