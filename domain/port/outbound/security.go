package outbound

// CryptoService covers file encryption and password hashing
type CryptoService interface {
	Encrypt(data []byte, key [32]byte) (encrypted []byte, nonce []byte, err error)
	Decrypt(encrypted []byte, nonce []byte, key [32]byte) ([]byte, error)
	DeriveKey(machineID string) [32]byte
	GenerateSalt() [32]byte
	HashPassword(password string, salt [16]byte) string
	VerifyPassword(password, hash string, salt [16]byte) bool
}

// MachineIDService returns a stable identifier of the host
type MachineIDService interface {
	GetMachineID() (string, error)
}
