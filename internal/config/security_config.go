package config

// SessionHeaderName carries the encoded session on requests and responses.
const SessionHeaderName = "GOVUK-Account-Session"

type SecurityConfig interface {
	GetSessionHeaderName() string
	GetRandomTokenLength() int
	GetMaxRequestBodyBytes() int64
}

type Security struct {
	RandomTokenLength   int   `yaml:"random_token_length" env:"RANDOM_TOKEN_LENGTH" env-default:"32"`
	MaxRequestBodyBytes int64 `yaml:"max_request_body_bytes" env:"MAX_REQUEST_BODY_BYTES" env-default:"1048576"`
}

var _ SecurityConfig = Security{}

func (Security) GetSessionHeaderName() string {
	return SessionHeaderName
}

// GetRandomTokenLength is the number of random bytes in OAuth state and nonce values
func (s Security) GetRandomTokenLength() int {
	if s.RandomTokenLength < 16 {
		return 32 // 32 bytes = 256 bits
	}
	return s.RandomTokenLength
}

func (s Security) GetMaxRequestBodyBytes() int64 {
	if s.MaxRequestBodyBytes <= 0 {
		return 1 << 20
	}
	return s.MaxRequestBodyBytes
}
