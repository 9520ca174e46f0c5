package crypto

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// strictEncoding rejects non-zero trailing bits. The decoder still skips CR and
// LF, so FromBase64 rejects those itself; together every byte sequence has
// exactly one accepted text form.
var strictEncoding = base64.StdEncoding.Strict()

// ToBase64 encodes bytes to standard base64 with padding.
func ToBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// FromBase64 decodes standard padded base64. Any decoding failure is reported
// as ErrMalformedCiphertext.
func FromBase64(s string) ([]byte, error) {
	if strings.ContainsAny(s, "\r\n") {
		return nil, fmt.Errorf("%w: invalid base64: line break in input", ErrMalformedCiphertext)
	}

	data, err := strictEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64: %v", ErrMalformedCiphertext, err)
	}
	return data, nil
}
