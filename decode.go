// SPDX-License-Identifier: Apache-2.0

package keyring

import (
	"unicode/utf16"
	"unicode/utf8"
)

// decodeUTF8 interprets a stored secret as UTF-8 text. Malformed input is
// reported as BadEncoding carrying the input bytes; nothing is replaced.
func decodeUTF8(raw []byte) (string, error) {
	if !utf8.Valid(raw) {
		return "", badEncoding(raw)
	}
	return string(raw), nil
}

// encodeUTF16LE encodes s the way the Windows Credential Manager stores
// generic credential passwords.
func encodeUTF16LE(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, 0, 2*len(units))
	for _, u := range units {
		out = append(out, byte(u), byte(u>>8))
	}
	return out
}

// decodeUTF16LE is the strict inverse of encodeUTF16LE: an odd length or an
// unpaired surrogate is BadEncoding.
func decodeUTF16LE(raw []byte) (string, error) {
	if len(raw)%2 != 0 {
		return "", badEncoding(raw)
	}
	units := make([]uint16, len(raw)/2)
	for i := range units {
		units[i] = uint16(raw[2*i]) | uint16(raw[2*i+1])<<8
	}
	for i := 0; i < len(units); i++ {
		u := units[i]
		switch {
		case u >= 0xD800 && u < 0xDC00:
			if i+1 >= len(units) || units[i+1] < 0xDC00 || units[i+1] >= 0xE000 {
				return "", badEncoding(raw)
			}
			i++
		case u >= 0xDC00 && u < 0xE000:
			return "", badEncoding(raw)
		}
	}
	return string(utf16.Decode(units)), nil
}
