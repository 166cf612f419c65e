// SPDX-License-Identifier: Apache-2.0

package secretservice

import (
	"fmt"
	"math/big"

	"github.com/godbus/dbus/v5"
)

// session is an open transport session with the service.
// key is nil for plain sessions; 16 bytes for DH sessions.
type session struct {
	path dbus.ObjectPath
	key  []byte
}

// openSession negotiates an encrypted session, falling back to plain when
// the service does not support the DH algorithm.
func openSession(svc dbus.BusObject) (*session, error) {
	priv, pub, err := dhGenerateKeyPair()
	if err != nil {
		return nil, fmt.Errorf("generate session key: %w", err)
	}

	var output dbus.Variant
	var path dbus.ObjectPath
	err = svc.Call(ServiceIface+".OpenSession", 0, AlgorithmDH, dbus.MakeVariant(bigIntToGroupBytes(pub))).
		Store(&output, &path)
	switch {
	case err == nil:
		peer, ok := output.Value().([]byte)
		if !ok || len(peer) == 0 || len(peer) > dhGroupSize {
			return nil, fmt.Errorf("open session: unexpected output of type %s", output.Signature())
		}
		key, err := dhDeriveAESKey(priv, new(big.Int).SetBytes(peer))
		if err != nil {
			return nil, fmt.Errorf("open session: %w", err)
		}
		return &session{path: path, key: key}, nil
	case ErrorName(err) != ErrNameNotSupported:
		return nil, fmt.Errorf("open session: %w", err)
	}

	if err := svc.Call(ServiceIface+".OpenSession", 0, AlgorithmPlain, dbus.MakeVariant("")).
		Store(&output, &path); err != nil {
		return nil, fmt.Errorf("open plain session: %w", err)
	}
	return &session{path: path}, nil
}

// encode prepares plaintext for delivery over D-Bus.
func (s *session) encode(plaintext []byte) (Secret, error) {
	sec := Secret{Session: s.path, Parameters: []byte{}, ContentType: contentType}
	if s.key == nil {
		sec.Value = plaintext
		return sec, nil
	}
	iv, ciphertext, err := aesEncrypt(s.key, plaintext)
	if err != nil {
		return Secret{}, fmt.Errorf("encrypt secret: %w", err)
	}
	sec.Parameters, sec.Value = iv, ciphertext
	return sec, nil
}

// decode recovers the plaintext of a secret received over D-Bus.
func (s *session) decode(sec Secret) ([]byte, error) {
	if s.key == nil {
		return sec.Value, nil
	}
	plaintext, err := aesDecrypt(s.key, sec.Parameters, sec.Value)
	if err != nil {
		return nil, fmt.Errorf("decrypt secret: %w", err)
	}
	return plaintext, nil
}

// wipe zeroes the session key.
func (s *session) wipe() {
	clear(s.key)
	s.key = nil
}
