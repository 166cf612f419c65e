// SPDX-License-Identifier: Apache-2.0

// Package keychain reads and writes generic passwords in macOS keychains by
// invoking /usr/bin/security. Passwords are passed to security on stdin, never
// on the command line.
package keychain

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"al.essio.dev/pkg/shellescape"
)

// DefaultPath is the location of the security tool.
const DefaultPath = "/usr/bin/security"

// maxCommandLen is the longest line security -i reads.
const maxCommandLen = 4096

// Domain is a keychain preference domain.
type Domain string

const (
	DomainUser    Domain = "user"
	DomainSystem  Domain = "system"
	DomainCommon  Domain = "common"
	DomainDynamic Domain = "dynamic"
)

// runFunc executes security with args, feeding stdin, and returns its output.
type runFunc func(stdin []byte, args ...string) (stdout, stderr []byte, err error)

// Client runs security commands.
type Client struct {
	run runFunc
}

// New creates a Client that runs the security tool at path.
// If path is empty, DefaultPath is used.
func New(path string) *Client {
	if path == "" {
		path = DefaultPath
	}
	return &Client{run: execRunner(path)}
}

func execRunner(path string) runFunc {
	return func(stdin []byte, args ...string) ([]byte, []byte, error) {
		cmd := exec.Command(path, args...)
		cmd.Stdin = bytes.NewReader(stdin)
		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
		err := cmd.Run()
		return stdout.Bytes(), stderr.Bytes(), err
	}
}

// call runs one security command and converts failures to *StatusError.
func (c *Client) call(op string, stdin []byte, args ...string) ([]byte, []byte, error) {
	stdout, stderr, err := c.run(stdin, args...)
	if err == nil {
		return stdout, stderr, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		return nil, nil, &StatusError{
			Op:       op,
			Status:   statusForExit(code),
			ExitCode: code,
			Message:  strings.TrimSpace(string(stderr)),
		}
	}
	return nil, nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
}

// DefaultKeychain returns the path of the default keychain for domain.
func (c *Client) DefaultKeychain(domain Domain) (string, error) {
	stdout, _, err := c.call("default-keychain", nil, "default-keychain", "-d", string(domain))
	if err != nil {
		return "", err
	}
	path := strings.Trim(strings.TrimSpace(string(stdout)), `"`)
	if path == "" {
		return "", &StatusError{
			Op:      "default-keychain",
			Status:  ErrSecNoDefaultKeychain,
			Message: fmt.Sprintf("no default keychain for %s domain", domain),
		}
	}
	return path, nil
}

// FindGenericPassword returns the raw password data of the generic password
// item (service, account) in keychain.
func (c *Client) FindGenericPassword(keychain, service, account string) ([]byte, error) {
	_, stderr, err := c.call("find-generic-password", nil,
		"find-generic-password", "-s", service, "-a", account, "-g", keychain)
	if err != nil {
		return nil, err
	}
	return parsePassword(stderr)
}

// AddGenericPassword creates or updates the generic password item (service,
// account) in keychain.
func (c *Client) AddGenericPassword(keychain, service, account string, password []byte) error {
	line := fmt.Sprintf("add-generic-password -U -s %s -a %s -X %s %s\n",
		shellescape.Quote(service),
		shellescape.Quote(account),
		shellescape.Quote(hex.EncodeToString(password)),
		shellescape.Quote(keychain))
	if len(line) > maxCommandLen {
		return ErrCommandTooLong
	}
	_, _, err := c.call("add-generic-password", []byte(line), "-i")
	return err
}

// DeleteGenericPassword removes the generic password item (service, account)
// from keychain.
func (c *Client) DeleteGenericPassword(keychain, service, account string) error {
	_, _, err := c.call("delete-generic-password", nil,
		"delete-generic-password", "-s", service, "-a", account, keychain)
	return err
}

// parsePassword extracts the password from the "password:" line that
// find-generic-password -g writes to stderr. Printable values are quoted;
// anything else is printed as 0x-prefixed hex followed by an escaped form.
func parsePassword(out []byte) ([]byte, error) {
	for _, line := range strings.Split(string(out), "\n") {
		rest, ok := strings.CutPrefix(line, "password:")
		if !ok {
			continue
		}
		rest = strings.TrimPrefix(rest, " ")
		switch {
		case rest == "":
			return []byte{}, nil
		case strings.HasPrefix(rest, "0x"):
			field, _, _ := strings.Cut(rest[2:], " ")
			data, err := hex.DecodeString(field)
			if err != nil {
				return nil, fmt.Errorf("decode password data: %w", err)
			}
			return data, nil
		case len(rest) >= 2 && rest[0] == '"' && rest[len(rest)-1] == '"':
			return []byte(rest[1 : len(rest)-1]), nil
		default:
			return nil, fmt.Errorf("unrecognized password line %q", line)
		}
	}
	return nil, errors.New("no password in security output")
}
