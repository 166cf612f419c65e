// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/akihiro/keyring"
)

// maxArgs is cobra.MaximumNArgs reporting a usage error.
func maxArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.MaximumNArgs(n)(cmd, args); err != nil {
			return &usageError{err: err}
		}
		return nil
	}
}

func newSetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set [password]",
		Short: "Store a password, replacing any existing one",
		Long:  "Store a password. Without an argument it is read from the terminal, or as one line from standard input.",
		Args:  maxArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.entry()
			if err != nil {
				return err
			}
			var password string
			if len(args) == 1 {
				password = args[0]
			} else if password, err = a.readPassword(); err != nil {
				return err
			}
			if err := e.SetPassword(password); err != nil {
				return err
			}
			a.log().Debug("password stored")
			return nil
		},
	}
}

func newGetCommand(a *app) *cobra.Command {
	var withCredential bool
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Print the stored password",
		Args:  maxArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := a.entry()
			if err != nil {
				return err
			}
			if !withCredential {
				password, err := e.GetPassword()
				if err != nil {
					return err
				}
				fmt.Fprintln(a.stdout, password)
				return nil
			}
			password, c, err := e.GetPasswordAndCredential()
			if err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, password)
			writeCredential(a.stdout, c)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&withCredential, "credential", "c", false, "also print the credential as reported by the store")
	return cmd
}

func newDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Delete the stored password",
		Args:  maxArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := a.entry()
			if err != nil {
				return err
			}
			return e.DeletePassword()
		},
	}
}

func newPlatformCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "platform",
		Short: "Print the secret store family of this build",
		Args:  maxArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(a.stdout, keyring.CurrentPlatform())
			return nil
		},
	}
}

// readPassword prompts on a terminal or reads one line from a pipe.
func (a *app) readPassword() (string, error) {
	if f, ok := a.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(a.stderr, "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(a.stderr)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(a.stdin).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", usagef("no password given on standard input")
		}
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func writeCredential(w io.Writer, c keyring.Credential) {
	switch c := c.(type) {
	case keyring.MacCredential:
		fmt.Fprintf(w, "domain: %s\nservice: %s\naccount: %s\n", c.Domain, c.Service, c.Account)
	case keyring.WinCredential:
		fmt.Fprintf(w, "target: %s\nusername: %s\nalias: %s\ncomment: %s\n",
			c.TargetName, c.Username, c.TargetAlias, c.Comment)
	case keyring.LinuxCredential:
		fmt.Fprintf(w, "collection: %s\nlabel: %s\n", c.Collection, c.Label)
		for _, k := range slices.Sorted(maps.Keys(c.Attributes)) {
			fmt.Fprintf(w, "attribute %s: %s\n", k, c.Attributes[k])
		}
	}
}
