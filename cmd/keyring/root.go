// SPDX-License-Identifier: Apache-2.0

package main

import (
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/akihiro/keyring"
	"github.com/akihiro/keyring/internal/config"
	"github.com/akihiro/keyring/internal/logging"
	"github.com/akihiro/keyring/internal/memprotect"
)

// entry is the part of *keyring.Entry the commands use.
type entry interface {
	SetPassword(password string) error
	GetPassword() (string, error)
	GetPasswordAndCredential() (string, keyring.Credential, error)
	DeletePassword() error
}

type options struct {
	service    string
	user       string
	target     string
	configPath string
	verbose    bool
}

// app holds the command's I/O and the entry constructor.
type app struct {
	opts   options
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// configOpts locates the default configuration file.
	configOpts config.Options
	newEntry   func(target *string, service, user string) entry
	harden     func() error
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		stdin:    stdin,
		stdout:   stdout,
		stderr:   stderr,
		newEntry: newKeyringEntry,
		harden:   memprotect.HardenProcess,
	}
}

func newKeyringEntry(target *string, service, user string) entry {
	if target != nil {
		return keyring.NewEntryWithTarget(*target, service, user)
	}
	return keyring.NewEntry(service, user)
}

func (a *app) log() *logrus.Entry {
	return logging.Component("cli")
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          "keyring",
		Short:        "Store and retrieve passwords in the platform secret store",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	pf := root.PersistentFlags()
	pf.StringVarP(&a.opts.service, "service", "s", "", "service name")
	pf.StringVarP(&a.opts.user, "user", "u", "", "user name")
	pf.StringVarP(&a.opts.target, "target", "t", "", "keychain domain, credential target name or collection")
	pf.StringVar(&a.opts.configPath, "config", "", "configuration file")
	pf.BoolVarP(&a.opts.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		newSetCommand(a),
		newGetCommand(a),
		newDeleteCommand(a),
		newPlatformCommand(a),
	)
	return root
}

// setup merges the configuration file under the flags, configures logging
// and hardens the process before any password is handled.
func (a *app) setup(cmd *cobra.Command) error {
	opts := a.configOpts
	opts.ConfigPath = a.opts.configPath
	file, path, err := config.Load(opts)
	if err != nil {
		return &usageError{err: err}
	}

	flags := cmd.Flags()
	if !flags.Changed("service") {
		a.opts.service = file.Service
	}
	if !flags.Changed("user") {
		a.opts.user = file.User
	}
	if !flags.Changed("target") {
		a.opts.target = file.Target
	}
	if !flags.Changed("verbose") {
		a.opts.verbose = file.Verbose
	}

	logging.Setup(a.stderr, a.opts.verbose)
	if path != "" {
		a.log().WithField("path", path).Debug("loaded configuration")
	}

	if err := a.harden(); err != nil {
		a.log().WithError(err).Warn("process hardening failed")
	}
	return nil
}

// entry builds the entry addressed by the flags.
func (a *app) entry() (entry, error) {
	if a.opts.service == "" {
		return nil, usagef("--service is required")
	}
	if a.opts.user == "" {
		return nil, usagef("--user is required")
	}
	var target *string
	if a.opts.target != "" {
		target = &a.opts.target
	}
	a.log().WithFields(logrus.Fields{
		"platform": keyring.CurrentPlatform(),
		"service":  a.opts.service,
		"user":     a.opts.user,
		"target":   a.opts.target,
	}).Debug("using entry")
	return a.newEntry(target, a.opts.service, a.opts.user), nil
}
