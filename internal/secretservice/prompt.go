// SPDX-License-Identifier: Apache-2.0

package secretservice

import (
	"github.com/godbus/dbus/v5"
)

// prompt runs the prompt at path, if any, and waits for its Completed signal.
// The service shows its own dialog; no window id is passed.
func (c *Client) prompt(path dbus.ObjectPath) error {
	if path == noPrompt || path == "" {
		return nil
	}

	match := []dbus.MatchOption{
		dbus.WithMatchObjectPath(path),
		dbus.WithMatchInterface(PromptIface),
		dbus.WithMatchMember("Completed"),
	}
	if err := c.bus.AddMatchSignal(match...); err != nil {
		return err
	}
	defer c.bus.RemoveMatchSignal(match...)

	signals := make(chan *dbus.Signal, 4)
	c.bus.Signal(signals)
	defer c.bus.RemoveSignal(signals)

	if err := c.object(path).Call(PromptIface+".Prompt", 0, "").Err; err != nil {
		return err
	}
	for sig := range signals {
		if dismissed, ok := completed(sig, path); ok {
			if dismissed {
				return ErrPromptDismissed
			}
			return nil
		}
	}
	return ErrServiceUnavailable
}

// completed reports whether sig is the Completed signal of the prompt at
// path and, if so, whether the user dismissed it.
func completed(sig *dbus.Signal, path dbus.ObjectPath) (dismissed, ok bool) {
	if sig == nil || sig.Path != path || sig.Name != PromptIface+".Completed" {
		return false, false
	}
	var result dbus.Variant
	if err := dbus.Store(sig.Body, &dismissed, &result); err != nil {
		return false, false
	}
	return dismissed, true
}
