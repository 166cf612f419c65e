// SPDX-License-Identifier: Apache-2.0

package secretservice

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

// signalBus is the signal subscription part of *dbus.Conn.
type signalBus interface {
	AddMatchSignal(options ...dbus.MatchOption) error
	RemoveMatchSignal(options ...dbus.MatchOption) error
	Signal(ch chan<- *dbus.Signal)
	RemoveSignal(ch chan<- *dbus.Signal)
}

// Client talks to the Secret Service over one transport session.
// It is not safe for concurrent use; open one per operation.
type Client struct {
	bus     signalBus
	object  func(path dbus.ObjectPath) dbus.BusObject
	service dbus.BusObject
	session *session
}

// Connect opens a session with the Secret Service on the shared session bus.
func Connect() (*Client, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}
	return NewClient(conn)
}

// NewClient opens a session with the Secret Service reachable through conn.
func NewClient(conn *dbus.Conn) (*Client, error) {
	return newClient(conn, func(path dbus.ObjectPath) dbus.BusObject {
		return conn.Object(BusName, path)
	})
}

func newClient(bus signalBus, object func(dbus.ObjectPath) dbus.BusObject) (*Client, error) {
	c := &Client{
		bus:     bus,
		object:  object,
		service: object(ServicePath),
	}
	s, err := openSession(c.service)
	if err != nil {
		return nil, err
	}
	c.session = s
	return c, nil
}

// Close closes the transport session. The bus connection stays open.
func (c *Client) Close() error {
	err := c.object(c.session.path).Call(SessionIface+".Close", 0).Err
	c.session.wipe()
	return err
}

// Store creates or replaces the item in collection whose attributes equal attrs.
func (c *Client) Store(collection, label string, attrs map[string]string, secret []byte) error {
	col, err := c.unlockedCollection(collection)
	if err != nil {
		return err
	}
	sec, err := c.session.encode(secret)
	if err != nil {
		return err
	}
	props := map[string]dbus.Variant{
		ItemIface + ".Label":      dbus.MakeVariant(label),
		ItemIface + ".Attributes": dbus.MakeVariant(attrs),
	}
	var item, prompt dbus.ObjectPath
	if err := c.object(col).Call(CollectionIface+".CreateItem", 0, props, sec, true).
		Store(&item, &prompt); err != nil {
		return fmt.Errorf("create item: %w", err)
	}
	return c.prompt(prompt)
}

// Lookup returns the first item in collection matching attrs.
func (c *Client) Lookup(collection string, attrs map[string]string) (*Item, error) {
	path, err := c.search(collection, attrs)
	if err != nil {
		return nil, err
	}
	obj := c.object(path)

	var sec Secret
	if err := obj.Call(ItemIface+".GetSecret", 0, c.session.path).Store(&sec); err != nil {
		return nil, fmt.Errorf("get secret: %w", err)
	}
	value, err := c.session.decode(sec)
	if err != nil {
		return nil, err
	}

	item := &Item{Path: path, Secret: value}
	if v, err := obj.GetProperty(ItemIface + ".Label"); err == nil {
		item.Label, _ = v.Value().(string)
	}
	if v, err := obj.GetProperty(ItemIface + ".Attributes"); err == nil {
		item.Attributes, _ = v.Value().(map[string]string)
	}
	return item, nil
}

// Remove deletes the first item in collection matching attrs.
func (c *Client) Remove(collection string, attrs map[string]string) error {
	path, err := c.search(collection, attrs)
	if err != nil {
		return err
	}
	var prompt dbus.ObjectPath
	if err := c.object(path).Call(ItemIface+".Delete", 0).Store(&prompt); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return c.prompt(prompt)
}

func (c *Client) search(collection string, attrs map[string]string) (dbus.ObjectPath, error) {
	col, err := c.unlockedCollection(collection)
	if err != nil {
		return "", err
	}
	var paths []dbus.ObjectPath
	if err := c.object(col).Call(CollectionIface+".SearchItems", 0, attrs).
		Store(&paths); err != nil {
		return "", fmt.Errorf("search items: %w", err)
	}
	if len(paths) == 0 {
		return "", ErrNoSuchItem
	}
	return paths[0], nil
}

func (c *Client) unlockedCollection(name string) (dbus.ObjectPath, error) {
	col, err := c.resolveCollection(name)
	if err != nil {
		return "", err
	}
	var unlocked []dbus.ObjectPath
	var prompt dbus.ObjectPath
	if err := c.service.Call(ServiceIface+".Unlock", 0, []dbus.ObjectPath{col}).
		Store(&unlocked, &prompt); err != nil {
		return "", fmt.Errorf("unlock %s: %w", col, err)
	}
	if err := c.prompt(prompt); err != nil {
		return "", err
	}
	return col, nil
}

// resolveCollection finds a collection by alias, then by the last element
// of its object path, then by label.
func (c *Client) resolveCollection(name string) (dbus.ObjectPath, error) {
	var path dbus.ObjectPath
	if err := c.service.Call(ServiceIface+".ReadAlias", 0, name).Store(&path); err != nil {
		return "", fmt.Errorf("read alias %q: %w", name, err)
	}
	if path != noPrompt && path != "" {
		return path, nil
	}

	v, err := c.service.GetProperty(ServiceIface + ".Collections")
	if err != nil {
		return "", fmt.Errorf("list collections: %w", err)
	}
	paths, _ := v.Value().([]dbus.ObjectPath)
	for _, p := range paths {
		if CollectionNameFromPath(p) == name {
			return p, nil
		}
	}
	for _, p := range paths {
		lv, err := c.object(p).GetProperty(CollectionIface + ".Label")
		if err != nil {
			continue
		}
		if label, _ := lv.Value().(string); label == name {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrNoSuchCollection, name)
}
