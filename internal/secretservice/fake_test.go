// SPDX-License-Identifier: Apache-2.0

package secretservice

import (
	"fmt"
	"maps"
	"math/big"
	"slices"
	"testing"

	"github.com/godbus/dbus/v5"
)

type method func(args ...interface{}) ([]interface{}, error)

// fakeObject is a dbus.BusObject whose methods and properties are set per
// test. Calls to anything else panic through the nil embedded interface.
type fakeObject struct {
	dbus.BusObject
	bus     *fakeBus
	path    dbus.ObjectPath
	methods map[string]method
	props   map[string]interface{}
}

func (o *fakeObject) Call(name string, _ dbus.Flags, args ...interface{}) *dbus.Call {
	o.bus.calls = append(o.bus.calls, string(o.path)+" "+name)
	fn, ok := o.methods[name]
	if !ok {
		return &dbus.Call{Err: dbus.Error{
			Name: "org.freedesktop.DBus.Error.UnknownMethod",
			Body: []interface{}{fmt.Sprintf("no method %s on %s", name, o.path)},
		}}
	}
	body, err := fn(args...)
	return &dbus.Call{Body: body, Err: err}
}

func (o *fakeObject) GetProperty(name string) (dbus.Variant, error) {
	v, ok := o.props[name]
	if !ok {
		return dbus.Variant{}, dbus.Error{Name: "org.freedesktop.DBus.Error.UnknownProperty"}
	}
	return dbus.MakeVariant(v), nil
}

// fakeBus routes object paths to fakeObjects and delivers emitted signals
// to subscribed channels.
type fakeBus struct {
	objects  map[dbus.ObjectPath]*fakeObject
	channels []chan<- *dbus.Signal
	matches  int
	calls    []string
}

func newFakeBus() *fakeBus {
	return &fakeBus{objects: make(map[dbus.ObjectPath]*fakeObject)}
}

func (b *fakeBus) obj(path dbus.ObjectPath) *fakeObject {
	o, ok := b.objects[path]
	if !ok {
		o = &fakeObject{
			bus:     b,
			path:    path,
			methods: make(map[string]method),
			props:   make(map[string]interface{}),
		}
		b.objects[path] = o
	}
	return o
}

func (b *fakeBus) object(path dbus.ObjectPath) dbus.BusObject { return b.obj(path) }

func (b *fakeBus) handle(path dbus.ObjectPath, name string, fn method) {
	b.obj(path).methods[name] = fn
}

func (b *fakeBus) AddMatchSignal(...dbus.MatchOption) error {
	b.matches++
	return nil
}

func (b *fakeBus) RemoveMatchSignal(...dbus.MatchOption) error {
	b.matches--
	return nil
}

func (b *fakeBus) Signal(ch chan<- *dbus.Signal) { b.channels = append(b.channels, ch) }

func (b *fakeBus) RemoveSignal(ch chan<- *dbus.Signal) {
	b.channels = slices.DeleteFunc(b.channels, func(c chan<- *dbus.Signal) bool { return c == ch })
}

func (b *fakeBus) emit(sig *dbus.Signal) {
	for _, ch := range b.channels {
		ch <- sig
	}
}

func (b *fakeBus) count(call string) int {
	n := 0
	for _, c := range b.calls {
		if c == call {
			n++
		}
	}
	return n
}

const fakeSessionPath = dbus.ObjectPath("/org/freedesktop/secrets/session/s1")

// fakeService models enough of a Secret Service for the client: a DH
// session, aliases, collections with labels, items and prompts.
type fakeService struct {
	bus     *fakeBus
	session *session // server side of the transport session
	aliases map[string]dbus.ObjectPath
	locked  map[dbus.ObjectPath]bool
	items   map[dbus.ObjectPath][]dbus.ObjectPath // collection -> items
	secrets map[dbus.ObjectPath][]byte
	// dismiss makes every prompt complete as dismissed.
	dismiss bool
	prompts int
	nextID  int
}

func newFakeService(t *testing.T) *fakeService {
	t.Helper()
	fs := &fakeService{
		bus:     newFakeBus(),
		aliases: map[string]dbus.ObjectPath{"default": CollectionPath("login")},
		locked:  make(map[dbus.ObjectPath]bool),
		items:   make(map[dbus.ObjectPath][]dbus.ObjectPath),
		secrets: make(map[dbus.ObjectPath][]byte),
	}
	svc := dbus.ObjectPath(ServicePath)
	fs.bus.handle(svc, ServiceIface+".OpenSession", fs.openSession)
	fs.bus.handle(svc, ServiceIface+".ReadAlias", func(args ...interface{}) ([]interface{}, error) {
		if p, ok := fs.aliases[args[0].(string)]; ok {
			return []interface{}{p}, nil
		}
		return []interface{}{noPrompt}, nil
	})
	fs.bus.handle(svc, ServiceIface+".Unlock", fs.unlock)
	fs.bus.handle(fakeSessionPath, SessionIface+".Close", func(...interface{}) ([]interface{}, error) {
		return nil, nil
	})

	fs.addCollection("login", "Login")
	fs.addCollection("work_2", "Work")
	return fs
}

func (fs *fakeService) addCollection(name, label string) {
	path := CollectionPath(name)
	fs.bus.obj(path).props[CollectionIface+".Label"] = label
	fs.bus.handle(path, CollectionIface+".CreateItem", func(args ...interface{}) ([]interface{}, error) {
		return fs.createItem(path, args...)
	})
	fs.bus.handle(path, CollectionIface+".SearchItems", func(args ...interface{}) ([]interface{}, error) {
		return []interface{}{fs.search(path, args[0].(map[string]string))}, nil
	})
	all := slices.Sorted(maps.Keys(fs.items))
	fs.items[path] = nil
	fs.bus.obj(ServicePath).props[ServiceIface+".Collections"] = append(all, path)
}

func (fs *fakeService) openSession(args ...interface{}) ([]interface{}, error) {
	if args[0] != AlgorithmDH {
		return nil, dbus.Error{Name: ErrNameNotSupported}
	}
	peer := args[1].(dbus.Variant).Value().([]byte)
	priv, pub, err := dhGenerateKeyPair()
	if err != nil {
		return nil, err
	}
	key, err := dhDeriveAESKey(priv, new(big.Int).SetBytes(peer))
	if err != nil {
		return nil, err
	}
	fs.session = &session{path: fakeSessionPath, key: key}
	return []interface{}{dbus.MakeVariant(bigIntToGroupBytes(pub)), fakeSessionPath}, nil
}

func (fs *fakeService) unlock(args ...interface{}) ([]interface{}, error) {
	paths := args[0].([]dbus.ObjectPath)
	var locked []dbus.ObjectPath
	for _, p := range paths {
		if fs.locked[p] {
			locked = append(locked, p)
		}
	}
	if len(locked) == 0 {
		return []interface{}{paths, noPrompt}, nil
	}
	prompt := fs.newPrompt(func() {
		for _, p := range locked {
			fs.locked[p] = false
		}
	})
	return []interface{}{[]dbus.ObjectPath{}, prompt}, nil
}

// newPrompt exports a prompt that runs onAccept unless dismissed, then
// emits Completed.
func (fs *fakeService) newPrompt(onAccept func()) dbus.ObjectPath {
	fs.prompts++
	path := dbus.ObjectPath(fmt.Sprintf("/org/freedesktop/secrets/prompt/p%d", fs.prompts))
	fs.bus.handle(path, PromptIface+".Prompt", func(...interface{}) ([]interface{}, error) {
		if !fs.dismiss {
			onAccept()
		}
		fs.bus.emit(&dbus.Signal{
			Path: path,
			Name: PromptIface + ".Completed",
			Body: []interface{}{fs.dismiss, dbus.MakeVariant("")},
		})
		return nil, nil
	})
	return path
}

func (fs *fakeService) createItem(col dbus.ObjectPath, args ...interface{}) ([]interface{}, error) {
	props := args[0].(map[string]dbus.Variant)
	sec := args[1].(Secret)
	if sec.Session != fakeSessionPath {
		return nil, dbus.Error{Name: ErrNameNoSession}
	}
	if fs.locked[col] {
		return nil, dbus.Error{Name: ErrNameIsLocked}
	}
	value, err := fs.session.decode(sec)
	if err != nil {
		return nil, err
	}
	label := props[ItemIface+".Label"].Value().(string)
	attrs := props[ItemIface+".Attributes"].Value().(map[string]string)

	var path dbus.ObjectPath
	if existing := fs.search(col, attrs); len(existing) > 0 && args[2].(bool) {
		path = existing[0]
	} else {
		fs.nextID++
		path = dbus.ObjectPath(fmt.Sprintf("%s/%d", col, fs.nextID))
		fs.items[col] = append(fs.items[col], path)
	}
	fs.secrets[path] = value

	item := fs.bus.obj(path)
	item.props[ItemIface+".Label"] = label
	item.props[ItemIface+".Attributes"] = maps.Clone(attrs)
	fs.bus.handle(path, ItemIface+".GetSecret", func(args ...interface{}) ([]interface{}, error) {
		if args[0].(dbus.ObjectPath) != fakeSessionPath {
			return nil, dbus.Error{Name: ErrNameNoSession}
		}
		sec, err := fs.session.encode(fs.secrets[path])
		if err != nil {
			return nil, err
		}
		return []interface{}{sec}, nil
	})
	fs.bus.handle(path, ItemIface+".Delete", func(...interface{}) ([]interface{}, error) {
		prompt := fs.newPrompt(func() {
			fs.items[col] = slices.DeleteFunc(fs.items[col], func(p dbus.ObjectPath) bool { return p == path })
			delete(fs.secrets, path)
		})
		return []interface{}{prompt}, nil
	})
	return []interface{}{path, noPrompt}, nil
}

func (fs *fakeService) search(col dbus.ObjectPath, attrs map[string]string) []dbus.ObjectPath {
	out := []dbus.ObjectPath{}
	for _, p := range fs.items[col] {
		stored := fs.bus.obj(p).props[ItemIface+".Attributes"].(map[string]string)
		match := true
		for k, v := range attrs {
			if stored[k] != v {
				match = false
				break
			}
		}
		if match {
			out = append(out, p)
		}
	}
	return out
}

func (fs *fakeService) client() (*Client, error) {
	return newClient(fs.bus, fs.bus.object)
}
