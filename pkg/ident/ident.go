package ident

import (
	"reflect"
	"sync"

	"github.com/matzehuels/lucidpack/pkg/errors"
)

// Alphabet is the set of characters generated identifiers are drawn from.
// Digits are placed most-significant first.
const Alphabet = "abcdefghijklmnopqrstuvwxyz0123456789-_.~"

const base = uint64(len(Alphabet))

var (
	// ErrNilNode is returned by [Factory.Assign] when the node is nil,
	// including a typed nil pointer wrapped in the [Node] interface.
	ErrNilNode = errors.New(errors.ErrCodeInvalidInput, "cannot assign an id to a nil node")

	// ErrEmptyKey is returned by [Factory.Resolve] for an empty external key.
	ErrEmptyKey = errors.New(errors.ErrCodeInvalidInput, "external key must not be empty")
)

// Node is anything that receives a generated identifier.
//
// Implementations must be pointer types: the factory remembers which
// node instances it has seen by their identity.
type Node interface {
	// ID returns the assigned identifier, or "" if none has been assigned.
	ID() string
	// SetID stores the assigned identifier. Called at most once per node.
	SetID(id string)
	// ExternalKey returns the caller-supplied correlation key, or "".
	ExternalKey() string
}

// Factory generates short, collision-free identifiers for the nodes of one
// document. The zero value is not usable; create factories with [New].
//
// A Factory is safe for concurrent use. Lookups of already assigned nodes
// and already mapped keys never take the lock.
type Factory struct {
	mu      sync.Mutex
	counter uint64
	issued  int

	byNode sync.Map // Node -> string
	byKey  sync.Map // external key -> string
}

// New returns a factory whose first identifier is "a".
func New() *Factory {
	return &Factory{}
}

// Assign gives n an identifier unless it already has one.
//
// A node carrying an external key that was seen before receives the id
// generated for that key, so separately constructed nodes with the same key
// resolve to the same id. Otherwise a fresh id is generated and, if the node
// has an external key, remembered for that key.
func (f *Factory) Assign(n Node) error {
	if isNil(n) {
		return ErrNilNode
	}
	if n.ID() != "" {
		return nil
	}

	key := n.ExternalKey()
	if key != "" {
		if id, ok := f.byKey.Load(key); ok {
			f.apply(n, id.(string))
			return nil
		}
	}
	if id, ok := f.byNode.Load(n); ok {
		n.SetID(id.(string))
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if n.ID() != "" {
		return nil
	}
	if key != "" {
		if id, ok := f.byKey.Load(key); ok {
			f.apply(n, id.(string))
			return nil
		}
	}

	id := f.generate()
	f.apply(n, id)
	if key != "" {
		f.byKey.Store(key, id)
	}
	return nil
}

// Resolve returns the identifier mapped to an external key, generating and
// recording a new one if the key has not been seen. A node assigned later
// with the same key receives the same identifier.
func (f *Factory) Resolve(key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}
	if id, ok := f.byKey.Load(key); ok {
		return id.(string), nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if id, ok := f.byKey.Load(key); ok {
		return id.(string), nil
	}
	id := f.generate()
	f.byKey.Store(key, id)
	return id, nil
}

// Lookup returns the identifier mapped to an external key without
// generating one.
func (f *Factory) Lookup(key string) (string, bool) {
	id, ok := f.byKey.Load(key)
	if !ok {
		return "", false
	}
	return id.(string), true
}

// Issued returns how many identifiers the factory has generated.
func (f *Factory) Issued() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.issued
}

func (f *Factory) apply(n Node, id string) {
	n.SetID(id)
	f.byNode.Store(n, id)
}

// generate must be called with f.mu held.
func (f *Factory) generate() string {
	for {
		id := Encode(f.counter)
		f.counter++
		if valid(id) {
			f.issued++
			return id
		}
	}
}

// Encode renders v in [Alphabet], most significant digit first.
// Encode(0) is "a".
func Encode(v uint64) string {
	var buf [16]byte
	i := len(buf)
	for {
		i--
		buf[i] = Alphabet[v%base]
		v /= base
		if v == 0 {
			break
		}
	}
	return string(buf[i:])
}

// valid reports whether id starts with a letter or digit.
func valid(id string) bool {
	c := id[0]
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

func isNil(n Node) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
