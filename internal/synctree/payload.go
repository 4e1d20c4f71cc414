package synctree

import (
	"fmt"
	"strconv"
	"strings"
)

// Attr is a single payload key/value pair, used when seeding a node with an
// initial, ordered set of attributes.
type Attr struct {
	Key   string
	Value any
}

// payload is a free-form string-keyed attribute map that preserves
// insertion order, the way the reference implementation's dict-backed
// attribute store does. Keys are unique; re-setting an existing key updates
// its value in place without moving it to the end.
type payload struct {
	order  []string
	values map[string]any
}

func newPayload(attrs []Attr) *payload {
	p := &payload{values: make(map[string]any, len(attrs))}
	for _, a := range attrs {
		p.set(a.Key, a.Value)
	}
	return p
}

func (p *payload) set(key string, value any) {
	if _, ok := p.values[key]; !ok {
		p.order = append(p.order, key)
	}
	p.values[key] = value
}

func (p *payload) get(key string) (any, bool) {
	v, ok := p.values[key]
	return v, ok
}

func (p *payload) delete(key string) bool {
	if _, ok := p.values[key]; !ok {
		return false
	}
	delete(p.values, key)
	for i, k := range p.order {
		if k == key {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	return true
}

func (p *payload) clone() *payload {
	cp := &payload{
		order:  append([]string(nil), p.order...),
		values: make(map[string]any, len(p.values)),
	}
	for k, v := range p.values {
		cp.values[k] = v
	}
	return cp
}

// snapshot returns the payload as a plain map for JSON serialization. Order
// is not preserved (JSON objects are unordered); canonical() is what the
// digest depends on.
func (p *payload) snapshot() map[string]any {
	out := make(map[string]any, len(p.values))
	for k, v := range p.values {
		out[k] = v
	}
	return out
}

// canonical renders (pk, payload) into the byte string the digest is taken
// over: the decimal pk followed by an insertion-ordered rendering of the
// payload. The exact textual form is internal and only has to be stable for
// the lifetime of the process; it is not meant to be parsed back.
func canonical(pk int, p *payload) []byte {
	var b strings.Builder
	b.WriteString(strconv.Itoa(pk))
	b.WriteByte('{')
	for i, k := range p.order {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte(':')
		fmt.Fprintf(&b, "%v", p.values[k])
	}
	b.WriteByte('}')
	return []byte(b.String())
}
