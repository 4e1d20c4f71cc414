package synctree

import "github.com/byldsync/treesync/internal/digest"

// InformationNode holds the payload of a single tree node and the digest
// summarizing it. It is owned exclusively by one Node and never shared.
type InformationNode struct {
	pk       int
	payload  *payload
	infoHash string
}

func newInformationNode(pk int, attrs []Attr) *InformationNode {
	info := &InformationNode{
		pk:      pk,
		payload: newPayload(attrs),
	}
	info.rehash()
	return info
}

func (info *InformationNode) rehash() {
	info.infoHash = digest.Sum(canonical(info.pk, info.payload))
}

// set updates the payload and recomputes infoHash before returning.
func (info *InformationNode) set(key string, value any) {
	info.payload.set(key, value)
	info.rehash()
}

// get returns the value for key, or ErrMissingAttribute if absent.
func (info *InformationNode) get(key string) (any, error) {
	v, ok := info.payload.get(key)
	if !ok {
		return nil, wrap(ErrMissingAttribute, "attribute %q", key)
	}
	return v, nil
}

// delete removes key and recomputes infoHash, or returns ErrMissingAttribute.
func (info *InformationNode) delete(key string) error {
	if !info.payload.delete(key) {
		return wrap(ErrMissingAttribute, "attribute %q", key)
	}
	info.rehash()
	return nil
}

func (info *InformationNode) snapshot() map[string]any {
	return info.payload.snapshot()
}
