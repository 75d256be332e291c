package scanout

import (
	stderrors "errors"

	"github.com/scanout/scanout/internal/errors"
	"github.com/scanout/scanout/kms"
)

// ErrNoProperty means a display object does not expose a property the
// presentation engine needs; the operation using it fails.
var ErrNoProperty = stderrors.New("display object property not found")

// PropertyTable caches the name -> id mapping of one display object's
// settable attributes. Resolved once at discovery, immutable after.
type PropertyTable struct {
	objectID uint32
	props    []kms.Property
}

func newPropertyTable(c card, objectID, objectType uint32) (*PropertyTable, error) {
	props, err := c.ObjectProperties(objectID, objectType)
	if err != nil {
		return nil, errors.New(err)
	}
	return &PropertyTable{objectID: objectID, props: props}, nil
}

// ObjectID returns the display object the table belongs to.
func (t *PropertyTable) ObjectID() uint32 { return t.objectID }

// Len returns the number of properties.
func (t *PropertyTable) Len() int { return len(t.props) }

// Properties returns the table in kernel order.
func (t *PropertyTable) Properties() []kms.Property { return t.props }

// ID resolves a property name to its kernel id.
func (t *PropertyTable) ID(name string) (uint32, error) {
	for _, p := range t.props {
		if p.Name == name {
			return p.ID, nil
		}
	}
	return 0, errors.Errorf("%w: %q on object %d", ErrNoProperty, name, t.objectID)
}

// add queues setting one named property of the table's object.
func (t *PropertyTable) add(req *kms.AtomicRequest, name string, value uint64) error {
	id, err := t.ID(name)
	if err != nil {
		return err
	}
	req.Add(t.objectID, id, value)
	return nil
}
