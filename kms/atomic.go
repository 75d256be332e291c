package kms

import "sort"

// AtomicRequest accumulates property changes for one atomic commit.
// Add never fails; the kernel validates the batch as a whole at commit.
type AtomicRequest struct {
	props []atomicProp
}

type atomicProp struct {
	objectID uint32
	propID   uint32
	value    uint64
}

// Add queues setting one property of one object.
func (r *AtomicRequest) Add(objectID, propID uint32, value uint64) {
	r.props = append(r.props, atomicProp{objectID: objectID, propID: propID, value: value})
}

// Len returns the number of queued property changes.
func (r *AtomicRequest) Len() int { return len(r.props) }

// Value reports the last queued value for one property of one object.
func (r *AtomicRequest) Value(objectID, propID uint32) (uint64, bool) {
	for i := len(r.props) - 1; i >= 0; i-- {
		if r.props[i].objectID == objectID && r.props[i].propID == propID {
			return r.props[i].value, true
		}
	}
	return 0, false
}

// marshal groups the queued changes into the kernel's parallel-array
// commit layout: object ids ascending, each with its property count,
// property ids and values in queue order within the object.
func (r *AtomicRequest) marshal() (objs []uint32, counts []uint32, propIDs []uint32, values []uint64) {
	byObject := map[uint32][]atomicProp{}
	for _, p := range r.props {
		byObject[p.objectID] = append(byObject[p.objectID], p)
	}
	objs = make([]uint32, 0, len(byObject))
	for id := range byObject {
		objs = append(objs, id)
	}
	sort.Slice(objs, func(i, j int) bool { return objs[i] < objs[j] })
	for _, id := range objs {
		counts = append(counts, uint32(len(byObject[id])))
		for _, p := range byObject[id] {
			propIDs = append(propIDs, p.propID)
			values = append(values, p.value)
		}
	}
	return objs, counts, propIDs, values
}
