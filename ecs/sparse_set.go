package ecs

// store is the type-erased view of a sparseSet the world needs for
// entity teardown.
type store interface {
	remove(e Entity) (any, bool)
}

// sparseSet keeps components densely packed with an id-indexed lookup.
type sparseSet[T any] struct {
	dense  []Entity
	values []*T
	sparse []int32 // id-1 -> dense index, -1 when absent
}

func (s *sparseSet[T]) index(e Entity) int {
	id := int(e.id())
	if id == 0 || id > len(s.sparse) {
		return -1
	}
	i := int(s.sparse[id-1])
	if i < 0 || s.dense[i] != e {
		return -1
	}
	return i
}

func (s *sparseSet[T]) get(e Entity) (*T, bool) {
	i := s.index(e)
	if i < 0 {
		return nil, false
	}
	return s.values[i], true
}

// set stores v for e and returns the value it replaced, if any.
func (s *sparseSet[T]) set(e Entity, v *T) *T {
	if i := s.index(e); i >= 0 {
		old := s.values[i]
		s.values[i] = v
		return old
	}
	id := int(e.id())
	for len(s.sparse) < id {
		s.sparse = append(s.sparse, -1)
	}
	s.dense = append(s.dense, e)
	s.values = append(s.values, v)
	s.sparse[id-1] = int32(len(s.dense) - 1)
	return nil
}

func (s *sparseSet[T]) remove(e Entity) (any, bool) {
	i := s.index(e)
	if i < 0 {
		return nil, false
	}
	v := s.values[i]
	last := len(s.dense) - 1
	moved := s.dense[last]
	s.dense[i] = moved
	s.values[i] = s.values[last]
	s.sparse[moved.id()-1] = int32(i)

	s.dense[last] = 0
	s.values[last] = nil
	s.dense = s.dense[:last]
	s.values = s.values[:last]
	s.sparse[e.id()-1] = -1
	return v, true
}

// snapshot copies the dense entity list so callers may mutate the set
// while iterating.
func (s *sparseSet[T]) snapshot() []Entity {
	return append([]Entity(nil), s.dense...)
}
