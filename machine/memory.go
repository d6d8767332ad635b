package machine

import (
	"encoding/binary"
	"fmt"

	"github.com/sarchlab/akita/v4/mem/mem"

	"github.com/sarchlab/pcodejit/pcode"
)

// DefaultCapacity is the size of each address space of a Memory.
const DefaultCapacity = 4 * mem.GB

// Memory is the guest storage generated code reads and writes: one sparse,
// byte-addressed, little-endian store per address space.
type Memory struct {
	capacity uint64
	spaces   map[pcode.Space]*mem.Storage
}

// NewMemory creates an empty memory whose spaces each hold capacity bytes.
func NewMemory(capacity uint64) *Memory {
	return &Memory{
		capacity: capacity,
		spaces:   make(map[pcode.Space]*mem.Storage),
	}
}

func (m *Memory) storage(space pcode.Space) (*mem.Storage, error) {
	if !space.Valid() || space == pcode.SpaceConst {
		return nil, fmt.Errorf("space %s is not addressable", space)
	}

	s, ok := m.spaces[space]
	if !ok {
		s = mem.NewStorage(m.capacity)
		m.spaces[space] = s
	}

	return s, nil
}

// ReadBytes reads size bytes. Bytes never written read as zero.
func (m *Memory) ReadBytes(space pcode.Space, addr uint64, size int) ([]byte, error) {
	s, err := m.storage(space)
	if err != nil {
		return nil, err
	}

	data, err := s.Read(addr, uint64(size))
	if err != nil {
		return nil, fmt.Errorf("read %s:%#x:%d: %w", space, addr, size, err)
	}

	return data, nil
}

// WriteBytes writes data.
func (m *Memory) WriteBytes(space pcode.Space, addr uint64, data []byte) error {
	s, err := m.storage(space)
	if err != nil {
		return err
	}

	if err := s.Write(addr, data); err != nil {
		return fmt.Errorf("write %s:%#x:%d: %w", space, addr, len(data), err)
	}

	return nil
}

// Read reads a little-endian value of at most 8 bytes.
func (m *Memory) Read(space pcode.Space, addr uint64, size int) (uint64, error) {
	if size <= 0 || size > 8 {
		return 0, fmt.Errorf("cannot read %d bytes as one value", size)
	}

	data, err := m.ReadBytes(space, addr, size)
	if err != nil {
		return 0, err
	}

	var buf [8]byte
	copy(buf[:], data)

	return binary.LittleEndian.Uint64(buf[:]), nil
}

// Write writes the low size bytes of value, little-endian.
func (m *Memory) Write(space pcode.Space, addr uint64, size int, value uint64) error {
	if size <= 0 || size > 8 {
		return fmt.Errorf("cannot write %d bytes as one value", size)
	}

	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], value)

	return m.WriteBytes(space, addr, buf[:size])
}

// ReadVarnode returns the value of a varnode. Constants are their offset.
func (m *Memory) ReadVarnode(v pcode.Varnode) (uint64, error) {
	if v.IsConst() {
		if v.Size >= 8 {
			return v.Offset, nil
		}
		return v.Offset & (uint64(1)<<(8*v.Size) - 1), nil
	}

	return m.Read(v.Space, v.Offset, v.Size)
}

// WriteVarnode stores value into a varnode.
func (m *Memory) WriteVarnode(v pcode.Varnode, value uint64) error {
	return m.Write(v.Space, v.Offset, v.Size, value)
}

// Init writes initial values into varnodes.
func (m *Memory) Init(values map[pcode.Varnode]uint64) error {
	for v, value := range values {
		if err := m.WriteVarnode(v, value); err != nil {
			return err
		}
	}

	return nil
}
