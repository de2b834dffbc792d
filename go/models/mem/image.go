package mem

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

// Image is a firmware image mapped at StartAddress.
// Every address-based access must satisfy StartAddress <= addr < EndAddress.
type Image struct {
	StartAddress uint32
	Data         []byte

	order binary.ByteOrder
}

// NewImage wraps data without copying it. The image is little-endian, like the C166.
func NewImage(start uint32, data []byte) *Image {
	return &Image{StartAddress: start, Data: data, order: binary.LittleEndian}
}

// NewBlankImage allocates size bytes filled with 0xFF, the erased flash value.
func NewBlankImage(start, size uint32) *Image {
	data := make([]byte, size)
	for i := range data {
		data[i] = 0xff
	}
	return NewImage(start, data)
}

func (m *Image) ByteOrder() binary.ByteOrder {
	if m.order == nil {
		return binary.LittleEndian
	}
	return m.order
}

func (m *Image) Size() uint32 { return uint32(len(m.Data)) }

// EndAddress is exclusive. It is 64-bit so images ending at 4GiB don't wrap.
func (m *Image) EndAddress() uint64 { return uint64(m.StartAddress) + uint64(len(m.Data)) }

func (m *Image) String() string {
	return fmt.Sprintf("0x%x-0x%x", m.StartAddress, m.EndAddress())
}

func (m *Image) Contains(addr uint32) bool {
	return addr >= m.StartAddress && uint64(addr) < m.EndAddress()
}

// RangeValid checks that the whole of addr..addr+size lies inside the image.
func (m *Image) RangeValid(addr uint32, size uint64) bool {
	return addr >= m.StartAddress && uint64(addr)+size <= m.EndAddress()
}

// Offset converts an address into an index into Data.
func (m *Image) Offset(addr uint32) (int, bool) {
	if !m.Contains(addr) {
		return 0, false
	}
	return int(addr - m.StartAddress), true
}

// View returns the image bytes backing addr..addr+size without copying.
func (m *Image) View(addr uint32, size uint32) ([]byte, error) {
	if !m.RangeValid(addr, uint64(size)) {
		return nil, &MemError{Addr: uint64(addr), Size: int(size), Enum: MEM_READ_UNMAPPED}
	}
	o := addr - m.StartAddress
	return m.Data[o : o+size], nil
}

func (m *Image) ReadInto(p []byte, addr uint32) error {
	if !m.RangeValid(addr, uint64(len(p))) {
		return &MemError{Addr: uint64(addr), Size: len(p), Enum: MEM_READ_UNMAPPED}
	}
	copy(p, m.Data[addr-m.StartAddress:])
	return nil
}

func (m *Image) Read(addr, size uint32) ([]byte, error) {
	p := make([]byte, size)
	if err := m.ReadInto(p, addr); err != nil {
		return nil, err
	}
	return p, nil
}

func (m *Image) Write(addr uint32, p []byte) error {
	if !m.RangeValid(addr, uint64(len(p))) {
		return &MemError{Addr: uint64(addr), Size: len(p), Enum: MEM_WRITE_UNMAPPED}
	}
	copy(m.Data[addr-m.StartAddress:], p)
	return nil
}

func (m *Image) ReadUint(addr uint32, size int) (uint32, error) {
	if size > 4 {
		return 0, errors.Errorf("ReadUint size too large: %d > 4", size)
	}
	p, err := m.View(addr, uint32(size))
	if err != nil {
		return 0, err
	}
	return UnpackUint(m.ByteOrder(), size, p)
}

func (m *Image) WriteUint(addr uint32, size int, val uint32) error {
	var buf [4]byte
	if size > 4 {
		return errors.Errorf("WriteUint size too large: %d > 4", size)
	}
	if _, err := PackUint(m.ByteOrder(), size, buf[:], val); err != nil {
		return err
	}
	return m.Write(addr, buf[:size])
}

// Clone returns a deep copy, so corrections can be tried without touching the original.
func (m *Image) Clone() *Image {
	data := make([]byte, len(m.Data))
	copy(data, m.Data)
	return &Image{StartAddress: m.StartAddress, Data: data, order: m.order}
}
