package models

// Ins is one disassembled instruction.
type Ins interface {
	Addr() uint64
	Bytes() []byte
	Mnemonic() string
	OpStr() string
}

// Disassembler turns raw memory at addr into instructions.
type Disassembler interface {
	Dis(mem []byte, addr uint64) ([]Ins, error)
}
