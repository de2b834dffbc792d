package c166

// NoReg marks a register operand given as an 8-bit SFR/short address instead of a GPR.
const NoReg = 0xff

// Instruction is the result of decoding one instruction.
// Op1 and Op2 hold the address or immediate value of the first and second
// operand; register operands carry no address information and are 0.
type Instruction struct {
	Mnemonic Mnemonic
	Opcode   byte
	Size     int
	Form     int
	// Reg is the first register operand (GPR number), or NoReg.
	Reg      uint8
	Op1, Op2 uint16
}

func gpr(b byte) uint8 {
	if b&0xf0 == 0xf0 {
		return b & 0x0f
	}
	return NoReg
}

func sext8(b byte) uint16 { return uint16(int16(int8(b))) }

// the JMPR nibble test must run before the table lookup
func lookup(buf []byte, off int) (op, bool) {
	if off < 0 || off >= len(buf) {
		return op{}, false
	}
	b := buf[off]
	if b&0x0f == OP_JMPR_NIBBLE {
		return jmprOp, true
	}
	o, ok := opData[b]
	if !ok {
		return op{}, false
	}
	if o.form == F_EXT || o.form == F_EXT_R {
		if off+1 >= len(buf) {
			return op{}, false
		}
		o.name = extOps[buf[off+1]>>6]
	}
	return o, true
}

// DecodeOpcode identifies the instruction at buf[off] and its encoded size.
func DecodeOpcode(buf []byte, off int) (Mnemonic, int, bool) {
	o, ok := lookup(buf, off)
	if !ok || off+o.size > len(buf) {
		return INVALID, 0, false
	}
	return o.name, o.size, true
}

// Decode decodes the instruction at buf[off] including its operands.
// It never reads past the instruction's encoded size.
func Decode(buf []byte, off int) (Instruction, bool) {
	o, ok := lookup(buf, off)
	if !ok || off+o.size > len(buf) {
		return Instruction{}, false
	}
	p := buf[off : off+o.size]
	le16 := func(i int) uint16 { return uint16(p[i]) | uint16(p[i+1])<<8 }
	ins := Instruction{Mnemonic: o.name, Opcode: p[0], Size: o.size, Form: o.form, Reg: NoReg}
	switch o.form {
	case F_RW_RW, F_RW_IND, F_RW_IDX, F_IDX_RW:
		ins.Reg = p[1] >> 4
		if o.form == F_RW_IDX {
			ins.Op2 = le16(2)
		} else if o.form == F_IDX_RW {
			ins.Op1 = le16(2)
		}
	case F_RW_DATA3:
		ins.Reg = p[1] >> 4
		// bit 3 set selects [Rwi] / [Rwi+], which carry no value
		if p[1]&0x08 == 0 {
			ins.Op2 = uint16(p[1] & 0x07)
		}
	case F_RW_DATA4:
		ins.Reg = p[1] & 0x0f
		ins.Op2 = uint16(p[1] >> 4)
	case F_REG_DATA16, F_REG_MEM:
		ins.Reg = gpr(p[1])
		ins.Op2 = le16(2)
	case F_REG_DATA8:
		ins.Reg = gpr(p[1])
		ins.Op2 = uint16(p[2])
	case F_MEM_REG:
		ins.Reg = gpr(p[1])
		ins.Op1 = le16(2)
	case F_IND_MEM:
		ins.Reg = p[1] & 0x0f
		ins.Op2 = le16(2)
	case F_MEM_IND:
		ins.Reg = p[1] & 0x0f
		ins.Op1 = le16(2)
	case F_EXT:
		ins.Op2 = uint16(p[1]>>4&0x03) + 1
		if o.name == EXTP || o.name == EXTPR {
			ins.Op1 = uint16(p[2]) | uint16(p[3]&0x03)<<8
		} else {
			ins.Op1 = uint16(p[2])
		}
	case F_EXT_R:
		ins.Reg = p[1] & 0x0f
		ins.Op2 = uint16(p[1]>>4&0x03) + 1
	case F_CC_CADDR:
		ins.Op1 = uint16(p[1] >> 4)
		ins.Op2 = le16(2)
	case F_SEG_CADDR:
		ins.Op1 = uint16(p[1])
		ins.Op2 = le16(2)
	case F_REL:
		ins.Op2 = sext8(p[1])
	case F_CC_REL:
		ins.Op1 = uint16(p[0] >> 4)
		ins.Op2 = sext8(p[1])
	}
	return ins, true
}

// Target resolves the destination of a call or jump located at addr.
func (i Instruction) Target(addr uint32) (uint32, bool) {
	switch i.Form {
	case F_SEG_CADDR:
		return uint32(i.Op1)<<16 | uint32(i.Op2), true
	case F_CC_CADDR:
		return addr&0xff0000 | uint32(i.Op2), true
	case F_REL, F_CC_REL:
		return uint32(int64(addr) + 2 + 2*int64(int16(i.Op2))), true
	}
	return 0, false
}

func decodeAs(buf []byte, off int, names ...Mnemonic) (Instruction, bool) {
	ins, ok := Decode(buf, off)
	if !ok {
		return Instruction{}, false
	}
	for _, n := range names {
		if ins.Mnemonic == n {
			return ins, true
		}
	}
	return Instruction{}, false
}

func DecodeMove(buf []byte, off int) (Instruction, bool) { return decodeAs(buf, off, MOV) }
func DecodeMoveByte(buf []byte, off int) (Instruction, bool) { return decodeAs(buf, off, MOVB) }
func DecodeCompare(buf []byte, off int) (Instruction, bool) { return decodeAs(buf, off, CMP) }
func DecodeSubtract(buf []byte, off int) (Instruction, bool) { return decodeAs(buf, off, SUB) }
func DecodeAdd(buf []byte, off int) (Instruction, bool) { return decodeAs(buf, off, ADD) }
func DecodeCallSegment(buf []byte, off int) (Instruction, bool) { return decodeAs(buf, off, CALLS) }

func DecodeCompareByte(buf []byte, off int) (Instruction, bool) { return decodeAs(buf, off, CMPB) }

func DecodeAddWithCarry(buf []byte, off int) (Instruction, bool) { return decodeAs(buf, off, ADDC) }

// DecodeExtendPage accepts both EXTP forms; Op1 is the page number for
// the immediate form and 0 when the page comes from a register.
func DecodeExtendPage(buf []byte, off int) (Instruction, bool) {
	return decodeAs(buf, off, EXTP)
}

// PageAddress combines an EXTP page with a 16-bit offset into a linear address.
func PageAddress(page, offset uint16) uint32 {
	return uint32(page)<<14 | uint32(offset&0x3fff)
}

// WideAddress combines the two halves of a 32-bit address loaded by a pair of MOVs.
func WideAddress(lo, hi uint16) uint32 {
	return uint32(hi)<<16 | uint32(lo)
}
