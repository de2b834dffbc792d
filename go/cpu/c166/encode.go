package c166

// Encoders for the instruction forms the checksum routines are built from.
// They produce the exact bytes Decode consumes.

func le(v uint16) (byte, byte) { return byte(v), byte(v >> 8) }

// MovRegImm encodes MOV Rwn, #data16.
func MovRegImm(n uint8, v uint16) []byte {
	lo, hi := le(v)
	return []byte{OP_MOV_REG_DATA, 0xf0 | n&0x0f, lo, hi}
}

// MovRegMem encodes MOV Rwn, mem.
func MovRegMem(n uint8, addr uint16) []byte {
	lo, hi := le(addr)
	return []byte{OP_MOV_REG_MEM, 0xf0 | n&0x0f, lo, hi}
}

// MovRegReg encodes MOV Rwn, Rwm.
func MovRegReg(n, m uint8) []byte {
	return []byte{OP_MOV_RW_RW, n<<4 | m&0x0f}
}

// MovRegData4 encodes MOV Rwn, #data4.
func MovRegData4(n, v uint8) []byte {
	return []byte{OP_MOV_RW_DATA4, v<<4 | n&0x0f}
}

// MovbRegImm encodes MOVB Rbn, #data8.
func MovbRegImm(n uint8, v uint8) []byte {
	return []byte{OP_MOVB_REG_DATA, 0xf0 | n&0x0f, v, 0}
}

// CmpRegImm encodes CMP Rwn, #data16.
func CmpRegImm(n uint8, v uint16) []byte {
	lo, hi := le(v)
	return []byte{OP_CMP_REG_DATA, 0xf0 | n&0x0f, lo, hi}
}

// CmpRegData3 encodes CMP Rwn, #data3.
func CmpRegData3(n, v uint8) []byte {
	return []byte{OP_CMP_RW_DATA3, n<<4 | v&0x07}
}

// CmpbRegImm encodes CMPB Rbn, #data8.
func CmpbRegImm(n uint8, v uint8) []byte {
	return []byte{OP_CMPB_REG_DATA, 0xf0 | n&0x0f, v, 0}
}

// AddRegImm encodes ADD Rwn, #data16.
func AddRegImm(n uint8, v uint16) []byte {
	lo, hi := le(v)
	return []byte{OP_ADD_REG_DATA, 0xf0 | n&0x0f, lo, hi}
}

// AddcRegImm encodes ADDC Rwn, #data16.
func AddcRegImm(n uint8, v uint16) []byte {
	lo, hi := le(v)
	return []byte{OP_ADDC_REG_DATA, 0xf0 | n&0x0f, lo, hi}
}

// SubRegMem encodes SUB Rwn, mem.
func SubRegMem(n uint8, addr uint16) []byte {
	lo, hi := le(addr)
	return []byte{OP_SUB_REG_MEM, 0xf0 | n&0x0f, lo, hi}
}

// Extp encodes EXTP #pag10, #irang2.
func Extp(page uint16, irang uint8) []byte {
	return []byte{OP_EXT, 0x40 | (irang-1)&0x03<<4, byte(page), byte(page>>8) & 0x03}
}

// Exts encodes EXTS #seg, #irang2.
func Exts(seg uint8, irang uint8) []byte {
	return []byte{OP_EXT, (irang - 1) & 0x03 << 4, seg, 0}
}

// Calls encodes CALLS seg, caddr.
func Calls(target uint32) []byte {
	lo, hi := le(uint16(target))
	return []byte{OP_CALLS, byte(target >> 16), lo, hi}
}

// Calla encodes CALLA cc_UC, caddr.
func Calla(caddr uint16) []byte {
	lo, hi := le(caddr)
	return []byte{OP_CALLA, 0x00, lo, hi}
}

// Jmpr encodes JMPR cc, rel (rel in words).
func Jmpr(cc uint8, rel int8) []byte {
	return []byte{cc<<4 | OP_JMPR_NIBBLE, byte(rel)}
}

func Rets() []byte { return []byte{OP_RETS, 0x00} }
func Ret() []byte { return []byte{OP_RET, 0x00} }

// Cat concatenates encoded instructions.
func Cat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
