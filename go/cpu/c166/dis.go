package c166

import (
	"fmt"
	"strings"

	"github.com/kwpflash/kwpflash/go/models"
)

type ins struct {
	dec   Instruction
	addr  uint32
	bytes []byte
}

func (i *ins) String() string {
	return strings.TrimSpace(i.Mnemonic() + " " + i.OpStr())
}

func (i *ins) Addr() uint64 {
	return uint64(i.addr)
}

func (i *ins) Bytes() []byte {
	return i.bytes
}

func (i *ins) Mnemonic() string {
	if i.dec.Mnemonic == INVALID {
		return ".word"
	}
	return i.dec.Mnemonic.String()
}

func rw(n uint8) string { return fmt.Sprintf("r%d", n) }

func rb(n uint8) string {
	if n&1 == 0 {
		return fmt.Sprintf("rl%d", n/2)
	}
	return fmt.Sprintf("rh%d", n/2)
}

// register operand from the "reg" byte of 4-byte forms
func (i *ins) reg(byteOp bool) string {
	if i.dec.Reg == NoReg {
		return fmt.Sprintf("0x%02x", i.bytes[1])
	}
	if byteOp {
		return rb(i.dec.Reg)
	}
	return rw(i.dec.Reg)
}

var conditions = [16]string{
	"cc_uc", "cc_net", "cc_z", "cc_nz", "cc_v", "cc_nv", "cc_n", "cc_nn",
	"cc_c", "cc_nc", "cc_sgt", "cc_sle", "cc_slt", "cc_sge", "cc_ugt", "cc_ule",
}

func (i *ins) OpStr() string {
	if i.dec.Mnemonic == INVALID {
		var words []string
		for j := 0; j+1 < len(i.bytes); j += 2 {
			words = append(words, fmt.Sprintf("0x%02x%02x", i.bytes[j+1], i.bytes[j]))
		}
		return strings.Join(words, ", ")
	}
	b := i.dec.Mnemonic == MOVB || i.dec.Mnemonic == CMPB
	r := rw
	if b {
		r = rb
	}
	p := i.bytes
	switch i.dec.Form {
	case F_RW_RW:
		return r(p[1]>>4) + ", " + r(p[1]&0x0f)
	case F_RW_DATA3:
		switch {
		case p[1]&0x08 == 0:
			return fmt.Sprintf("%s, #%#x", r(i.dec.Reg), i.dec.Op2)
		case p[1]&0x04 == 0:
			return fmt.Sprintf("%s, [%s]", r(i.dec.Reg), rw(p[1]&0x03))
		default:
			return fmt.Sprintf("%s, [%s+]", r(i.dec.Reg), rw(p[1]&0x03))
		}
	case F_RW_DATA4:
		return fmt.Sprintf("%s, #%#x", r(i.dec.Reg), i.dec.Op2)
	case F_REG_DATA16, F_REG_DATA8:
		return fmt.Sprintf("%s, #%#x", i.reg(b), i.dec.Op2)
	case F_REG_MEM:
		return fmt.Sprintf("%s, %#04x", i.reg(b), i.dec.Op2)
	case F_MEM_REG:
		return fmt.Sprintf("%#04x, %s", i.dec.Op1, i.reg(b))
	case F_RW_IND:
		n, m := p[1]>>4, p[1]&0x0f
		switch p[0] {
		case OP_MOV_PREDEC_RW, OP_MOVB_PREDEC_RB:
			return fmt.Sprintf("[-%s], %s", rw(m), r(n))
		case OP_MOV_RW_POSTINC, OP_MOVB_RB_POSTINC:
			return fmt.Sprintf("%s, [%s+]", r(n), rw(m))
		case OP_MOV_RW_IND, OP_MOVB_RB_IND:
			return fmt.Sprintf("%s, [%s]", r(n), rw(m))
		case OP_MOV_IND_RW, OP_MOVB_IND_RB:
			return fmt.Sprintf("[%s], %s", rw(m), r(n))
		case OP_MOV_IND_IND, OP_MOVB_IND_IND:
			return fmt.Sprintf("[%s], [%s]", rw(n), rw(m))
		case OP_MOV_POSTINC_IND, OP_MOVB_POSTINC_IND:
			return fmt.Sprintf("[%s+], [%s]", rw(n), rw(m))
		default:
			return fmt.Sprintf("[%s], [%s+]", rw(n), rw(m))
		}
	case F_RW_IDX:
		return fmt.Sprintf("%s, [%s+#%#x]", r(p[1]>>4), rw(p[1]&0x0f), i.dec.Op2)
	case F_IDX_RW:
		return fmt.Sprintf("[%s+#%#x], %s", rw(p[1]&0x0f), i.dec.Op1, r(p[1]>>4))
	case F_IND_MEM:
		return fmt.Sprintf("[%s], %#04x", rw(i.dec.Reg), i.dec.Op2)
	case F_MEM_IND:
		return fmt.Sprintf("%#04x, [%s]", i.dec.Op1, rw(i.dec.Reg))
	case F_EXT:
		return fmt.Sprintf("#%#x, #%d", i.dec.Op1, i.dec.Op2)
	case F_EXT_R:
		return fmt.Sprintf("%s, #%d", rw(i.dec.Reg), i.dec.Op2)
	case F_CC_CADDR:
		return fmt.Sprintf("%s, %#04x", conditions[i.dec.Op1], i.dec.Op2)
	case F_SEG_CADDR:
		return fmt.Sprintf("%#x, %#04x", i.dec.Op1, i.dec.Op2)
	case F_REL, F_CC_REL:
		target, _ := i.dec.Target(i.addr)
		if i.dec.Form == F_CC_REL {
			return fmt.Sprintf("%s, %#x", conditions[i.dec.Op1], target)
		}
		return fmt.Sprintf("%#x", target)
	}
	return ""
}

type Dis struct{}

// Dis disassembles mem linearly. Bytes that don't decode are emitted as
// .word entries so the listing stays word-aligned.
func (d *Dis) Dis(mem []byte, addr uint64) ([]models.Ins, error) {
	var ret []models.Ins
	for off := 0; off+1 < len(mem); {
		dec, ok := Decode(mem, off)
		size := dec.Size
		if !ok {
			dec = Instruction{Mnemonic: INVALID, Opcode: mem[off], Reg: NoReg}
			size = 2
		}
		ret = append(ret, &ins{
			dec:   dec,
			addr:  uint32(addr) + uint32(off),
			bytes: mem[off : off+size],
		})
		off += size
	}
	return ret, nil
}
