package c166

// Mnemonic is the subset of the C166/ST10 instruction set that checksum
// detection cares about. Everything else decodes as no match.
type Mnemonic uint8

const (
	INVALID Mnemonic = iota

	ADD
	ADDC
	SUB
	CMP
	CMPB
	MOV
	MOVB

	EXTP
	EXTS
	EXTPR
	EXTSR

	CALLA
	CALLS
	CALLR
	JMPR
	JMPA
	JMPS
	RET
	RETS
)

var mnemonicNames = [...]string{
	INVALID: "(bad)",
	ADD:     "add",
	ADDC:    "addc",
	SUB:     "sub",
	CMP:     "cmp",
	CMPB:    "cmpb",
	MOV:     "mov",
	MOVB:    "movb",
	EXTP:    "extp",
	EXTS:    "exts",
	EXTPR:   "extpr",
	EXTSR:   "extsr",
	CALLA:   "calla",
	CALLS:   "calls",
	CALLR:   "callr",
	JMPR:    "jmpr",
	JMPA:    "jmpa",
	JMPS:    "jmps",
	RET:     "ret",
	RETS:    "rets",
}

func (m Mnemonic) String() string {
	if int(m) < len(mnemonicNames) {
		return mnemonicNames[m]
	}
	return "(bad)"
}

// Opcode bytes, named after the operand form they encode.
const (
	OP_ADD_RW_RW     = 0x00
	OP_ADD_REG_MEM   = 0x02
	OP_ADD_MEM_REG   = 0x04
	OP_ADD_REG_DATA  = 0x06
	OP_ADD_RW_DATA3  = 0x08
	OP_ADDC_RW_RW    = 0x10
	OP_ADDC_REG_MEM  = 0x12
	OP_ADDC_MEM_REG  = 0x14
	OP_ADDC_REG_DATA = 0x16
	OP_ADDC_RW_DATA3 = 0x18
	OP_SUB_RW_RW     = 0x20
	OP_SUB_REG_MEM   = 0x22
	OP_SUB_MEM_REG   = 0x24
	OP_SUB_REG_DATA  = 0x26
	OP_SUB_RW_DATA3  = 0x28

	OP_CMP_RW_RW     = 0x40
	OP_CMPB_RB_RB    = 0x41
	OP_CMP_REG_MEM   = 0x42
	OP_CMPB_REG_MEM  = 0x43
	OP_CMP_REG_DATA  = 0x46
	OP_CMPB_REG_DATA = 0x47
	OP_CMP_RW_DATA3  = 0x48
	OP_CMPB_RB_DATA3 = 0x49

	OP_MOV_IND_MEM      = 0x84
	OP_MOV_PREDEC_RW    = 0x88
	OP_MOVB_PREDEC_RB   = 0x89
	OP_MOV_MEM_IND      = 0x94
	OP_MOV_RW_POSTINC   = 0x98
	OP_MOVB_RB_POSTINC  = 0x99
	OP_MOVB_IND_MEM     = 0xA4
	OP_MOV_RW_IND       = 0xA8
	OP_MOVB_RB_IND      = 0xA9
	OP_MOVB_MEM_IND     = 0xB4
	OP_MOV_IND_RW       = 0xB8
	OP_MOVB_IND_RB      = 0xB9
	OP_MOV_IDX_RW       = 0xC4
	OP_MOV_IND_IND      = 0xC8
	OP_MOVB_IND_IND     = 0xC9
	OP_MOV_RW_IDX       = 0xD4
	OP_MOV_POSTINC_IND  = 0xD8
	OP_MOVB_POSTINC_IND = 0xD9
	OP_MOV_RW_DATA4     = 0xE0
	OP_MOVB_RB_DATA4    = 0xE1
	OP_MOVB_IDX_RB      = 0xE4
	OP_MOV_REG_DATA     = 0xE6
	OP_MOVB_REG_DATA    = 0xE7
	OP_MOV_IND_POSTINC  = 0xE8
	OP_MOVB_IND_POSTINC = 0xE9
	OP_MOV_RW_RW        = 0xF0
	OP_MOVB_RB_RB       = 0xF1
	OP_MOV_REG_MEM      = 0xF2
	OP_MOVB_REG_MEM     = 0xF3
	OP_MOVB_RB_IDX      = 0xF4
	OP_MOV_MEM_REG      = 0xF6
	OP_MOVB_MEM_REG     = 0xF7

	OP_CALLR = 0xBB
	OP_CALLA = 0xCA
	OP_RET   = 0xCB
	OP_EXT   = 0xD7
	OP_CALLS = 0xDA
	OP_RETS  = 0xDB
	OP_EXT_R = 0xDC
	OP_JMPA  = 0xEA
	OP_JMPS  = 0xFA

	// any opcode with this low nibble is JMPR cc,rel; cc is the high nibble
	OP_JMPR_NIBBLE = 0x0D
)

// sub-operation in bits 7-6 of the second byte of EXTx instructions
var extOps = [4]Mnemonic{EXTS, EXTP, EXTSR, EXTPR}

// Operand forms. Values in Instruction.Op1/Op2 follow the form:
// registers carry no address information and are reported as 0.
const (
	F_NONE       = iota
	F_RW_RW      // Rwn, Rwm
	F_RW_DATA3   // Rwn, #data3 | [Rwi] | [Rwi+] (discriminated by bit 3 of byte 2)
	F_RW_DATA4   // Rwn, #data4                  Op2 = data4
	F_REG_DATA16 // reg, #data16                 Op2 = data16
	F_REG_DATA8  // reg, #data8                  Op2 = data8
	F_REG_MEM    // reg, mem                     Op2 = mem
	F_MEM_REG    // mem, reg                     Op1 = mem
	F_RW_IND     // Rwn, [Rwm] style, 2 bytes    no operands
	F_RW_IDX     // Rwn, [Rwm+#data16]           Op2 = data16
	F_IDX_RW     // [Rwm+#data16], Rwn           Op1 = data16
	F_IND_MEM    // [Rwn], mem                   Op2 = mem
	F_MEM_IND    // mem, [Rwn]                   Op1 = mem
	F_EXT        // #pag10|#seg8, #irang2        Op1 = page/seg, Op2 = irang2
	F_EXT_R      // Rwm, #irang2                 Op2 = irang2
	F_CC_CADDR   // cc, caddr                    Op1 = cc, Op2 = caddr
	F_SEG_CADDR  // seg, caddr                   Op1 = seg, Op2 = caddr
	F_REL        // rel                          Op2 = sign-extended rel
	F_CC_REL     // cc, rel                      Op1 = cc, Op2 = sign-extended rel
	F_RET        // no operands
)

type op struct {
	name Mnemonic
	size int
	form int
}

var opData = map[byte]op{
	OP_ADD_RW_RW:     {ADD, 2, F_RW_RW},
	OP_ADD_REG_MEM:   {ADD, 4, F_REG_MEM},
	OP_ADD_MEM_REG:   {ADD, 4, F_MEM_REG},
	OP_ADD_REG_DATA:  {ADD, 4, F_REG_DATA16},
	OP_ADD_RW_DATA3:  {ADD, 2, F_RW_DATA3},
	OP_ADDC_RW_RW:    {ADDC, 2, F_RW_RW},
	OP_ADDC_REG_MEM:  {ADDC, 4, F_REG_MEM},
	OP_ADDC_MEM_REG:  {ADDC, 4, F_MEM_REG},
	OP_ADDC_REG_DATA: {ADDC, 4, F_REG_DATA16},
	OP_ADDC_RW_DATA3: {ADDC, 2, F_RW_DATA3},
	OP_SUB_RW_RW:     {SUB, 2, F_RW_RW},
	OP_SUB_REG_MEM:   {SUB, 4, F_REG_MEM},
	OP_SUB_MEM_REG:   {SUB, 4, F_MEM_REG},
	OP_SUB_REG_DATA:  {SUB, 4, F_REG_DATA16},
	OP_SUB_RW_DATA3:  {SUB, 2, F_RW_DATA3},

	OP_CMP_RW_RW:     {CMP, 2, F_RW_RW},
	OP_CMPB_RB_RB:    {CMPB, 2, F_RW_RW},
	OP_CMP_REG_MEM:   {CMP, 4, F_REG_MEM},
	OP_CMPB_REG_MEM:  {CMPB, 4, F_REG_MEM},
	OP_CMP_REG_DATA:  {CMP, 4, F_REG_DATA16},
	OP_CMPB_REG_DATA: {CMPB, 4, F_REG_DATA8},
	OP_CMP_RW_DATA3:  {CMP, 2, F_RW_DATA3},
	OP_CMPB_RB_DATA3: {CMPB, 2, F_RW_DATA3},

	OP_MOV_IND_MEM:      {MOV, 4, F_IND_MEM},
	OP_MOV_PREDEC_RW:    {MOV, 2, F_RW_IND},
	OP_MOVB_PREDEC_RB:   {MOVB, 2, F_RW_IND},
	OP_MOV_MEM_IND:      {MOV, 4, F_MEM_IND},
	OP_MOV_RW_POSTINC:   {MOV, 2, F_RW_IND},
	OP_MOVB_RB_POSTINC:  {MOVB, 2, F_RW_IND},
	OP_MOVB_IND_MEM:     {MOVB, 4, F_IND_MEM},
	OP_MOV_RW_IND:       {MOV, 2, F_RW_IND},
	OP_MOVB_RB_IND:      {MOVB, 2, F_RW_IND},
	OP_MOVB_MEM_IND:     {MOVB, 4, F_MEM_IND},
	OP_MOV_IND_RW:       {MOV, 2, F_RW_IND},
	OP_MOVB_IND_RB:      {MOVB, 2, F_RW_IND},
	OP_MOV_IDX_RW:       {MOV, 4, F_IDX_RW},
	OP_MOV_IND_IND:      {MOV, 2, F_RW_IND},
	OP_MOVB_IND_IND:     {MOVB, 2, F_RW_IND},
	OP_MOV_RW_IDX:       {MOV, 4, F_RW_IDX},
	OP_MOV_POSTINC_IND:  {MOV, 2, F_RW_IND},
	OP_MOVB_POSTINC_IND: {MOVB, 2, F_RW_IND},
	OP_MOV_RW_DATA4:     {MOV, 2, F_RW_DATA4},
	OP_MOVB_RB_DATA4:    {MOVB, 2, F_RW_DATA4},
	OP_MOVB_IDX_RB:      {MOVB, 4, F_IDX_RW},
	OP_MOV_REG_DATA:     {MOV, 4, F_REG_DATA16},
	OP_MOVB_REG_DATA:    {MOVB, 4, F_REG_DATA8},
	OP_MOV_IND_POSTINC:  {MOV, 2, F_RW_IND},
	OP_MOVB_IND_POSTINC: {MOVB, 2, F_RW_IND},
	OP_MOV_RW_RW:        {MOV, 2, F_RW_RW},
	OP_MOVB_RB_RB:       {MOVB, 2, F_RW_RW},
	OP_MOV_REG_MEM:      {MOV, 4, F_REG_MEM},
	OP_MOVB_REG_MEM:     {MOVB, 4, F_REG_MEM},
	OP_MOVB_RB_IDX:      {MOVB, 4, F_RW_IDX},
	OP_MOV_MEM_REG:      {MOV, 4, F_MEM_REG},
	OP_MOVB_MEM_REG:     {MOVB, 4, F_MEM_REG},

	// EXT opcodes resolve their mnemonic from byte 2, see extOps
	OP_EXT:   {EXTP, 4, F_EXT},
	OP_EXT_R: {EXTP, 2, F_EXT_R},

	OP_CALLA: {CALLA, 4, F_CC_CADDR},
	OP_CALLS: {CALLS, 4, F_SEG_CADDR},
	OP_CALLR: {CALLR, 2, F_REL},
	OP_JMPA:  {JMPA, 4, F_CC_CADDR},
	OP_JMPS:  {JMPS, 4, F_SEG_CADDR},
	OP_RET:   {RET, 2, F_RET},
	OP_RETS:  {RETS, 2, F_RET},
}

var jmprOp = op{JMPR, 2, F_CC_REL}

// MaxSize is the longest encoding; callers scanning a buffer can stop this far from its end.
const MaxSize = 4
