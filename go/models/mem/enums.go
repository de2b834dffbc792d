package mem

// these errors are used by MemError.Enum
const (
	MEM_READ_UNMAPPED  = 19
	MEM_WRITE_UNMAPPED = 20
)

// datum widths accepted by ReadUint / WriteUint
const (
	UINT8  = 1
	UINT16 = 2
	UINT32 = 4
)
