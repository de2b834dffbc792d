package detect

import (
	"sort"

	"github.com/kwpflash/kwpflash/go/checksum"
	"github.com/kwpflash/kwpflash/go/cpu/c166"
	"github.com/kwpflash/kwpflash/go/scan"
)

var (
	// cmp r8,#index; jmpr; mov r9,#next
	rangeIndexSeq = []c166.Mnemonic{c166.CMP, c166.JMPR, c166.MOV}
	// cmp r8,#index; jmpr
	valueIndexSeq = []c166.Mnemonic{c166.CMP, c166.JMPR}
)

type indexedRange struct {
	offset int
	next   int
	rng    checksum.AddressRange
}

// DetectRolling finds the rolling checksum dispatcher. Some firmware
// finishes the value stores with a flat multi-range checksum, which is
// returned as well when present.
func DetectRolling(buf []byte) (*checksum.RollingChecksums, *checksum.MultiRangeChecksum, error) {
	fail := failure{KindRolling}
	seed := rollingSeed.Locate(buf, 0, -1)
	if seed == scan.NotFound {
		return nil, nil, fail.missing(rollingSeed.Name)
	}
	seedAddr, ok := decodeWide(buf, seed)
	if !ok {
		return nil, nil, fail.decode("seed table address", seed, ErrDecode)
	}
	body := seed + rollingSeed.Len()

	first := rollingValue.Locate(buf, body, -1)
	if first == scan.NotFound {
		return nil, nil, fail.scan(rollingValue.Name, body, ErrPatternNotFound)
	}
	values, multi, err := scanValues(buf, first)
	if err != nil {
		return nil, nil, err
	}

	rc := &checksum.RollingChecksums{SeedTableAddress: seedAddr}
	if at := rollingInit.Locate(buf, body, first); at != scan.NotFound {
		r, err := decodeRange(buf, at)
		if err != nil {
			return nil, nil, err
		}
		rc.InitRange = &r
	}

	ranges, err := scanRanges(buf, body, first)
	if err != nil {
		return nil, nil, err
	}
	chains, err := resolveChains(ranges, values)
	if err != nil {
		return nil, nil, err
	}

	indexes := make([]int, 0, len(values))
	for idx := range values {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)
	for _, idx := range indexes {
		chain := &checksum.RollingChecksum{Index: idx, ValueAddress: values[idx]}
		for _, ri := range chains[idx] {
			chain.Ranges = append(chain.Ranges, ranges[ri].rng)
		}
		rc.Checksums = append(rc.Checksums, chain)
	}
	return rc, multi, nil
}

// scanValues collects {index -> value address} from consecutive value
// stores. A flat multi-range setup in place of the next store ends the run
// and is decoded as the multi-range checksum.
func scanValues(buf []byte, first int) (map[int]uint32, *checksum.MultiRangeChecksum, error) {
	fail := failure{KindRolling}
	values := make(map[int]uint32)
	for t := first; t != scan.NotFound; {
		s := sequenceEndingAt(buf, t, valueIndexSeq)
		if s == scan.NotFound {
			return nil, nil, fail.decode("value index", t, ErrDecode)
		}
		cmp, _ := c166.DecodeCompare(buf, s)
		addr, ok := decodeWide(buf, t)
		if !ok {
			return nil, nil, fail.decode("value address", t, ErrDecode)
		}
		idx := int(cmp.Op2)
		if _, dup := values[idx]; dup {
			return nil, nil, fail.decode("value index", s, ErrAmbiguous)
		}
		values[idx] = addr

		from := t + rollingValue.Len()
		next := rollingValue.Locate(buf, from, from+valueWindow)
		if f := flatRange.Locate(buf, from, from+valueWindow); f != scan.NotFound && (next == scan.NotFound || f < next) {
			multi, err := decodeFlat(buf, f)
			if err != nil {
				return nil, nil, err
			}
			return values, multi, nil
		}
		t = next
	}
	return values, nil, nil
}

// scanRanges collects every range handler between start and end, trying
// the M register convention before the C one.
func scanRanges(buf []byte, start, end int) (map[int]indexedRange, error) {
	fail := failure{KindRolling}
	matches, variant := locateAll(rollingRangeM, buf, start, end), rollingRangeM
	if len(matches) == 0 {
		matches, variant = locateAll(rollingRangeC, buf, start, end), rollingRangeC
	}
	if len(matches) == 0 {
		return nil, fail.scan("ranges", start, ErrEmpty)
	}
	ranges := make(map[int]indexedRange, len(matches))
	for _, m := range matches {
		s := sequenceEndingAt(buf, m, rangeIndexSeq)
		if s == scan.NotFound {
			return nil, fail.decode("range index", m, ErrDecode)
		}
		cmp, _ := c166.DecodeCompare(buf, s)
		mov, ok := c166.DecodeMove(buf, s+cmp.Size+2)
		if !ok {
			return nil, fail.decode("next index", s+cmp.Size+2, ErrDecode)
		}
		r, err := decodeRange(buf, m)
		if err != nil {
			return nil, err
		}
		idx := int(cmp.Op2)
		if _, dup := ranges[idx]; dup {
			return nil, fail.decode(variant.Name+" index", s, ErrAmbiguous)
		}
		ranges[idx] = indexedRange{offset: m, next: int(mov.Op2), rng: r}
	}
	return ranges, nil
}

// resolveChains follows every range to the value store that ends its chain.
// Each chain lists its range indexes farthest from the store first.
func resolveChains(ranges map[int]indexedRange, values map[int]uint32) (map[int][]int, error) {
	fail := failure{KindRolling}
	if len(values) == 0 {
		return nil, fail.decode("values", -1, ErrEmpty)
	}
	type link struct{ index, dist int }
	links := make(map[int][]link)
	for idx, r := range ranges {
		cur, dist := idx, 0
		seen := make(map[int]bool)
		for {
			if _, ok := values[cur]; ok {
				break
			}
			next, ok := ranges[cur]
			if !ok || seen[cur] {
				return nil, fail.decode("range chain", r.offset, ErrNoTerminal)
			}
			seen[cur] = true
			cur = next.next
			dist++
		}
		links[cur] = append(links[cur], link{idx, dist})
	}
	chains := make(map[int][]int, len(links))
	for term, l := range links {
		sort.Slice(l, func(i, j int) bool {
			if l[i].dist != l[j].dist {
				return l[i].dist > l[j].dist
			}
			return l[i].index < l[j].index
		})
		for _, x := range l {
			chains[term] = append(chains[term], x.index)
		}
	}
	return chains, nil
}

// decodeRange reads {start, end} from the four moves of a range handler.
func decodeRange(buf []byte, off int) (checksum.AddressRange, error) {
	fail := failure{KindRolling}
	start, ok := decodeWide(buf, off)
	if !ok {
		return checksum.AddressRange{}, fail.decode("range start", off, ErrDecode)
	}
	end, ok := decodeWide(buf, off+8)
	if !ok {
		return checksum.AddressRange{}, fail.decode("range end", off+8, ErrDecode)
	}
	r, err := checksum.RangeInclusive(start, end)
	if err != nil {
		return checksum.AddressRange{}, fail.decode("range end", off+8, ErrDecode)
	}
	return r, nil
}

// sequenceEndingAt looks back from end for seq decoding contiguously and
// finishing exactly at end.
func sequenceEndingAt(buf []byte, end int, seq []c166.Mnemonic) int {
	bound := end - indexWindow
	for off := end - scan.Step; off >= bound && off >= 0; off -= scan.Step {
		off = scan.FindPrevInstructionSequenceStart(buf, off, bound, seq)
		if off == scan.NotFound {
			break
		}
		if next, _ := scan.DecodeSequence(buf, off, seq); next == end {
			return off
		}
	}
	return scan.NotFound
}

func locateAll(p *scan.Pattern, buf []byte, start, end int) []int {
	var out []int
	for off := start; ; off += scan.Step {
		off = p.Locate(buf, off, end)
		if off == scan.NotFound {
			return out
		}
		out = append(out, off)
	}
}
