// ABOUTME: IPS patch parser and applier for preparing ROM images.
// ABOUTME: Supports plain records, RLE records, and the optional truncation extension.

package rompatch

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// IPS wire constants.
var (
	ipsHeader = []byte("PATCH")
	ipsEOF    = []byte("EOF")
)

// maxROMSize bounds the output image. IPS offsets are 24-bit so patches
// can never address past 16 MiB.
const maxROMSize = 1 << 24

// ErrNotIPS reports input that does not start with the PATCH magic.
var ErrNotIPS = errors.New("not an IPS patch: missing PATCH header")

// Record is one hunk of a parsed patch.
type Record struct {
	Offset int
	Data   []byte

	// RLE records repeat a single byte Size times instead of carrying
	// literal data.
	RLE   bool
	Size  int
	Value byte
}

// Patch is a parsed IPS file.
type Patch struct {
	Records []Record

	// Truncate is the optional post-EOF target length, or 0 when absent.
	Truncate int
}

// Parse decodes an IPS patch.
func Parse(data []byte) (*Patch, error) {
	if len(data) < len(ipsHeader)+len(ipsEOF) {
		return nil, ErrNotIPS
	}
	if string(data[:len(ipsHeader)]) != string(ipsHeader) {
		return nil, ErrNotIPS
	}

	p := &Patch{}
	pos := len(ipsHeader)
	for {
		if pos+3 > len(data) {
			return nil, fmt.Errorf("truncated patch at byte %d: missing EOF marker", pos)
		}
		if string(data[pos:pos+3]) == string(ipsEOF) {
			pos += 3
			break
		}

		offset := int(read24(data[pos : pos+3]))
		pos += 3
		if pos+2 > len(data) {
			return nil, fmt.Errorf("truncated record header at byte %d", pos)
		}
		size := int(binary.BigEndian.Uint16(data[pos : pos+2]))
		pos += 2

		if size == 0 {
			// RLE record: 2-byte run length then the fill byte.
			if pos+3 > len(data) {
				return nil, fmt.Errorf("truncated RLE record at byte %d", pos)
			}
			runLen := int(binary.BigEndian.Uint16(data[pos : pos+2]))
			value := data[pos+2]
			pos += 3
			if offset+runLen > maxROMSize {
				return nil, fmt.Errorf("RLE record at 0x%06X exceeds 16 MiB bound", offset)
			}
			p.Records = append(p.Records, Record{Offset: offset, RLE: true, Size: runLen, Value: value})
			continue
		}

		if pos+size > len(data) {
			return nil, fmt.Errorf("truncated record data at byte %d", pos)
		}
		if offset+size > maxROMSize {
			return nil, fmt.Errorf("record at 0x%06X exceeds 16 MiB bound", offset)
		}
		p.Records = append(p.Records, Record{Offset: offset, Data: data[pos : pos+size]})
		pos += size
	}

	// Optional truncation extension: 3 bytes of target length after EOF.
	if pos+3 <= len(data) {
		p.Truncate = int(read24(data[pos : pos+3]))
	}
	return p, nil
}

// Apply patches rom and returns the result. The output grows when a
// record writes past the current end.
func Apply(rom, patch []byte) ([]byte, error) {
	p, err := Parse(patch)
	if err != nil {
		return nil, err
	}

	out := make([]byte, len(rom))
	copy(out, rom)

	for _, rec := range p.Records {
		end := rec.Offset + len(rec.Data)
		if rec.RLE {
			end = rec.Offset + rec.Size
		}
		if end > len(out) {
			grown := make([]byte, end)
			copy(grown, out)
			out = grown
		}
		if rec.RLE {
			for i := 0; i < rec.Size; i++ {
				out[rec.Offset+i] = rec.Value
			}
		} else {
			copy(out[rec.Offset:], rec.Data)
		}
	}

	if p.Truncate > 0 && p.Truncate < len(out) {
		out = out[:p.Truncate]
	}
	return out, nil
}

func read24(b []byte) uint32 {
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}
