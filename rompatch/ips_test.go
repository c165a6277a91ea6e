// ABOUTME: Tests for IPS parsing and application: plain records, RLE, growth, truncation.

package rompatch

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

// buildPatch assembles an IPS file from records.
type patchBuilder struct {
	buf bytes.Buffer
}

func newPatchBuilder() *patchBuilder {
	b := &patchBuilder{}
	b.buf.WriteString("PATCH")
	return b
}

func (b *patchBuilder) record(offset int, data []byte) *patchBuilder {
	b.write24(offset)
	var size [2]byte
	binary.BigEndian.PutUint16(size[:], uint16(len(data)))
	b.buf.Write(size[:])
	b.buf.Write(data)
	return b
}

func (b *patchBuilder) rle(offset, runLen int, value byte) *patchBuilder {
	b.write24(offset)
	b.buf.Write([]byte{0, 0})
	var n [2]byte
	binary.BigEndian.PutUint16(n[:], uint16(runLen))
	b.buf.Write(n[:])
	b.buf.WriteByte(value)
	return b
}

func (b *patchBuilder) write24(v int) {
	b.buf.Write([]byte{byte(v >> 16), byte(v >> 8), byte(v)})
}

func (b *patchBuilder) done() []byte {
	b.buf.WriteString("EOF")
	return b.buf.Bytes()
}

func TestApplyPlainRecord(t *testing.T) {
	rom := []byte{0, 1, 2, 3, 4, 5, 6, 7}
	patch := newPatchBuilder().record(2, []byte{0xAA, 0xBB}).done()

	got, err := Apply(rom, patch)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := []byte{0, 1, 0xAA, 0xBB, 4, 5, 6, 7}
	if !bytes.Equal(got, want) {
		t.Errorf("got %x, want %x", got, want)
	}
}

func TestApplyRLERecord(t *testing.T) {
	rom := make([]byte, 16)
	patch := newPatchBuilder().rle(4, 6, 0xFF).done()

	got, err := Apply(rom, patch)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	for i := 4; i < 10; i++ {
		if got[i] != 0xFF {
			t.Fatalf("byte %d = %02x, want FF", i, got[i])
		}
	}
	if got[3] != 0 || got[10] != 0 {
		t.Error("RLE run wrote outside its range")
	}
}

func TestApplyGrowsROM(t *testing.T) {
	rom := []byte{1, 2}
	patch := newPatchBuilder().record(6, []byte{0xCC}).done()

	got, err := Apply(rom, patch)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(got) != 7 {
		t.Fatalf("len = %d, want 7", len(got))
	}
	if got[6] != 0xCC || got[0] != 1 {
		t.Errorf("got %x", got)
	}
}

func TestApplyTruncateExtension(t *testing.T) {
	rom := make([]byte, 10)
	patch := newPatchBuilder().record(0, []byte{1}).done()
	// Truncation extension: 3-byte target length after EOF.
	patch = append(patch, 0, 0, 4)

	got, err := Apply(rom, patch)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(got) != 4 {
		t.Errorf("len = %d, want 4", len(got))
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	if _, err := Parse([]byte("NOTIPS")); !errors.Is(err, ErrNotIPS) {
		t.Errorf("err = %v, want ErrNotIPS", err)
	}
	if _, err := Parse([]byte("PATCH\x00\x00\x01")); err == nil {
		t.Error("expected error for missing EOF")
	}
	// Record claiming more data than the file holds.
	truncated := []byte("PATCH\x00\x00\x01\x00\x09short")
	if _, err := Parse(truncated); err == nil {
		t.Error("expected error for truncated record data")
	}
}

func TestApplyDoesNotModifyInput(t *testing.T) {
	rom := []byte{9, 9, 9}
	patch := newPatchBuilder().record(0, []byte{1, 2, 3}).done()

	if _, err := Apply(rom, patch); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !bytes.Equal(rom, []byte{9, 9, 9}) {
		t.Errorf("input rom mutated: %v", rom)
	}
}
