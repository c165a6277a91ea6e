// ABOUTME: Decodes a work-RAM snapshot window into a structured game condition record.
// ABOUTME: Covers player identity, party, location, battle/menu flags, inventory, and Pokédex counts.

package gamestate

import (
	"fmt"

	"github.com/2389-research/gamepilot/emu"
)

// Pokemon is one party member's summary.
type Pokemon struct {
	Species byte
	Name    string
	Level   int
	HP      int
	MaxHP   int
	Status  string
	Moves   [4]byte
}

// Item is one inventory slot.
type Item struct {
	ID       byte
	Quantity byte
}

// State is the decoded condition record for one snapshot.
type State struct {
	PlayerName string
	Money      int
	Badges     int

	MapID      byte
	MapName    string
	X, Y       int
	Direction  string
	BattleType byte
	MenuState  byte
	Dialogue   byte

	Party []Pokemon

	PokedexOwned int
	PokedexSeen  int

	Items []Item

	// RawWindow is the 0xD350-0xD370 slice included verbatim (as hex) in
	// the rendered condition text.
	RawWindow []byte
}

// Decode reads a State out of the work-RAM window captured by a snapshot.
// The window must cover the full emu.WRAMSize span.
func Decode(wram []byte) (*State, error) {
	if len(wram) < emu.WRAMSize {
		return nil, fmt.Errorf("wram window too short: %d bytes, need %d", len(wram), emu.WRAMSize)
	}

	at := func(addr int) byte { return wram[addr-emu.WRAMBase] }

	s := &State{
		PlayerName: decodeText(wram[addrPlayerName-emu.WRAMBase : addrPlayerName-emu.WRAMBase+11]),
		Money:      decodeBCD(wram[addrPlayerMoney-emu.WRAMBase : addrPlayerMoney-emu.WRAMBase+3]),
		Badges:     countBits(at(addrBadges)),
		MapID:      at(addrMapID),
		X:          int(at(addrPlayerX)),
		Y:          int(at(addrPlayerY)),
		BattleType: at(addrBattleType),
		MenuState:  at(addrMenuState),
		Dialogue:   at(addrDialogue),
		RawWindow:  wram[addrRawWindowStart-emu.WRAMBase : addrRawWindowEnd-emu.WRAMBase],
	}

	if name, ok := mapNames[s.MapID]; ok {
		s.MapName = name
	} else {
		s.MapName = fmt.Sprintf("Map 0x%02X", s.MapID)
	}

	dir := at(addrDirection)
	if name, ok := directionNames[dir]; ok {
		s.Direction = name
	} else {
		s.Direction = fmt.Sprintf("Unknown (0x%02X)", dir)
	}

	count := int(at(addrPartyCount))
	if count > 6 {
		count = 6
	}
	for i := 0; i < count; i++ {
		base := addrPartyStart - emu.WRAMBase + i*partyRecordSize
		rec := wram[base : base+partyRecordSize]
		p := Pokemon{
			Species: rec[offSpecies],
			Level:   int(rec[offLevel]),
			HP:      int(rec[offHP])<<8 | int(rec[offHP+1]),
			MaxHP:   int(rec[offMaxHP])<<8 | int(rec[offMaxHP+1]),
			Status:  statusText(rec[offStatus]),
		}
		copy(p.Moves[:], rec[offMoves:offMoves+4])
		if name, ok := speciesNames[p.Species]; ok {
			p.Name = name
		} else {
			p.Name = fmt.Sprintf("Pokemon #%d", p.Species)
		}
		s.Party = append(s.Party, p)
	}

	for i := 0; i < pokedexBytes; i++ {
		s.PokedexOwned += countBits(at(addrPokedexOwned + i))
		s.PokedexSeen += countBits(at(addrPokedexSeen + i))
	}

	items := int(at(addrItemCount))
	if items > maxInventorySlots {
		items = maxInventorySlots
	}
	for i := 0; i < items; i++ {
		id := at(addrItemsStart + i*2)
		if id == 0 {
			continue
		}
		s.Items = append(s.Items, Item{ID: id, Quantity: at(addrItemsStart + i*2 + 1)})
	}

	return s, nil
}

// decodeText converts the Gen 1 character set to ASCII, stopping at the
// 0x50 terminator. Unmapped glyphs become '?'.
func decodeText(raw []byte) string {
	var out []byte
	for _, b := range raw {
		switch {
		case b == 0x50:
			return string(out)
		case b >= 0x80 && b <= 0x99:
			out = append(out, 'A'+b-0x80)
		case b >= 0xA0 && b <= 0xB9:
			out = append(out, 'a'+b-0xA0)
		case b == 0x7F:
			out = append(out, ' ')
		default:
			out = append(out, '?')
		}
	}
	return string(out)
}

// decodeBCD converts packed binary-coded-decimal bytes (most significant
// first) to an integer.
func decodeBCD(raw []byte) int {
	value := 0
	for _, b := range raw {
		value = value*100 + int(b>>4)*10 + int(b&0x0F)
	}
	return value
}

// statusText renders the status condition bitmask.
func statusText(status byte) string {
	switch {
	case status == 0:
		return "OK"
	case status&0x80 != 0:
		return "PSN"
	case status&0x40 != 0:
		return "BRN"
	case status&0x20 != 0:
		return "FRZ"
	case status&0x10 != 0:
		return "PAR"
	case status&0x08 != 0:
		return "SLP"
	default:
		return "???"
	}
}

// countBits returns the number of set bits in b.
func countBits(b byte) int {
	n := 0
	for ; b != 0; b >>= 1 {
		n += int(b & 1)
	}
	return n
}
