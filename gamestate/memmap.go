// ABOUTME: Pokemon Red work-RAM address map and name tables used by the state decoder.
// ABOUTME: Addresses are absolute; the decoder indexes them relative to emu.WRAMBase.

package gamestate

// Work-RAM addresses of the values the decoder reads.
const (
	addrBattleType = 0xD057
	addrMenuState  = 0xCC24
	addrDialogue   = 0xCC26

	addrPlayerName  = 0xD158 // 11 bytes, 0x50-terminated
	addrPlayerMoney = 0xD347 // 3 bytes, BCD, most significant first
	addrBadges      = 0xD356 // one bit per badge

	addrMapID     = 0xD35E
	addrPlayerY   = 0xD361
	addrPlayerX   = 0xD362
	addrDirection = 0xD368

	addrPartyCount = 0xD163
	addrPartyStart = 0xD164

	addrPokedexOwned = 0xD2F7 // 19 bytes of ownership bits, 151 species
	addrPokedexSeen  = 0xD30A

	addrItemCount  = 0xD31D
	addrItemsStart = 0xD31E // id/quantity pairs

	addrRawWindowStart = 0xD350 // hex dump window included in the condition text
	addrRawWindowEnd   = 0xD370
)

// Party data layout: 44-byte record per Pokemon.
const (
	partyRecordSize = 44

	offSpecies = 0
	offMoves   = 8 // 4 move IDs
	offStatus  = 16
	offLevel   = 21
	offHP      = 22 // 2 bytes
	offMaxHP   = 24 // 2 bytes
)

// pokedexBytes covers all 151 species at 8 bits per byte.
const pokedexBytes = 19

// maxInventorySlots bounds how many item pairs the decoder reads.
const maxInventorySlots = 20

// mapNames labels the map IDs encountered in the early game. Unknown IDs
// render as their hex value.
var mapNames = map[byte]string{
	0x00: "Pallet Town",
	0x27: "Oak's Lab",
	0x28: "Player's House 1F",
	0x29: "Player's House 2F",
	0x2A: "Rival's House",
	0x2B: "Route 1",
	0x2C: "Viridian City",
}

// directionNames labels the sprite facing byte, including running variants.
var directionNames = map[byte]string{
	0x00: "Down",
	0x04: "Up",
	0x08: "Left",
	0x0C: "Right",
	0x01: "Down (running)",
	0x05: "Up (running)",
	0x09: "Left (running)",
	0x0D: "Right (running)",
}

// speciesNames maps internal species IDs to names for the party summary.
var speciesNames = map[byte]string{
	1:   "Bulbasaur",
	4:   "Charmander",
	7:   "Squirtle",
	10:  "Caterpie",
	13:  "Weedle",
	16:  "Pidgey",
	19:  "Rattata",
	25:  "Pikachu",
	35:  "Clefairy",
	39:  "Jigglypuff",
	52:  "Meowth",
	54:  "Psyduck",
	56:  "Mankey",
	63:  "Abra",
	66:  "Machop",
	74:  "Geodude",
	92:  "Gastly",
	95:  "Onix",
	129: "Magikarp",
	133: "Eevee",
	143: "Snorlax",
	150: "Mewtwo",
	151: "Mew",
}
