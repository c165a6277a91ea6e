// ABOUTME: Renders a decoded State into the condition text sent to the policy service.

package gamestate

import (
	"fmt"
	"strings"
)

// Render formats the state as the condition-record text block for a
// decision request.
func (s *State) Render() string {
	var b strings.Builder

	b.WriteString("Game State:\n")
	fmt.Fprintf(&b, "Trainer: %s\n", s.PlayerName)
	fmt.Fprintf(&b, "Money: ¥%d\n", s.Money)
	fmt.Fprintf(&b, "Badges: %d/8\n", s.Badges)
	fmt.Fprintf(&b, "Pokédex: %d owned, %d seen\n", s.PokedexOwned, s.PokedexSeen)

	b.WriteString("\nParty:\n")
	if len(s.Party) == 0 {
		b.WriteString("No Pokemon in party\n")
	}
	for _, p := range s.Party {
		fmt.Fprintf(&b, "%s Lv%d HP:%d/%d [%s]\n", p.Name, p.Level, p.HP, p.MaxHP, p.Status)
	}

	fmt.Fprintf(&b, "\nLocation: %s\n", s.MapName)
	fmt.Fprintf(&b, "Position: (%d, %d)\n", s.X, s.Y)
	fmt.Fprintf(&b, "Direction: %s\n", s.Direction)
	fmt.Fprintf(&b, "Battle Type: %d\n", s.BattleType)
	fmt.Fprintf(&b, "Menu State: %d\n", s.MenuState)
	fmt.Fprintf(&b, "Dialogue State: %d\n", s.Dialogue)

	if len(s.Items) > 0 {
		b.WriteString("\nInventory:\n")
		for _, item := range s.Items {
			fmt.Fprintf(&b, "Item #%d x%d\n", item.ID, item.Quantity)
		}
	}

	if len(s.RawWindow) > 0 {
		fmt.Fprintf(&b, "\nRAM Values (0x%04X-0x%04X):\n", addrRawWindowStart, addrRawWindowEnd)
		b.WriteString(formatRawWindow(s.RawWindow))
		b.WriteString("\n")
	}

	return b.String()
}

// formatRawWindow renders the raw RAM window as rows of four hex bytes
// prefixed with their address.
func formatRawWindow(values []byte) string {
	var lines []string
	for i := 0; i < len(values); i += 4 {
		end := i + 4
		if end > len(values) {
			end = len(values)
		}
		var hexValues []string
		for _, v := range values[i:end] {
			hexValues = append(hexValues, fmt.Sprintf("0x%02X", v))
		}
		lines = append(lines, fmt.Sprintf("0x%04X: %s", addrRawWindowStart+i, strings.Join(hexValues, " ")))
	}
	return strings.Join(lines, "\n")
}
