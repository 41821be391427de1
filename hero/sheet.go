// Package hero holds the character sheet record exchanged in protocol
// payloads and saved to sheet files.
package hero

// Hive slot counts. The sheet is the hexagon hive from the tabletop game:
// one archetype in the center, six qualities in the inner ring, twelve
// abilities in the outer ring, plus four misfortune slots below it.
const (
	NumQualities   = 6
	NumAbilities   = 12
	NumMisfortunes = 4

	// MaxTraits is the largest number of selectable traits one sheet can
	// offer to a test: archetype + qualities + abilities.
	MaxTraits = 1 + NumQualities + NumAbilities
)

// Sheet is one hero's sheet state as synchronized between processes. The
// JSON shape doubles as the wire payload and the sheet file format.
type Sheet struct {
	Name        string   `json:"name"`
	RiskFor     string   `json:"riskFor"` // "I would risk everything for..."
	Archetype   string   `json:"archetype"`
	Qualities   []string `json:"qualities"`
	Abilities   []string `json:"abilities"`
	Misfortunes []string `json:"misfortunes"`
}

// Normalize enforces the slot-count invariant: qualities, abilities and
// misfortunes are padded with empty strings or truncated to their fixed
// lengths. Every sheet accepted from the wire or a file passes through
// here, so the rest of the program can index the slices freely.
func (s *Sheet) Normalize() {
	s.Qualities = fitSlots(s.Qualities, NumQualities)
	s.Abilities = fitSlots(s.Abilities, NumAbilities)
	s.Misfortunes = fitSlots(s.Misfortunes, NumMisfortunes)
}

func fitSlots(slots []string, n int) []string {
	fitted := make([]string, n)
	copy(fitted, slots)
	return fitted
}

// Trait is one selectable entry of the hive with its display label.
type Trait struct {
	Kind string // "archetype", "quality" or "ability"
	Slot int    // ring position, 0-based within the kind
	Text string
}

// SelectableTraits lists the traits with non-empty text in hive order:
// archetype first, then qualities, then abilities. Empty slots are never
// selectable for a test.
func (s *Sheet) SelectableTraits() []Trait {
	traits := make([]Trait, 0, MaxTraits)
	if s.Archetype != "" {
		traits = append(traits, Trait{Kind: "archetype", Slot: 0, Text: s.Archetype})
	}
	for i, q := range s.Qualities {
		if q != "" {
			traits = append(traits, Trait{Kind: "quality", Slot: i, Text: q})
		}
	}
	for i, a := range s.Abilities {
		if a != "" {
			traits = append(traits, Trait{Kind: "ability", Slot: i, Text: a})
		}
	}
	return traits
}

// Clone returns a deep copy, so roster snapshots cannot alias live edits.
func (s Sheet) Clone() Sheet {
	c := s
	c.Qualities = append([]string(nil), s.Qualities...)
	c.Abilities = append([]string(nil), s.Abilities...)
	c.Misfortunes = append([]string(nil), s.Misfortunes...)
	return c
}
