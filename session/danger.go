package session

import "fmt"

// MaxDanger is the highest danger level a narrator can set.
const MaxDanger = 4

// DangerLabel returns the narrator-facing description for a danger level.
func DangerLabel(level int) string {
	switch level {
	case 0:
		return "Not Dangerous"
	case 1:
		return "Extremely Dangerous (Leaves on 1+)"
	case 2:
		return "Very Dangerous (Leaves on 2+)"
	case 3:
		return "Fairly Dangerous (Leaves on 3+)"
	case 4:
		return "Slightly Dangerous (Leaves on 4+)"
	default:
		return fmt.Sprintf("Unknown (%d)", level)
	}
}

// HeroLeavesScene reports the narrative verdict of a completed test: at
// danger level N (1-4) the hero leaves the scene on N or more drawn
// complications. Level 0 never forces an exit. Display-only; the draw
// mechanics never consult this.
func HeroLeavesScene(danger, complications int) bool {
	return danger >= 1 && complications >= danger
}
