package system

import "github.com/milk9111/overworld/ecs"

// Event kinds pushed onto the world queue by the character controller.
const (
	EventCharacterLanded    ecs.EventKind = "character_landed"
	EventCharacterTumbled   ecs.EventKind = "character_tumbled"
	EventCharacterRecovered ecs.EventKind = "character_recovered"
)
