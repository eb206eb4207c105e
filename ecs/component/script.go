package component

// Script attaches a tengo behaviour script to a character entity. The script
// system compiles the source once and calls its update function every tick
// with an engine surface that drives the character's controls.
type Script struct {
	Path string
}

var ScriptComponent = NewComponent[Script]()
