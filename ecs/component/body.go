package component

import "github.com/milk9111/overworld/physics"

// Body references the physics body driving an entity. The body is owned by
// the space; this component only borrows it.
type Body struct {
	Ref *physics.Body
}

var BodyComponent = NewComponent[Body]()
