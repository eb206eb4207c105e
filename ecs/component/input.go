package component

import "github.com/hajimehoshi/ebiten/v2"

// Bindings maps character commands to keyboard keys.
type Bindings struct {
	RotateLeft   ebiten.Key
	RotateRight  ebiten.Key
	MoveForward  ebiten.Key
	MoveBackward ebiten.Key
	Jump         ebiten.Key
	Run          ebiten.Key
	Crouch       ebiten.Key
}

// Input holds the bindings and the values polled from them this frame.
// The input system writes the polled fields; everything downstream only
// reads them.
type Input struct {
	Bindings Bindings

	Move   float64
	Rotate float64

	JumpPressed   bool
	RunPressed    bool
	CrouchPressed bool
}

var InputComponent = NewComponent[Input]()
