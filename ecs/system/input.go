package system

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/milk9111/overworld/ecs"
	"github.com/milk9111/overworld/ecs/component"
)

// InputSystem polls the keyboard against each character's bindings and
// forwards the results as controller commands. It runs before the physics
// step so the tick inside the step observes the commands.
type InputSystem struct {
	chars *Characters
}

func NewInputSystem(chars *Characters) *InputSystem {
	return &InputSystem{chars: chars}
}

func (s *InputSystem) Update(w *ecs.World) {
	ecs.ForEach(w, component.InputComponent.Kind(), func(e ecs.Entity, in *component.Input) {
		poll(in)

		ctrl, ok := s.chars.ByEntity(e)
		if !ok {
			return
		}
		if in.Rotate != 0 {
			ctrl.Rotate(w, in.Rotate)
		}
		if in.Move != 0 {
			ctrl.Move(w, in.Move)
		}
		if in.JumpPressed {
			ctrl.Jump(w)
		}
		if in.RunPressed {
			ctrl.Run()
		}
		if in.CrouchPressed {
			ctrl.Crouch()
		}
	})
}

func poll(in *component.Input) {
	b := in.Bindings

	in.Rotate = 0
	if ebiten.IsKeyPressed(b.RotateLeft) {
		in.Rotate++
	}
	if ebiten.IsKeyPressed(b.RotateRight) {
		in.Rotate--
	}

	in.Move = 0
	if ebiten.IsKeyPressed(b.MoveForward) {
		in.Move++
	}
	if ebiten.IsKeyPressed(b.MoveBackward) {
		in.Move--
	}

	in.JumpPressed = inpututil.IsKeyJustPressed(b.Jump)
	in.RunPressed = inpututil.IsKeyJustPressed(b.Run)
	in.CrouchPressed = inpututil.IsKeyJustPressed(b.Crouch)
}
