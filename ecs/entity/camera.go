package entity

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/overworld/ecs"
	"github.com/milk9111/overworld/ecs/component"
)

// NewCameraRig spawns the follow camera. Target is a character name; spawns
// with CameraTarget set re-point the rig later.
func NewCameraRig(w *ecs.World, target string, offset mgl64.Vec3, smoothness, zoom float64) (ecs.Entity, error) {
	e := ecs.CreateEntity(w)
	rig := component.CameraRig{
		TargetName: target,
		Offset:     offset,
		Smoothness: smoothness,
		Zoom:       zoom,
		Position:   offset,
	}
	if err := ecs.Add(w, e, component.CameraRigComponent.Kind(), &rig); err != nil {
		ecs.DestroyEntity(w, e)
		return 0, fmt.Errorf("entity: camera rig: %w", err)
	}
	return e, nil
}
