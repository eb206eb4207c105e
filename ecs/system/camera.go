package system

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/overworld/common"
	"github.com/milk9111/overworld/ecs"
	"github.com/milk9111/overworld/ecs/component"
)

// CameraSystem eases the camera rig toward its target's transform plus the
// authored offset. The rig position feeds the debug renderer and the viewer
// snapshots.
type CameraSystem struct {
	rigEntity    ecs.Entity
	targetEntity ecs.Entity
	targetName   string
	cached       bool
}

func NewCameraSystem() *CameraSystem {
	return &CameraSystem{}
}

func (s *CameraSystem) Update(w *ecs.World) {
	rig, tr, ok := s.lookup(w)
	if !ok {
		return
	}

	desired := tr.Position.Add(rig.Offset)
	k := common.Clamp(rig.Smoothness, 0, 1)
	rig.Position = mgl64.Vec3{
		common.Lerp(rig.Position.X(), desired.X(), k),
		common.Lerp(rig.Position.Y(), desired.Y(), k),
		common.Lerp(rig.Position.Z(), desired.Z(), k),
	}
}

func (s *CameraSystem) lookup(w *ecs.World) (*component.CameraRig, *component.Transform, bool) {
	if !s.cached || !ecs.IsAlive(w, s.rigEntity) || !ecs.IsAlive(w, s.targetEntity) {
		if !s.refresh(w) {
			return nil, nil, false
		}
	}
	rig, ok := ecs.Get(w, s.rigEntity, component.CameraRigComponent.Kind())
	if !ok {
		s.cached = false
		return nil, nil, false
	}
	if rig.TargetName != s.targetName {
		// The rig was re-pointed at a different character.
		if !s.refresh(w) {
			return nil, nil, false
		}
	}
	tr, ok := ecs.Get(w, s.targetEntity, component.TransformComponent.Kind())
	if !ok {
		s.cached = false
		return nil, nil, false
	}
	return rig, tr, true
}

func (s *CameraSystem) refresh(w *ecs.World) bool {
	rigEntity, ok := ecs.First(w, component.CameraRigComponent.Kind())
	if !ok {
		return false
	}
	rig, ok := ecs.Get(w, rigEntity, component.CameraRigComponent.Kind())
	if !ok {
		return false
	}
	target, ok := findEntityByLabel(w, rig.TargetName)
	if !ok {
		return false
	}
	s.rigEntity = rigEntity
	s.targetEntity = target
	s.targetName = rig.TargetName
	s.cached = true
	return true
}

func findEntityByLabel(w *ecs.World, name string) (ecs.Entity, bool) {
	var (
		found ecs.Entity
		has   bool
	)
	ecs.ForEach(w, component.LabelComponent.Kind(), func(e ecs.Entity, l *component.Label) {
		if !has && l.Value == name {
			found = e
			has = true
		}
	})
	return found, has
}
