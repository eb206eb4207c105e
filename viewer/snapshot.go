package viewer

import (
	"encoding/json"
	"time"

	"github.com/milk9111/overworld/ecs"
	"github.com/milk9111/overworld/ecs/component"
)

// Snapshot is one frame of poses for the viewer page.
type Snapshot struct {
	ServerTime int64        `json:"serverTime"`
	Camera     *CameraPose  `json:"camera,omitempty"`
	Entities   []EntityPose `json:"entities"`
}

type CameraPose struct {
	Position [3]float64 `json:"position"`
	Target   string     `json:"target,omitempty"`
	Zoom     float64    `json:"zoom,omitempty"`
}

type EntityPose struct {
	ID       uint64     `json:"id"`
	Name     string     `json:"name,omitempty"`
	Position [3]float64 `json:"position"`
	Rotation [4]float64 `json:"rotation"`
	Flags    []string   `json:"flags,omitempty"`
}

// BuildSnapshot walks every transform in the world and captures its pose,
// plus the character flags watchers care about.
func BuildSnapshot(w *ecs.World) Snapshot {
	snap := Snapshot{ServerTime: time.Now().UnixMilli()}

	ecs.ForEach(w, component.TransformComponent.Kind(), func(e ecs.Entity, tr *component.Transform) {
		pose := EntityPose{
			ID:       uint64(e),
			Position: [3]float64{tr.Position.X(), tr.Position.Y(), tr.Position.Z()},
			Rotation: [4]float64{tr.Rotation.X(), tr.Rotation.Y(), tr.Rotation.Z(), tr.Rotation.W},
		}
		if label, ok := ecs.Get(w, e, component.LabelComponent.Kind()); ok {
			pose.Name = label.Value
		}
		if st, ok := ecs.Get(w, e, component.CharacterComponent.Kind()); ok {
			pose.Flags = characterFlags(st)
		}
		snap.Entities = append(snap.Entities, pose)
	})

	if rigEntity, ok := ecs.First(w, component.CameraRigComponent.Kind()); ok {
		if rig, ok := ecs.Get(w, rigEntity, component.CameraRigComponent.Kind()); ok {
			snap.Camera = &CameraPose{
				Position: [3]float64{rig.Position.X(), rig.Position.Y(), rig.Position.Z()},
				Target:   rig.TargetName,
				Zoom:     rig.Zoom,
			}
		}
	}

	return snap
}

// BroadcastSnapshot builds, marshals and fans out one snapshot. A hub with
// no watchers skips the work entirely.
func (h *Hub) BroadcastSnapshot(w *ecs.World) error {
	if h.SubscriberCount() == 0 {
		return nil
	}
	data, err := json.Marshal(BuildSnapshot(w))
	if err != nil {
		return err
	}
	h.Broadcast(data)
	return nil
}

func characterFlags(st *component.CharacterState) []string {
	var flags []string
	if st.IsGrounded {
		flags = append(flags, "grounded")
	}
	if st.IsFalling {
		flags = append(flags, "falling")
	}
	if st.IsSliding {
		flags = append(flags, "sliding")
	}
	if st.IsTumbling {
		flags = append(flags, "tumbling")
	}
	if st.IsGettingUp {
		flags = append(flags, "gettingUp")
	}
	if st.IsOnStairs {
		flags = append(flags, "onStairs")
	}
	if st.IsOnMovingPlatform {
		flags = append(flags, "onPlatform")
	}
	return flags
}
