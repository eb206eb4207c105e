package component

import "github.com/go-gl/mathgl/mgl64"

// CameraRig chases a named character. Position is the smoothed world-space
// camera location the views project from.
type CameraRig struct {
	TargetName string
	Offset     mgl64.Vec3
	Smoothness float64
	Zoom       float64
	Position   mgl64.Vec3
}

var CameraRigComponent = NewComponent[CameraRig]()
