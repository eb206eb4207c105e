package render

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/colornames"

	"github.com/milk9111/overworld/ecs"
	"github.com/milk9111/overworld/ecs/component"
	"github.com/milk9111/overworld/physics"
)

const (
	debugCircleSegments = 24
	defaultZoom         = 16
)

var (
	staticColor    = colornames.Steelblue
	kinematicColor = colornames.Mediumseagreen
	dynamicColor   = colornames.Goldenrod
	headingColor   = colornames.Whitesmoke
	sensorColor    = color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0x60}
)

// DrawDebug renders a top-down view of the world onto screen. The XZ plane
// maps to screen XY with the camera rig centered; body colliders draw as
// wireframes colored by body type.
func DrawDebug(w *ecs.World, screen *ebiten.Image) {
	if w == nil || screen == nil {
		return
	}
	d := &debugDrawer{screen: screen, zoom: defaultZoom}
	d.camX, d.camZ, d.zoom = debugCameraTransform(w)
	d.halfW = float64(screen.Bounds().Dx()) / 2
	d.halfH = float64(screen.Bounds().Dy()) / 2

	ecs.ForEach(w, component.BodyComponent.Kind(), func(e ecs.Entity, b *component.Body) {
		if b.Ref == nil {
			return
		}
		d.drawBody(b.Ref)
	})
	drawCharacterText(w, screen)
}

type debugDrawer struct {
	screen *ebiten.Image
	camX   float64
	camZ   float64
	zoom   float64
	halfW  float64
	halfH  float64
}

func (d *debugDrawer) drawBody(b *physics.Body) {
	clr := staticColor
	switch b.Type() {
	case physics.Kinematic:
		clr = kinematicColor
	case physics.Dynamic:
		clr = dynamicColor
	}
	pos := b.Translation()
	yaw := yawOf(b.Rotation())
	for _, col := range b.Colliders() {
		if !col.Enabled() {
			continue
		}
		c := color.Color(clr)
		if col.IsSensor() {
			c = sensorColor
		}
		center := pos.Add(b.Rotation().Rotate(col.Offset()))
		switch shape := col.Shape().(type) {
		case physics.Box:
			d.drawBox(center, yaw, shape.HalfExtents, c)
		case physics.Capsule:
			d.drawCircle(center, shape.Radius, c)
		}
	}
	if b.Type() == physics.Dynamic {
		// Heading tick so facing is visible from above.
		tip := pos.Add(mgl64.Vec3{math.Sin(yaw), 0, math.Cos(yaw)}.Mul(0.6))
		d.drawLine(pos, tip, headingColor)
	}
}

func (d *debugDrawer) drawBox(center mgl64.Vec3, yaw float64, half mgl64.Vec3, clr color.Color) {
	sin, cos := math.Sin(yaw), math.Cos(yaw)
	corners := [4][2]float64{
		{-half.X(), -half.Z()},
		{half.X(), -half.Z()},
		{half.X(), half.Z()},
		{-half.X(), half.Z()},
	}
	pts := make([]mgl64.Vec3, 0, 4)
	for _, c := range corners {
		x := c[0]*cos + c[1]*sin
		z := -c[0]*sin + c[1]*cos
		pts = append(pts, mgl64.Vec3{center.X() + x, 0, center.Z() + z})
	}
	for i := range pts {
		d.drawLine(pts[i], pts[(i+1)%len(pts)], clr)
	}
}

func (d *debugDrawer) drawCircle(center mgl64.Vec3, radius float64, clr color.Color) {
	if radius <= 0 {
		return
	}
	prev := mgl64.Vec3{center.X() + radius, 0, center.Z()}
	for i := 1; i <= debugCircleSegments; i++ {
		t := (2 * math.Pi) * (float64(i) / float64(debugCircleSegments))
		next := mgl64.Vec3{center.X() + math.Cos(t)*radius, 0, center.Z() + math.Sin(t)*radius}
		d.drawLine(prev, next, clr)
		prev = next
	}
}

func (d *debugDrawer) drawLine(a, b mgl64.Vec3, clr color.Color) {
	x1, y1 := d.toScreen(a)
	x2, y2 := d.toScreen(b)
	vector.StrokeLine(d.screen, float32(x1), float32(y1), float32(x2), float32(y2), 1, clr, true)
}

func (d *debugDrawer) toScreen(v mgl64.Vec3) (float64, float64) {
	return d.halfW + (v.X()-d.camX)*d.zoom, d.halfH - (v.Z()-d.camZ)*d.zoom
}

func drawCharacterText(w *ecs.World, screen *ebiten.Image) {
	type row struct {
		name string
		text string
	}
	var rows []row
	ecs.ForEach(w, component.CharacterComponent.Kind(), func(e ecs.Entity, st *component.CharacterState) {
		name := "?"
		if l, ok := ecs.Get(w, e, component.LabelComponent.Kind()); ok {
			name = l.Value
		}
		rows = append(rows, row{
			name: name,
			text: fmt.Sprintf(
				"%s  grounded:%v falling:%v sliding:%v tumbling:%v platform:%v vel:(%.2f, %.2f, %.2f)",
				name, st.IsGrounded, st.IsFalling, st.IsSliding, st.IsTumbling, st.IsOnMovingPlatform,
				st.Velocity.X(), st.Velocity.Y(), st.Velocity.Z(),
			),
		})
	})
	sort.Slice(rows, func(i, j int) bool { return rows[i].name < rows[j].name })
	for i, r := range rows {
		ebitenutil.DebugPrintAt(screen, r.text, 10, 10+i*14)
	}
}

func debugCameraTransform(w *ecs.World) (float64, float64, float64) {
	camX, camZ := 0.0, 0.0
	zoom := float64(defaultZoom)
	camEntity, ok := ecs.First(w, component.CameraRigComponent.Kind())
	if !ok {
		return camX, camZ, zoom
	}
	if rig, ok := ecs.Get(w, camEntity, component.CameraRigComponent.Kind()); ok {
		camX = rig.Position.X()
		camZ = rig.Position.Z()
		if rig.Zoom > 0 {
			zoom = rig.Zoom
		}
	}
	return camX, camZ, zoom
}

func yawOf(q mgl64.Quat) float64 {
	m := q.Mat4()
	if math.Abs(m.At(0, 1)) < 0.9999999 {
		return math.Atan2(m.At(0, 2), m.At(0, 0))
	}
	return 0
}
