package scene

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

type LightType int32

const (
	LightDirectional LightType = iota
	LightPoint
	LightSpot
)

func (t LightType) String() string {
	switch t {
	case LightDirectional:
		return "directional"
	case LightPoint:
		return "point"
	case LightSpot:
		return "spot"
	}
	return "unknown"
}

// Light is a directional, point or spot light placed by its owner's transform
type Light struct {
	BaseComponent

	lightType     LightType
	color         mgl32.Vec3
	intensity     float32
	falloffRadius float32
	innerAngle    float32
	outerAngle    float32
}

func NewLight(t LightType) *Light {
	return &Light{
		lightType:     t,
		color:         mgl32.Vec3{1, 1, 1},
		intensity:     1,
		falloffRadius: 20,
		innerAngle:    0.7,
		outerAngle:    1.2,
	}
}

func (l *Light) Type() LightType         { return l.lightType }
func (l *Light) SetType(t LightType)     { l.lightType = t }
func (l *Light) Color() mgl32.Vec3       { return l.color }
func (l *Light) SetColor(col mgl32.Vec3) { l.color = col }
func (l *Light) Intensity() float32      { return l.intensity }
func (l *Light) FalloffRadius() float32  { return l.falloffRadius }
func (l *Light) InnerAngle() float32     { return l.innerAngle }
func (l *Light) OuterAngle() float32     { return l.outerAngle }

func (l *Light) SetIntensity(v float32) {
	l.intensity = math32.Max(v, 0)
}

func (l *Light) SetFalloffRadius(v float32) {
	l.falloffRadius = math32.Max(v, 0)
}

// SetInnerAngle clamps to [0, outer]
func (l *Light) SetInnerAngle(v float32) {
	l.innerAngle = mgl32.Clamp(v, 0, l.outerAngle)
}

// SetOuterAngle clamps to [inner, Pi]
func (l *Light) SetOuterAngle(v float32) {
	l.outerAngle = mgl32.Clamp(v, l.innerAngle, math32.Pi)
}

// Position returns the owner's world position
func (l *Light) Position() mgl32.Vec3 {
	if l.owner == nil {
		return mgl32.Vec3{}
	}
	return l.owner.transform.WorldPosition()
}

// Direction returns the owner's world forward vector
func (l *Light) Direction() mgl32.Vec3 {
	if l.owner == nil {
		return mgl32.Vec3{0, 0, -1}
	}
	return l.owner.transform.WorldForward()
}
