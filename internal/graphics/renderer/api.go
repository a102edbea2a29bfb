package renderer

import "mini-engine/internal/graphics/device"

// FrameInfo counts the draw work submitted since the last BeginFrame
type FrameInfo struct {
	Batches   int
	Instances int
	Polygons  int
}

// StateDevice is the subset of device.Device the state diff touches
type StateDevice interface {
	SetDepthMask(on bool)
	SetColorMask(on bool)
	SetCapability(c device.Capability, on bool)
	SetCullFace(f device.Face)
	DepthMask() bool
	ColorMask() bool
	Capability(c device.Capability) bool
	CullFace() device.Face
}
