package pipeline

import "strings"

// State is a bitmask snapshot of fixed-function GPU state.
type State uint32

// Named bits
const (
	DepthWrite State = 1 << iota
	ColorWrite
	Blend
	FaceCull
	DepthTest
	CullBack
	CullFront
	CullFrontAndBack
)

// CullModeBits covers the three cull-face selection bits
const CullModeBits = CullBack | CullFront | CullFrontAndBack

// AllBits covers every named bit
const AllBits = DepthWrite | ColorWrite | Blend | FaceCull | DepthTest | CullModeBits

// Default matches a freshly created GL context: writes on, everything else off.
const Default = DepthWrite | ColorWrite

func (s State) Has(bit State) bool { return s&bit != 0 }

// With returns s with bit set or cleared
func (s State) With(bit State, on bool) State {
	if on {
		return s | bit
	}
	return s &^ bit
}

func (s State) DepthWriteEnabled() bool       { return s.Has(DepthWrite) }
func (s State) ColorWriteEnabled() bool       { return s.Has(ColorWrite) }
func (s State) BlendEnabled() bool            { return s.Has(Blend) }
func (s State) FaceCullEnabled() bool         { return s.Has(FaceCull) }
func (s State) DepthTestEnabled() bool        { return s.Has(DepthTest) }
func (s State) BackCullEnabled() bool         { return s.Has(CullBack) }
func (s State) FrontCullEnabled() bool        { return s.Has(CullFront) }
func (s State) FrontAndBackCullEnabled() bool { return s.Has(CullFrontAndBack) }
func (s *State) SetDepthWrite(on bool)        { *s = s.With(DepthWrite, on) }
func (s *State) SetColorWrite(on bool)        { *s = s.With(ColorWrite, on) }
func (s *State) SetBlend(on bool)             { *s = s.With(Blend, on) }
func (s *State) SetFaceCull(on bool)          { *s = s.With(FaceCull, on) }
func (s *State) SetDepthTest(on bool)         { *s = s.With(DepthTest, on) }
func (s *State) SetBackCull(on bool)          { *s = s.With(CullBack, on) }
func (s *State) SetFrontCull(on bool)         { *s = s.With(CullFront, on) }
func (s *State) SetFrontAndBackCull(on bool)  { *s = s.With(CullFrontAndBack, on) }

// Diff returns the bits that differ between s and other
func (s State) Diff(other State) State {
	return s ^ other
}

var bitNames = []struct {
	bit  State
	name string
}{
	{DepthWrite, "depth-write"},
	{ColorWrite, "color-write"},
	{Blend, "blend"},
	{FaceCull, "face-cull"},
	{DepthTest, "depth-test"},
	{CullBack, "cull-back"},
	{CullFront, "cull-front"},
	{CullFrontAndBack, "cull-front-and-back"},
}

func (s State) String() string {
	if s == 0 {
		return "none"
	}
	var parts []string
	for _, b := range bitNames {
		if s.Has(b.bit) {
			parts = append(parts, b.name)
		}
	}
	return strings.Join(parts, "|")
}
