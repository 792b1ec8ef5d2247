package scene

// LiquidType is the unified liquid-type enum (spec §6.2); both the ADT
// tile-index and WMO entry-id source representations are mapped onto it
// before reaching this package — see charphys.LiquidType for the public
// alias consumed by callers.
type LiquidType uint8

const (
	LiquidNone LiquidType = iota
	LiquidWater
	LiquidOcean
	LiquidMagma
	LiquidSlime
	LiquidNaxxramasSlime
)

// NoLiquidLevel is the sentinel level meaning "no liquid sampled here"
// (spec §6.2: "any z > sentinel is a valid level").
const NoLiquidLevel = float32(-500.0)

// LiquidPlane is a flat liquid surface attached to a terrain tile or a WMO
// group (spec §3 "liquid... a flat plane with a type id and Z level,
// attached either to a WMO group or a terrain tile").
type LiquidPlane struct {
	Level    float32
	Type     LiquidType
	FromVMap bool // true when sourced from a WMO liquid plane rather than terrain
}

// LiquidSample is the result of liquid_at (spec §4.4, §4.6): a level, type,
// has-level flag, from-vmap flag, and a derived is-swimming bit.
type LiquidSample struct {
	Level      float32
	Type       LiquidType
	HasLevel   bool
	FromVMap   bool
	IsSwimming bool
}

// NoLiquid is the zero-value sample for positions with nothing overhead or
// underfoot.
func NoLiquid() LiquidSample {
	return LiquidSample{Level: NoLiquidLevel, Type: LiquidNone}
}

func sampleFromPlane(p *LiquidPlane, z, swimDepthTol float32) LiquidSample {
	if p == nil {
		return NoLiquid()
	}
	return LiquidSample{
		Level:      p.Level,
		Type:       p.Type,
		HasLevel:   true,
		FromVMap:   p.FromVMap,
		IsSwimming: z < p.Level-swimDepthTol,
	}
}
