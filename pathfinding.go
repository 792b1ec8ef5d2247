package charphys

import "github.com/go-gl/mathgl/mgl32"

// FindPath is the consumer-facing export named in spec §6 ("Pathfinding
// exports (consumed by external navmesh layer)"). Navmesh A* baking and
// traversal are an explicit non-goal (spec §1) — this module only
// guarantees the interface external callers link against; a straight-line
// path is returned when line of sight holds, smoothing is a no-op, and an
// empty path signals "ask the external navmesh layer".
func (e *Engine) FindPath(mapID uint32, start, end mgl32.Vec3, smooth bool) []mgl32.Vec3 {
	if e.LineOfSight(mapID, start, end) {
		return []mgl32.Vec3{start, end}
	}
	return nil
}

// LineOfSight exports the static scene's los query (spec §6).
func (e *Engine) LineOfSight(mapID uint32, a, b mgl32.Vec3) bool {
	return e.facade.LOS(mapID, a, b)
}

// PreloadMap is an optional warm-up hook (spec §6): it registers mapID as
// loaded, like LoadMap, and loads no tiles; tiles are loaded through
// LoadTile.
func (e *Engine) PreloadMap(mapID uint32) {
	e.static.LoadMap(mapID)
}
