package pkg

// user class partitioning of the road network. only ALLOWED_USER_CLASS
// segments/nodes participate in pathfinding, BLOCKED_USER_CLASS is kept for
// display layers only.
const (
	ALLOWED_USER_CLASS = 1
	BLOCKED_USER_CLASS = 0
)

const (
	INF_WEIGHT float64 = 1e15

	// snap radii in the working projection (meter).
	NODE_SNAP_RADIUS_BUILD = 15.0  // endpoint -> existing node during graph build
	NODE_SNAP_RADIUS_QUERY = 30.0  // query point -> existing node
	EDGE_SNAP_RADIUS_QUERY = 100.0 // query point -> nearest edge

	// influence zone buffers (meter).
	SHADE_BUFFER    = 0.8
	BUILDING_BUFFER = 6.0

	// max distance between an assembled route endpoint and the queried
	// origin/destination before a repair segment is inserted.
	STITCH_TOLERANCE = 0.3

	// edge cost never drops below EDGE_COST_FLOOR*length, so a fully
	// shaded edge can not become free and break dijkstra.
	EDGE_COST_FLOOR = 0.1
)

const (
	DEFAULT_TEMPERATURE_C = 25.0
	MIN_TEMPERATURE_C     = 15.0
	MAX_TEMPERATURE_C     = 45.0
)

const (
	MAX_PAIRS_LIMIT = 50
	MAX_ALPHA_LIMIT = 1.0
)

// RiskScenario selects the per-hazard building proximity parameters of the
// edge weight model.
type RiskScenario uint8

const (
	RISK_FLOOD RiskScenario = iota
	RISK_HEAT
	RISK_FIRE
	RISK_QUAKE
	RISK_MERGE
)

func (r RiskScenario) String() string {
	switch r {
	case RISK_FLOOD:
		return "flood"
	case RISK_HEAT:
		return "heat"
	case RISK_FIRE:
		return "fire"
	case RISK_QUAKE:
		return "quake"
	default:
		return "merge"
	}
}

// ParseRiskScenario. parse risk tag from request path/query.
func ParseRiskScenario(s string) (RiskScenario, bool) {
	switch s {
	case "flood":
		return RISK_FLOOD, true
	case "heat":
		return RISK_HEAT, true
	case "fire":
		return RISK_FIRE, true
	case "quake":
		return RISK_QUAKE, true
	case "merge":
		return RISK_MERGE, true
	}
	return RISK_MERGE, false
}

const (
	DEBUG = false
)
