package repo

import "time"

// MovementFilter narrows a product's movement history. Without Unbounded the
// page size is capped at defaultLimit.
type MovementFilter struct {
	Since     *time.Time
	Until     *time.Time
	Offset    *int
	Limit     *int
	Unbounded bool
}

func (mf MovementFilter) matches(createdAt time.Time) bool {
	if mf.Since != nil && createdAt.Before(*mf.Since) {
		return false
	}
	if mf.Until != nil && createdAt.After(*mf.Until) {
		return false
	}
	return true
}

// pageLimit is the effective limit, or 0 for no limit.
func (mf MovementFilter) pageLimit() int {
	if mf.Unbounded {
		return 0
	}
	if mf.Limit == nil || *mf.Limit <= 0 {
		return defaultLimit
	}
	return min(*mf.Limit, defaultLimit)
}
