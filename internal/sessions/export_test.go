package sessions

import "time"

func EvictIdle(s System, ttl time.Duration) int {
	return s.(*registry).evictIdle(ttl)
}
