package constants

import "fmt"

// Redis cache keys.
// Pattern: eventbook:{module}:{operation}:{identifier}:{params?}

const (
	CACHE_PREFIX = "eventbook"
)

// ================== EVENTS MODULE ==================

const (
	CACHE_KEY_EVENTS_LIST  = CACHE_PREFIX + ":events:list"       // + :name:X:venue:Y:date:Z:status:S
	CACHE_KEY_EVENT_DETAIL = CACHE_PREFIX + ":events:detail:id:" // + event-id

	PATTERN_INVALIDATE_EVENT_ALL = CACHE_PREFIX + ":events:*"
)

// EventListKey builds the cache key for a filtered event listing.
func EventListKey(name, venue, date, status string) string {
	return fmt.Sprintf("%s:name:%s:venue:%s:date:%s:status:%s",
		CACHE_KEY_EVENTS_LIST, name, venue, date, status)
}

// EventDetailKey builds the cache key for a single event.
func EventDetailKey(eventID uint) string {
	return fmt.Sprintf("%s%d", CACHE_KEY_EVENT_DETAIL, eventID)
}
