package redis

import "fmt"

// Key prefix for all match data.
const keyPrefix = "gammon"

// matchKey returns the Redis key for a match.
func matchKey(id string) string {
	return fmt.Sprintf("%s:match:%s", keyPrefix, id)
}

// matchIndexKey returns the Redis key for the SET of all match ids.
func matchIndexKey() string {
	return fmt.Sprintf("%s:idx:matches", keyPrefix)
}

// recordKey returns the Redis key for one game's record text.
func recordKey(matchID string, gameNumber int) string {
	return fmt.Sprintf("%s:record:%s:%d", keyPrefix, matchID, gameNumber)
}

// recordIndexKey returns the Redis key for the SET of a match's
// record keys.
func recordIndexKey(matchID string) string {
	return fmt.Sprintf("%s:idx:records:%s", keyPrefix, matchID)
}
