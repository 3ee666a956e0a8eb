package mqtt

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// Topic errors.
var (
	ErrInvalidTopicName   = errors.New("invalid topic name")
	ErrInvalidTopicFilter = errors.New("invalid topic filter")
	ErrEmptyTopic         = errors.New("topic cannot be empty")
)

const (
	topicSeparator      = '/'
	singleLevelWildcard = '+'
	multiLevelWildcard  = '#'
)

// ValidateTopicName validates a topic name for publishing. Topic names must
// be valid UTF-8 and cannot contain wildcards or null characters.
func ValidateTopicName(topic string) error {
	if topic == "" {
		return ErrEmptyTopic
	}
	if len(topic) > maxUint16 || !utf8.ValidString(topic) {
		return ErrInvalidTopicName
	}

	for _, r := range topic {
		if r == 0 || r == singleLevelWildcard || r == multiLevelWildcard {
			return ErrInvalidTopicName
		}
	}

	return nil
}

// ValidateTopicFilter validates a subscription topic filter. Wildcards are
// allowed but must occupy an entire level, and '#' must be the last level.
func ValidateTopicFilter(filter string) error {
	if filter == "" {
		return ErrEmptyTopic
	}
	if len(filter) > maxUint16 || !utf8.ValidString(filter) {
		return ErrInvalidTopicFilter
	}
	if strings.ContainsRune(filter, 0) {
		return ErrInvalidTopicFilter
	}

	levels := strings.Split(filter, string(topicSeparator))
	for i, level := range levels {
		if strings.ContainsRune(level, singleLevelWildcard) && level != string(singleLevelWildcard) {
			return ErrInvalidTopicFilter
		}
		if strings.ContainsRune(level, multiLevelWildcard) {
			if level != string(multiLevelWildcard) || i != len(levels)-1 {
				return ErrInvalidTopicFilter
			}
		}
	}

	return nil
}

// TopicMatch reports whether a topic name matches a topic filter.
func TopicMatch(filter, topic string) bool {
	if filter == "" || topic == "" {
		return false
	}

	// Topics starting with '$' don't match wildcards at the root level.
	if topic[0] == '$' && (filter[0] == singleLevelWildcard || filter[0] == multiLevelWildcard) {
		return false
	}

	filterLevels := strings.Split(filter, string(topicSeparator))
	topicLevels := strings.Split(topic, string(topicSeparator))

	for i, flevel := range filterLevels {
		if flevel == string(multiLevelWildcard) {
			return true
		}
		if i >= len(topicLevels) {
			return false
		}
		if flevel != string(singleLevelWildcard) && flevel != topicLevels[i] {
			return false
		}
	}

	return len(filterLevels) == len(topicLevels)
}
