package mqtt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTopicName(t *testing.T) {
	tests := []struct {
		name    string
		topic   string
		wantErr error
	}{
		{name: "simple", topic: "a/b/c"},
		{name: "single level", topic: "a"},
		{name: "leading slash", topic: "/a"},
		{name: "dollar topic", topic: "$SYS/broker/load"},
		{name: "empty", topic: "", wantErr: ErrEmptyTopic},
		{name: "plus wildcard", topic: "a/+/c", wantErr: ErrInvalidTopicName},
		{name: "hash wildcard", topic: "a/#", wantErr: ErrInvalidTopicName},
		{name: "null character", topic: "a\x00b", wantErr: ErrInvalidTopicName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTopicName(tt.topic)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateTopicFilter(t *testing.T) {
	tests := []struct {
		name    string
		filter  string
		wantErr error
	}{
		{name: "plain", filter: "a/b/c"},
		{name: "single level wildcard", filter: "a/+/c"},
		{name: "multi level wildcard", filter: "a/#"},
		{name: "bare hash", filter: "#"},
		{name: "bare plus", filter: "+"},
		{name: "empty", filter: "", wantErr: ErrEmptyTopic},
		{name: "plus inside level", filter: "a/b+/c", wantErr: ErrInvalidTopicFilter},
		{name: "hash not last", filter: "a/#/c", wantErr: ErrInvalidTopicFilter},
		{name: "hash inside level", filter: "a/b#", wantErr: ErrInvalidTopicFilter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTopicFilter(tt.filter)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestTopicMatch(t *testing.T) {
	tests := []struct {
		filter string
		topic  string
		want   bool
	}{
		{"a/b/c", "a/b/c", true},
		{"a/b/c", "a/b/d", false},
		{"a/+/c", "a/b/c", true},
		{"a/+/c", "a/b/d", false},
		{"a/+", "a/b/c", false},
		{"a/#", "a/b/c", true},
		{"a/#", "a", true}, // '#' also matches the parent level
		{"#", "a/b/c", true},
		{"+", "a", true},
		{"+", "a/b", false},
		{"#", "$SYS/broker", false},
		{"+/broker", "$SYS/broker", false},
		{"$SYS/#", "$SYS/broker", true},
		{"a/b", "a/b/", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TopicMatch(tt.filter, tt.topic),
			"filter %q topic %q", tt.filter, tt.topic)
	}
}
