package redis

import (
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})

	tests := []struct {
		name   string
		prefix string
		parts  []string
		want   string
	}{
		{name: "prefixed", prefix: "kitchin", parts: []string{"lock", "initialize"}, want: "kitchin:lock:initialize"},
		{name: "trailing colon", prefix: "kitchin:", parts: []string{"lock"}, want: "kitchin:lock"},
		{name: "no prefix", prefix: "", parts: []string{"lock", "initialize"}, want: "lock:initialize"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClient(nil, tt.prefix, logger)
			assert.Equal(t, tt.want, c.Key(tt.parts...))
		})
	}
}
