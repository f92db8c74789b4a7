package pipeline

import (
	"testing"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/stretchr/testify/assert"
)

func TestRelayBackoffSchedule(t *testing.T) {
	d := initialBackoff
	var seen []time.Duration
	for range 7 {
		d = retry.NextBackoff(d, maxBackoff)
		seen = append(seen, d)
	}

	assert.Equal(t, []time.Duration{
		400 * time.Millisecond,
		800 * time.Millisecond,
		1600 * time.Millisecond,
		3200 * time.Millisecond,
		5 * time.Second,
		5 * time.Second,
		5 * time.Second,
	}, seen)
}
