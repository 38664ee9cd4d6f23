package worker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeRetryBackoffDuplicaHastaElTope(t *testing.T) {
	casos := []struct {
		retryCount int
		esperado   time.Duration
	}{
		{1, time.Minute},
		{2, 2 * time.Minute},
		{3, 4 * time.Minute},
		{4, 8 * time.Minute},
		{5, 16 * time.Minute},
		{6, 30 * time.Minute},
		{10, 30 * time.Minute},
	}
	for _, c := range casos {
		assert.Equal(t, c.esperado, computeRetryBackoff(c.retryCount), "retry %d", c.retryCount)
	}
}
