package driver

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWaitMillis(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want int32
	}{
		{0, 0},
		{-time.Second, 0},
		{1500 * time.Millisecond, 1500},
		{time.Duration(math.MaxInt32) * time.Millisecond, math.MaxInt32},
		{30 * 24 * time.Hour, math.MaxInt32},
		{time.Duration(math.MaxInt64), math.MaxInt32},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, waitMillis(tt.in), "timeout %v", tt.in)
	}
}

func TestDataLen(t *testing.T) {
	n, ok := dataLen(0)
	assert.True(t, ok)
	assert.Equal(t, 0, n)

	// Sizes past 2 GiB must not turn negative.
	n, ok = dataLen(3 << 30)
	if math.MaxInt > math.MaxInt32 {
		assert.True(t, ok)
		assert.Equal(t, int64(3<<30), int64(n))
	} else {
		assert.False(t, ok)
	}

	_, ok = dataLen(math.MaxUint64)
	assert.False(t, ok)
}
