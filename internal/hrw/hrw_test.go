package hrw

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBest_empty(t *testing.T) {
	_, ok := Best("key", nil, "seed")
	require.False(t, ok)
}

func TestBest_stable(t *testing.T) {
	nodes := []string{"loop-0", "loop-1", "loop-2", "loop-3"}

	a, ok := Best("dep-1/0", nodes, "vrtx")
	require.True(t, ok)
	b, ok := Best("dep-1/0", nodes, "vrtx")
	require.True(t, ok)
	require.Equal(t, a, b)
}

func TestBest_seedChangesAssignment(t *testing.T) {
	nodes := make([]string, 16)
	for i := range nodes {
		nodes[i] = fmt.Sprintf("loop-%d", i)
	}

	moved := 0
	for i := 0; i < 100; i++ {
		key := fmt.Sprintf("key-%d", i)
		a, _ := Best(key, nodes, "seed-a")
		b, _ := Best(key, nodes, "seed-b")
		if a != b {
			moved++
		}
	}
	require.NotZero(t, moved)
}

func TestBest_spread(t *testing.T) {
	nodes := []string{"loop-0", "loop-1", "loop-2", "loop-3"}

	hits := map[string]int{}
	for i := 0; i < 1000; i++ {
		n, ok := Best(fmt.Sprintf("key-%d", i), nodes, "vrtx")
		require.True(t, ok)
		hits[n]++
	}

	// Every node should receive a reasonable share.
	for _, n := range nodes {
		require.Greater(t, hits[n], 100, "node %s starved: %v", n, hits)
	}
}
