package metrics

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

type rec struct {
    key string
    n   int
}

func TestGroupByPreservesOrderWithinBuckets(t *testing.T) {
    in := []rec{{"a", 1}, {"b", 2}, {"a", 3}, {"b", 4}, {"a", 5}}
    groups := GroupBy(in, func(r rec) string { return r.key })
    require.Len(t, groups, 2)
    assert.Equal(t, []rec{{"a", 1}, {"a", 3}, {"a", 5}}, groups["a"])
    assert.Equal(t, []rec{{"b", 2}, {"b", 4}}, groups["b"])
}

func TestGroupByUnknownBucket(t *testing.T) {
    in := []rec{{"", 1}, {"x", 2}, {"", 3}}
    groups := GroupBy(in, func(r rec) string { return r.key })
    require.Len(t, groups, 2)
    assert.Equal(t, []rec{{"", 1}, {"", 3}}, groups[UnknownKey])
}

func TestSumBy(t *testing.T) {
    in := []rec{{"a", 1}, {"", 2}, {"a", 3}}
    sums := SumBy(in, func(r rec) string { return r.key }, func(r rec) float64 { return float64(r.n) })
    assert.Equal(t, 4.0, sums["a"])
    assert.Equal(t, 2.0, sums[UnknownKey])
}
