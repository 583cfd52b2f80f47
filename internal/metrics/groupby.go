package metrics

// UnknownKey is the bucket for records whose key cannot be resolved.
const UnknownKey = "Unknown"

// GroupBy buckets records by the given key extractor, preserving input order
// within each bucket. Empty keys collapse to UnknownKey.
func GroupBy[T any](records []T, key func(T) string) map[string][]T {
    out := map[string][]T{}
    for _, r := range records {
        k := key(r)
        if k == "" { k = UnknownKey }
        out[k] = append(out[k], r)
    }
    return out
}

// SumBy folds records into per-key totals using the same bucketing rules as
// GroupBy.
func SumBy[T any](records []T, key func(T) string, val func(T) float64) map[string]float64 {
    out := map[string]float64{}
    for _, r := range records {
        k := key(r)
        if k == "" { k = UnknownKey }
        out[k] += val(r)
    }
    return out
}
