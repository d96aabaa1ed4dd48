package manifest

import (
	"fmt"
	"sort"
)

// Reduce merges per-source count maps into one.
func Reduce(intermediate []map[string]int) map[string]int {
	final := make(map[string]int)
	for _, counts := range intermediate {
		for key, count := range counts {
			if key != "" {
				final[key] += count
			}
		}
	}
	return final
}

// Top returns the n largest counts formatted as "key:count", ties broken
// by key so output is stable.
func Top(counts map[string]int, n int) []string {
	type kv struct {
		Key   string
		Value int
	}

	ss := make([]kv, 0, len(counts))
	for k, v := range counts {
		ss = append(ss, kv{k, v})
	}
	sort.Slice(ss, func(i, j int) bool {
		if ss[i].Value != ss[j].Value {
			return ss[i].Value > ss[j].Value
		}
		return ss[i].Key < ss[j].Key
	})

	if len(ss) > n {
		ss = ss[:n]
	}
	if len(ss) == 0 {
		return nil
	}

	out := make([]string, len(ss))
	for i, e := range ss {
		out[i] = fmt.Sprintf("%s:%d", e.Key, e.Value)
	}
	return out
}
