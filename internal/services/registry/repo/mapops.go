package repo

import (
	"maps"
	"sort"

	"bugprint/internal/services/registry/domain"
)

// pruneMap deletes entries saved before savedBefore in place
func pruneMap(m map[domain.Fingerprint]domain.Entry, savedBefore int64) int {
	n := 0
	for fp, e := range m {
		if e.Expired(savedBefore) {
			delete(m, fp)
			n++
		}
	}
	return n
}

// rangeSorted walks m in fingerprint order so output is stable
func rangeSorted(m map[domain.Fingerprint]domain.Entry, fn func(domain.Fingerprint, domain.Entry) bool) {
	keys := make([]domain.Fingerprint, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, k := range keys {
		if !fn(k, m[k]) {
			return
		}
	}
}

// detach copies e.Meta so callers never alias stored state
func detach(e domain.Entry) domain.Entry {
	if e.Meta != nil {
		e.Meta = maps.Clone(e.Meta)
	}
	return e
}
