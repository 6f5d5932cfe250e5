package config

import (
	"cmp"
	"maps"
	"slices"

	"github.com/flemzord/chatlist/internal/core"
)

// loadTiers ranks namespaces by dependency: storage first, the lists that
// persist into it next, then the surfaces that serve the lists. Modules
// stop in reverse, so the store outlives its writers.
var loadTiers = map[string]int{
	"store":        0,
	"conversation": 1,
	"gateway":      2,
}

// Resolve lists the configured module IDs in load order: by namespace tier,
// then by ID. Unknown namespaces load last.
func Resolve(cfg *Config) []string {
	ids := slices.Collect(maps.Keys(cfg.Modules))
	slices.SortFunc(ids, func(a, b string) int {
		return cmp.Or(cmp.Compare(tier(a), tier(b)), cmp.Compare(a, b))
	})
	return ids
}

func tier(id string) int {
	if t, ok := loadTiers[core.ModuleID(id).Namespace()]; ok {
		return t
	}
	return len(loadTiers)
}
