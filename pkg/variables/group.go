package variables

import (
	"fmt"
	"sort"
)

// Group is the set of variants sharing one conceptual name
type Group struct {
	Name     string
	Variants []*Variable
}

// IDs returns the variant ids in group order
func (g Group) IDs() []int64 {
	ids := make([]int64, 0, len(g.Variants))
	for _, v := range g.Variants {
		ids = append(ids, v.ID)
	}

	return ids
}

// GroupByName partitions variables into variant groups. Groups keep the order
// in which their name first appears and variants are ordered by id.
func GroupByName(vars []*Variable) []Group {
	index := make(map[string]int)
	groups := make([]Group, 0)

	for _, v := range vars {
		if v == nil {
			continue
		}

		i, ok := index[v.Name]
		if !ok {
			i = len(groups)
			index[v.Name] = i
			groups = append(groups, Group{Name: v.Name})
		}

		groups[i].Variants = append(groups[i].Variants, v)
	}

	for i := range groups {
		sort.SliceStable(groups[i].Variants, func(a, b int) bool {
			return groups[i].Variants[a].ID < groups[i].Variants[b].ID
		})
	}

	return groups
}

// Years returns the projected years from the base year through target inclusive
func Years(target int) ([]int, error) {
	if target < BaseYear {
		return nil, fmt.Errorf("%w: %d < %d", ErrInvalidTargetYear, target, BaseYear)
	}

	years := make([]int, 0, target-BaseYear+1)
	for y := BaseYear; y <= target; y++ {
		years = append(years, y)
	}

	return years, nil
}
