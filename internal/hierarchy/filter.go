// =============================================================================
// EUCS to OSCAL Converter - Severity Filter
// =============================================================================
//
// A profile only contains what applies at its level:
//   - a requirement survives if its severity set contains the level
//   - a control survives if at least one of its requirements survives
//   - a category survives if at least one of its controls survives
//
// Filtering returns a new tree and never touches the source. Order is kept.
//
// =============================================================================

package hierarchy

import (
	"sync"

	"golang.org/x/sync/errgroup"
)

// Filter returns the part of h that applies at level.
func Filter(h *Hierarchy, level Severity) *Hierarchy {
	out := &Hierarchy{}
	if h == nil {
		return out
	}

	for _, category := range h.Categories {
		var controls []*Control
		for _, control := range category.Controls {
			var requirements []*Requirement
			for _, requirement := range control.Requirements {
				if requirement.Severities.Has(level) {
					r := *requirement
					requirements = append(requirements, &r)
				}
			}
			if len(requirements) == 0 {
				continue
			}
			controls = append(controls, &Control{
				ID:           control.ID,
				Title:        control.Title,
				Description:  control.Description,
				Requirements: requirements,
			})
		}
		if len(controls) == 0 {
			continue
		}
		out.Categories = append(out.Categories, &Category{
			ID:       category.ID,
			Title:    category.Title,
			Controls: controls,
		})
	}

	return out
}

// FilterAll filters h at every level concurrently.
// The source tree is only read, so the goroutines share it freely.
// Filter cannot fail, so no goroutine returns an error and Wait only joins.
func FilterAll(h *Hierarchy) map[Severity]*Hierarchy {
	var (
		mu  sync.Mutex
		g   errgroup.Group
		out = make(map[Severity]*Hierarchy, len(Severities))
	)

	for _, level := range Severities {
		g.Go(func() error {
			filtered := Filter(h, level)
			mu.Lock()
			out[level] = filtered
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	return out
}
