package funnel

import "strconv"

// MigrationStats counts the routing rewrites performed by MigrateRoutes, for
// user-facing feedback after an edit.
type MigrationStats struct {
	// Sequential counts route targets re-resolved to the owning page's new
	// successor.
	Sequential int `json:"sequential"`
	// Custom counts route and condition targets remapped to follow a page to
	// its new path.
	Custom int `json:"custom"`
}

// MigrateRoutes rewrites every routing target after a structural edit so
// that both authoring intents survive reindexing:
//
//   - a route to the owning page's immediate successor means "continue to
//     whatever page comes next" and is re-resolved against the owner's new
//     position;
//   - any other route means "jump to that exact page" and follows the page
//     it pointed at, whatever that page's new path;
//   - condition targets are always explicit jumps and only ever follow page
//     identity.
//
// oldPages must be the pre-edit collection and newPages the post-reindex
// collection; event ownership is derived freshly from oldPages on every call.
// Targets of deleted pages are left dangling for the Validator to flag. The
// input routing table is never modified.
func MigrateRoutes(oldPages, newPages *PageMap, routing map[string]RoutingEntry) (map[string]RoutingEntry, MigrationStats) {
	var stats MigrationStats
	if len(routing) == 0 {
		return routing, stats
	}

	pathMap := buildPathMap(oldPages, newPages)
	owners := buildOwnerMap(oldPages, routing)

	out := make(map[string]RoutingEntry, len(routing))
	for event, entry := range routing {
		migrated := entry.Clone()
		if migrated.Route != nil {
			if migrated.Route.To != "" {
				if next, ok := sequentialTarget(event, migrated.Route.To, owners, oldPages, newPages); ok {
					if next != migrated.Route.To {
						stats.Sequential++
					}
					migrated.Route.To = next
				} else if mapped, ok := pathMap[migrated.Route.To]; ok {
					migrated.Route.To = mapped
					stats.Custom++
				}
				// No mapping means the target page is gone; the dangling
				// value stays for the Validator.
			}
			for i, condition := range migrated.Route.Conditions {
				if mapped, ok := pathMap[condition.Target]; ok {
					migrated.Route.Conditions[i].Target = mapped
					stats.Custom++
				}
			}
		}
		out[event] = migrated
	}
	return out, stats
}

// buildPathMap maps old path to new path for every page present in both
// collections whose path changed.
func buildPathMap(oldPages, newPages *PageMap) map[string]string {
	pathMap := make(map[string]string)
	if oldPages == nil || newPages == nil {
		return pathMap
	}
	for pair := oldPages.Oldest(); pair != nil; pair = pair.Next() {
		after, ok := newPages.Get(pair.Key)
		if !ok {
			continue
		}
		if pair.Value.Path != after.Path {
			pathMap[pair.Value.Path] = after.Path
		}
	}
	return pathMap
}

// buildOwnerMap derives event ownership from page data: an event is owned by
// the first page in collection order using the event name as a data value.
func buildOwnerMap(pages *PageMap, routing map[string]RoutingEntry) map[string]string {
	owners := make(map[string]string, len(routing))
	if pages == nil {
		return owners
	}
	for pair := pages.Oldest(); pair != nil; pair = pair.Next() {
		for _, value := range pair.Value.Data {
			name, ok := value.(string)
			if !ok {
				continue
			}
			if _, isEvent := routing[name]; !isEvent {
				continue
			}
			if _, claimed := owners[name]; !claimed {
				owners[name] = pair.Key
			}
		}
	}
	return owners
}

// sequentialTarget resolves the owner-successor rewrite for a route target.
// It reports false when the sequential rule does not apply: the event has no
// owner, the owner is missing from either collection, or the target was not
// the owner's immediate successor at edit time.
func sequentialTarget(event, to string, owners map[string]string, oldPages, newPages *PageMap) (string, bool) {
	ownerKey, ok := owners[event]
	if !ok {
		return "", false
	}
	oldOwner, ok := oldPages.Get(ownerKey)
	if !ok {
		return "", false
	}
	newOwner, ok := newPages.Get(ownerKey)
	if !ok {
		return "", false
	}
	oldPath, err := strconv.Atoi(oldOwner.Path)
	if err != nil {
		return "", false
	}
	if to != strconv.Itoa(oldPath+1) {
		return "", false
	}
	newPath, err := strconv.Atoi(newOwner.Path)
	if err != nil {
		return "", false
	}
	return strconv.Itoa(newPath + 1), true
}
