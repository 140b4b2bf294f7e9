package staging

// AttributeNames names the point attributes written back for each staged
// node. An empty name skips that attribute.
type AttributeNames struct {
	Point       string
	ModuleIndex string
	AssetPath   string
	Unsolvable  string
}

// DefaultAttributeNames is the naming used when none is configured.
var DefaultAttributeNames = AttributeNames{
	Point:       "point",
	ModuleIndex: "ModuleIndex",
	AssetPath:   "AssetPath",
	Unsolvable:  "Unsolvable",
}

// Attributes renders the placements as one attribute map per point.
func (s *Staged) Attributes(names AttributeNames) []map[string]any {
	out := make([]map[string]any, len(s.Placements))
	for i, p := range s.Placements {
		row := make(map[string]any, 4)
		set := func(name string, v any) {
			if name != "" {
				row[name] = v
			}
		}
		set(names.Point, p.Point)
		set(names.ModuleIndex, p.Module)
		if p.IsPlaced() {
			set(names.AssetPath, p.Asset)
		}
		if p.Unsolvable {
			set(names.Unsolvable, true)
		}
		out[i] = row
	}
	return out
}
