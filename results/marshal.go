package results

import "encoding/json"

type wireDocument struct {
	RunAt   string                     `json:"run_at"`
	CPU     string                     `json:"cpu"`
	Results map[string]json.RawMessage `json:"results"`
}

// MarshalJSON writes the document back into the runner's wire layout.
// Category keys come out sorted; labels inside each category keep their
// insertion order, so Load(Marshal(doc)) reproduces the same tree.
func (d *Document) MarshalJSON() ([]byte, error) {
	out := wireDocument{
		RunAt:   d.Meta.RunAt,
		CPU:     d.Meta.CPU,
		Results: make(map[string]json.RawMessage, len(d.Tree.Categories)+1),
	}

	for category, group := range d.Tree.Categories {
		msg, err := json.Marshal(group)
		if err != nil {
			return nil, err
		}

		out.Results[category] = msg
	}

	if d.Tree.Sweep != nil {
		msg, err := marshalSweep(d.Tree.Sweep)
		if err != nil {
			return nil, err
		}

		out.Results[CategorySweep] = msg
	}

	return json.Marshal(out)
}

// marshalSweep pivots the label-major sweep back into the wire layout
// of interface -> mode -> label -> runs.
func marshalSweep(sweep Sweep) ([]byte, error) {
	wire := make(map[string]map[string]VariantGroup, len(sweep))

	for iface, entry := range sweep {
		modes := make(map[string]VariantGroup, len(ThreadingModes))

		for _, mode := range ThreadingModes {
			group := VariantGroup{Sets: make(map[string]RunSet)}

			for _, label := range entry.Labels {
				if set, ok := entry.Runs[label][mode]; ok {
					group.Labels = append(group.Labels, label)
					group.Sets[label] = set
				}
			}

			if len(group.Labels) > 0 {
				modes[mode] = group
			}
		}

		wire[iface] = modes
	}

	return json.Marshal(wire)
}
