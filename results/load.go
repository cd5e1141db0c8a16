package results

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cast"
)

// requiredRunFields lists what every run record must carry, checked in
// this order so failures name the outermost missing piece first.
var requiredRunFields = []string{
	"requests", "requests.total", "requests.rps",
	"latency", "latency.avg", "latency.max",
}

type rawDocument struct {
	RunAt   any                        `json:"run_at"`
	CPU     any                        `json:"cpu"`
	Results map[string]json.RawMessage `json:"results"`
}

// Load decodes a results document from r, validating every run record
// at the boundary: a run missing one of the required numeric fields, or
// carrying a non-numeric value in one, fails with MalformedResultError.
// Category presence is checked later, when the report is generated.
func Load(r io.Reader) (*Document, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw rawDocument
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode results document: %w", err)
	}

	doc := &Document{
		Meta: Metadata{
			RunAt: cast.ToString(raw.RunAt),
			CPU:   cast.ToString(raw.CPU),
		},
		Tree: Tree{
			Categories: make(map[string]VariantGroup, len(raw.Results)),
		},
	}

	for category, msg := range raw.Results {
		if category == CategorySweep {
			sweep, err := decodeSweep(msg)
			if err != nil {
				return nil, err
			}

			doc.Tree.Sweep = sweep

			continue
		}

		group, err := decodeGroup(category, msg)
		if err != nil {
			return nil, err
		}

		doc.Tree.Categories[category] = group
	}

	return doc, nil
}

func decodeGroup(path string, data []byte) (VariantGroup, error) {
	obj, err := decodeOrdered(data)
	if err != nil {
		return VariantGroup{}, fmt.Errorf("decode category %s: %w", path, err)
	}

	group := VariantGroup{
		Labels: obj.keys,
		Sets:   make(map[string]RunSet, len(obj.keys)),
	}

	for _, label := range obj.keys {
		set, err := decodeRunSet(path+"/"+label, obj.values[label])
		if err != nil {
			return VariantGroup{}, err
		}

		group.Sets[label] = set
	}

	return group, nil
}

func decodeRunSet(path string, data []byte) (RunSet, error) {
	var levels map[string]json.RawMessage
	if err := json.Unmarshal(data, &levels); err != nil {
		return nil, &MalformedResultError{
			Path: path, Reason: "run set is not an object",
		}
	}

	set := make(RunSet, len(levels))

	for level, msg := range levels {
		run, err := decodeRun(path+"/"+level, msg)
		if err != nil {
			return nil, err
		}

		set[level] = run
	}

	return set, nil
}

// decodeRun decodes one run record, converting missing or mistyped
// fields into MalformedResultError instead of leaving zero values
// behind. The decoder's metadata reports which fields went unset.
func decodeRun(path string, data []byte) (RunResult, error) {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return RunResult{}, &MalformedResultError{
			Path: path, Reason: "run record is not an object",
		}
	}

	if err := checkRunFields(path, fields); err != nil {
		return RunResult{}, err
	}

	var (
		run RunResult
		md  mapstructure.Metadata
	)

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:   &run,
		Metadata: &md,
	})
	if err != nil {
		return RunResult{}, fmt.Errorf("create run decoder: %w", err)
	}

	if err := dec.Decode(fields); err != nil {
		return RunResult{}, &MalformedResultError{
			Path: path, Reason: err.Error(),
		}
	}

	if missing := firstUnsetField(md.Unset); missing != "" {
		return RunResult{}, &MalformedResultError{Path: path, Field: missing}
	}

	return run, nil
}

// checkRunFields rejects values the decoder would wave through: a JSON
// null is "don't set" to it and would leave a silent zero behind, and a
// fractional request count would truncate. Absent fields are left for
// the decoder's unset report.
func checkRunFields(path string, fields map[string]any) error {
	for _, group := range []string{"requests", "latency"} {
		raw, ok := fields[group]
		if !ok {
			continue
		}

		if raw == nil {
			return &MalformedResultError{
				Path:   path,
				Reason: fmt.Sprintf("field %q is null", group),
			}
		}

		nested, ok := raw.(map[string]any)
		if !ok {
			// Wrong type, reported by the decoder.
			continue
		}

		for name, val := range nested {
			if val == nil {
				return &MalformedResultError{
					Path:   path,
					Reason: fmt.Sprintf("field %q is null", group+"."+name),
				}
			}
		}
	}

	if requests, ok := fields["requests"].(map[string]any); ok {
		if total, ok := requests["total"].(float64); ok {
			if total != math.Trunc(total) {
				return &MalformedResultError{
					Path: path,
					Reason: fmt.Sprintf(
						"field %q must be an integer, got %v",
						"requests.total", total,
					),
				}
			}
		}
	}

	return nil
}

// firstUnsetField maps the decoder's unset report onto the required
// field list, returning the first required field that was not present.
func firstUnsetField(unset []string) string {
	names := make(map[string]bool, len(unset))
	for _, name := range unset {
		names[strings.ToLower(name)] = true
	}

	for _, field := range requiredRunFields {
		if names[field] {
			return field
		}
	}

	return ""
}

// decodeSweep reads the concurrencies category. The wire layout nests
// interface -> mode -> label -> runs; the result is pivoted into the
// label-major SweepGroup shape the report iterates.
func decodeSweep(data []byte) (Sweep, error) {
	var ifaces map[string]json.RawMessage
	if err := json.Unmarshal(data, &ifaces); err != nil {
		return nil, &MalformedResultError{
			Path: CategorySweep, Reason: "sweep is not an object",
		}
	}

	sweep := make(Sweep, len(ifaces))

	for iface, modesMsg := range ifaces {
		var modes map[string]json.RawMessage
		if err := json.Unmarshal(modesMsg, &modes); err != nil {
			return nil, &MalformedResultError{
				Path:   CategorySweep + "/" + iface,
				Reason: "interface entry is not an object",
			}
		}

		entry := SweepGroup{Runs: make(map[string]map[string]RunSet)}

		for _, mode := range ThreadingModes {
			msg, ok := modes[mode]
			if !ok {
				continue
			}

			group, err := decodeGroup(
				CategorySweep+"/"+iface+"/"+mode, msg,
			)
			if err != nil {
				return nil, err
			}

			for _, label := range group.Labels {
				if _, seen := entry.Runs[label]; !seen {
					entry.Labels = append(entry.Labels, label)
					entry.Runs[label] = make(
						map[string]RunSet, len(ThreadingModes),
					)
				}

				entry.Runs[label][mode] = group.Sets[label]
			}
		}

		sweep[iface] = entry
	}

	return sweep, nil
}

type orderedObject struct {
	keys   []string
	values map[string]json.RawMessage
}

// decodeOrdered reads a JSON object keeping its key order, which
// encoding/json map decoding discards.
func decodeOrdered(data []byte) (*orderedObject, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	obj := &orderedObject{values: make(map[string]json.RawMessage)}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}

		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", keyTok)
		}

		var val json.RawMessage
		if err := dec.Decode(&val); err != nil {
			return nil, err
		}

		// A duplicate key keeps its first position but the last
		// value wins, matching plain JSON object decoding.
		if _, seen := obj.values[key]; !seen {
			obj.keys = append(obj.keys, key)
		}

		obj.values[key] = val
	}

	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	return obj, nil
}
