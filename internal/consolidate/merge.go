package consolidate

import (
	"encoding/json"
	"fmt"
	"math"
)

// Edge groups every fragment edge between one ordered (source, target) pair.
type Edge struct {
	Source    string      `json:"source"`
	Target    string      `json:"target"`
	Edges     []EdgeEntry `json:"edges"`
	AvgWeight float64     `json:"avg_weight"`
}

type EdgeEntry struct {
	EdgeID       string `json:"edge_id"`
	Relationship string `json:"relationship"`
	Weight       any    `json:"weight"`
}

// mergeByID keeps the first item seen for every id. Items without an id share
// one key, so only the first of them survives.
func mergeByID(items []map[string]any) []map[string]any {
	seen := make(map[string]bool)
	var out []map[string]any
	for _, item := range items {
		key := idKey(item)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}

// mergePeople folds records sharing an id into the first one: lists are
// concatenated without duplicates, objects gain missing keys, and a falsy
// scalar is replaced by a truthy one. Everything else keeps the first value.
func mergePeople(people []map[string]any) []map[string]any {
	index := make(map[string]int)
	var out []map[string]any
	for _, person := range people {
		key := idKey(person)
		i, ok := index[key]
		if !ok {
			index[key] = len(out)
			out = append(out, person)
			continue
		}

		existing := out[i]
		for k, v := range person {
			if k == "id" {
				continue
			}
			cur, ok := existing[k]
			if !ok {
				existing[k] = v
				continue
			}

			curList, curIsList := cur.([]any)
			newList, newIsList := v.([]any)
			curMap, curIsMap := cur.(map[string]any)
			newMap, newIsMap := v.(map[string]any)
			switch {
			case curIsList && newIsList:
				existing[k] = dedupList(append(append([]any{}, curList...), newList...))
			case curIsMap && newIsMap:
				for sk, sv := range newMap {
					if _, ok := curMap[sk]; !ok {
						curMap[sk] = sv
					}
				}
			case !truthy(cur) && truthy(v):
				existing[k] = v
			}
		}
	}
	return out
}

// mergeEdges groups edges by (source, target) in first-seen order and
// averages their weights. Missing fields default to an empty id, relationship
// "unknown" and weight 1.
func mergeEdges(edges []map[string]any) []Edge {
	type pair struct{ source, target string }
	index := make(map[pair]int)
	var out []Edge
	var sums []float64

	for _, e := range edges {
		p := pair{source: stringOf(e["source"]), target: stringOf(e["target"])}
		i, ok := index[p]
		if !ok {
			i = len(out)
			index[p] = i
			out = append(out, Edge{Source: p.source, Target: p.target})
			sums = append(sums, 0)
		}

		entry := EdgeEntry{EdgeID: "", Relationship: "unknown", Weight: json.Number("1")}
		if v, ok := e["edge_id"].(string); ok {
			entry.EdgeID = v
		}
		if v, ok := e["relationship"].(string); ok {
			entry.Relationship = v
		}
		if v, ok := e["weight"]; ok && v != nil {
			entry.Weight = v
		}
		out[i].Edges = append(out[i].Edges, entry)
		sums[i] += numberOf(entry.Weight)
	}

	for i := range out {
		out[i].AvgWeight = round2(sums[i] / float64(len(out[i].Edges)))
	}
	return out
}

func dedupList(items []any) []any {
	seen := make(map[string]bool)
	out := make([]any, 0, len(items))
	for _, item := range items {
		key := canonicalKey(item)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}

// canonicalKey encodes v with sorted object keys so structurally equal values
// compare equal.
func canonicalKey(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%#v", v)
	}
	return string(data)
}

func idKey(item map[string]any) string {
	v, ok := item["id"]
	if !ok || v == nil {
		return ""
	}
	return canonicalKey(v)
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case float64:
		return t != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

func stringOf(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func numberOf(v any) float64 {
	switch t := v.(type) {
	case json.Number:
		f, _ := t.Float64()
		return f
	case float64:
		return t
	case int:
		return float64(t)
	default:
		return 0
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
