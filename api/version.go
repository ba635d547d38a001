package api

import (
	"encoding/json"

	"github.com/reclaimed/fyt-engine/probe"
)

// CoerceToVersion deep-copies the canonical (v5) envelope and applies the
// chain of per-version rewriters down to target, per SPEC_FULL.md §4.8.
// The canonical object is never mutated in place. Every target version
// returns the same generic JSON shape (slices as []any, numbers as float64).
func CoerceToVersion(env ResponseEnvelope, target int) (map[string]any, error) {
	if target > CurrentAPIVersion {
		return nil, &TargetAPIVersionTooHighError{Requested: target}
	}
	if target < minSupportedVersion {
		return nil, &TargetAPIVersionTooLowError{Requested: target}
	}
	if target == CurrentAPIVersion {
		return deepCopyMap(env)
	}

	keys := make([]map[string]any, 0, len(env.Keys))
	for _, r := range env.Keys {
		m, err := coerceResultToVersion(r, target)
		if err != nil {
			return nil, err
		}
		keys = append(keys, m)
	}
	return deepCopyMap(map[string]any{
		"id":          env.ID,
		"status":      env.Status,
		"keys":        keys,
		"verdict":     env.Verdict,
		"api_version": target,
	})
}

func deepCopyMap(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// coerceResultToVersion deep-copies a single ProbeResult into its generic
// wire representation and rewrites it down to target, applying each
// intervening version's transform in sequence (5→4→3→2).
func coerceResultToVersion(r probe.ProbeResult, target int) (map[string]any, error) {
	if target > CurrentAPIVersion {
		return nil, &TargetAPIVersionTooHighError{Requested: target}
	}
	if target < minSupportedVersion {
		return nil, &TargetAPIVersionTooLowError{Requested: target}
	}
	data, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}

	version := CurrentAPIVersion
	for version > target {
		switch version {
		case 5:
			downgrade5to4(m)
		case 4:
			// 4→3 is data-identical; version bump only.
		case 3:
			downgrade3to2(m)
		}
		version--
	}
	return m, nil
}

// downgrade5to4 computes capcount, re-derives metaonly/comments from the
// first link (if any), and flattens available to that link's URL — or null
// if there were no links — per SPEC_FULL.md §4.8.
func downgrade5to4(m map[string]any) {
	archived, _ := m["archived"].(bool)
	capcount := 0
	if archived {
		capcount = 1
	}
	m["capcount"] = capcount

	avail, _ := m["available"].([]any)
	if len(avail) == 0 {
		m["available"] = nil
		return
	}
	first, _ := avail[0].(map[string]any)
	contains, _ := first["contains"].(map[string]any)
	video, _ := contains["video"].(bool)
	comments, _ := contains["comments"].(bool)
	m["metaonly"] = !video
	m["comments"] = comments
	m["available"] = first["url"]
}

// downgrade3to2 flattens the string-or-null error field into a boolean,
// moving the original error text into rawraw, per SPEC_FULL.md §4.8.
func downgrade3to2(m map[string]any) {
	errVal, present := m["error"]
	if !present || errVal == nil || errVal == "" {
		m["error"] = false
		return
	}
	m["rawraw"] = errVal
	m["error"] = true
}

// CoerceStreamItem rewrites one streaming item down to target. It returns
// drop=true when the item must be omitted entirely — standalone Link items
// are dropped once the stream is downgraded below v5, since v4 and below
// flatten availability onto the ProbeResult itself.
func CoerceStreamItem(item probe.Item, target int) (value any, drop bool, err error) {
	switch {
	case item.NamesMap != nil:
		return item.NamesMap, false, nil
	case item.Link != nil:
		if target < CurrentAPIVersion {
			return nil, true, nil
		}
		return item.Link, false, nil
	case item.Result != nil:
		m, err := coerceResultToVersion(*item.Result, target)
		return m, false, err
	case item.Verdict != nil:
		return item.Verdict, false, nil
	default:
		return nil, false, nil
	}
}
