package main

import (
	"encoding/json"
	"os"

	agoraapi "agora/pkg/agora"

	"agora/internal/strategy"
)

func loadRunRequestFromConfig(path string) (agoraapi.RunRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return agoraapi.RunRequest{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return agoraapi.RunRequest{}, err
	}

	var req agoraapi.RunRequest
	if v, ok := asInt(raw["width"]); ok {
		req.Width = v
	}
	if v, ok := asInt(raw["height"]); ok {
		req.Height = v
	}
	if v, ok := asString(raw["mode"]); ok {
		req.Mode = v
	}
	if v, ok := asStringSlice(raw["catalog"]); ok {
		req.Catalog = v
	}
	if v, ok := asString(raw["set"]); ok {
		catalog, err := catalogFromSet(v)
		if err != nil {
			return agoraapi.RunRequest{}, err
		}
		req.Catalog = catalog
	}
	if v, ok := asFloat64(raw["temptation"]); ok {
		req.Temptation = v
	}
	if v, ok := asInt(raw["rounds_per_match"]); ok {
		req.RoundsPerMatch = v
	}
	if v, ok := asInt(raw["max_generations"]); ok {
		req.MaxGenerations = v
	}
	if v, ok := asInt(raw["stability_window"]); ok {
		req.StabilityWindow = v
	}
	if v, ok := asInt64(raw["seed"]); ok {
		req.Seed = v
	}
	if v, ok := asInt(raw["workers"]); ok {
		req.Workers = v
	}
	return req, nil
}

func catalogFromSet(name string) ([]string, error) {
	return strategy.Set(name)
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asStringSlice(v any) ([]string, bool) {
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		return int64(x), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}
