package chunking

import "strings"

// providerDefault is the table key for a provider's fallback limit.
const providerDefault = "*"

// contextLimits holds per-request context windows by provider and model.
// Models are matched exactly first, then by longest prefix.
var contextLimits = map[string]map[string]int{
	"openai": {
		"gpt-4o":        128000,
		"gpt-4o-mini":   128000,
		"gpt-4-turbo":   128000,
		"gpt-4.1":       1047576,
		"gpt-4":         8192,
		"gpt-3.5-turbo": 16385,
		providerDefault: 16385,
	},
	"anthropic": {
		"claude-3-haiku":    200000,
		"claude-3-sonnet":   200000,
		"claude-3-opus":     200000,
		"claude-3-5-sonnet": 200000,
		"claude-3-5-haiku":  200000,
		"claude-2":          100000,
		providerDefault:     100000,
	},
	"gemini": {
		"gemini-1.5-pro":   2097152,
		"gemini-1.5-flash": 1048576,
		"gemini-2.0-flash": 1048576,
		"gemini-2.5-flash": 1048576,
		"gemini-2.5-pro":   1048576,
		providerDefault:    32768,
	},
}

func mergeLimits(overrides map[string]map[string]int) map[string]map[string]int {
	out := make(map[string]map[string]int, len(contextLimits)+len(overrides))
	for p, models := range contextLimits {
		out[p] = make(map[string]int, len(models))
		for m, v := range models {
			out[p][m] = v
		}
	}
	for p, models := range overrides {
		p = strings.ToLower(p)
		if out[p] == nil {
			out[p] = make(map[string]int, len(models))
		}
		for m, v := range models {
			if v > 0 {
				out[p][strings.ToLower(m)] = v
			}
		}
	}
	return out
}

func lookupLimit(limits map[string]map[string]int, provider, model string, fallback int) int {
	models, ok := limits[strings.ToLower(provider)]
	if !ok {
		return fallback
	}

	model = strings.ToLower(model)
	if v, ok := models[model]; ok {
		return v
	}

	best, bestLen := 0, 0
	for name, v := range models {
		if name != providerDefault && strings.HasPrefix(model, name) && len(name) > bestLen {
			best, bestLen = v, len(name)
		}
	}
	if bestLen > 0 {
		return best
	}
	if v, ok := models[providerDefault]; ok {
		return v
	}
	return fallback
}
