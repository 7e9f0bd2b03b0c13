package llm

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

var (
	reLineComment   = regexp.MustCompile(`(?m)//.*$`)
	reTrailingComma = regexp.MustCompile(`,\s*([}\]])`)
	reSingleQuoteKey = regexp.MustCompile(`'([A-Za-z0-9_]+)'\s*:\s*`)

	// scrape patterns for the known field names, used as the last resort when
	// the answer is not parseable JSON at all.
	reScrapeString = regexp.MustCompile(`"([a-z_0-9]+)"\s*:\s*"([^"]*)"`)
	reScrapeNumber = regexp.MustCompile(`"([a-z_0-9]+)"\s*:\s*(-?[0-9][0-9,]*\.?[0-9]*)`)
)

// ParseCompletion turns the completion service's raw answer into a field
// mapping. It isolates the first '{' .. last '}' span, parses strictly, then
// retries once after a bounded set of repairs (strip // comments, trailing
// commas, single-quoted keys), and finally falls back to scraping known
// field names out of the text. Returns ok=false only when no value for any
// known field can be located.
func ParseCompletion(raw string, knownFields []string) (map[string]any, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "I apologize") || strings.HasPrefix(raw, "I cannot") {
		return nil, false
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return scrapeKnownFields(raw, knownFields)
	}
	jsonText := raw[start : end+1]

	var m map[string]any
	if err := json.Unmarshal([]byte(jsonText), &m); err == nil {
		return normalizeSentinels(m), len(m) > 0
	}

	// one repair pass, then re-parse
	repaired := reLineComment.ReplaceAllString(jsonText, "")
	repaired = reTrailingComma.ReplaceAllString(repaired, "$1")
	repaired = reSingleQuoteKey.ReplaceAllString(repaired, `"$1": `)
	if err := json.Unmarshal([]byte(repaired), &m); err == nil {
		return normalizeSentinels(m), len(m) > 0
	}

	return scrapeKnownFields(raw, knownFields)
}

// normalizeSentinels removes placeholder values the prompt contract allows the
// model to emit for missing data, so no sentinel strings reach the data model.
func normalizeSentinels(m map[string]any) map[string]any {
	for k, v := range m {
		s, ok := v.(string)
		if !ok {
			continue
		}
		t := strings.TrimSpace(s)
		if t == "" || t == NotFoundSentinel || strings.EqualFold(t, "null") ||
			strings.EqualFold(t, "not found") || strings.EqualFold(t, "n/a") {
			delete(m, k)
		}
	}
	return m
}

func scrapeKnownFields(text string, knownFields []string) (map[string]any, bool) {
	known := make(map[string]struct{}, len(knownFields))
	for _, f := range knownFields {
		known[f] = struct{}{}
	}

	result := make(map[string]any)
	for _, match := range reScrapeNumber.FindAllStringSubmatch(text, -1) {
		key := match[1]
		if _, ok := known[key]; !ok {
			continue
		}
		if f, err := strconv.ParseFloat(strings.ReplaceAll(match[2], ",", ""), 64); err == nil {
			if _, exists := result[key]; !exists {
				result[key] = f
			}
		}
	}
	for _, match := range reScrapeString.FindAllStringSubmatch(text, -1) {
		key := match[1]
		if _, ok := known[key]; !ok {
			continue
		}
		if _, exists := result[key]; !exists {
			result[key] = match[2]
		}
	}

	if len(result) == 0 {
		return nil, false
	}
	return normalizeSentinels(result), true
}
