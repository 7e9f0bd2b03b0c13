// Package tax computes old and new regime liabilities from year ledgers and
// recommends the cheaper regime. Statutory figures live in an embedded
// parameter file so the bracket walk itself stays year-agnostic.
package tax

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed params.yaml
var paramsYAML []byte

// Slab is one marginal bracket. UpTo is the taxable income ceiling of the
// bracket; zero means unbounded (the top bracket).
type Slab struct {
	UpTo float64 `yaml:"up_to"`
	Rate float64 `yaml:"rate"`
}

// RegimeParams is the slab schedule and standard deduction of one regime.
type RegimeParams struct {
	StandardDeduction float64 `yaml:"standard_deduction"`
	Slabs             []Slab  `yaml:"slabs"`
}

// YearParams bundles both regimes and the year's caps and rates.
type YearParams struct {
	OldRegime          RegimeParams `yaml:"old_regime"`
	NewRegime          RegimeParams `yaml:"new_regime"`
	Cap80C             float64      `yaml:"cap_80c"`
	Cap80CCD1B         float64      `yaml:"cap_80ccd_1b"`
	SurchargeThreshold float64      `yaml:"surcharge_threshold"`
	SurchargeRate      float64      `yaml:"surcharge_rate"`
	CessRate           float64      `yaml:"cess_rate"`
}

type paramsFile struct {
	Years map[string]YearParams `yaml:"years"`
}

var (
	loadOnce   sync.Once
	loadedYrs  map[string]YearParams
	loadFailed error
)

func load() {
	var pf paramsFile
	if err := yaml.Unmarshal(paramsYAML, &pf); err != nil {
		loadFailed = fmt.Errorf("parse embedded tax params: %w", err)
		return
	}
	if len(pf.Years) == 0 {
		loadFailed = fmt.Errorf("embedded tax params define no years")
		return
	}
	loadedYrs = pf.Years
}

// ParamsFor returns the statutory parameters for a financial year.
func ParamsFor(year string) (YearParams, error) {
	loadOnce.Do(load)
	if loadFailed != nil {
		return YearParams{}, loadFailed
	}
	p, ok := loadedYrs[year]
	if !ok {
		return YearParams{}, fmt.Errorf("no tax parameters for year %q", year)
	}
	return p, nil
}

// Years lists the financial years with parameters, ascending.
func Years() []string {
	loadOnce.Do(load)
	out := make([]string, 0, len(loadedYrs))
	for y := range loadedYrs {
		out = append(out, y)
	}
	sort.Strings(out)
	return out
}
