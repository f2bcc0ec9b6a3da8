// Package yaml loads site rule sets from YAML configuration files.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/andybalholm/cascadia"
	"gopkg.in/yaml.v3"

	"pricewatch"
)

// ruleFile is the on-disk shape of a rule set.
//
//	rules:
//	  - name: snapdeal
//	    match: snapdeal
//	    selectors:
//	      - query: span.payBlkBig
type ruleFile struct {
	Rules []ruleConfig `yaml:"rules"`
}

type ruleConfig struct {
	Name      string           `yaml:"name"`
	Match     string           `yaml:"match"`
	Selectors []selectorConfig `yaml:"selectors"`
}

type selectorConfig struct {
	Query    string `yaml:"query"`
	Contains string `yaml:"contains"`
	Attr     string `yaml:"attr"`
}

// Parse decodes a YAML rule set. Unknown fields are rejected so typos in a
// rule file fail loudly instead of silently disabling a selector. Every
// selector query must parse as CSS; a rule set that cannot match anything
// is a configuration error, not a runtime one.
func Parse(data []byte) ([]pricewatch.SiteRule, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var file ruleFile
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, pricewatch.Errorf(pricewatch.EINVALID, "parse rules: %s", err)
	}
	if len(file.Rules) == 0 {
		return nil, pricewatch.Errorf(pricewatch.EINVALID, "rule file defines no rules")
	}

	rules := make([]pricewatch.SiteRule, 0, len(file.Rules))
	for _, rc := range file.Rules {
		rule := pricewatch.SiteRule{Name: rc.Name, Match: rc.Match}
		for _, sc := range rc.Selectors {
			rule.Selectors = append(rule.Selectors, pricewatch.Selector{
				Query:    sc.Query,
				Contains: sc.Contains,
				Attr:     sc.Attr,
			})
		}

		if err := rule.Validate(); err != nil {
			return nil, err
		}
		for _, sel := range rule.Selectors {
			if _, err := cascadia.Parse(sel.Query); err != nil {
				return nil, pricewatch.Errorf(pricewatch.EINVALID, "rule %q: invalid selector %q: %s", rule.Name, sel.Query, err)
			}
		}

		rules = append(rules, rule)
	}
	return rules, nil
}

// Load reads and parses the rule set at path.
func Load(path string) ([]pricewatch.SiteRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	rules, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}
