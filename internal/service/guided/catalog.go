package guided

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	contractModels "studioflow/internal/domain/models/contract"
)

//go:embed catalog/*.yaml
var catalogFiles embed.FS

// DefaultCatalog is the script used when none is named
const DefaultCatalog = "photography"

// Question is one scripted prompt
type Question struct {
	ID        string   `yaml:"id"`
	Field     string   `yaml:"field"`
	Prompt    string   `yaml:"prompt"`
	Type      string   `yaml:"type"`
	Options   []string `yaml:"options"`
	Default   string   `yaml:"default"`
	Required  bool     `yaml:"required"`
	Condition string   `yaml:"condition"`

	when Condition
}

// Applies reports whether the question should be asked given the values so far
func (q *Question) Applies(values contractModels.Variables) bool {
	if q.when == nil {
		return true
	}
	return q.when(values)
}

// Addon is an optional extra applied with "add <name>"
type Addon struct {
	Name        string                 `yaml:"-"`
	Description string                 `yaml:"description"`
	Set         map[string]interface{} `yaml:"set"`
	Clause      string                 `yaml:"clause"`
}

// Apply merges the addon's values and records it in the addon lists
func (a *Addon) Apply(values contractModels.Variables) {
	for k, v := range contractModels.Variables(a.Set).Clone() {
		values[k] = v
	}
	values[addonsField] = appendList(values[addonsField], a.Name)
	if a.Clause != "" {
		values[addonClausesField] = appendList(values[addonClausesField], a.Clause)
	}
}

// RiskCheck is one line of the review summary
type RiskCheck struct {
	Label string `yaml:"label"`
	When  string `yaml:"when"`

	pass Condition
}

// ContractTemplate describes the draft produced from a finished build
type ContractTemplate struct {
	Title      string `yaml:"title"`
	Body       string `yaml:"body"`
	ClientName string `yaml:"client_name_field"`
	ClientMail string `yaml:"client_email_field"`
	TermsField string `yaml:"terms_field"`
}

// addonList keeps addons in the order the YAML lists them
type addonList []Addon

// UnmarshalYAML decodes a name-keyed mapping while preserving key order
func (l *addonList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("addons must be a mapping, line %d", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		var addon Addon
		if err := node.Content[i+1].Decode(&addon); err != nil {
			return fmt.Errorf("addon %q: %w", node.Content[i].Value, err)
		}
		addon.Name = node.Content[i].Value
		*l = append(*l, addon)
	}
	return nil
}

// Catalog is a compiled question script
type Catalog struct {
	Name      string           `yaml:"name"`
	Intro     string           `yaml:"intro"`
	Questions []Question       `yaml:"questions"`
	Addons    addonList        `yaml:"addons"`
	Checks    []RiskCheck      `yaml:"risk_checks"`
	Contract  ContractTemplate `yaml:"contract"`
}

// LoadCatalog reads an embedded catalog by name
func LoadCatalog(name string) (*Catalog, error) {
	filename := fmt.Sprintf("catalog/%s.yaml", name)
	data, err := catalogFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	cat, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", filename, err)
	}
	return cat, nil
}

// ParseCatalog decodes and compiles a catalog document
func ParseCatalog(data []byte) (*Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("unmarshal catalog: %w", err)
	}
	if len(cat.Questions) == 0 {
		return nil, fmt.Errorf("catalog %q has no questions", cat.Name)
	}

	seen := map[string]bool{}
	for i := range cat.Questions {
		q := &cat.Questions[i]
		if q.Field == "" {
			return nil, fmt.Errorf("question %d has no field", i)
		}
		if q.ID == "" {
			q.ID = q.Field
		}
		if seen[q.ID] {
			return nil, fmt.Errorf("duplicate question id %q", q.ID)
		}
		seen[q.ID] = true
		if q.Type == "" {
			q.Type = TypeText
		}
		when, err := CompileCondition(q.Condition)
		if err != nil {
			return nil, fmt.Errorf("question %q: %w", q.ID, err)
		}
		q.when = when
	}

	for i := range cat.Checks {
		pass, err := CompileCondition(cat.Checks[i].When)
		if err != nil {
			return nil, fmt.Errorf("risk check %q: %w", cat.Checks[i].Label, err)
		}
		cat.Checks[i].pass = pass
	}

	return &cat, nil
}

// Addon finds an addon by name, ignoring case
func (c *Catalog) Addon(name string) (*Addon, bool) {
	name = strings.TrimSpace(name)
	for i := range c.Addons {
		if strings.EqualFold(c.Addons[i].Name, name) {
			return &c.Addons[i], true
		}
	}
	return nil, false
}

// AddonNames lists addon names in catalog order
func (c *Catalog) AddonNames() []string {
	names := make([]string, len(c.Addons))
	for i, a := range c.Addons {
		names[i] = a.Name
	}
	return names
}

// RiskSummary renders each check as a ✅ or ⚠️ line
func (c *Catalog) RiskSummary(values contractModels.Variables) []string {
	lines := make([]string, len(c.Checks))
	for i, check := range c.Checks {
		mark := "⚠️"
		if check.pass(values) {
			mark = "✅"
		}
		lines[i] = mark + " " + check.Label
	}
	return lines
}

func appendList(existing interface{}, item string) []interface{} {
	var out []interface{}
	switch t := existing.(type) {
	case []interface{}:
		out = append(out, t...)
	case []string:
		for _, s := range t {
			out = append(out, s)
		}
	}
	return append(out, item)
}
