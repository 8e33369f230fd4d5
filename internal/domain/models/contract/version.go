package contract

import (
	"time"
)

// Variables maps template field names to their values (JSON scalars, lists or objects)
type Variables map[string]interface{}

// Clone returns a deep copy so snapshots never share nested values with live state
func (v Variables) Clone() Variables {
	if v == nil {
		return Variables{}
	}
	out := make(Variables, len(v))
	for k, val := range v {
		out[k] = cloneValue(val)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, inner := range t {
			m[k] = cloneValue(inner)
		}
		return m
	case Variables:
		return t.Clone()
	case []interface{}:
		s := make([]interface{}, len(t))
		for i, inner := range t {
			s[i] = cloneValue(inner)
		}
		return s
	case []string:
		s := make([]string, len(t))
		copy(s, t)
		return s
	default:
		return t
	}
}

// ContractVersion is an immutable snapshot of the variables at one version
type ContractVersion struct {
	Version       int       `json:"version"`
	CreatedAt     time.Time `json:"created_at"`
	ModifiedBy    string    `json:"modified_by"`
	ChangedFields []string  `json:"changed_fields"`
	Variables     Variables `json:"variables"`
}

// Snapshot captures the contract's current variables as a version entry
func (c *Contract) Snapshot(modifiedBy string, changed []string, at time.Time) ContractVersion {
	fields := make([]string, len(changed))
	copy(fields, changed)
	return ContractVersion{
		Version:       c.Version,
		CreatedAt:     at,
		ModifiedBy:    modifiedBy,
		ChangedFields: fields,
		Variables:     c.Variables.Clone(),
	}
}
