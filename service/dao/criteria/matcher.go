package criteria

import (
	"github.com/viant/stepgate/service/dao"
)

// Matches evaluates the supplied List parameters against a record's named
// attributes. Unknown parameter names match everything so stores can ignore
// filters they do not index.
func Matches(attributes map[string]string, parameters []*dao.Parameter) bool {
	for _, parameter := range parameters {
		actual, ok := attributes[parameter.Name]
		if !ok {
			continue
		}
		switch expect := parameter.Value.(type) {
		case string:
			if actual != expect {
				return false
			}
		case []string:
			matched := false
			for _, candidate := range expect {
				if actual == candidate {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		}
	}
	return true
}
