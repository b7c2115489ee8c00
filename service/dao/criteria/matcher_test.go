package criteria

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viant/stepgate/service/dao"
)

func TestMatches(t *testing.T) {
	attributes := map[string]string{
		"tenantId": "acme",
		"runId":    "run-1",
	}

	testCases := []struct {
		name       string
		parameters []*dao.Parameter
		expect     bool
	}{
		{name: "no filters", parameters: nil, expect: true},
		{name: "single match", parameters: []*dao.Parameter{dao.NewParameter("tenantId", "acme")}, expect: true},
		{name: "single mismatch", parameters: []*dao.Parameter{dao.NewParameter("tenantId", "globex")}, expect: false},
		{name: "multi-value match", parameters: []*dao.Parameter{dao.NewParameter("runId", "run-0", "run-1")}, expect: true},
		{name: "multi-value mismatch", parameters: []*dao.Parameter{dao.NewParameter("runId", "run-0", "run-2")}, expect: false},
		{name: "unknown name is ignored", parameters: []*dao.Parameter{dao.NewParameter("stepId", "step-1")}, expect: true},
		{
			name: "all filters must match",
			parameters: []*dao.Parameter{
				dao.NewParameter("tenantId", "acme"),
				dao.NewParameter("runId", "run-2"),
			},
			expect: false,
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expect, Matches(attributes, testCase.parameters))
		})
	}
}
