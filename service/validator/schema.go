package validator

// JSON schema documents for the step envelopes. They are defined as plain
// maps (rather than embedded files) so the partial builder-time variants can
// be derived mechanically by stripping required lists.

type object = map[string]interface{}

var artifactRefSchema = object{
	"type":     "object",
	"required": []interface{}{"kind"},
	"properties": object{
		"kind": object{"type": "string", "enum": []interface{}{"pointer", "inline"}},
		"pointer": object{
			"type":     "object",
			"required": []interface{}{"uri", "contentType", "sizeBytes", "hash"},
			"properties": object{
				"uri":         object{"type": "string", "minLength": 1},
				"contentType": object{"type": "string"},
				"sizeBytes":   object{"type": "integer", "minimum": 0},
				"hash":        object{"type": "string", "pattern": "^[a-fA-F0-9]{64}$"},
				"preview":     object{"type": "string", "maxLength": 4096},
			},
		},
		"inline": object{
			"type":     "object",
			"required": []interface{}{"content", "contentType"},
			"properties": object{
				"content":     object{"type": "string", "maxLength": 65536},
				"contentType": object{"type": "string"},
				"hash":        object{"type": "string", "pattern": "^[a-fA-F0-9]{64}$"},
			},
		},
	},
}

var stepInputSchema = object{
	"type": "object",
	"required": []interface{}{
		"runId", "stepId", "tenantId", "stepType", "riskMode",
		"capabilitiesMode", "queuedAt", "attemptNumber", "maxAttempts",
	},
	"properties": object{
		"runId":    object{"type": "string", "minLength": 1},
		"stepId":   object{"type": "string", "minLength": 1},
		"tenantId": object{"type": "string", "minLength": 1},
		"repository": object{
			"type":     "object",
			"required": []interface{}{"owner", "name"},
			"properties": object{
				"owner":         object{"type": "string", "minLength": 1},
				"name":          object{"type": "string", "minLength": 1},
				"defaultBranch": object{"type": "string"},
				"cloneUrl":      object{"type": "string"},
			},
		},
		"pullRequest": object{
			"type":     "object",
			"required": []interface{}{"number"},
			"properties": object{
				"number":     object{"type": "integer", "minimum": 1},
				"headBranch": object{"type": "string"},
				"baseBranch": object{"type": "string"},
				"url":        object{"type": "string"},
			},
		},
		"issue": object{
			"type":     "object",
			"required": []interface{}{"number"},
			"properties": object{
				"number": object{"type": "integer", "minimum": 1},
				"title":  object{"type": "string"},
				"labels": object{"type": "array", "items": object{"type": "string"}},
				"url":    object{"type": "string"},
			},
		},
		"stepType": object{
			"type": "string",
			"enum": []interface{}{"triage", "plan", "code", "resolve", "review", "apply"},
		},
		"riskMode": object{
			"type": "string",
			"enum": []interface{}{"conservative", "standard", "aggressive"},
		},
		"capabilitiesMode": object{
			"type": "string",
			"enum": []interface{}{"readOnly", "propose", "full"},
		},
		"previousOutput": object{"type": "object"},
		"artifacts": object{
			"type":                 "object",
			"additionalProperties": artifactRefSchema,
		},
		"model": object{
			"type": "object",
			"properties": object{
				"provider":    object{"type": "string"},
				"model":       object{"type": "string"},
				"maxTokens":   object{"type": "integer", "minimum": 0},
				"temperature": object{"type": "number", "minimum": 0, "maximum": 2},
			},
		},
		"params":        object{"type": "object"},
		"queuedAt":      object{"type": "string"},
		"attemptNumber": object{"type": "integer", "minimum": 1},
		"maxAttempts":   object{"type": "integer", "minimum": 1},
	},
}

var stepOutputSchema = object{
	"type":     "object",
	"required": []interface{}{"runId", "stepId", "resultCode", "summary", "timing"},
	"properties": object{
		"runId":  object{"type": "string", "minLength": 1},
		"stepId": object{"type": "string", "minLength": 1},
		"resultCode": object{
			"type": "string",
			"enum": []interface{}{"ok", "retryable", "fatal", "blocked", "skipped"},
		},
		"summary": object{"type": "string", "minLength": 1},
		"data":    object{"type": "object"},
		"error": object{
			"type":     "object",
			"required": []interface{}{"message"},
			"properties": object{
				"code":    object{"type": "string"},
				"message": object{"type": "string", "minLength": 1},
				"detail":  object{"type": "string"},
			},
		},
		"artifacts": object{
			"type":                 "object",
			"additionalProperties": artifactRefSchema,
		},
		"timing": object{
			"type":     "object",
			"required": []interface{}{"startedAt", "completedAt", "durationMs"},
			"properties": object{
				"startedAt":   object{"type": "string"},
				"completedAt": object{"type": "string"},
				"durationMs":  object{"type": "integer", "minimum": 0},
				"phases": object{
					"type":                 "object",
					"additionalProperties": object{"type": "integer", "minimum": 0},
				},
			},
		},
		"cost": object{
			"type":     "object",
			"required": []interface{}{"tokens"},
			"properties": object{
				"model":    object{"type": "string"},
				"provider": object{"type": "string"},
				"tokens": object{
					"type":     "object",
					"required": []interface{}{"input", "output", "total"},
					"properties": object{
						"input":  object{"type": "integer", "minimum": 0},
						"output": object{"type": "integer", "minimum": 0},
						"total":  object{"type": "integer", "minimum": 0},
					},
				},
				"estimatedUsd": object{"type": "number", "minimum": 0},
			},
		},
		"nextStep": object{
			"type": "string",
			"enum": []interface{}{"triage", "plan", "code", "resolve", "review", "apply"},
		},
		"requiresApproval": object{"type": "boolean"},
		"proposedChanges": object{
			"type": "array",
			"items": object{
				"type":     "object",
				"required": []interface{}{"path", "operation"},
				"properties": object{
					"path":      object{"type": "string", "minLength": 1},
					"operation": object{"type": "string", "enum": []interface{}{"create", "modify", "delete"}},
					"patch":     object{"type": "string"},
					"summary":   object{"type": "string"},
				},
			},
		},
	},
}

// withoutRequired returns a deep copy of schema with every "required" list
// removed, so an incrementally-built envelope can be checked before it is
// complete without being rejected for missing fields.
func withoutRequired(schema object) object {
	out := make(object, len(schema))
	for key, value := range schema {
		if key == "required" {
			continue
		}
		switch typed := value.(type) {
		case object:
			out[key] = withoutRequired(typed)
		case []interface{}:
			items := make([]interface{}, len(typed))
			for i, item := range typed {
				if nested, ok := item.(object); ok {
					items[i] = withoutRequired(nested)
				} else {
					items[i] = item
				}
			}
			out[key] = items
		default:
			out[key] = value
		}
	}
	return out
}
