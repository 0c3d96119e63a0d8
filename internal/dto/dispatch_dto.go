package dto

import "encoding/json"

// Dispatch stages spoken by the upstream main-service. Kept for wire
// compatibility with its single stage-routed endpoint.
const (
	StageInitialize     = "initialize"
	StageGetNextContent = "get_next_content"
	StageAnswerQuestion = "answer_question"
	StageGetSession     = "get_session"
	StageCancel         = "cancel"
)

type DispatchRequest struct {
	Stage   string                 `json:"stage" validate:"required"`
	Payload map[string]interface{} `json:"payload" validate:"required"`
}

// Int64Field reads an integer payload field, accepting any of the given
// keys. The upstream sends both snake_case and camelCase variants.
func (r *DispatchRequest) Int64Field(keys ...string) (int64, bool) {
	for _, key := range keys {
		v, ok := r.Payload[key]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return int64(n), true
		case json.Number:
			if i, err := n.Int64(); err == nil {
				return i, true
			}
		case int64:
			return n, true
		}
	}
	return 0, false
}

// StringField reads a string payload field, accepting any of the given keys.
func (r *DispatchRequest) StringField(keys ...string) (string, bool) {
	for _, key := range keys {
		if v, ok := r.Payload[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s, true
			}
		}
	}
	return "", false
}
