package messaging

import (
	"encoding/json"
	"fmt"
)

// Encode serializes msg as a JSON object tagged with its "type"
func Encode(msg Message) ([]byte, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	tag, err := json.Marshal(msg.Kind())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	fields["type"] = tag

	return json.Marshal(fields)
}

// Decode parses a tagged JSON object into its typed message
func Decode(data []byte) (Message, error) {
	var head struct {
		Type Kind `json:"type"`
	}

	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	var msg Message

	switch head.Type {
	case KindLinksDetected:
		var m LinksDetected
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}

		msg = m
	case KindGetPolicyLinks:
		msg = GetPolicyLinks{}
	case KindRescanPage:
		msg = RescanPage{}
	case KindAnalyzePolicy:
		var m AnalyzePolicy
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}

		msg = m
	case KindGetAICapabilities:
		msg = GetAICapabilities{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessageType, head.Type)
	}

	return msg, nil
}
