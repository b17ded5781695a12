package worker

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// ErrUnparseable marks a queue payload that cannot be turned into a task.
// Such messages are acknowledged and dropped, never requeued.
var ErrUnparseable = errors.New("unparseable message payload")

// Task is the canonical descriptor decoded from a queue message.
type Task struct {
	OrderID string
}

// Normalize turns a raw message body into a Task. Producer/consumer
// version skew left several body shapes in the wild, so candidate parsers
// run in order and the first success wins:
//
//  1. JSON object with an order_id field
//  2. bare JSON integer
//  3. JSON string containing only digits
//  4. JSON string that is itself JSON-encoded, decoded once more
func Normalize(body []byte) (Task, error) {
	parsers := []func([]byte) (Task, bool){
		parseObject,
		parseInteger,
		parseDigitString,
		parseNested,
	}

	for _, parse := range parsers {
		if task, ok := parse(body); ok {
			return task, nil
		}
	}

	return Task{}, ErrUnparseable
}

func parseObject(body []byte) (Task, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return Task{}, false
	}

	raw, ok := fields["order_id"]
	if !ok {
		return Task{}, false
	}

	return scalarID(raw)
}

func parseInteger(body []byte) (Task, bool) {
	num, ok := decodeNumber(body)
	if !ok {
		return Task{}, false
	}

	return integralTask(num)
}

func parseDigitString(body []byte) (Task, bool) {
	var s string
	if err := json.Unmarshal(body, &s); err != nil {
		return Task{}, false
	}

	if s == "" || strings.IndexFunc(s, notDigit) >= 0 {
		return Task{}, false
	}

	return Task{OrderID: s}, true
}

// parseNested handles double-encoded bodies: a JSON string whose content
// is another JSON document. It decodes exactly once and accepts only an
// object result.
func parseNested(body []byte) (Task, bool) {
	var s string
	if err := json.Unmarshal(body, &s); err != nil {
		return Task{}, false
	}

	return parseObject([]byte(s))
}

// scalarID coerces an order_id field value, either a string or an
// integral number, into the identifier domain.
func scalarID(raw json.RawMessage) (Task, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return Task{}, false
		}
		return Task{OrderID: s}, true
	}

	num, ok := decodeNumber(raw)
	if !ok {
		return Task{}, false
	}

	return integralTask(num)
}

func decodeNumber(data []byte) (json.Number, bool) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var num json.Number
	if err := dec.Decode(&num); err != nil {
		return "", false
	}

	// Reject trailing garbage after the number.
	if dec.More() {
		return "", false
	}

	return num, true
}

func integralTask(num json.Number) (Task, bool) {
	if strings.ContainsAny(num.String(), ".eE") {
		return Task{}, false
	}

	return Task{OrderID: num.String()}, true
}

func notDigit(r rune) bool {
	return r < '0' || r > '9'
}
