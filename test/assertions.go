package test

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/stretchr/testify/assert"

	"github.com/workshopstudio/taskapi/internal/tasks"
	"github.com/workshopstudio/taskapi/internal/types"
)

// Result is the outcome of a predicate. Message describes the failure when
// Pass is false and the negated expectation when Pass is true.
type Result struct {
	Pass    bool
	Message string
}

// IsValidAPIResponse reports whether v has a numeric statusCode, a headers
// object and a string body. v may be a proxy response, a map, or JSON.
func IsValidAPIResponse(v interface{}) Result {
	obj, ok := asObject(v)
	pass := ok &&
		isNumber(obj["statusCode"]) &&
		obj["headers"] != nil &&
		isString(obj["body"])
	if pass {
		return Result{Pass: true, Message: fmt.Sprintf("expected %s not to be a valid API Gateway response", describe(v))}
	}
	return Result{Message: fmt.Sprintf("expected %s to be a valid API Gateway response", describe(v))}
}

// HasCORSHeaders reports whether v carries Access-Control-Allow-Origin: *
func HasCORSHeaders(v interface{}) Result {
	pass := false
	if obj, ok := asObject(v); ok {
		if headers, ok := obj["headers"].(map[string]interface{}); ok {
			pass = headers[tasks.HeaderAllowOrigin] == tasks.AllowOriginAny
		}
	}
	if pass {
		return Result{Pass: true, Message: fmt.Sprintf("expected %s not to have CORS headers", describe(v))}
	}
	return Result{Message: fmt.Sprintf("expected %s to have CORS headers", describe(v))}
}

// IsValidTask reports whether v carries every required task field. Only the
// presence of a key is checked, never its value. A types.Task always passes.
func IsValidTask(v interface{}) Result {
	pass := false
	switch t := v.(type) {
	case types.Task:
		pass = true
	case *types.Task:
		pass = t != nil
	default:
		if keys, ok := objectKeys(v); ok {
			pass = true
			for _, field := range types.RequiredTaskFields {
				if _, found := keys[field]; !found {
					pass = false
					break
				}
			}
		}
	}
	if pass {
		return Result{Pass: true, Message: fmt.Sprintf("expected %s not to be a valid task object", describe(v))}
	}
	return Result{Message: fmt.Sprintf("expected %s to be a valid task object with fields: %s",
		describe(v), strings.Join(types.RequiredTaskFields, ", "))}
}

// AssertValidAPIResponse asserts that v is a valid API Gateway response
func AssertValidAPIResponse(t assert.TestingT, v interface{}, msgAndArgs ...interface{}) bool {
	return check(t, IsValidAPIResponse(v), msgAndArgs...)
}

// AssertCORSHeaders asserts that v allows any origin
func AssertCORSHeaders(t assert.TestingT, v interface{}, msgAndArgs ...interface{}) bool {
	return check(t, HasCORSHeaders(v), msgAndArgs...)
}

// AssertValidTask asserts that v is a valid task object
func AssertValidTask(t assert.TestingT, v interface{}, msgAndArgs ...interface{}) bool {
	return check(t, IsValidTask(v), msgAndArgs...)
}

// AssertNotValidTask asserts that v is not a valid task object
func AssertNotValidTask(t assert.TestingT, v interface{}, msgAndArgs ...interface{}) bool {
	r := IsValidTask(v)
	r.Pass = !r.Pass
	return check(t, r, msgAndArgs...)
}

func check(t assert.TestingT, r Result, msgAndArgs ...interface{}) bool {
	if h, ok := t.(interface{ Helper() }); ok {
		h.Helper()
	}
	if r.Pass {
		return true
	}
	return assert.Fail(t, r.Message, msgAndArgs...)
}

// asObject decodes v into a generic JSON object. Structs go through their
// JSON encoding so field names match the wire format.
func asObject(v interface{}) (map[string]interface{}, bool) {
	data, ok := asJSON(v)
	if !ok {
		return nil, false
	}
	var obj map[string]interface{}
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// objectKeys returns the keys of a map, a struct's JSON encoding or a JSON
// object. Values are not decoded so any value counts as present.
func objectKeys(v interface{}) (map[string]struct{}, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		if rv.IsNil() {
			return nil, false
		}
		keys := make(map[string]struct{}, rv.Len())
		for _, k := range rv.MapKeys() {
			keys[k.String()] = struct{}{}
		}
		return keys, true
	}

	data, ok := asJSON(v)
	if !ok {
		return nil, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return nil, false
	}
	keys := make(map[string]struct{}, len(obj))
	for k := range obj {
		keys[k] = struct{}{}
	}
	return keys, true
}

func asJSON(v interface{}) ([]byte, bool) {
	switch b := v.(type) {
	case nil:
		return nil, false
	case []byte:
		return b, true
	case json.RawMessage:
		return b, true
	case string:
		return []byte(b), true
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Ptr && rv.IsNil() {
		return nil, false
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, false
	}
	return data, true
}

func isNumber(v interface{}) bool {
	_, ok := v.(float64)
	return ok
}

func isString(v interface{}) bool {
	_, ok := v.(string)
	return ok
}

func describe(v interface{}) string {
	switch b := v.(type) {
	case []byte:
		return string(b)
	case json.RawMessage:
		return string(b)
	case string:
		return b
	}
	return fmt.Sprintf("%+v", v)
}
