package sankhya

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const genericSubmissionMessage = "order rejected by the ERP"

// orderIDPaths lists where ERP versions have placed the created order number, highest priority first.
var orderIDPaths = [][]string{
	{"retorno", "codigoPedido"},
	{"codigoPedido"},
	{"codigo"},
	{"nunota"},
	{"NUNOTA"},
	{"id"},
	{"data", "codigoPedido"},
	{"data", "nunota"},
	{"data", "NUNOTA"},
	{"data", "id"},
}

// NormalizeOrderResponse extracts the order identifier from a 2xx answer or returns a
// *SubmissionError when the body reports an error. found is false when no identifier
// was present although no error was reported.
func NormalizeOrderResponse(body []byte) (orderID string, found bool, err error) {
	doc := decodeDocument(body)
	if doc == nil {
		return "", false, nil
	}

	if failure := extractFailure(doc, 0); failure != nil {
		return "", false, failure
	}

	for _, path := range orderIDPaths {
		if id, ok := lookupString(doc, path); ok {
			return id, true, nil
		}
	}
	return "", false, nil
}

// SubmissionErrorFromResponse converts a non-2xx answer into a *SubmissionError.
func SubmissionErrorFromResponse(respErr *ResponseError) *SubmissionError {
	doc := decodeDocument(respErr.Body)
	if doc != nil {
		if failure := extractFailure(doc, respErr.StatusCode); failure != nil {
			return failure
		}
	}
	return buildSubmissionError(respErr.StatusCode, strconv.Itoa(respErr.StatusCode), "", "", "")
}

// extractFailure reports a failure when the document carries a numeric statusCode >= 400 or an
// error field. httpStatus is the transport status, 0 for 2xx answers.
func extractFailure(doc map[string]any, httpStatus int) *SubmissionError {
	statusCode := httpStatus
	if n, ok := asNumber(doc["statusCode"]); ok {
		statusCode = int(n)
	}
	errField := doc["error"]
	if statusCode < 400 && !present(errField) {
		return nil
	}

	var code, message, details string
	switch v := errField.(type) {
	case map[string]any:
		code = scalarString(v["code"])
		message = scalarString(v["message"])
		details = scalarString(v["details"])
	case string:
		message = v
	}
	statusMessage := scalarString(doc["statusMessage"])
	if message == "" {
		message = scalarString(doc["message"])
	}
	if code == "" && statusCode >= 400 {
		code = strconv.Itoa(statusCode)
	}
	return buildSubmissionError(statusCode, code, message, details, statusMessage)
}

// buildSubmissionError prefers details over message over a generic text and prefixes the code.
func buildSubmissionError(statusCode int, code, message, details, statusMessage string) *SubmissionError {
	text := details
	if text == "" {
		text = message
	}
	switch {
	case text != "" && code != "":
		text = fmt.Sprintf("[%s] %s", code, text)
	case text != "":
	case statusMessage != "":
		text = statusMessage
	default:
		text = genericSubmissionMessage
		if code != "" {
			text = fmt.Sprintf("[%s] %s", code, text)
		}
	}
	return &SubmissionError{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
		Details:    details,
		Text:       text,
	}
}

func decodeDocument(body []byte) map[string]any {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil
	}
	return doc
}

// lookupString follows path and returns a non-empty scalar. Zero, false and empty strings
// do not count as present.
func lookupString(doc map[string]any, path []string) (string, bool) {
	var cur any = doc
	for _, key := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return "", false
		}
		cur = obj[key]
	}
	switch v := cur.(type) {
	case json.Number:
		if f, err := v.Float64(); err != nil || f == 0 {
			return "", false
		}
		return v.String(), true
	case string:
		return v, strings.TrimSpace(v) != ""
	default:
		return "", false
	}
}

// present mirrors a truthiness check: null, false, "" and 0 are absent.
func present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	default:
		return true
	}
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func scalarString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}
