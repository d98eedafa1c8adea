package rules

import (
	"fmt"
	"html"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// Built-in rule identifiers.
const (
	RuleIsRequired   = "isRequired"
	RuleMinLength    = "minLength"
	RuleMaxLength    = "maxLength"
	RuleEquals       = "equals"
	RuleEqualsField  = "equalsField"
	RuleEqualsFields = "equalsFields"
	RuleIsEmail      = "isEmail"
	RuleIsNumber     = "isNumber"
	RuleMatchRegexp  = "matchRegexp"
	RuleIsPlainText  = "isPlainText"
)

var (
	emailPattern  = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)+$`)
	numberPattern = regexp.MustCompile(`^[-+]?(?:\d*[.])?\d+$`)

	patternCache sync.Map

	plainTextOnce   sync.Once
	plainTextPolicy *bluemonday.Policy
)

func (r *Registry) registerBuiltins() {
	_ = r.Add(RuleIsRequired, IsRequired, false)
	_ = r.Add(RuleMinLength, MinLength, false)
	_ = r.Add(RuleMaxLength, MaxLength, false)
	_ = r.Add(RuleEquals, Equals, false)
	_ = r.Add(RuleEqualsField, EqualsField, true)
	_ = r.Add(RuleEqualsFields, EqualsFields, true)
	_ = r.Add(RuleIsEmail, IsEmail, false)
	_ = r.Add(RuleIsNumber, IsNumber, false)
	_ = r.Add(RuleMatchRegexp, MatchRegexp, false)
	_ = r.Add(RuleIsPlainText, IsPlainText, false)
}

// IsRequired fails for nil and empty strings. false, 0 and empty
// collections count as present.
func IsRequired(_ map[string]any, value any, _ ...any) bool {
	return !isMissing(value)
}

// MinLength passes missing values and values at least args[0] long.
func MinLength(_ map[string]any, value any, args ...any) bool {
	if isMissing(value) {
		return true
	}
	limit, ok := intArg(args)
	if !ok {
		return false
	}
	n, ok := length(value)
	return ok && n >= limit
}

// MaxLength passes missing values and values at most args[0] long.
func MaxLength(_ map[string]any, value any, args ...any) bool {
	if isMissing(value) {
		return true
	}
	limit, ok := intArg(args)
	if !ok {
		return false
	}
	n, ok := length(value)
	return ok && n <= limit
}

// Equals compares value with args[0] without type coercion.
func Equals(_ map[string]any, value any, args ...any) bool {
	if len(args) == 0 {
		return false
	}
	return reflect.DeepEqual(value, args[0])
}

// EqualsField compares value with the current value of the field named by
// args[0].
func EqualsField(values map[string]any, value any, args ...any) bool {
	names := fieldNames(args)
	if len(names) != 1 {
		return false
	}
	other, ok := values[names[0]]
	return ok && reflect.DeepEqual(value, other)
}

// EqualsFields requires every named field to hold value.
func EqualsFields(values map[string]any, value any, args ...any) bool {
	names := fieldNames(args)
	if len(names) == 0 {
		return false
	}
	for _, name := range names {
		other, ok := values[name]
		if !ok || !reflect.DeepEqual(value, other) {
			return false
		}
	}
	return true
}

// IsEmail accepts strings shaped like local@domain.tld.
func IsEmail(_ map[string]any, value any, _ ...any) bool {
	str, ok := value.(string)
	return ok && emailPattern.MatchString(str)
}

// IsNumber accepts numeric Go values and decimal strings.
func IsNumber(_ map[string]any, value any, _ ...any) bool {
	switch typed := value.(type) {
	case string:
		return numberPattern.MatchString(typed)
	case float32:
		return !math.IsNaN(float64(typed))
	case float64:
		return !math.IsNaN(typed)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	default:
		return false
	}
}

// MatchRegexp passes missing values and strings matching args[0].
func MatchRegexp(_ map[string]any, value any, args ...any) bool {
	if isMissing(value) {
		return true
	}
	if len(args) == 0 {
		return false
	}
	pattern, ok := args[0].(string)
	if !ok {
		return false
	}
	re, err := compilePattern(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(fmt.Sprint(value))
}

// IsPlainText rejects strings carrying markup that a strict sanitizer would
// strip. Non-string values pass.
func IsPlainText(_ map[string]any, value any, _ ...any) bool {
	str, ok := value.(string)
	if !ok || str == "" {
		return true
	}
	return html.UnescapeString(plainTextSanitizer().Sanitize(str)) == str
}

func plainTextSanitizer() *bluemonday.Policy {
	plainTextOnce.Do(func() {
		plainTextPolicy = bluemonday.StrictPolicy()
	})
	return plainTextPolicy
}

func compilePattern(pattern string) (*regexp.Regexp, error) {
	if cached, ok := patternCache.Load(pattern); ok {
		return cached.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	patternCache.Store(pattern, re)
	return re, nil
}

func isMissing(value any) bool {
	if value == nil {
		return true
	}
	if str, ok := value.(string); ok {
		return str == ""
	}
	rv := reflect.ValueOf(value)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

func length(value any) (int, bool) {
	if str, ok := value.(string); ok {
		return utf8.RuneCountInString(str), true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len(), true
	default:
		return 0, false
	}
}

func intArg(args []any) (int, bool) {
	if len(args) == 0 {
		return 0, false
	}
	switch typed := args[0].(type) {
	case int:
		return typed, true
	case int64:
		return int(typed), true
	case float64:
		if typed != math.Trunc(typed) {
			return 0, false
		}
		return int(typed), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(typed))
		return n, err == nil
	default:
		return 0, false
	}
}
