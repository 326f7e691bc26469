// Package tester holds the few assertions the lighter tests need.
package tester

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

// describe renders msgAndArgs as a format string plus arguments.
func describe(msgAndArgs []any) string {
	if len(msgAndArgs) == 0 {
		return ""
	}
	format, ok := msgAndArgs[0].(string)
	if !ok {
		return fmt.Sprint(msgAndArgs...)
	}
	return fmt.Sprintf(format, msgAndArgs[1:]...) + ": "
}

// Eq fails unless got and want are deeply equal.
func Eq[T any](t testing.TB, got, want T, msgAndArgs ...any) {
	t.Helper()
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("%sgot=%#v want=%#v", describe(msgAndArgs), got, want)
	}
}

func True(t testing.TB, cond bool, msgAndArgs ...any) {
	t.Helper()
	if !cond {
		t.Fatalf("%sexpected true", describe(msgAndArgs))
	}
}

func False(t testing.TB, cond bool, msgAndArgs ...any) {
	t.Helper()
	if cond {
		t.Fatalf("%sexpected false", describe(msgAndArgs))
	}
}

func NoErr(t testing.TB, err error, msgAndArgs ...any) {
	t.Helper()
	if err != nil {
		t.Fatalf("%sunexpected error: %v", describe(msgAndArgs), err)
	}
}

// ErrIs fails unless errors.Is(err, target).
func ErrIs(t testing.TB, err, target error, msgAndArgs ...any) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("%serror %v is not %v", describe(msgAndArgs), err, target)
	}
}

// Contains fails unless s contains substr.
func Contains(t testing.TB, s, substr string, msgAndArgs ...any) {
	t.Helper()
	if !strings.Contains(s, substr) {
		t.Fatalf("%s%q does not contain %q", describe(msgAndArgs), s, substr)
	}
}
