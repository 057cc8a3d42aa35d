package local

import (
	"fmt"
	"math"
	"os"
	"reflect"
)

// FileMode converts a configuration value into permission bits. Any Go
// integer kind, integral floats (as decoded from JSON) and os.FileMode are
// accepted.
func FileMode(v any) (os.FileMode, error) {
	n, err := Int(v)
	if err != nil {
		return 0, err
	}
	if n < 0 || n > math.MaxUint32 {
		return 0, fmt.Errorf("permission bits out of range: %d", n)
	}
	return os.FileMode(n), nil
}

// Int converts a configuration value into an int64
func Int(v any) (int64, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, fmt.Errorf("integer out of range: %d", u)
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f != math.Trunc(f) {
			return 0, fmt.Errorf("not an integer: %v", f)
		}
		return int64(f), nil
	}
	return 0, fmt.Errorf("not an integer: %v (%T)", v, v)
}
