// Package envconfig reads devarray settings from the environment.
package envconfig

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/born-ml/devarray/internal/device"
	"github.com/born-ml/devarray/internal/device/host"
	"github.com/born-ml/devarray/internal/parallel"
)

// Var returns an environment variable stripped of surrounding whitespace
// and quotes.
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}

// BoolWithDefault returns a getter for a boolean variable. Values that do
// not parse count as set.
func BoolWithDefault(k string) func(defaultValue bool) bool {
	return func(defaultValue bool) bool {
		if s := Var(k); s != "" {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return true
			}
			return b
		}
		return defaultValue
	}
}

// Bool returns a getter for a boolean variable defaulting to false.
func Bool(k string) func() bool {
	withDefault := BoolWithDefault(k)
	return func() bool {
		return withDefault(false)
	}
}

// String returns a getter for a string variable.
func String(k string) func() string {
	return func() string {
		return Var(k)
	}
}

// Uint returns a getter for an unsigned variable. Invalid values log a
// warning and yield the default.
func Uint(key string, defaultValue uint) func() uint {
	return func() uint {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseUint(s, 10, 64); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return uint(n)
			}
		}
		return defaultValue
	}
}

// LogLevel maps DEVARRAY_DEBUG to a level: a true value selects debug,
// an integer n selects n*-4 (2 is trace).
func LogLevel() slog.Level {
	level := slog.LevelInfo
	if s := Var("DEVARRAY_DEBUG"); s != "" {
		if b, _ := strconv.ParseBool(s); b {
			level = slog.LevelDebug
		} else if i, _ := strconv.ParseInt(s, 10, 64); i != 0 {
			level = slog.Level(i * -4)
		}
	}
	return level
}

// Device names the driver to open: "host" (default) or "webgpu".
func Device() string {
	if s := strings.ToLower(Var("DEVARRAY_DEVICE")); s != "" {
		return s
	}
	return host.Name
}

var (
	// PoolMaxPerBucket bounds the buffers the pool retains per size.
	PoolMaxPerBucket = Uint("DEVARRAY_POOL_MAX", device.DefaultMaxPerBucket)
	// HostMemoryLimit caps host driver allocations in bytes. Zero is unlimited.
	HostMemoryLimit = Uint("DEVARRAY_HOST_MEMORY", 0)
	// Workers sets the kernel worker count. Zero uses every CPU.
	Workers = Uint("DEVARRAY_WORKERS", 0)
	// HostFP64 reports whether the host driver advertises double precision.
	HostFP64 = func() bool { return BoolWithDefault("DEVARRAY_FP64")(true) }
)

// HostConfig returns the host driver configuration.
func HostConfig() host.Config {
	return host.Config{
		Capacity: int(HostMemoryLimit()),
		FP64:     HostFP64(),
	}
}

// Parallel returns the kernel parallelism configuration.
func Parallel() parallel.Config {
	cfg := parallel.DefaultConfig()
	if n := int(Workers()); n > 0 {
		cfg.NumWorkers = n
		cfg.Enabled = n > 1
	}
	return cfg
}

// EnvVar describes one setting.
type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// AsMap returns every setting with its current value.
func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"DEVARRAY_DEBUG":       {"DEVARRAY_DEBUG", LogLevel(), "Show additional debug information (e.g. DEVARRAY_DEBUG=1, 2 for trace)"},
		"DEVARRAY_DEVICE":      {"DEVARRAY_DEVICE", Device(), "Device driver: host or webgpu (default host)"},
		"DEVARRAY_POOL_MAX":    {"DEVARRAY_POOL_MAX", PoolMaxPerBucket(), "Buffers retained per size in the pool (default 3)"},
		"DEVARRAY_HOST_MEMORY": {"DEVARRAY_HOST_MEMORY", HostMemoryLimit(), "Host driver memory limit in bytes (default unlimited)"},
		"DEVARRAY_FP64":        {"DEVARRAY_FP64", HostFP64(), "Advertise double precision on the host driver (default true)"},
		"DEVARRAY_WORKERS":     {"DEVARRAY_WORKERS", Workers(), "Kernel worker goroutines (default " + strconv.Itoa(runtime.NumCPU()) + ")"},
	}
}

// Values returns the settings formatted as strings.
func Values() map[string]string {
	vals := make(map[string]string)
	for k, v := range AsMap() {
		vals[k] = fmt.Sprintf("%v", v.Value)
	}
	return vals
}
