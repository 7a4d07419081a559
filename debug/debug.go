package debug

import (
	"fmt"
	"os"
	"strconv"
)

type debug struct {
	Visit bool
	Model bool
	Cache bool
}

var d *debug

func init() {
	d = &debug{}
	d.Visit = boolEnv("EVE_DEBUG_VISIT")
	d.Model = boolEnv("EVE_DEBUG_MODEL")
	d.Cache = boolEnv("EVE_DEBUG_CACHE")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

// Visit gates traversal engine logging.
func Visit() bool {
	return d.Visit
}

// Model gates entity definition and construction logging.
func Model() bool {
	return d.Model
}

// Cache gates specialization cache logging.
func Cache() bool {
	return d.Cache
}

func Logf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
}
