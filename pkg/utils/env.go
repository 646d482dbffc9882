package utils

import (
	"fmt"
	"os"
	"strconv"
)

// Env constrains the types an XFTP_* environment variable can be
// read as.
type Env interface {
	uint | bool | string
}

// GetEnv reads key from the environment, falling back to
// defaultVal when unset. Configuration is resolved once at
// startup, so a missing required key or an unparsable value
// panics instead of returning an error.
func GetEnv[T Env](key string, defaultVal string, required bool) T {
	var retVal T

	val, ok := os.LookupEnv(key)
	if !ok {
		if required {
			panic(fmt.Sprintf("env %s is required", key))
		}

		val = defaultVal
	}

	switch ptr := any(&retVal).(type) {
	case *uint:
		parsedVal, err := strconv.ParseUint(val, 10, 32)
		mustParseEnv(key, val, err)

		*ptr = uint(parsedVal)
	case *bool:
		parsedVal, err := strconv.ParseBool(val)
		mustParseEnv(key, val, err)

		*ptr = parsedVal
	case *string:
		*ptr = val
	}

	return retVal
}

func mustParseEnv(key string, val string, err error) {
	if err != nil {
		panic(fmt.Sprintf("error: parsing env %s=%s", key, val))
	}
}
