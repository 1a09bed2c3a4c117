package util

import (
	"fmt"
	"log"
	"os"
)

func Warnf(format string, v ...interface{}) {
	log.Printf(format, v...)
}

// Verbosef is like Warnf, but only logs when FlagVerbose is set.
func Verbosef(format string, v ...interface{}) {
	if FlagVerbose {
		log.Printf(format, v...)
	}
}

func Warning(err error, v ...interface{}) bool {
	if err != nil {
		if len(v) == 0 {
			Warnf("WARNING: %s.", err)
		} else {
			format := v[0].(string)
			v = v[1:]
			Warnf("%s: %s.", fmt.Sprintf(format, v...), err)
		}
		return true
	}
	return false
}

func Fatalf(format string, v ...interface{}) {
	log.Fatalf(format, v...)
}

func Assert(err error, v ...interface{}) {
	if err != nil {
		if len(v) == 0 {
			Fatalf("ERROR: %s.", err)
		} else {
			format := v[0].(string)
			v = v[1:]
			Fatalf("%s: %s.", fmt.Sprintf(format, v...), err)
		}
	}
}

// AssertDir makes sure that path is a directory, creating it (and its
// parents) if it doesn't exist.
func AssertDir(path string) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		Assert(os.MkdirAll(path, 0755), "Could not create directory '%s'", path)
		return
	}
	Assert(err, "Directory '%s' is not accessible", path)
	if !info.IsDir() {
		Fatalf("'%s' is not a directory.", path)
	}
}
