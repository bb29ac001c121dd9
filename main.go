package main

import (
	"github.com/quotient-project/quotient/cmd/quotient"
	_ "github.com/quotient-project/quotient/pkg/logger"
)

// Values for version are injected by the build.
var (
	VERSION = ""
)

func main() {
	quotient.Execute(VERSION)
}
