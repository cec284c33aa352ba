package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"grapevine.app/firehose/tools/linters/enumvalidator"
)

func main() {
	singlechecker.Main(enumvalidator.Analyzer)
}
