package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"tradematch.app/linkup/tools/linters/enumvalidator"
)

func main() {
	singlechecker.Main(enumvalidator.Analyzer)
}
