package main

import (
	"fmt"

	"lsmkv/tools/headercheck"
)

func main() {
	for _, pkg := range []string{"lsmkv/internal/entry", "lsmkv/internal/sstable"} {
		structs := headercheck.ValidateStructsImplementingInterface("sizedHeader", pkg)
		fmt.Printf("%s: structs implementing sizedHeader with fixed-size fields: %v\n", pkg, structs)
	}
}
