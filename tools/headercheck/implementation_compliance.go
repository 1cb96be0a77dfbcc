package headercheck

import (
	"fmt"
	"go/types"
	"log"

	"golang.org/x/tools/go/packages"
)

// ValidateStructsImplementingInterface scans pkgPattern for structs
// implementing interfaceName and checks each one for fixed-size
// fields only, returning the names of every struct that passed.
func ValidateStructsImplementingInterface(interfaceName string, pkgPattern string) []string {
	cfg := &packages.Config{
		Mode: packages.LoadAllSyntax,
	}
	pkgs, err := packages.Load(cfg, pkgPattern)
	if err != nil {
		log.Fatalf("failed to load packages: %v", err)
	}

	var structs []string
	for _, pkg := range pkgs {
		if pkg.Types == nil || pkg.Types.Scope() == nil {
			continue
		}

		interfaceType := findInterfaceByName(interfaceName, pkg.Types)
		if interfaceType == nil {
			continue
		}

		for _, def := range pkg.TypesInfo.Defs {
			if def == nil {
				continue
			}

			typeName, ok := def.(*types.TypeName)
			if !ok {
				continue
			}

			if _, ok := typeName.Type().Underlying().(*types.Struct); !ok {
				continue
			}

			implements := types.Implements(typeName.Type(), interfaceType)
			if !implements {
				ptrType := types.NewPointer(typeName.Type())
				if !types.Implements(ptrType, interfaceType) {
					continue
				}
			}

			structs = append(structs, typeName.Name())

			valid, culpritField := hasOnlyFixedSizedFields(typeName)
			if !valid {
				log.Fatalf("field %s in struct %s is not of fixed size type", culpritField, typeName.Name())
			}

			fmt.Printf("struct %s implements %s and complies with fixed size constraints\n", typeName.Name(), interfaceName)
		}
	}

	return structs
}

// findInterfaceByName looks up an interface by name in a package's scope.
func findInterfaceByName(interfaceName string, pkg *types.Package) *types.Interface {
	scope := pkg.Scope()
	for _, name := range scope.Names() {
		if name == interfaceName {
			if iface, ok := scope.Lookup(name).Type().Underlying().(*types.Interface); ok {
				return iface
			}
		}
	}
	return nil
}
