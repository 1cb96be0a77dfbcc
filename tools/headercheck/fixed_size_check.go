package headercheck

import (
	"fmt"
	"go/types"
)

func hasOnlyFixedSizedFields(typeName *types.TypeName) (bool, string) {
	fieldType := typeName.Type()

	switch fieldType := fieldType.(type) {
	case *types.Basic:
		kind := fieldType.Kind()
		if kind == types.Bool || kind == types.Byte || kind == types.Int || kind == types.Int8 || kind == types.Int16 || kind == types.Int32 || kind == types.Int64 ||
			kind == types.Uint || kind == types.Uint8 || kind == types.Uint16 || kind == types.Uint32 || kind == types.Uint64 ||
			kind == types.Float32 || kind == types.Float64 || kind == types.Complex64 || kind == types.Complex128 {
			return true, ""
		}
		return false, typeName.Name()

	case *types.Named:
		underlyingType := fieldType.Underlying()
		underlyingTypeName := types.NewTypeName(0, nil, typeName.Name(), underlyingType)
		valid, culprit := hasOnlyFixedSizedFields(underlyingTypeName)
		if !valid {
			return false, culprit
		}

	case *types.Pointer:
		elem := fieldType.Elem()
		if structType, ok := elem.Underlying().(*types.Struct); ok {
			nestedTypeName := types.NewTypeName(0, nil, typeName.Name(), structType)
			valid, culprit := hasOnlyFixedSizedFields(nestedTypeName)
			if !valid {
				return false, culprit
			}
		} else {
			return false, typeName.Name()
		}

	case *types.Struct:
		structType := typeName.Type().Underlying().(*types.Struct)
		for i := 0; i < structType.NumFields(); i++ {
			field := structType.Field(i)
			nestedTypeName := types.NewTypeName(0, nil, field.Name(), field.Type())
			valid, culprit := hasOnlyFixedSizedFields(nestedTypeName)
			if !valid {
				return false, culprit
			}
		}
		return true, ""

	default:
		fmt.Printf("unrecognized field type for %s: %+v\n", typeName.Name(), fieldType)
		return false, typeName.Name()
	}

	return true, ""
}
