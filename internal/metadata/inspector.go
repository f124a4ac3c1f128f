package metadata

import (
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"valora/internal/core/id"
)

// Inspect builds an EntityDef from a struct via reflection. Embedded
// structs are flattened, slices of structs become table parts.
func Inspect(entity interface{}, name string, entityType EntityType) EntityDef {
	t := reflect.TypeOf(entity)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if name == "" {
		name = t.Name()
	}

	def := EntityDef{
		Name:       name,
		Label:      guessLabel(name),
		Type:       entityType,
		Fields:     make([]FieldDef, 0),
		TableParts: make([]TablePartDef, 0),
	}
	inspectStruct(t, &def)
	return def
}

func inspectStruct(t reflect.Type, def *EntityDef) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" { // unexported
			continue
		}
		if field.Anonymous {
			inspectStruct(field.Type, def)
			continue
		}

		if field.Type.Kind() == reflect.Slice && field.Type.Elem().Kind() == reflect.Struct {
			def.TableParts = append(def.TableParts, TablePartDef{
				Name:    jsonName(field),
				Label:   guessLabel(field.Name),
				Columns: inspectColumns(field.Type.Elem()),
			})
			continue
		}

		fDef := fieldDef(field)
		if fDef.Name == "-" { // json:"-"
			continue
		}
		def.Fields = append(def.Fields, fDef)
	}
}

func inspectColumns(t reflect.Type) []FieldDef {
	cols := make([]FieldDef, 0)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" {
			continue
		}
		fDef := fieldDef(field)
		if fDef.Name == "-" {
			continue
		}
		cols = append(cols, fDef)
	}
	return cols
}

func fieldDef(field reflect.StructField) FieldDef {
	fDef := FieldDef{
		Name:     jsonName(field),
		Label:    guessLabel(field.Name),
		Required: isRequired(field),
		ReadOnly: isReadOnly(field),
	}
	mapFieldType(&fDef, field)
	return fDef
}

func mapFieldType(def *FieldDef, field reflect.StructField) {
	switch field.Type {
	case reflect.TypeOf(id.ID{}):
		def.Type = TypeReference
		// "WarehouseID" refers to the warehouse catalog.
		if base, ok := strings.CutSuffix(field.Name, "ID"); ok {
			def.ReferenceType = strings.ToLower(base)
		}
		return
	case reflect.TypeOf(time.Time{}):
		def.Type = TypeDate
		return
	case reflect.TypeOf(decimal.Decimal{}):
		def.Type = TypeMoney
		def.Scale = 2
		return
	}

	switch field.Type.Kind() {
	case reflect.String:
		def.Type = TypeString
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		// Quantity is fixed-point int64, classified by name convention.
		switch {
		case strings.Contains(field.Name, "Amount") || strings.Contains(field.Name, "Price"):
			def.Type = TypeMoney
		case strings.Contains(field.Name, "Quantity"):
			def.Type = TypeQuantity
			def.Scale = 4
		default:
			def.Type = TypeInteger
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		def.Type = TypeInteger
	case reflect.Float32, reflect.Float64:
		def.Type = TypeNumber
		def.Scale = 2
		if strings.Contains(field.Name, "Quantity") {
			def.Scale = 3
		}
	case reflect.Bool:
		def.Type = TypeBoolean
	default:
		def.Type = TypeString
	}
}

// jsonName takes the json tag name, or the field name lower-camelled.
func jsonName(field reflect.StructField) string {
	if tag, ok := field.Tag.Lookup("json"); ok {
		if name, _, _ := strings.Cut(tag, ","); name != "" {
			return name
		}
	}
	runes := []rune(field.Name)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

func isRequired(field reflect.StructField) bool {
	if tag, ok := field.Tag.Lookup("binding"); ok {
		return strings.Contains(tag, "required")
	}
	return false
}

// isReadOnly flags the server-generated fields.
func isReadOnly(field reflect.StructField) bool {
	switch field.Name {
	case "ID", "CreatedAt", "UpdatedAt":
		return true
	}
	return false
}

// guessLabel would consult a translation map. Until one exists the
// field name doubles as the label.
func guessLabel(name string) string {
	return name
}
