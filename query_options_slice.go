package odata

import (
	"context"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/nlstn/go-odata-engine/internal/data"
	"github.com/nlstn/go-odata-engine/internal/edm"
)

// EntitiesFromSlice converts structs (or pointers to structs, or string-keyed
// maps) into entities of typeName. Property names come from json tags,
// falling back to the field name. Fields whose Go type has no EDM primitive
// mapping are skipped; nil pointers become null properties.
func EntitiesFromSlice[T any](typeName string, items []T) (*EntityCollection, error) {
	coll := data.NewEntityCollection()
	for i, item := range items {
		entity, err := entityFromItem(typeName, item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		coll.Add(entity)
	}
	return coll, nil
}

// ApplyQueryOptionsToSlice runs the engine pipeline over items and returns the
// surviving items in result order together with the next link, if any.
// The input slice is not modified.
func ApplyQueryOptionsToSlice[T any](ctx context.Context, engine *Engine, items []T, req Request) ([]T, *url.URL, error) {
	typeName := ""
	if req.EntityType != nil {
		typeName = req.EntityType.FullName()
	}

	coll, err := EntitiesFromSlice(typeName, items)
	if err != nil {
		return nil, nil, err
	}
	index := make(map[*data.Entity]int, len(items))
	for i, entity := range coll.Entities {
		index[entity] = i
	}

	if err := engine.Apply(ctx, coll, req); err != nil {
		return nil, nil, err
	}

	result := make([]T, 0, coll.Len())
	for _, entity := range coll.Entities {
		result = append(result, items[index[entity]])
	}
	return result, coll.Next, nil
}

func entityFromItem(typeName string, item interface{}) (*data.Entity, error) {
	value := reflect.ValueOf(item)
	for value.Kind() == reflect.Pointer || value.Kind() == reflect.Interface {
		if value.IsNil() {
			return nil, fmt.Errorf("nil item")
		}
		value = value.Elem()
	}

	entity := data.NewEntity(typeName)

	switch value.Kind() {
	case reflect.Struct:
		itemType := value.Type()
		for i := 0; i < value.NumField(); i++ {
			field := itemType.Field(i)
			if !field.IsExported() {
				continue
			}
			name := jsonFieldName(field)
			if name == "-" {
				continue
			}
			if name == "" {
				name = field.Name
			}
			kind, err := edm.FromGoType(field.Type)
			if err != nil {
				continue
			}
			prop, err := data.NewPrimitive(kind, value.Field(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("property %q: %w", name, err)
			}
			entity.AddProperty(data.NewProperty(name, prop))
		}
	case reflect.Map:
		if value.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("map keys must be strings, got %s", value.Type().Key())
		}
		iter := value.MapRange()
		for iter.Next() {
			raw := iter.Value().Interface()
			if raw == nil {
				continue
			}
			kind, normalized, err := edm.FromGoValue(raw)
			if err != nil {
				continue
			}
			entity.AddProperty(data.NewProperty(iter.Key().String(), data.MustPrimitive(kind, normalized)))
		}
	default:
		return nil, fmt.Errorf("unsupported item type %s", value.Type())
	}

	return entity, nil
}

func jsonFieldName(field reflect.StructField) string {
	jsonTag := field.Tag.Get("json")
	if jsonTag == "" {
		return ""
	}
	name, _, _ := strings.Cut(jsonTag, ",")
	return name
}
