package v1

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

const valueName protoreflect.FullName = "google.protobuf.Value"

// Encode builds an md message from v's JSON form. Fields md does not declare and
// values of the wrong type are errors.
func Encode(md protoreflect.MessageDescriptor, v any) (*dynamicpb.Message, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", md.FullName(), err)
	}
	out := dynamicpb.NewMessage(md)
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("encode %s: %w", md.FullName(), err)
	}
	return out, nil
}

// Decode fills dest from m using the proto field names as JSON keys. Unset fields
// are left out, so a nil message decodes as {}.
func Decode(m *dynamicpb.Message, dest any) error {
	obj := map[string]any{}
	if m != nil {
		var err error
		if obj, err = fields(m); err != nil {
			return fmt.Errorf("decode %s: %w", m.Descriptor().FullName(), err)
		}
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("decode message: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decode message: %w", err)
	}
	return nil
}

func fields(m protoreflect.Message) (map[string]any, error) {
	out := make(map[string]any)
	var err error
	m.Range(func(fd protoreflect.FieldDescriptor, v protoreflect.Value) bool {
		var jv any
		if jv, err = fieldValue(fd, v); err != nil {
			return false
		}
		out[string(fd.Name())] = jv
		return true
	})
	return out, err
}

func fieldValue(fd protoreflect.FieldDescriptor, v protoreflect.Value) (any, error) {
	switch {
	case fd.IsMap():
		out := make(map[string]any, v.Map().Len())
		var err error
		v.Map().Range(func(k protoreflect.MapKey, mv protoreflect.Value) bool {
			out[k.String()], err = singular(fd.MapValue(), mv)
			return err == nil
		})
		return out, err
	case fd.IsList():
		list := v.List()
		out := make([]any, list.Len())
		for i := range out {
			item, err := singular(fd, list.Get(i))
			if err != nil {
				return nil, err
			}
			out[i] = item
		}
		return out, nil
	default:
		return singular(fd, v)
	}
}

func singular(fd protoreflect.FieldDescriptor, v protoreflect.Value) (any, error) {
	switch fd.Kind() {
	case protoreflect.MessageKind, protoreflect.GroupKind:
		if fd.Message().FullName() == valueName {
			raw, err := protojson.Marshal(v.Message().Interface())
			if err != nil {
				return nil, err
			}
			return json.RawMessage(raw), nil
		}
		return fields(v.Message())
	case protoreflect.EnumKind:
		return int32(v.Enum()), nil
	default:
		return v.Interface(), nil
	}
}
