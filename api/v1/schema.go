package v1

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	_ "google.golang.org/protobuf/types/known/structpb"
)

// File is the descriptor of scorecard.proto, built at init and registered in
// protoregistry.GlobalFiles so server reflection can serve it.
var File = buildFile()

var (
	ScoreRequestDesc          = File.Messages().ByName("ScoreRequest")
	ScoreResultDesc           = File.Messages().ByName("ScoreResult")
	ScoreExplanationDesc      = File.Messages().ByName("ScoreExplanation")
	ListRolesRequestDesc      = File.Messages().ByName("ListRolesRequest")
	ListRolesResponseDesc     = File.Messages().ByName("ListRolesResponse")
	RoleRequestDesc           = File.Messages().ByName("RoleRequest")
	VariantInfoDesc           = File.Messages().ByName("VariantInfo")
	RubricDesc                = File.Messages().ByName("Rubric")
	TemplateRequestDesc       = File.Messages().ByName("TemplateRequest")
	SaveTemplateRequestDesc   = File.Messages().ByName("SaveTemplateRequest")
	SaveTemplateResponseDesc  = File.Messages().ByName("SaveTemplateResponse")
	ListTemplatesResponseDesc = File.Messages().ByName("ListTemplatesResponse")
)

func init() {
	if err := protoregistry.GlobalFiles.RegisterFile(File); err != nil {
		panic(err)
	}
}

const valueType = ".google.protobuf.Value"

type fieldType = descriptorpb.FieldDescriptorProto_Type

const (
	tString  = descriptorpb.FieldDescriptorProto_TYPE_STRING
	tInt32   = descriptorpb.FieldDescriptorProto_TYPE_INT32
	tInt64   = descriptorpb.FieldDescriptorProto_TYPE_INT64
	tBool    = descriptorpb.FieldDescriptorProto_TYPE_BOOL
	tDouble  = descriptorpb.FieldDescriptorProto_TYPE_DOUBLE
	tMessage = descriptorpb.FieldDescriptorProto_TYPE_MESSAGE
)

func scalar(name string, num int32, typ fieldType) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(num),
		Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:   typ.Enum(),
	}
}

func ref(name string, num int32, typeName string) *descriptorpb.FieldDescriptorProto {
	f := scalar(name, num, tMessage)
	f.TypeName = proto.String(typeName)
	return f
}

func repeated(f *descriptorpb.FieldDescriptorProto) *descriptorpb.FieldDescriptorProto {
	f.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
	return f
}

type messageBuilder struct {
	msg *descriptorpb.DescriptorProto
}

func message(name string) *messageBuilder {
	return &messageBuilder{msg: &descriptorpb.DescriptorProto{Name: proto.String(name)}}
}

func (b *messageBuilder) add(fields ...*descriptorpb.FieldDescriptorProto) *messageBuilder {
	b.msg.Field = append(b.msg.Field, fields...)
	return b
}

// optional adds a proto3 optional field backed by its synthetic oneof.
func (b *messageBuilder) optional(name string, num int32, typ fieldType) *messageBuilder {
	b.msg.OneofDecl = append(b.msg.OneofDecl, &descriptorpb.OneofDescriptorProto{Name: proto.String("_" + name)})
	f := scalar(name, num, typ)
	f.OneofIndex = proto.Int32(int32(len(b.msg.OneofDecl) - 1))
	f.Proto3Optional = proto.Bool(true)
	return b.add(f)
}

// mapOf adds a map<string, V> field and its nested entry message.
func (b *messageBuilder) mapOf(name string, num int32, value *descriptorpb.FieldDescriptorProto) *messageBuilder {
	entry := entryName(name)
	value.Name = proto.String("value")
	value.Number = proto.Int32(2)
	b.msg.NestedType = append(b.msg.NestedType, &descriptorpb.DescriptorProto{
		Name:    proto.String(entry),
		Field:   []*descriptorpb.FieldDescriptorProto{scalar("key", 1, tString), value},
		Options: &descriptorpb.MessageOptions{MapEntry: proto.Bool(true)},
	})
	return b.add(repeated(ref(name, num, ".scorecard.v1."+b.msg.GetName()+"."+entry)))
}

func entryName(field string) string {
	out := make([]byte, 0, len(field)+5)
	upper := true
	for i := 0; i < len(field); i++ {
		c := field[i]
		if c == '_' {
			upper = true
			continue
		}
		if upper && c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		upper = false
		out = append(out, c)
	}
	return string(out) + "Entry"
}

// resultFields are shared by ScoreResult and ScoreExplanation.
func (b *messageBuilder) resultFields() *messageBuilder {
	return b.
		optional("score", 1, tInt32).
		optional("variant", 2, tString).
		add(
			scalar("mode", 3, tString),
			scalar("status", 4, tString),
			scalar("auto_scorable", 5, tBool),
			scalar("needs_selection", 6, tBool),
			scalar("variant_locked", 7, tBool),
		).
		mapOf("ratings", 8, ref("", 0, valueType))
}

func method(name, in, out string) *descriptorpb.MethodDescriptorProto {
	return &descriptorpb.MethodDescriptorProto{
		Name:       proto.String(name),
		InputType:  proto.String(".scorecard.v1." + in),
		OutputType: proto.String(".scorecard.v1." + out),
	}
}

func buildFile() protoreflect.FileDescriptor {
	messages := []*messageBuilder{
		message("ScoreRequest").
			add(
				scalar("ticket_id", 1, tInt64),
				scalar("role", 2, tString),
				scalar("variant", 3, tString),
				scalar("scorecard_variant", 4, tString),
			).
			mapOf("ratings", 5, ref("", 0, valueType)).
			mapOf("scorecard_values", 6, scalar("", 0, tInt32)).
			optional("manual_score", 7, tInt32),
		message("ScoreResult").resultFields(),
		message("SectionResult").add(
			scalar("id", 1, tString),
			scalar("title", 2, tString),
			scalar("weight", 3, tInt32),
			scalar("earned", 4, tInt32),
			scalar("max", 5, tInt32),
			scalar("rated", 6, tInt32),
			scalar("active", 7, tBool),
			scalar("ratio", 8, tDouble),
		),
		message("ScoreExplanation").resultFields().add(
			repeated(ref("sections", 9, ".scorecard.v1.SectionResult")),
			scalar("active_weight", 10, tInt32),
		),
		message("ListRolesRequest"),
		message("ListRolesResponse").add(repeated(scalar("roles", 1, tString))),
		message("RoleRequest").add(
			scalar("role", 1, tString),
			scalar("variant", 2, tString),
		),
		message("VariantInfo").add(
			scalar("role", 1, tString),
			repeated(scalar("variants", 2, tString)),
			scalar("requires_selection", 3, tBool),
			scalar("auto_scorable", 4, tBool),
		),
		message("Criterion").add(
			scalar("id", 1, tString),
			scalar("label", 2, tString),
			repeated(scalar("points", 3, tInt32)),
		),
		message("RubricSection").add(
			scalar("id", 1, tString),
			scalar("title", 2, tString),
			scalar("weight", 3, tInt32),
			repeated(ref("criteria", 4, ".scorecard.v1.Criterion")),
		),
		message("Rubric").add(
			scalar("role", 1, tString),
			scalar("variant", 2, tString),
			scalar("title", 3, tString),
			repeated(ref("sections", 4, ".scorecard.v1.RubricSection")),
		),
		message("TemplateRequest").add(
			scalar("ticket_id", 1, tInt64),
			scalar("template_id", 2, tInt64),
			scalar("role", 3, tString),
			scalar("variant", 4, tString),
			scalar("scorecard_variant", 5, tString),
		),
		message("SaveTemplateRequest").
			add(
				scalar("template_id", 1, tInt64),
				scalar("name", 2, tString),
				scalar("role", 3, tString),
				scalar("variant", 4, tString),
			).
			mapOf("ratings", 5, ref("", 0, valueType)),
		message("SaveTemplateResponse"),
		message("TemplateSummary").add(
			scalar("template_id", 1, tInt64),
			scalar("name", 2, tString),
			scalar("variant", 3, tString),
			scalar("criteria", 4, tInt64),
		),
		message("ListTemplatesResponse").add(repeated(ref("templates", 1, ".scorecard.v1.TemplateSummary"))),
	}

	file := &descriptorpb.FileDescriptorProto{
		Name:       proto.String("api/v1/scorecard.proto"),
		Package:    proto.String("scorecard.v1"),
		Syntax:     proto.String("proto3"),
		Dependency: []string{"google/protobuf/struct.proto"},
		Options:    &descriptorpb.FileOptions{GoPackage: proto.String("github.com/godilite/qa-scorecard/api/v1;v1")},
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name: proto.String("Scorecard"),
			Method: []*descriptorpb.MethodDescriptorProto{
				method("CalculateScore", "ScoreRequest", "ScoreResult"),
				method("ExplainScore", "ScoreRequest", "ScoreExplanation"),
				method("ListRoles", "ListRolesRequest", "ListRolesResponse"),
				method("ListVariants", "RoleRequest", "VariantInfo"),
				method("GetRubric", "RoleRequest", "Rubric"),
				method("ApplyTemplate", "TemplateRequest", "ScoreResult"),
				method("SaveTemplate", "SaveTemplateRequest", "SaveTemplateResponse"),
				method("ListTemplates", "RoleRequest", "ListTemplatesResponse"),
			},
		}},
	}
	for _, m := range messages {
		file.MessageType = append(file.MessageType, m.msg)
	}

	fd, err := protodesc.NewFile(file, protoregistry.GlobalFiles)
	if err != nil {
		panic(err)
	}
	return fd
}
