package client

import (
	"fmt"
	"sync"

	"github.com/dmitrijs2005/dealwatch/internal/client/models"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
	"google.golang.org/protobuf/types/known/fieldmaskpb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ledgerService       = "sui.rpc.v2.LedgerService"
	getObjectMethod     = "/" + ledgerService + "/GetObject"
	batchGetObjectsMeth = "/" + ledgerService + "/BatchGetObjects"
)

// objectReadMask lists the object fields the client reads.
var objectReadMask = []string{"object_id", "version", "digest", "object_type", "json"}

// ledgerSchema holds the subset of the Sui ledger service messages used by
// ObjectClient. Only the fields read here are declared; everything else on
// the wire is kept as unknown fields.
type ledgerSchema struct {
	getObjectRequest  protoreflect.MessageDescriptor
	getObjectResponse protoreflect.MessageDescriptor
	batchRequest      protoreflect.MessageDescriptor
	batchResponse     protoreflect.MessageDescriptor
	objectResult      protoreflect.MessageDescriptor
	object            protoreflect.MessageDescriptor
	status            protoreflect.MessageDescriptor
	fieldMask         protoreflect.MessageDescriptor
}

var loadLedgerSchema = sync.OnceValues(buildLedgerSchema)

func scalar(name string, num int32, typ descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(num),
		Type:   typ.Enum(),
		Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
	}
}

func message(name string, num int32, typeName string) *descriptorpb.FieldDescriptorProto {
	f := scalar(name, num, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE)
	f.TypeName = proto.String(typeName)
	return f
}

func repeated(f *descriptorpb.FieldDescriptorProto) *descriptorpb.FieldDescriptorProto {
	f.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
	return f
}

func inOneof(f *descriptorpb.FieldDescriptorProto, idx int32) *descriptorpb.FieldDescriptorProto {
	f.OneofIndex = proto.Int32(idx)
	return f
}

func buildLedgerSchema() (*ledgerSchema, error) {
	const (
		tString = descriptorpb.FieldDescriptorProto_TYPE_STRING
		tUint64 = descriptorpb.FieldDescriptorProto_TYPE_UINT64
		tInt32  = descriptorpb.FieldDescriptorProto_TYPE_INT32
	)

	files := new(protoregistry.Files)
	for _, fd := range []protoreflect.FileDescriptor{
		structpb.File_google_protobuf_struct_proto,
		fieldmaskpb.File_google_protobuf_field_mask_proto,
	} {
		if err := files.RegisterFile(fd); err != nil {
			return nil, err
		}
	}

	status := &descriptorpb.FileDescriptorProto{
		Name:    proto.String("google/rpc/status.proto"),
		Package: proto.String("google.rpc"),
		Syntax:  proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{{
			Name: proto.String("Status"),
			Field: []*descriptorpb.FieldDescriptorProto{
				scalar("code", 1, tInt32),
				scalar("message", 2, tString),
			},
		}},
	}

	ledger := &descriptorpb.FileDescriptorProto{
		Name:       proto.String("sui/rpc/v2/ledger_service.proto"),
		Package:    proto.String("sui.rpc.v2"),
		Syntax:     proto.String("proto3"),
		Dependency: []string{"google/protobuf/struct.proto", "google/protobuf/field_mask.proto", "google/rpc/status.proto"},
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String("Object"),
				Field: []*descriptorpb.FieldDescriptorProto{
					scalar("object_id", 2, tString),
					scalar("version", 3, tUint64),
					scalar("digest", 4, tString),
					scalar("object_type", 6, tString),
					scalar("previous_transaction", 10, tString),
					message("json", 100, ".google.protobuf.Value"),
				},
			},
			{
				Name: proto.String("GetObjectRequest"),
				Field: []*descriptorpb.FieldDescriptorProto{
					scalar("object_id", 1, tString),
					scalar("version", 2, tUint64),
					message("read_mask", 3, ".google.protobuf.FieldMask"),
				},
			},
			{
				Name: proto.String("GetObjectResponse"),
				Field: []*descriptorpb.FieldDescriptorProto{
					message("object", 1, ".sui.rpc.v2.Object"),
				},
			},
			{
				Name: proto.String("BatchGetObjectsRequest"),
				Field: []*descriptorpb.FieldDescriptorProto{
					repeated(message("requests", 1, ".sui.rpc.v2.GetObjectRequest")),
					message("read_mask", 2, ".google.protobuf.FieldMask"),
				},
			},
			{
				Name: proto.String("GetObjectResult"),
				Field: []*descriptorpb.FieldDescriptorProto{
					inOneof(message("object", 1, ".sui.rpc.v2.Object"), 0),
					inOneof(message("error", 2, ".google.rpc.Status"), 0),
				},
				OneofDecl: []*descriptorpb.OneofDescriptorProto{{Name: proto.String("result")}},
			},
			{
				Name: proto.String("BatchGetObjectsResponse"),
				Field: []*descriptorpb.FieldDescriptorProto{
					repeated(message("objects", 1, ".sui.rpc.v2.GetObjectResult")),
				},
			},
		},
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name: proto.String("LedgerService"),
			Method: []*descriptorpb.MethodDescriptorProto{
				{
					Name:       proto.String("GetObject"),
					InputType:  proto.String(".sui.rpc.v2.GetObjectRequest"),
					OutputType: proto.String(".sui.rpc.v2.GetObjectResponse"),
				},
				{
					Name:       proto.String("BatchGetObjects"),
					InputType:  proto.String(".sui.rpc.v2.BatchGetObjectsRequest"),
					OutputType: proto.String(".sui.rpc.v2.BatchGetObjectsResponse"),
				},
			},
		}},
	}

	for _, fdp := range []*descriptorpb.FileDescriptorProto{status, ledger} {
		fd, err := protodesc.NewFile(fdp, files)
		if err != nil {
			return nil, fmt.Errorf("ledger schema %s: %w", fdp.GetName(), err)
		}
		if err := files.RegisterFile(fd); err != nil {
			return nil, err
		}
	}

	find := func(name protoreflect.FullName) protoreflect.MessageDescriptor {
		d, err := files.FindDescriptorByName(name)
		if err != nil {
			return nil
		}
		md, _ := d.(protoreflect.MessageDescriptor)
		return md
	}

	s := &ledgerSchema{
		getObjectRequest:  find("sui.rpc.v2.GetObjectRequest"),
		getObjectResponse: find("sui.rpc.v2.GetObjectResponse"),
		batchRequest:      find("sui.rpc.v2.BatchGetObjectsRequest"),
		batchResponse:     find("sui.rpc.v2.BatchGetObjectsResponse"),
		objectResult:      find("sui.rpc.v2.GetObjectResult"),
		object:            find("sui.rpc.v2.Object"),
		status:            find("google.rpc.Status"),
		fieldMask:         fieldmaskpb.File_google_protobuf_field_mask_proto.Messages().ByName("FieldMask"),
	}
	if s.getObjectRequest == nil || s.batchResponse == nil || s.object == nil || s.status == nil {
		return nil, fmt.Errorf("ledger schema: missing message descriptors")
	}
	return s, nil
}

func (s *ledgerSchema) readMask() *dynamicpb.Message {
	m := dynamicpb.NewMessage(s.fieldMask)
	paths := m.Mutable(s.fieldMask.Fields().ByName("paths")).List()
	for _, p := range objectReadMask {
		paths.Append(protoreflect.ValueOfString(p))
	}
	return m
}

func (s *ledgerSchema) newGetObjectRequest(id string) *dynamicpb.Message {
	req := dynamicpb.NewMessage(s.getObjectRequest)
	fields := s.getObjectRequest.Fields()
	req.Set(fields.ByName("object_id"), protoreflect.ValueOfString(id))
	req.Set(fields.ByName("read_mask"), protoreflect.ValueOfMessage(s.readMask()))
	return req
}

func (s *ledgerSchema) newBatchRequest(ids []string) *dynamicpb.Message {
	req := dynamicpb.NewMessage(s.batchRequest)
	fields := s.batchRequest.Fields()

	list := req.Mutable(fields.ByName("requests")).List()
	idField := s.getObjectRequest.Fields().ByName("object_id")
	for _, id := range ids {
		item := dynamicpb.NewMessage(s.getObjectRequest)
		item.Set(idField, protoreflect.ValueOfString(id))
		list.Append(protoreflect.ValueOfMessage(item))
	}
	req.Set(fields.ByName("read_mask"), protoreflect.ValueOfMessage(s.readMask()))
	return req
}

// decodeObject converts a sui.rpc.v2.Object into models.Object. The json
// field, a google.protobuf.Value, is rendered back to plain JSON.
func (s *ledgerSchema) decodeObject(m protoreflect.Message) (*models.Object, error) {
	fields := s.object.Fields()
	obj := &models.Object{
		ID:      m.Get(fields.ByName("object_id")).String(),
		Version: m.Get(fields.ByName("version")).Uint(),
		Digest:  m.Get(fields.ByName("digest")).String(),
		Type:    m.Get(fields.ByName("object_type")).String(),
	}

	if fd := fields.ByName("json"); m.Has(fd) {
		b, err := protojson.Marshal(m.Get(fd).Message().Interface())
		if err != nil {
			return nil, fmt.Errorf("object %s: json: %w", obj.ID, err)
		}
		obj.JSON = b
	}
	return obj, nil
}

// decodeStatus reads a google.rpc.Status.
func (s *ledgerSchema) decodeStatus(m protoreflect.Message) (int32, string) {
	fields := s.status.Fields()
	return int32(m.Get(fields.ByName("code")).Int()), m.Get(fields.ByName("message")).String()
}
