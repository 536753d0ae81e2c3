package codec

import (
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/ozontech/typedhttp/jsonwire"
)

type protoCodec struct {
	prototype proto.Message
	fullName  protoreflect.FullName
	unmarshal protojson.UnmarshalOptions
}

// Proto maps protobuf messages of the prototype's type through their protojson form.
func Proto(prototype proto.Message) Codec {
	return protoCodec{
		prototype: prototype,
		fullName:  prototype.ProtoReflect().Descriptor().FullName(),
		unmarshal: protojson.UnmarshalOptions{DiscardUnknown: true},
	}
}

func (c protoCodec) Name() string { return string(c.fullName) }

func (c protoCodec) Is(v any) bool {
	m, ok := v.(proto.Message)
	return ok && m != nil && m.ProtoReflect().Descriptor().FullName() == c.fullName
}

func (c protoCodec) Encode(v any) (any, error) {
	if !c.Is(v) {
		return nil, &EncodeInvalidError{Codec: c.Name(), Value: v}
	}
	b, err := protojson.Marshal(v.(proto.Message))
	if err != nil {
		return nil, err
	}
	return jsonwire.Unmarshal(b)
}

func (c protoCodec) Decode(wire any) (any, error) {
	b, err := jsonwire.Marshal(wire)
	if err != nil {
		return nil, Errors{{Expected: c.Name(), Value: wire, Message: err.Error()}}
	}
	m := c.prototype.ProtoReflect().New().Interface()
	if err := c.unmarshal.Unmarshal(b, m); err != nil {
		return nil, Errors{{Expected: c.Name(), Value: wire, Message: err.Error()}}
	}
	return m, nil
}
