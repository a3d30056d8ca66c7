// Package echov1 is the Echo wire contract: request and response messages,
// the gRPC service description and a typed client. Messages travel as JSON
// under the "json" content-subtype.
//
// There are no .proto sources. EchoServer, Echo_ServiceDesc and
// RegisterEchoServer mirror what protoc-gen-go-grpc would emit for the
// service, so registration and interceptors work as with generated stubs.
package echov1

import (
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

// CodecName is the gRPC content-subtype every Echo call uses.
const CodecName = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return CodecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// CallOption selects the JSON codec for a call.
func CallOption() grpc.CallOption { return grpc.CallContentSubtype(CodecName) }
