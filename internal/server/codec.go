package server

import (
	"encoding/json"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/fieldops/internal/common"
)

// decodeStruct checks in against s and decodes it into dst.
func decodeStruct(in *structpb.Struct, s *common.Schema, dst any) error {
	if in == nil {
		in = &structpb.Struct{}
	}
	b, err := protojson.Marshal(in)
	if err != nil {
		return common.ValidationErrors{{Field: "(body)", Message: "unreadable message"}}
	}
	return s.DecodeJSON(b, dst)
}

// encodeStruct renders v through its JSON form.
func encodeStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, common.InternalError("failed to encode response", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, common.InternalError("failed to encode response", err)
	}
	return out, nil
}
