package grpc

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// decode copies a request struct into a typed request through its JSON form.
func decode(in *structpb.Struct, out any) error {
	if in == nil {
		in = &structpb.Struct{}
	}
	b, err := protojson.Marshal(in)
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "malformed request: %v", err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return status.Errorf(codes.InvalidArgument, "malformed request: %v", err)
	}
	return nil
}

// encode renders JSON-taggable values as a response struct.
func encode(v map[string]any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal response: %w", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, fmt.Errorf("build response struct: %w", err)
	}
	return out, nil
}
