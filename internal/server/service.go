package server

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/ppiankov/skillguard/internal/model"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "skillguard.v1.SkillGuard"

// ValidateMethod is the full method path of the Validate RPC.
const ValidateMethod = "/" + ServiceName + "/Validate"

// SkillGuardServer is the server API of the SkillGuard service.
//
// The request is the raw reference; the response is a Struct with
// decision, reason, message and exit_code fields.
type SkillGuardServer interface {
	Validate(ctx context.Context, ref *wrapperspb.StringValue) (*structpb.Struct, error)
}

// serviceDesc is written by hand; both messages are protobuf well-known
// types, so the default proto codec applies.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SkillGuardServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Validate", Handler: validateHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "skillguard/v1/skillguard.proto",
}

// RegisterSkillGuardServer registers srv on s.
func RegisterSkillGuardServer(s grpc.ServiceRegistrar, srv SkillGuardServer) {
	s.RegisterService(&serviceDesc, srv)
}

func validateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SkillGuardServer).Validate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ValidateMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SkillGuardServer).Validate(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// VerdictToStruct encodes v for the wire.
func VerdictToStruct(v model.Verdict) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"decision":  string(v.Decision),
		"reason":    string(v.Reason),
		"message":   v.Message,
		"exit_code": v.ExitCode(),
	})
}

// VerdictFromStruct decodes a Validate response.
func VerdictFromStruct(s *structpb.Struct) (model.Verdict, error) {
	fields := s.GetFields()
	raw := fields["decision"].GetStringValue()
	d, ok := model.ParseDecision(raw)
	if !ok {
		return model.Verdict{}, fmt.Errorf("unknown decision %q in response", raw)
	}
	return model.Verdict{
		Decision: d,
		Reason:   model.Reason(fields["reason"].GetStringValue()),
		Message:  fields["message"].GetStringValue(),
	}, nil
}
