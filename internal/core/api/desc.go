package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ConditionServiceName is the fully qualified gRPC service name.
const ConditionServiceName = "branchkeeper.v1.ConditionService"

// Request and response messages are google.protobuf.Struct documents. Field
// names follow the editor's JSON (groupResults, ruleResults) inside traces
// and snake_case at the top level (branch_id, evaluation_id).

// ConditionServiceServer is the server API for ConditionService.
type ConditionServiceServer interface {
	// Evaluate takes {config | branch_id, record} and returns
	// {verdict, handle, groupResults[, evaluation_id]}.
	Evaluate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// Filter takes {config | branch_id, records} and returns {records, indexes}.
	Filter(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// PutBranch takes {name, config | config_json} and returns {branch_id, created}.
	PutBranch(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// GetBranch takes {branch_id} and returns the stored branch.
	GetBranch(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// ListBranches returns {branches} for the caller's tenant.
	ListBranches(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// ListEvaluations takes {branch_id, limit} and returns {evaluations}, newest first.
	ListEvaluations(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// Lint takes {config} and returns {valid, issues}.
	Lint(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterConditionServiceServer registers srv on s.
func RegisterConditionServiceServer(s grpc.ServiceRegistrar, srv ConditionServiceServer) {
	s.RegisterService(&ConditionService_ServiceDesc, srv)
}

type unaryMethod func(ConditionServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// unaryHandler adapts a server method to grpc.MethodHandler: decode, then
// call directly or through the interceptor chain.
func unaryHandler(name string, call unaryMethod) grpc.MethodHandler {
	fullMethod := "/" + ConditionServiceName + "/" + name
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ConditionServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(ConditionServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ConditionService_ServiceDesc is the grpc.ServiceDesc for ConditionService.
var ConditionService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ConditionServiceName,
	HandlerType: (*ConditionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Evaluate", Handler: unaryHandler("Evaluate", ConditionServiceServer.Evaluate)},
		{MethodName: "Filter", Handler: unaryHandler("Filter", ConditionServiceServer.Filter)},
		{MethodName: "PutBranch", Handler: unaryHandler("PutBranch", ConditionServiceServer.PutBranch)},
		{MethodName: "GetBranch", Handler: unaryHandler("GetBranch", ConditionServiceServer.GetBranch)},
		{MethodName: "ListBranches", Handler: unaryHandler("ListBranches", ConditionServiceServer.ListBranches)},
		{MethodName: "ListEvaluations", Handler: unaryHandler("ListEvaluations", ConditionServiceServer.ListEvaluations)},
		{MethodName: "Lint", Handler: unaryHandler("Lint", ConditionServiceServer.Lint)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "branchkeeper/v1/conditions.proto",
}
