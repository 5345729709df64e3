// Package rpc implements the Pipeline gRPC service.
//
// It delegates all business logic to pipeline.Service and handles only the
// gRPC transport concerns: request logging, error mapping, and the
// hand-written service descriptor. Messages travel as JSON (see codec.go).
package rpc

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"edluar/pipeline/internal/model"
	"edluar/pipeline/internal/pipeline"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "edluar.pipeline.v1.Pipeline"

const (
	methodFetchApplications      = "/" + ServiceName + "/FetchApplications"
	methodUpdateApplicationStage = "/" + ServiceName + "/UpdateApplicationStage"
)

// ─── Messages ─────────────────────────────────────────────────────────────────

type FetchApplicationsRequest struct {
	JobID string `json:"jobId,omitempty"`
}

type FetchApplicationsResponse struct {
	Columns model.Grouped `json:"columns"`
}

type UpdateApplicationStageRequest struct {
	ApplicationID string `json:"applicationId"`
	Status        string `json:"status"`
}

type UpdateApplicationStageResponse struct {
	Application   model.Application `json:"application"`
	SuggestAction model.Hint        `json:"suggestAction,omitempty"`
}

// PipelineServer is the server API for the Pipeline service.
type PipelineServer interface {
	FetchApplications(context.Context, *FetchApplicationsRequest) (*FetchApplicationsResponse, error)
	UpdateApplicationStage(context.Context, *UpdateApplicationStageRequest) (*UpdateApplicationStageResponse, error)
}

// ServiceDesc describes the Pipeline service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PipelineServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "FetchApplications", Handler: fetchApplicationsHandler},
		{MethodName: "UpdateApplicationStage", Handler: updateApplicationStageHandler},
	},
	Streams: []grpc.StreamDesc{},
}

func fetchApplicationsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(FetchApplicationsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PipelineServer).FetchApplications(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodFetchApplications}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PipelineServer).FetchApplications(ctx, req.(*FetchApplicationsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func updateApplicationStageHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(UpdateApplicationStageRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PipelineServer).UpdateApplicationStage(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodUpdateApplicationStage}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PipelineServer).UpdateApplicationStage(ctx, req.(*UpdateApplicationStageRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// ─── Server ───────────────────────────────────────────────────────────────────

// Server implements PipelineServer.
type Server struct {
	svc *pipeline.Service
}

// NewServer constructs a Server backed by the given pipeline.Service.
func NewServer(svc *pipeline.Service) *Server {
	return &Server{svc: svc}
}

// NewGRPCServer returns a grpc.Server with the Pipeline service registered
// and every call logged.
func NewGRPCServer(svc *pipeline.Service, logger *slog.Logger, opts ...grpc.ServerOption) *grpc.Server {
	if logger == nil {
		logger = slog.Default()
	}
	opts = append(opts, grpc.ChainUnaryInterceptor(logCalls(logger.With("component", "rpc"))))
	s := grpc.NewServer(opts...)
	s.RegisterService(&ServiceDesc, NewServer(svc))
	return s
}

// FetchApplications returns the board view, optionally scoped to one job.
func (s *Server) FetchApplications(ctx context.Context, req *FetchApplicationsRequest) (*FetchApplicationsResponse, error) {
	grouped, err := s.svc.Applications(ctx, req.JobID)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return &FetchApplicationsResponse{Columns: grouped}, nil
}

// UpdateApplicationStage moves an application and returns the follow-up hint.
func (s *Server) UpdateApplicationStage(ctx context.Context, req *UpdateApplicationStageRequest) (*UpdateApplicationStageResponse, error) {
	if req.ApplicationID == "" {
		return nil, status.Error(codes.InvalidArgument, "applicationId is required")
	}
	upd, err := s.svc.UpdateStage(ctx, req.ApplicationID, req.Status)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return &UpdateApplicationStageResponse{Application: upd.Application, SuggestAction: upd.SuggestAction}, nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// logCalls logs each unary call with its status code. The optional
// x-request-id metadata value is carried into the log line.
func logCalls(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		attrs := []any{"method", info.FullMethod, "code", status.Code(err).String(), "duration", time.Since(start)}
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if ids := md.Get("x-request-id"); len(ids) > 0 {
				attrs = append(attrs, "requestId", ids[0])
			}
		}
		log.Debug("rpc", attrs...)
		return resp, err
	}
}

// toGRPCError maps domain errors to gRPC status errors.
func toGRPCError(err error) error {
	if errors.Is(err, pipeline.ErrNotFound) {
		return status.Error(codes.NotFound, err.Error())
	}
	var ve *pipeline.ValidationError
	if errors.As(err, &ve) {
		return status.Error(codes.InvalidArgument, ve.Msg)
	}
	return status.Error(codes.Internal, "internal server error")
}

// fromGRPCError is the client-side inverse of toGRPCError.
func fromGRPCError(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.NotFound:
		return pipeline.ErrNotFound
	case codes.InvalidArgument:
		return &pipeline.ValidationError{Msg: st.Message()}
	}
	return err
}
