package server

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/fieldops/constants"
	"github.com/joseph-ayodele/fieldops/internal/common"
	"github.com/joseph-ayodele/fieldops/internal/entity"
	"github.com/joseph-ayodele/fieldops/internal/materials"
	"github.com/joseph-ayodele/fieldops/internal/schema"
	"github.com/joseph-ayodele/fieldops/internal/services/estimates"
	gamesvc "github.com/joseph-ayodele/fieldops/internal/services/gamification"
	"github.com/joseph-ayodele/fieldops/internal/services/timesheet"
	"github.com/joseph-ayodele/fieldops/internal/weather"
)

const ServiceName = "fieldops.v1.FieldOps"

// FieldOpsServer is the gRPC surface. Every message is a structpb.Struct
// carrying the same JSON document as the HTTP API.
type FieldOpsServer interface {
	CalculateMaterials(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ClassifyWeather(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RecommendWindow(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ClockAction(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateEstimate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListEstimates(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetXP(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AwardXP(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type method func(FieldOpsServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(name string, call method) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(FieldOpsServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(FieldOpsServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var FieldOpsServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FieldOpsServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("CalculateMaterials", FieldOpsServer.CalculateMaterials),
		unary("ClassifyWeather", FieldOpsServer.ClassifyWeather),
		unary("RecommendWindow", FieldOpsServer.RecommendWindow),
		unary("ClockAction", FieldOpsServer.ClockAction),
		unary("CreateEstimate", FieldOpsServer.CreateEstimate),
		unary("ListEstimates", FieldOpsServer.ListEstimates),
		unary("GetXP", FieldOpsServer.GetXP),
		unary("AwardXP", FieldOpsServer.AwardXP),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "fieldops/v1/fieldops.proto",
}

func RegisterFieldOpsServer(s grpc.ServiceRegistrar, srv FieldOpsServer) {
	s.RegisterService(&FieldOpsServiceDesc, srv)
}

// FieldOpsService implements FieldOpsServer on top of the domain services.
type FieldOpsService struct {
	timesheets   *timesheet.Service
	estimates    *estimates.Service
	gamification *gamesvc.Service
	logger       *slog.Logger
}

func NewFieldOpsService(ts *timesheet.Service, est *estimates.Service, game *gamesvc.Service, logger *slog.Logger) *FieldOpsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FieldOpsService{timesheets: ts, estimates: est, gamification: game, logger: logger}
}

var _ FieldOpsServer = (*FieldOpsService)(nil)

func (s *FieldOpsService) CalculateMaterials(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req materials.Request
	if err := decodeStruct(in, schema.Materials, &req); err != nil {
		return nil, err
	}
	return encodeStruct(materials.Calculate(req))
}

func (s *FieldOpsService) ClassifyWeather(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var sample weather.Sample
	if err := decodeStruct(in, schema.WeatherSample, &sample); err != nil {
		return nil, err
	}
	return encodeStruct(weather.Classify(sample))
}

func (s *FieldOpsService) RecommendWindow(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req struct {
		Forecast []weather.ForecastPoint `json:"forecast"`
	}
	if err := decodeStruct(in, schema.Forecast, &req); err != nil {
		return nil, err
	}
	return encodeStruct(map[string]any{"window": weather.RecommendWindow(req.Forecast)})
}

func (s *FieldOpsService) ClockAction(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	employeeID, err := actingEmployee(ctx)
	if err != nil {
		return nil, err
	}
	var body struct {
		Action    constants.ClockAction `json:"action"`
		Latitude  float64               `json:"latitude"`
		Longitude float64               `json:"longitude"`
		JobID     string                `json:"jobId"`
		Notes     string                `json:"notes"`
	}
	if err := decodeStruct(in, schema.ClockAction, &body); err != nil {
		return nil, err
	}
	req := timesheet.ClockRequest{
		EmployeeID: employeeID,
		Action:     body.Action,
		Latitude:   body.Latitude,
		Longitude:  body.Longitude,
		JobID:      body.JobID,
		Notes:      body.Notes,
	}

	res, err := s.timesheets.Clock(ctx, req)
	if err != nil {
		return nil, err
	}
	return encodeStruct(res)
}

func (s *FieldOpsService) CreateEstimate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req estimates.CreateRequest
	if err := decodeStruct(in, schema.Estimate, &req); err != nil {
		return nil, err
	}
	est, err := s.estimates.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	return encodeStruct(map[string]any{"estimate": est, "breakdown": est.Breakdown})
}

func (s *FieldOpsService) ListEstimates(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req struct {
		Limit int `json:"limit"`
	}
	if err := decodeStruct(in, schema.ListParameters, &req); err != nil {
		return nil, err
	}
	list, err := s.estimates.List(ctx, req.Limit)
	if err != nil {
		return nil, err
	}
	return encodeStruct(map[string][]*entity.Estimate{"estimates": list})
}

func (s *FieldOpsService) GetXP(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	employeeID, err := actingEmployee(ctx)
	if err != nil {
		return nil, err
	}
	view, err := s.gamification.GetXP(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return encodeStruct(view)
}

func (s *FieldOpsService) AwardXP(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	employeeID, err := actingEmployee(ctx)
	if err != nil {
		return nil, err
	}
	var req struct {
		Amount int    `json:"amount"`
		Reason string `json:"reason"`
	}
	if err := decodeStruct(in, schema.AwardXP, &req); err != nil {
		return nil, err
	}
	view, err := s.gamification.AwardXP(ctx, employeeID, req.Amount, req.Reason)
	if err != nil {
		return nil, err
	}
	return encodeStruct(view)
}

func actingEmployee(ctx context.Context) (uuid.UUID, error) {
	return common.ParseUUIDField(MetadataEmployeeID, common.EmployeeIDFromContext(ctx))
}
