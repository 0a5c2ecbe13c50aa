package grpc_control

import (
	"context"
	"encoding/json"
	"errors"

	"market-dashboard/src/aggregator"
	"market-dashboard/src/helpers"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Controller is the part of the refresh controller the control plane drives.
type Controller interface {
	Snapshot() models.MSnapshot
	SetWatchList(list []string) []string
	SetUseAlternate(enabled bool)
	UseAlternate() bool
	Refresh(ctx context.Context) (models.MSnapshot, error)
}

type ProviderDirectory interface {
	DescribeAll() []models.MProviderInfo
	Get(name string) (interfaces.IProvider, error)
}

type WatchListStore interface {
	SaveWatchList(ctx context.Context, symbols []string) error
}

// -----------------------------------------------------------------------------

// ControlService implements ControlServer
type ControlService struct {
	Controller Controller
	Providers  ProviderDirectory
	Store      WatchListStore
	Logger     *logger.Logger
}

var _ ControlServer = (*ControlService)(nil)

// NewControlService creates a new instance of ControlService. store may be nil.
func NewControlService(ctrl Controller, providers ProviderDirectory, store WatchListStore, log *logger.Logger) *ControlService {
	return &ControlService{
		Controller: ctrl,
		Providers:  providers,
		Store:      store,
		Logger:     log,
	}
}

// -----------------------------------------------------------------------------

func (s *ControlService) GetSnapshot(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return toStruct(s.Controller.Snapshot())
}

// -----------------------------------------------------------------------------

// SetWatchList expects {"symbols": ["EXCHANGE:TICKER", ...]} and answers with
// the normalized list.
func (s *ControlService) SetWatchList(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	raw, ok := req.GetFields()["symbols"]
	if !ok || raw.GetListValue() == nil {
		return nil, status.Error(codes.InvalidArgument, "symbols list is required")
	}

	list := []string{}
	for _, v := range raw.GetListValue().GetValues() {
		str, isStr := v.GetKind().(*structpb.Value_StringValue)
		if !isStr {
			return nil, status.Error(codes.InvalidArgument, "symbols must be strings")
		}
		list = append(list, str.StringValue)
	}
	if len(list) == 0 {
		return nil, status.Error(codes.InvalidArgument, "symbols list cannot be empty")
	}

	normalized := s.Controller.SetWatchList(list)
	if s.Store != nil {
		if err := s.Store.SaveWatchList(ctx, normalized); err != nil {
			s.Logger.Error("gRPC: failed to persist watch-list: %v", err)
		}
	}

	s.Logger.Info("gRPC: SetWatchList success. Count: %d", len(normalized))
	values := make([]interface{}, len(normalized))
	for i, sym := range normalized {
		values[i] = sym
	}
	return structpb.NewStruct(map[string]interface{}{"symbols": values})
}

// -----------------------------------------------------------------------------

func (s *ControlService) SetAlternate(ctx context.Context, req *wrapperspb.BoolValue) (*wrapperspb.BoolValue, error) {
	s.Controller.SetUseAlternate(req.GetValue())
	return wrapperspb.Bool(s.Controller.UseAlternate()), nil
}

// -----------------------------------------------------------------------------

func (s *ControlService) Refresh(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	snap, err := s.Controller.Refresh(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(snap)
}

// -----------------------------------------------------------------------------

func (s *ControlService) ListProviders(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	out := []interface{}{}
	for _, info := range s.Providers.DescribeAll() {
		out = append(out, map[string]interface{}{
			"name":         info.Name,
			"status":       string(info.Status),
			"message":      info.Message,
			"referenceUrl": info.ReferenceURL,
		})
	}
	return structpb.NewList(out)
}

// -----------------------------------------------------------------------------

func (s *ControlService) RunSelfTest(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	if req.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "provider name is required")
	}
	provider, err := s.Providers.Get(req.GetValue())
	if err != nil {
		return nil, status.Errorf(codes.NotFound, "provider %s not found", req.GetValue())
	}

	res, err := provider.SelfTest(ctx)
	if res == nil {
		res = &models.MSelfTestResult{Provider: provider.Name()}
		if err != nil {
			res.Detail = err.Error()
		}
	}
	return toStruct(res)
}

// -----------------------------------------------------------------------------

// toStruct goes through JSON so the wire shape matches the REST API.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, status.Errorf(codes.Internal, "encode: %v", err)
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode: %v", err)
	}
	return out, nil
}

func toStatus(err error) error {
	var (
		validation *helpers.ValidationError
		network    *helpers.NetworkError
		provider   *helpers.ProviderError
	)
	switch {
	case errors.Is(err, aggregator.ErrStopped):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.As(err, &validation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.As(err, &network), errors.As(err, &provider):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
