package api

import (
	"context"
	"errors"

	grpc "google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/beka-birhanu/cheese-chase-server/service/i"
)

const (
	LobbyAdmin_ServiceName           = "catmouse.admin.v1.Lobby"
	LobbyAdmin_Roster_FullMethodName = "/catmouse.admin.v1.Lobby/Roster"
)

var ErrMissingLobby = errors.New("lobby admin needs a lobby")

// LobbyAdminServer is the read-only admin service over the lobby.
type LobbyAdminServer interface {
	// Roster returns the host, the match status and the listed players.
	Roster(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

type Server struct {
	lobby i.LobbyInspector
}

// RegisterNewLobbyAdmin registers the lobby admin service on gsr.
func RegisterNewLobbyAdmin(gsr grpc.ServiceRegistrar, lobby i.LobbyInspector) error {
	if lobby == nil {
		return ErrMissingLobby
	}

	gsr.RegisterService(&LobbyAdmin_ServiceDesc, &Server{lobby: lobby})
	return nil
}

func (s *Server) Roster(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return structpb.NewStruct(rosterView(s.lobby))
}

// rosterView flattens the lobby into plain values shared by the gRPC and JSON surfaces.
func rosterView(l i.LobbyInspector) map[string]any {
	roster := l.Roster()
	players := make([]any, 0, len(roster.Players))
	for _, p := range roster.Players {
		players = append(players, map[string]any{
			"id":   p.ID,
			"name": p.Name,
			"role": string(p.Role),
		})
	}

	return map[string]any{
		"host":         roster.HostID,
		"started":      l.Started(),
		"winThreshold": l.WinThreshold(),
		"players":      players,
	}
}

func _LobbyAdmin_Roster_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LobbyAdminServer).Roster(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: LobbyAdmin_Roster_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(LobbyAdminServer).Roster(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// LobbyAdmin_ServiceDesc describes the lobby admin service. The messages are well-known
// protobuf types, so no generated code is needed.
var LobbyAdmin_ServiceDesc = grpc.ServiceDesc{
	ServiceName: LobbyAdmin_ServiceName,
	HandlerType: (*LobbyAdminServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Roster",
			Handler:    _LobbyAdmin_Roster_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "catmouse/admin/v1/lobby.proto",
}

// LobbyAdminClient calls the lobby admin service.
type LobbyAdminClient struct {
	cc grpc.ClientConnInterface
}

func NewLobbyAdminClient(cc grpc.ClientConnInterface) *LobbyAdminClient {
	return &LobbyAdminClient{cc: cc}
}

func (c *LobbyAdminClient) Roster(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, LobbyAdmin_Roster_FullMethodName, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
