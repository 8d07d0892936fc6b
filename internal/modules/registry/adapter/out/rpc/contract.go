package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const (
	PluginMapKey      = "dropkit"
	serviceName       = "dropkit.processor.v1.DropkitProcessor"
	jsonCodecName     = "json"
	methodGetMetadata = "/" + serviceName + "/GetMetadata"
	methodRun         = "/" + serviceName + "/Run"
)

var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "DROPKIT_PROCESSOR",
	MagicCookieValue: "dropkit",
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return jsonCodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type Empty struct{}

type Metadata struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Item is the wire form of one drop item. Contents travels base64
// through the JSON codec.
type Item struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	Path     string `json:"path,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
	Size     int64  `json:"size,omitempty"`
	Contents []byte `json:"contents,omitempty"`
	Type     string `json:"type,omitempty"`
	Text     string `json:"text,omitempty"`
	URL      string `json:"url,omitempty"`
}

type RunRequest struct {
	OperationID string         `json:"operation_id"`
	Processor   string         `json:"processor"`
	Options     map[string]any `json:"options"`
	Item        *Item          `json:"item,omitempty"`
	Items       []Item         `json:"items,omitempty"`
	Extra       map[string]any `json:"extra,omitempty"`
	Deps        map[string]any `json:"deps,omitempty"`
}

type Output struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
	Flair string `json:"flair,omitempty"`
}

type RunResponse struct {
	Outputs []Output `json:"outputs"`
}

type DropkitProcessorServer interface {
	GetMetadata(ctx context.Context, in *Empty) (*Metadata, error)
	Run(ctx context.Context, in *RunRequest) (*RunResponse, error)
}

type DropkitProcessorClient interface {
	GetMetadata(ctx context.Context) (*Metadata, error)
	Run(ctx context.Context, in *RunRequest) (*RunResponse, error)
}

type dropkitProcessorClient struct {
	conn *grpc.ClientConn
}

func NewDropkitProcessorClient(conn *grpc.ClientConn) DropkitProcessorClient {
	return &dropkitProcessorClient{conn: conn}
}

func (c *dropkitProcessorClient) GetMetadata(ctx context.Context) (*Metadata, error) {
	out := &Metadata{}
	if err := c.conn.Invoke(ctx, methodGetMetadata, &Empty{}, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *dropkitProcessorClient) Run(ctx context.Context, in *RunRequest) (*RunResponse, error) {
	out := &RunResponse{}
	if err := c.conn.Invoke(ctx, methodRun, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func RegisterDropkitProcessorServer(server grpc.ServiceRegistrar, impl DropkitProcessorServer) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*DropkitProcessorServer)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "GetMetadata",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &Empty{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.GetMetadata(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetMetadata}
					handler := func(ctx context.Context, req any) (any, error) {
						empty, ok := req.(*Empty)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.GetMetadata(ctx, empty)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
			{
				MethodName: "Run",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &RunRequest{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.Run(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodRun}
					handler := func(ctx context.Context, req any) (any, error) {
						inReq, ok := req.(*RunRequest)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.Run(ctx, inReq)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "schemas/processor-rpc-v1.proto",
	}, impl)
}

type GRPCPlugin struct {
	plugin.NetRPCUnsupportedPlugin
	Impl DropkitProcessorServer
}

func (p *GRPCPlugin) GRPCServer(_ *plugin.GRPCBroker, server *grpc.Server) error {
	RegisterDropkitProcessorServer(server, p.Impl)
	return nil
}

func (p *GRPCPlugin) GRPCClient(_ context.Context, _ *plugin.GRPCBroker, conn *grpc.ClientConn) (any, error) {
	return NewDropkitProcessorClient(conn), nil
}

func PluginMap(impl DropkitProcessorServer) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginMapKey: &GRPCPlugin{Impl: impl},
	}
}
