package out

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"time"

	dispatchdomain "dropkit/internal/modules/dispatch/domain"
	processorrpc "dropkit/internal/modules/registry/adapter/out/rpc"
	"dropkit/internal/modules/registry/domain"
	registryout "dropkit/internal/modules/registry/port/out"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"
)

const (
	defaultStartTimeout = 3 * time.Second
	defaultCallTimeout  = 5 * time.Second
	defaultRunTimeout   = 5 * time.Minute
)

type GRPCHost struct{}

func NewGRPCHost() registryout.Host {
	return &GRPCHost{}
}

func (h *GRPCHost) CheckLifecycle(ctx context.Context, manifest domain.Manifest) error {
	client, closeFn, err := h.connect(manifest, defaultStartTimeout)
	if err != nil {
		return err
	}
	defer closeFn()

	callCtx, cancel := h.callContext(ctx, defaultCallTimeout)
	defer cancel()
	if _, err := client.GetMetadata(callCtx); err != nil {
		return fmt.Errorf("get metadata: %w", err)
	}
	return nil
}

func (h *GRPCHost) GetMetadata(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error) {
	client, closeFn, err := h.connect(manifest, defaultStartTimeout)
	if err != nil {
		return domain.Metadata{}, err
	}
	defer closeFn()

	callCtx, cancel := h.callContext(ctx, defaultCallTimeout)
	defer cancel()

	meta, err := client.GetMetadata(callCtx)
	if err != nil {
		return domain.Metadata{}, fmt.Errorf("get metadata: %w", err)
	}
	return domain.Metadata{Name: meta.Name, Version: meta.Version}, nil
}

func (h *GRPCHost) Run(ctx context.Context, manifest domain.Manifest, op dispatchdomain.Operation, deps map[string]any) ([]domain.Output, error) {
	client, closeFn, err := h.connect(manifest, defaultStartTimeout)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	callCtx, cancel := h.callContext(ctx, defaultRunTimeout)
	defer cancel()
	response, err := client.Run(callCtx, runRequest(op, deps))
	if err != nil {
		if callCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%w: %s", domain.ErrProcessorTimeout, op.Processor)
		}
		return nil, fmt.Errorf("run operation: %w", err)
	}
	outputs := make([]domain.Output, 0, len(response.Outputs))
	for _, output := range response.Outputs {
		outputs = append(outputs, domain.Output{
			Kind:  domain.OutputKind(output.Kind),
			Value: output.Value,
			Flair: output.Flair,
		})
	}
	return outputs, nil
}

func runRequest(op dispatchdomain.Operation, deps map[string]any) *processorrpc.RunRequest {
	request := &processorrpc.RunRequest{
		OperationID: op.ID,
		Processor:   op.Processor,
		Options:     map[string]any(op.Options),
		Extra:       op.Extra,
		Deps:        wireDeps(deps),
	}
	if op.Item != nil {
		item := wireItem(*op.Item)
		request.Item = &item
	}
	for _, it := range op.Items {
		request.Items = append(request.Items, wireItem(it))
	}
	return request
}

func wireItem(it dispatchdomain.Item) processorrpc.Item {
	return processorrpc.Item{
		ID:       it.ID,
		Kind:     string(it.Kind),
		Path:     it.Path,
		MimeType: it.MimeType,
		Size:     it.Size,
		Contents: it.Contents,
		Type:     it.Type,
		Text:     it.Text,
		URL:      it.URL,
	}
}

// wireDeps keeps only payloads the JSON codec can carry. In-process
// payloads can be arbitrary Go values; anything not marshalable crosses
// the boundary as nil, the same shape an optional miss has.
func wireDeps(deps map[string]any) map[string]any {
	if deps == nil {
		return nil
	}
	out := make(map[string]any, len(deps))
	for name, value := range deps {
		if value == nil {
			out[name] = nil
			continue
		}
		if _, err := json.Marshal(value); err != nil {
			out[name] = nil
			continue
		}
		out[name] = value
	}
	return out
}

func (h *GRPCHost) connect(manifest domain.Manifest, startTimeout time.Duration) (processorrpc.DropkitProcessorClient, func(), error) {
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  processorrpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          processorrpc.PluginMap(nil),
		Cmd:              exec.Command(manifest.Binary),
		Managed:          true,
		StartTimeout:     startTimeout,
		Logger:           hclog.New(&hclog.LoggerOptions{Output: io.Discard, Level: hclog.NoLevel}),
	})
	closeFn := func() { client.Kill() }

	rpcClient, err := client.Client()
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("start processor client: %w", err)
	}
	raw, err := rpcClient.Dispense(processorrpc.PluginMapKey)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("dispense processor: %w", err)
	}
	typed, ok := raw.(processorrpc.DropkitProcessorClient)
	if !ok {
		closeFn()
		return nil, nil, fmt.Errorf("processor rpc client type mismatch")
	}
	return typed, closeFn, nil
}

func (h *GRPCHost) callContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := parent.Deadline(); ok {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
