package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-plugin"

	processorrpc "dropkit/internal/modules/registry/adapter/out/rpc"
)

// server is the reference external processor: it hashes the files an
// operation carries and emits one checksum line per file.
type server struct{}

func (s *server) GetMetadata(_ context.Context, _ *processorrpc.Empty) (*processorrpc.Metadata, error) {
	return &processorrpc.Metadata{Name: "reference", Version: "1.0.0"}, nil
}

func (s *server) Run(_ context.Context, in *processorrpc.RunRequest) (*processorrpc.RunResponse, error) {
	items := in.Items
	if in.Item != nil {
		items = []processorrpc.Item{*in.Item}
	}
	response := &processorrpc.RunResponse{}
	for _, item := range items {
		switch item.Kind {
		case "file":
			sum, err := checksumFile(item.Path)
			if err != nil {
				response.Outputs = append(response.Outputs, processorrpc.Output{
					Kind:  "error",
					Value: fmt.Sprintf("%s: %v", item.Path, err),
				})
				continue
			}
			response.Outputs = append(response.Outputs, processorrpc.Output{
				Kind:  "string",
				Value: fmt.Sprintf("%s  %s", sum, item.Path),
				Flair: "sha256",
			})
		case "string":
			sum := sha256.Sum256([]byte(item.Text))
			response.Outputs = append(response.Outputs, processorrpc.Output{
				Kind:  "string",
				Value: fmt.Sprintf("%s  (text)", hex.EncodeToString(sum[:])),
				Flair: "sha256",
			})
		default:
			response.Outputs = append(response.Outputs, processorrpc.Output{
				Kind:  "warning",
				Value: fmt.Sprintf("skipping %s item %s", item.Kind, item.ID),
			})
		}
	}
	return response, nil
}

func checksumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func main() {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: processorrpc.HandshakeConfig,
		Plugins:         processorrpc.PluginMap(&server{}),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
