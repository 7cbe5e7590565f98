package plugins

import (
	"context"
	"encoding/json"
	"fmt"
	"net/rpc"

	"github.com/hashicorp/go-plugin"

	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain"
)

// PluginTypeValidator is the name plugin binaries serve their validator under.
const PluginTypeValidator = "validator"

var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "VFXVOX_PLUGIN",
	MagicCookieValue: "4f1b0a3c9e2d7a65b8c1f0e9d3a2b7c6",
}

var PluginMap = map[string]plugin.Plugin{
	PluginTypeValidator: &ValidatorPlugin{},
}

// Validator is implemented by plugin binaries. One binary serves one module
// and may expose several callables.
type Validator interface {
	Validate(callable string, vctx domain.ValidatorContext) ([]domain.RawIssue, error)
}

// ValidateArgs crosses the process boundary. Options and issues travel as
// JSON since gob cannot encode arbitrary nested interface values.
type ValidateArgs struct {
	Callable string
	Root     string
	Rule     string
	Options  []byte
}

type ValidateReply struct {
	Issues []byte
}

type ValidatorRPCClient struct{ client *rpc.Client }

func (g *ValidatorRPCClient) Validate(callable string, vctx domain.ValidatorContext) ([]domain.RawIssue, error) {
	opts, err := json.Marshal(vctx.Options)
	if err != nil {
		return nil, fmt.Errorf("encoding options: %w", err)
	}
	var resp ValidateReply
	err = g.client.Call("Plugin.Validate", ValidateArgs{
		Callable: callable,
		Root:     vctx.Root,
		Rule:     vctx.Rule,
		Options:  opts,
	}, &resp)
	if err != nil {
		return nil, err
	}

	var issues []domain.RawIssue
	if len(resp.Issues) > 0 {
		if err := json.Unmarshal(resp.Issues, &issues); err != nil {
			return nil, fmt.Errorf("decoding plugin issues: %w", err)
		}
	}
	return issues, nil
}

type ValidatorRPCServer struct {
	Impl Validator
}

func (s *ValidatorRPCServer) Validate(args ValidateArgs, resp *ValidateReply) error {
	var opts map[string]any
	if len(args.Options) > 0 {
		if err := json.Unmarshal(args.Options, &opts); err != nil {
			return fmt.Errorf("decoding options: %w", err)
		}
	}
	issues, err := s.Impl.Validate(args.Callable, domain.ValidatorContext{
		Root:    args.Root,
		Rule:    args.Rule,
		Options: opts,
	})
	if err != nil {
		return err
	}
	resp.Issues, err = json.Marshal(issues)
	return err
}

type ValidatorPlugin struct {
	Impl Validator
}

func (p *ValidatorPlugin) Server(*plugin.MuxBroker) (interface{}, error) {
	return &ValidatorRPCServer{Impl: p.Impl}, nil
}

func (ValidatorPlugin) Client(b *plugin.MuxBroker, c *rpc.Client) (interface{}, error) {
	return &ValidatorRPCClient{client: c}, nil
}

// ModuleServer exposes the validators registered under one module as a
// plugin Validator. It is what a plugin binary passes to Serve.
type ModuleServer struct {
	Module   string
	Registry *Registry
}

func (m ModuleServer) Validate(callable string, vctx domain.ValidatorContext) ([]domain.RawIssue, error) {
	v, err := m.Registry.Resolve(domain.PluginRef{Module: m.Module, Callable: callable})
	if err != nil {
		return nil, err
	}
	return v.Validate(context.Background(), vctx)
}

// Serve runs a plugin binary serving impl. It blocks until the host exits.
func Serve(impl Validator) {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: HandshakeConfig,
		Plugins: map[string]plugin.Plugin{
			PluginTypeValidator: &ValidatorPlugin{Impl: impl},
		},
	})
}
