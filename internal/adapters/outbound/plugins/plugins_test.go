package plugins_test

import (
	"context"
	"net"
	"net/rpc"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/adapters/outbound/plugins"
	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain"
)

func builtinRef(callable string) domain.PluginRef {
	return domain.PluginRef{Module: plugins.BuiltinModule, Callable: callable}
}

func TestRegistry_ResolveRegistered(t *testing.T) {
	reg := plugins.NewRegistry()
	plugins.RegisterBuiltins(reg)

	assert.Equal(t, []string{"vfxvox.builtin:empty_dirs", "vfxvox.builtin:path_length"}, reg.References())

	v, err := reg.Resolve(builtinRef("empty_dirs"))
	require.NoError(t, err)
	assert.NotNil(t, v)

	_, err = reg.Resolve(builtinRef("missing"))
	assert.ErrorIs(t, err, plugins.ErrNotFound)
}

func TestChain_FirstResolverWins(t *testing.T) {
	first := plugins.NewRegistry()
	second := plugins.NewRegistry()
	ref := domain.PluginRef{Module: "studio.checks", Callable: "validate"}
	second.RegisterFunc(ref, func(context.Context, domain.ValidatorContext) ([]domain.RawIssue, error) {
		return []domain.RawIssue{{"message": "from second"}}, nil
	})

	chain := plugins.Chain{first, nil, second}
	v, err := chain.Resolve(ref)
	require.NoError(t, err)
	issues, err := v.Validate(context.Background(), domain.ValidatorContext{})
	require.NoError(t, err)
	assert.Equal(t, "from second", issues[0]["message"])

	_, err = chain.Resolve(domain.PluginRef{Module: "nope", Callable: "validate"})
	assert.ErrorIs(t, err, plugins.ErrNotFound)

	_, err = plugins.Chain{}.Resolve(ref)
	assert.ErrorIs(t, err, plugins.ErrNotFound)
}

func TestEmptyDirs(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "seq_010", "shot_020", "comp"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "seq_010", "shot_030"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "seq_010", "shot_030", "notes.txt"), []byte("x"), 0644))

	issues, err := plugins.EmptyDirs(context.Background(), domain.ValidatorContext{Root: root, Rule: "no empties"})
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "warning", issues[0]["level"])
	assert.Equal(t, "Empty directory: seq_010/shot_020/comp", issues[0]["message"])
	assert.Equal(t, "no empties", issues[0]["rule"])
}

func TestPathLength(t *testing.T) {
	root := t.TempDir()
	long := strings.Repeat("a", 30)
	require.NoError(t, os.MkdirAll(filepath.Join(root, long), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "short.txt"), []byte("x"), 0644))

	issues, err := plugins.PathLength(context.Background(), domain.ValidatorContext{
		Root:    root,
		Options: map[string]any{"max_length": 20},
	})
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, 30, issues[0]["length"])
	assert.Contains(t, issues[0]["message"], "exceeds 20")

	_, err = plugins.PathLength(context.Background(), domain.ValidatorContext{
		Root:    root,
		Options: map[string]any{"max_length": 0.0},
	})
	assert.Error(t, err)
}

func TestRPC_RoundTrip(t *testing.T) {
	reg := plugins.NewRegistry()
	ref := domain.PluginRef{Module: "studio.checks", Callable: "naming"}
	reg.RegisterFunc(ref, func(_ context.Context, vctx domain.ValidatorContext) ([]domain.RawIssue, error) {
		return []domain.RawIssue{{
			"level":   "info",
			"message": "checked " + vctx.Root,
			"limit":   vctx.Options["limit"],
		}}, nil
	})

	server := rpc.NewServer()
	require.NoError(t, server.RegisterName("Plugin", &plugins.ValidatorRPCServer{
		Impl: plugins.ModuleServer{Module: "studio.checks", Registry: reg},
	}))
	clientConn, serverConn := net.Pipe()
	go server.ServeConn(serverConn)

	raw, err := plugins.ValidatorPlugin{}.Client(nil, rpc.NewClient(clientConn))
	require.NoError(t, err)
	client := raw.(plugins.Validator)

	issues, err := client.Validate("naming", domain.ValidatorContext{
		Root:    "/show",
		Options: map[string]any{"limit": 3},
	})
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "checked /show", issues[0]["message"])
	assert.Equal(t, 3.0, issues[0]["limit"])

	_, err = client.Validate("unknown", domain.ValidatorContext{Root: "/show"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validator not found")
}

func TestLauncher_MissingBinary(t *testing.T) {
	l := plugins.NewLauncher(t.TempDir(), nil)
	defer l.Close()

	_, err := l.Resolve(domain.PluginRef{Module: "studio.checks", Callable: "validate"})
	assert.ErrorIs(t, err, plugins.ErrNotFound)

	_, err = l.Resolve(domain.PluginRef{Module: "../escape", Callable: "validate"})
	assert.Error(t, err)
}

func TestLauncher_ExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	l := plugins.NewLauncher("~/.vfxvox/plugins", nil)
	assert.Equal(t, filepath.Join(home, ".vfxvox", "plugins"), l.Dir())
}

func TestNamingValidators(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "seq_010", "Shot_020"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "seq_010", "plate 01.exr"), []byte("x"), 0644))

	reg := plugins.NewRegistry()
	plugins.RegisterNaming(reg)
	assert.Equal(t, []string{"vfxvox-naming:lowercase", "vfxvox-naming:no_spaces", "vfxvox-naming:snake_case"}, reg.References())

	issues, err := plugins.Lowercase(context.Background(), domain.ValidatorContext{Root: root})
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "Name is not lower case: seq_010/Shot_020", issues[0]["message"])

	issues, err = plugins.NoSpaces(context.Background(), domain.ValidatorContext{
		Root:    root,
		Options: map[string]any{"level": "error"},
	})
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "Name contains whitespace: seq_010/plate 01.exr", issues[0]["message"])
	assert.Equal(t, "error", issues[0]["level"])
}

func TestSnakeCase(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "seq_010", "HDRPlate"), 0755))
	for _, name := range []string{"ShotComp_v001.1001.exr", "comp_v001.1001.exr", "shot010_bg.exr"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, "seq_010", name), []byte("x"), 0644))
	}

	issues, err := plugins.SnakeCase(context.Background(), domain.ValidatorContext{Root: root, Rule: "names"})
	require.NoError(t, err)
	require.Len(t, issues, 2)
	assert.Equal(t, "Name is not snake_case: seq_010/HDRPlate (expected hdr_plate)", issues[0]["message"])
	assert.Equal(t, "Name is not snake_case: seq_010/ShotComp_v001.1001.exr (expected shot_comp_v001.1001.exr)", issues[1]["message"])
	assert.Equal(t, "names", issues[1]["rule"])
}
