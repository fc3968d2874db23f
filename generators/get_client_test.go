package generators

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/reusee/dscope"
	"github.com/reusee/itera/configs"
	"github.com/reusee/itera/modes"
)

func TestGetClient(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ITERA_MODEL", "")

	configPath := filepath.Join(t.TempDir(), "test.cue")
	if err := os.WriteFile(configPath, []byte(`
default_model: "foo"
generators: [
	{
		name:           "foo"
		type:           "openai"
		api_key:        "sk-test"
		base_url:       "https://example.com/v1"
		model:          "foo-1"
		context_tokens: 32768
	},
	{
		name:  "local"
		type:  "ollama"
		model: "qwen3"
	},
]
`), 0644); err != nil {
		t.Fatal(err)
	}

	dscope.New(
		modes.ForTest(t),
		dscope.Provide(configs.NewLoader([]string{configPath}, "")),
		new(Module),
	).Call(func(
		get GetClient,
		defaultModel DefaultModelName,
	) {

		if defaultModel != "foo" {
			t.Fatalf("got %v", defaultModel)
		}

		client, err := get("foo")
		if err != nil {
			t.Fatal(err)
		}
		args := client.Args()
		if args.BaseURL != "https://example.com/v1" {
			t.Fatalf("got %+v", args)
		}
		if args.Model != "foo-1" {
			t.Fatalf("got %+v", args)
		}
		if client.ContextTokens() != 32768 {
			t.Fatalf("got %v", client.ContextTokens())
		}

		client, err = get("local")
		if err != nil {
			t.Fatal(err)
		}
		if client.Args().BaseURL != "http://127.0.0.1:11434/v1" {
			t.Fatalf("got %+v", client.Args())
		}

		client, err = get("ollama:qwen3")
		if err != nil {
			t.Fatal(err)
		}
		if client.Args().Model != "qwen3" {
			t.Fatalf("got %+v", client.Args())
		}
		if client.ContextTokens() != 128*K {
			t.Fatalf("got %v", client.ContextTokens())
		}

		if _, err := get("no-such-model"); err == nil {
			t.Fatal("should fail")
		}

	})
}

func TestGetClientEnvFallback(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("OPENAI_BASE_URL", "")

	dscope.New(
		modes.ForTest(t),
		dscope.Provide(configs.NewLoader(nil, "")),
		new(Module),
	).Call(func(
		get GetClient,
	) {
		client, err := get("gpt-4.1-mini")
		if err != nil {
			t.Fatal(err)
		}
		args := client.Args()
		if args.BaseURL != "https://api.openai.com/v1" {
			t.Fatalf("got %+v", args)
		}
		if args.Model != "gpt-4.1-mini" {
			t.Fatalf("got %+v", args)
		}
	})
}
