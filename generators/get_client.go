package generators

import (
	"fmt"
	"os"
	"strings"

	"github.com/reusee/itera/configs"
	"github.com/reusee/itera/vars"
)

type DefaultModelName string

func (Module) DefaultModelName(
	loader configs.Loader,
) DefaultModelName {
	var name string
	_ = loader.AssignFirst("default_model", &name)
	return DefaultModelName(vars.FirstNonZero(
		name,
		os.Getenv("ITERA_MODEL"),
		"gpt-4.1-mini",
	))
}

type GetClient func(name string) (Client, error)

func (Module) GetClient(
	newOpenAI NewOpenAI,
	getSpecs GetClientSpecs,
) GetClient {
	return func(name string) (Client, error) {

		// user-defined first
		specs, err := getSpecs()
		if err != nil {
			return nil, err
		}
		for _, spec := range specs {
			if spec.Name != name {
				continue
			}
			switch strings.ToLower(spec.Type) {
			case "openai", "open-ai", "open_ai", "":
				return newOpenAI(spec.ClientArgs, spec.APIKey), nil
			case "ollama":
				spec.ClientArgs.BaseURL = "http://127.0.0.1:11434/v1"
				return newOpenAI(spec.ClientArgs, ""), nil
			default:
				return nil, fmt.Errorf("unknown generator type: %q", spec.Type)
			}
		}

		// ollama
		provider, modelName, ok := strings.Cut(name, ":")
		if ok && provider == "ollama" {
			return newOpenAI(ClientArgs{
				BaseURL: "http://127.0.0.1:11434/v1",
				Model:   modelName,
			}, ""), nil
		}

		// environment fallback
		if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
			return newOpenAI(ClientArgs{
				BaseURL: vars.FirstNonZero(
					os.Getenv("OPENAI_BASE_URL"),
					"https://api.openai.com/v1",
				),
				Model: name,
			}, apiKey), nil
		}

		return nil, fmt.Errorf("invalid model: %s", name)
	}
}
