package generators

import (
	"sync"

	"github.com/reusee/itera/configs"
)

// ClientSpec is a user-defined model entry under the `generators` config key.
type ClientSpec struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	APIKey string `json:"api_key"`
	ClientArgs
}

type GetClientSpecs func() ([]ClientSpec, error)

func (Module) GetClientSpecs(
	loader configs.Loader,
) GetClientSpecs {
	return sync.OnceValues(func() (ret []ClientSpec, err error) {
		defer func() {
			if p := recover(); p != nil {
				if e, ok := p.(error); ok {
					err = e
					return
				}
				panic(p)
			}
		}()
		for specs := range configs.All[[]ClientSpec](loader, "generators") {
			ret = append(ret, specs...)
		}
		return
	})
}
