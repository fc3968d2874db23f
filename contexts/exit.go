package contexts

import (
	"github.com/reusee/itera/schemas"
)

// Exit is a named terminal outcome a program may choose, optionally typed.
type Exit struct {
	Name        string
	Description string
	Schema      *schemas.Schema
}
