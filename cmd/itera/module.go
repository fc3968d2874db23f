package main

import (
	"github.com/reusee/dscope"
	"github.com/reusee/itera/engines"
	"github.com/reusee/itera/iteraconfigs"
)

type Module struct {
	dscope.Module
	Engines engines.Module
	Configs iteraconfigs.Module
}
