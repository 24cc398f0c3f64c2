package app

import (
	"github.com/specialistvlad/tidrun/internal/registry"
	"github.com/specialistvlad/tidrun/modules/env_vars"
	"github.com/specialistvlad/tidrun/modules/selfcheck"
)

// coreModules is the list of test modules compiled into the tidrun binary
// and registered when the caller supplies none.
var coreModules = []registry.Module{
	&selfcheck.Module{},
	&env_vars.Module{},
}
