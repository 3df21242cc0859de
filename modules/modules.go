package modules

import (
	"github.com/Seklfreak/Warden/modules/plugins"
)

var (
	PluginExtendedList = []ExtendedPlugin{
		&plugins.Filter{},
	}
)
