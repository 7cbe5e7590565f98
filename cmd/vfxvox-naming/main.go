// Command vfxvox-naming is a validator plugin. Install it in the plugin
// directory and reference it from a rule file:
//
//	- name: lower_case_names
//	  type: plugin
//	  module: vfxvox-naming:lowercase
package main

import "github.com/ayudhinc/vfxvox-pipeline-utils/internal/adapters/outbound/plugins"

func main() {
	registry := plugins.NewRegistry()
	plugins.RegisterNaming(registry)
	plugins.Serve(plugins.ModuleServer{Module: plugins.NamingModule, Registry: registry})
}
