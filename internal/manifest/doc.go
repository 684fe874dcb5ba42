// Package manifest reads asset manifests: YAML or JSON documents that list
// the descriptors to load and the options to load them with.
//
//	m, err := manifest.Load("assets.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	h, err := mgr.Load(m.Assets, m.Options.LoadOptions())
package manifest
