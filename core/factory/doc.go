// Package factory instantiates pluggable modules, such as metrics sinks or
// run journals, from configuration. A module is described by a type name and
// a map of raw settings which the registered factory decodes into its own
// typed struct.
//
//	reg := factory.NewRegistry[io.Writer]()
//	reg.MustRegister("file", func(conf map[string]any) (io.Writer, error) {
//	    var c struct{ Path string `json:"path"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return os.Create(c.Path)
//	})
//	w, err := reg.Create(factory.ModuleConfig{Type: "file", Conf: map[string]any{"path": "runs.log"}})
package factory
