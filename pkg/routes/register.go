package routes

// Register mounts every group on mux and records its operations on spec.
// Mux patterns omit basePath because modules strip their prefix before dispatch;
// spec paths include it so documented URLs are absolute.
func Register(mux Mux, basePath string, spec Spec, groups ...Group) {
	for _, g := range groups {
		register(mux, basePath, "", spec, g)
	}
}

func register(mux Mux, basePath, parent string, spec Spec, g Group) {
	prefix := parent + g.Prefix

	if spec != nil && len(g.Schemas) > 0 {
		spec.AddSchemas(g.Schemas)
	}

	for _, r := range g.Routes {
		pattern := prefix + r.Pattern
		mux.HandleFunc(r.Method+" "+pattern, r.Handler)

		if spec != nil && r.OpenAPI != nil {
			op := r.OpenAPI
			if len(op.Tags) == 0 {
				op.Tags = g.Tags
			}
			spec.AddOperation(basePath+pattern, r.Method, op)
		}
	}

	for _, child := range g.Children {
		register(mux, basePath, prefix, spec, child)
	}
}
