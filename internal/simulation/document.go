package simulation

import "github.com/papapumpkin/meridian/internal/document"

// Document re-emits the general, body and integrator settings of c.
// Resolving the result again yields an equal Context, apart from pass ID,
// loaded kernel paths and runtime bodies.
func (c *Context) Document() document.Value {
	kernels := make([]document.Value, len(c.Kernels))
	for i, k := range c.Kernels {
		kernels[i] = document.String(k)
	}
	general := document.Map(map[string]document.Value{
		keyStartEpoch:             document.Number(c.StartEpoch),
		keyEndEpoch:               document.Number(c.EndEpoch),
		keyGlobalFrameOrigin:      document.String(c.GlobalFrameOrigin),
		keyGlobalFrameOrientation: document.String(c.GlobalFrameOrientation),
		keySpiceKernels:           document.List(kernels...),
		keyPreloadSpiceData:       document.Bool(c.PreloadSpiceData),
	})
	out := map[string]document.Value{
		"simulation": general,
		"bodies":     c.BodySettings.Document(),
	}
	if c.Integrator != nil {
		out["integrator"] = c.Integrator.Document()
	}
	return document.Map(out)
}
