package render

// Renderer is the rendering backend driven by the frame orchestrator.
type Renderer interface {
	// Ready returns the command buffers queued since the last frame and a token for
	// the frame about to be built.
	Ready() ([]CommandBuffer, ReadyToken)
	// AddDefaultScene adds the backend's scene sub-graph to g.
	AddDefaultScene(
		g *Graph,
		ready ReadyToken,
		routines *Routines,
		skybox Skybox,
		resolution Resolution,
		samples SampleCount,
		clear Color,
	) error
	// ExecuteGraph runs g against target and presents the result.
	ExecuteGraph(g *Graph, target Target, cmds []CommandBuffer, ready ReadyToken) error
}
