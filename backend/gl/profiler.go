package gl

// profilerFrames is the number of timer queries in flight. Results are read
// profilerFrames-1 frames after they were issued so that the CPU never
// waits on the GPU.
const profilerFrames = 4

// Profiler measures GPU time with a ring of TIME_ELAPSED queries.
type Profiler struct {
	f       Functions
	queries [profilerFrames]uint32
	frame   int
}

// NewProfiler allocates the query ring.
func NewProfiler(f Functions) *Profiler {
	p := &Profiler{f: f}
	for i := range p.queries {
		p.queries[i] = f.GenQuery()
	}
	return p
}

// Begin starts timing the current frame.
func (p *Profiler) Begin() {
	p.f.BeginQuery(TIME_ELAPSED, p.queries[p.frame%profilerFrames])
}

// End stops timing the current frame and returns the GPU time, in
// milliseconds, of the frame issued profilerFrames-1 frames earlier. It
// returns 0 until the ring has filled.
func (p *Profiler) End() float32 {
	p.f.EndQuery(TIME_ELAPSED)
	p.frame++
	if p.frame < profilerFrames {
		return 0
	}
	ns := p.f.GetQueryObjectui64(p.queries[p.frame%profilerFrames], QUERY_RESULT)
	return float32(ns) / 1e6
}

// Destroy deletes the queries.
func (p *Profiler) Destroy() {
	for i, q := range p.queries {
		p.f.DeleteQuery(q)
		p.queries[i] = 0
	}
}
