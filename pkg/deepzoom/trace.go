package deepzoom

import "fmt"

// Observer receives a notification at each major step of pyramid
// construction and tile extraction. It is injected per pyramid at
// construction, never global, so tests can assert on the emitted
// sequence without process-wide side effects. A nil Observer disables
// tracing.
type Observer func(step string, detail string)

func (p *Pyramid) trace(step, format string, args ...interface{}) {
	if p.observe == nil {
		return
	}
	p.observe(step, fmt.Sprintf(format, args...))
}
