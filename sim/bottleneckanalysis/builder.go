package bottleneckanalysis

import "github.com/sarchlab/satacmd/sim"

// A BufferAnalyzerBuilder can build BufferAnalyzers.
type BufferAnalyzerBuilder struct {
	timeTeller sim.TimeTeller
}

// MakeBufferAnalyzerBuilder returns a BufferAnalyzerBuilder.
func MakeBufferAnalyzerBuilder() BufferAnalyzerBuilder {
	return BufferAnalyzerBuilder{}
}

// WithTimeTeller sets the clock used to weight buffer levels.
func (b BufferAnalyzerBuilder) WithTimeTeller(
	timeTeller sim.TimeTeller,
) BufferAnalyzerBuilder {
	b.timeTeller = timeTeller
	return b
}

// Build creates a BufferAnalyzer.
func (b BufferAnalyzerBuilder) Build() *BufferAnalyzer {
	if b.timeTeller == nil {
		panic("time teller is not set")
	}

	return &BufferAnalyzer{
		timeTeller: b.timeTeller,
		buffers:    make(map[string]*bufferInfo),
	}
}
