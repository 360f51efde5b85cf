package shader

// PreProcessorBuilderOption is a functional option for configuring a PreProcessor.
type PreProcessorBuilderOption func(*preProcessor)

// WithInclude registers an include under key.
func WithInclude(key, source, typeName string) PreProcessorBuilderOption {
	return func(p *preProcessor) {
		p.includes[key] = Include{Source: source, Type: typeName}
	}
}
