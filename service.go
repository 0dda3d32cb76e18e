package pboml

import (
	"go.uber.org/zap"
)

// Service orchestrates the document pipeline: parse, per-locale render,
// reference resolution, page assembly, and accessibility enhancement.
// A Service is safe for reuse; every call is a pure function of its input
// text aside from best-effort diagnostic logging.
type Service struct {
	strict bool
	logger *zap.Logger
	md     MarkdownConverter
	meta   MetaProvider
}

// Option customizes a Service.
type Option func(*Service)

// WithStrictMode enables the additional validation checks: required
// metadata fields, heading length caps, and no future release dates.
func WithStrictMode(strict bool) Option {
	return func(s *Service) { s.strict = strict }
}

// WithLogger sets the diagnostic logging sink. The default discards
// everything.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMarkdown replaces the default markdown engine.
func WithMarkdown(md MarkdownConverter) Option {
	return func(s *Service) {
		if md != nil {
			s.md = md
		}
	}
}

// WithMetaProvider replaces the default page-head metadata generator.
func WithMetaProvider(provider MetaProvider) Option {
	return func(s *Service) {
		if provider != nil {
			s.meta = provider
		}
	}
}

// New creates a Service with default collaborators.
func New(opts ...Option) *Service {
	s := &Service{
		logger: zap.NewNop(),
		md:     newGoldmarkConverter(),
		meta:   basicMetaProvider{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Parse decodes and validates text into a canonical Document. Any decode or
// validation failure aborts the call; no partial Document is returned.
func (s *Service) Parse(text string) (*Document, error) {
	return s.parse(text)
}

// Generate runs the full pipeline and returns one complete HTML document
// per locale. Generation is all-or-nothing: a failure on either locale
// fails the whole call.
func (s *Service) Generate(text string) (RenderedOutput, error) {
	doc, err := s.parse(text)
	if err != nil {
		return nil, err
	}

	out := make(RenderedOutput, len(Locales))
	for _, loc := range Locales {
		// A fresh render set per locale keeps per-render state (generated
		// host ids) from leaking across locales.
		rs := newRenderSet(loc, s.md)
		fragment, err := rs.renderDocument(doc)
		if err != nil {
			return nil, err
		}

		fragment = resolveReferences(fragment)

		page, err := assemblePage(loc, doc.Metadata, s.meta, fragment)
		if err != nil {
			return nil, err
		}

		out[loc] = enhanceAccessibility(page, loc, s.logger)
	}
	return out, nil
}
