package app

// The three failure kinds a pipeline call can end in. Each keeps the
// original cause for diagnostics and carries a fixed message that is safe to
// show to end users.

// FetchError reports that the source page could not be retrieved or parsed.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return "fetch " + e.URL + ": " + e.Err.Error()
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) UserMessage() string {
	return "could not retrieve or parse the source page"
}

// EnhancementError reports that the model call failed.
type EnhancementError struct {
	Err error
}

func (e *EnhancementError) Error() string { return "enhance: " + e.Err.Error() }

func (e *EnhancementError) Unwrap() error { return e.Err }

func (e *EnhancementError) UserMessage() string { return "enhancement service failed" }

// RenderError reports that the document could not be built.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string { return "render: " + e.Err.Error() }

func (e *RenderError) Unwrap() error { return e.Err }

func (e *RenderError) UserMessage() string { return "could not generate the document" }
