package hydrate

import "log/slog"

// SlogTracker is a ready-made analytics sink that writes interaction
// events to a structured logger. Embedders that want real analytics
// implement Tracker themselves; this one is for development and for
// hosts whose logs are their analytics.
type SlogTracker struct {
	Logger *slog.Logger
}

// Track logs the event with its properties as attributes.
func (s *SlogTracker) Track(event string, props map[string]any) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	attrs := make([]any, 0, len(props)*2)
	for k, v := range props {
		attrs = append(attrs, k, v)
	}
	logger.Info(event, attrs...)
}
