package core

// Logger is the logging seam the builder reports progress and warnings
// through. Satisfied by a *zap.SugaredLogger via a thin Printf adapter,
// or by a discarding stub in tests.
type Logger interface {
	Printf(format string, args ...interface{})
}
