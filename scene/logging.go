package scene

// Logger is the minimal logging seam StaticScene needs, satisfied
// structurally by the engine's injected Logger without scene importing the
// root package (spec §9: "Singletons... replace with an owned engine value
// passed by reference").
type Logger interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(format string, args ...any) {}
func (nopLogger) Warnf(format string, args ...any)  {}
