package fat

// Logger is the diagnostics channel of the engine. Corruption warnings,
// rollback failures and audit lines for every mutation are written here.
// The args follow slog conventions: alternating key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// NopLogger discards all output. Use in tests.
type NopLogger struct{}

func NewNopLogger() *NopLogger { return &NopLogger{} }

func (*NopLogger) Debug(string, ...any) {}
func (*NopLogger) Info(string, ...any)  {}
func (*NopLogger) Warn(string, ...any)  {}
func (*NopLogger) Error(string, ...any) {}

// componentLogger prepends fixed key/value pairs to every line.
type componentLogger struct {
	l    Logger
	args []any
}

// withComponent tags every line from l with component=name.
func withComponent(l Logger, name string) Logger {
	if l == nil {
		l = NewNopLogger()
	}
	return &componentLogger{l: l, args: []any{"component", name}}
}

func (c *componentLogger) with(args []any) []any {
	return append(append([]any{}, c.args...), args...)
}

func (c *componentLogger) Debug(msg string, args ...any) { c.l.Debug(msg, c.with(args)...) }
func (c *componentLogger) Info(msg string, args ...any)  { c.l.Info(msg, c.with(args)...) }
func (c *componentLogger) Warn(msg string, args ...any)  { c.l.Warn(msg, c.with(args)...) }
func (c *componentLogger) Error(msg string, args ...any) { c.l.Error(msg, c.with(args)...) }
