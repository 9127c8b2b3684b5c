package service

// SetWriterHook installs a hook that runs before every asynchronous theme
// writer.
func SetWriterHook(o *ThemeOrchestrator, fn func(writer string)) {
	o.writerHook = fn
}
