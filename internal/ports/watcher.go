package ports

// CorpusWatcher monitors a drop directory for newly arrived corpus files.
// onFile receives the absolute path of each new file, debounced so the
// burst of writes an uploader produces counts as one arrival.
type CorpusWatcher interface {
	// Watch starts monitoring dir. Non-blocking; events are delivered on a
	// background goroutine until Stop is called.
	Watch(dir string, onFile func(path string)) error

	// Stop ends monitoring and releases resources. Safe to call twice.
	Stop() error
}
