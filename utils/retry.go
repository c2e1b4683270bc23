package utils

// WithReadRetry runs a side-effect-free read, retrying exactly once when the
// failure is transient. Mutations must not go through here: the single-retry
// budget exists to keep read paths usable during brief outages without
// amplifying load.
func WithReadRetry(fn func() error) error {
	err := fn()
	if err == nil || !IsTransient(err) {
		return err
	}
	return fn()
}
